package repositories

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

func setupAlertDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Connect("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	db.MustExec(`
		CREATE TABLE flight_alerts (
			alert_id INTEGER PRIMARY KEY,
			flight_id TEXT NOT NULL,
			flight_number TEXT NOT NULL,
			enabled BOOLEAN NOT NULL DEFAULT TRUE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return db
}

func TestAlertRepository_FindByAlertIDSkipsDisabled(t *testing.T) {
	db := setupAlertDB(t)
	repo := NewAlertRepository()
	ctx := context.Background()

	db.MustExec(`
		INSERT INTO flight_alerts (alert_id, flight_id, flight_number, enabled) VALUES
			(41, 'UAL100-123', 'UAL100', TRUE),
			(42, 'DAL200-456', 'DAL200', FALSE)
	`)

	alert, err := repo.FindByAlertID(ctx, db, 41)
	if err != nil {
		t.Fatalf("FindByAlertID: %v", err)
	}
	if alert == nil || alert.FlightID != "UAL100-123" {
		t.Fatalf("alert = %+v, want UAL100-123", alert)
	}

	disabled, err := repo.FindByAlertID(ctx, db, 42)
	if err != nil {
		t.Fatalf("FindByAlertID(disabled): %v", err)
	}
	if disabled != nil {
		t.Errorf("disabled subscription resolved: %+v", disabled)
	}

	missing, err := repo.FindByAlertID(ctx, db, 99)
	if err != nil || missing != nil {
		t.Errorf("unknown alert id: got %+v, %v", missing, err)
	}
}
