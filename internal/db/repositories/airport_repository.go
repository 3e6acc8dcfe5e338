package repositories

import (
	"context"

	"just-landed/tracker/internal/models/gorm"

	gormlib "gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AirportRepository handles airport table operations
type AirportRepository struct {
	db *gormlib.DB
}

// NewAirportRepository creates a new airport repository
func NewAirportRepository(db *gormlib.DB) *AirportRepository {
	return &AirportRepository{db: db}
}

// FindByICAO finds an airport by ICAO code (case-insensitive)
func (r *AirportRepository) FindByICAO(ctx context.Context, icao string) (*gorm.Airport, error) {
	var airport gorm.Airport

	err := r.db.WithContext(ctx).
		Where("UPPER(icao) = UPPER(?)", icao).
		First(&airport).Error

	if err != nil {
		if err == gormlib.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return &airport, nil
}

// FindByIATA finds an airport by IATA code (case-insensitive)
func (r *AirportRepository) FindByIATA(ctx context.Context, iata string) (*gorm.Airport, error) {
	var airport gorm.Airport

	err := r.db.WithContext(ctx).
		Where("UPPER(iata) = UPPER(?)", iata).
		First(&airport).Error

	if err != nil {
		if err == gormlib.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return &airport, nil
}

// FindByCode finds an airport by ICAO first, then IATA. Flight records
// carry ICAO codes but user-facing lookups sometimes supply IATA.
func (r *AirportRepository) FindByCode(ctx context.Context, code string) (*gorm.Airport, error) {
	if len(code) == 4 {
		return r.FindByICAO(ctx, code)
	}
	airport, err := r.FindByICAO(ctx, code)
	if err != nil || airport != nil {
		return airport, err
	}
	return r.FindByIATA(ctx, code)
}

// Upsert stores an airport fetched from the upstream provider so the next
// lookup is served locally.
func (r *AirportRepository) Upsert(ctx context.Context, airport *gorm.Airport) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "icao"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"iata", "name", "city", "country", "latitude", "longitude", "timezone", "updated_at",
			}),
		}).
		Create(airport).Error
}

// Count returns total number of airports
func (r *AirportRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&gorm.Airport{}).Count(&count).Error
	return count, err
}
