package services

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"just-landed/tracker/internal/common"
	"just-landed/tracker/internal/constants"
	"just-landed/tracker/internal/db/repositories"
	"just-landed/tracker/internal/models"
	"just-landed/tracker/internal/models/entities"
)

type fakeTrackedStore struct {
	rows    map[string]*entities.TrackedFlight
	upserts int
}

func (s *fakeTrackedStore) Get(_ context.Context, _ repositories.Queryer, flightID string) (*entities.TrackedFlight, error) {
	return s.rows[flightID], nil
}

func (s *fakeTrackedStore) GetForUpdate(ctx context.Context, q repositories.Queryer, flightID string) (*entities.TrackedFlight, error) {
	return s.Get(ctx, q, flightID)
}

func (s *fakeTrackedStore) Upsert(_ context.Context, _ repositories.Queryer, tf *entities.TrackedFlight) error {
	s.upserts++
	if cur, ok := s.rows[tf.FlightID]; ok {
		// Original schedule fields are written once and kept.
		cur.FlightData = tf.FlightData
		return nil
	}
	cp := *tf
	s.rows[tf.FlightID] = &cp
	return nil
}

func (s *fakeTrackedStore) UpdateSnapshot(_ context.Context, _ repositories.Queryer, flightID string, data []byte) error {
	if cur, ok := s.rows[flightID]; ok {
		cur.FlightData = data
	}
	return nil
}

func (s *fakeTrackedStore) Delete(_ context.Context, _ repositories.Queryer, flightID string) error {
	delete(s.rows, flightID)
	return nil
}

type fakeUserStore struct {
	users map[string]*entities.User
}

func (s *fakeUserStore) Get(_ context.Context, _ repositories.Queryer, uuid string) (*entities.User, error) {
	return s.users[uuid], nil
}

func (s *fakeUserStore) Upsert(_ context.Context, _ repositories.Queryer, user *entities.User) error {
	cp := *user
	s.users[user.UUID] = &cp
	return nil
}

type fakeMemberStore struct {
	links map[string]map[string]bool
	users *fakeUserStore
}

func (s *fakeMemberStore) Link(_ context.Context, _ repositories.Queryer, userUUID, flightID string) error {
	if s.links[flightID] == nil {
		s.links[flightID] = map[string]bool{}
	}
	s.links[flightID][userUUID] = true
	return nil
}

func (s *fakeMemberStore) Unlink(_ context.Context, _ repositories.Queryer, userUUID, flightID string) (bool, error) {
	if !s.links[flightID][userUUID] {
		return false, nil
	}
	delete(s.links[flightID], userUUID)
	return true, nil
}

func (s *fakeMemberStore) CountTrackers(_ context.Context, _ repositories.Queryer, flightID string) (int64, error) {
	return int64(len(s.links[flightID])), nil
}

func (s *fakeMemberStore) UsersForFlight(_ context.Context, _ repositories.Queryer, flightID string) ([]entities.User, error) {
	var out []entities.User
	for uuid := range s.links[flightID] {
		if u := s.users.users[uuid]; u != nil {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *fakeMemberStore) UnlinkAllForFlight(_ context.Context, _ repositories.Queryer, flightID string) error {
	delete(s.links, flightID)
	return nil
}

type fakeAlertManager struct {
	ensured  []string
	released []string
}

func (m *fakeAlertManager) EnsureAlert(_ context.Context, _ repositories.Queryer, flightID, flightNumber string) (*entities.FlightAlert, error) {
	m.ensured = append(m.ensured, flightID)
	return &entities.FlightAlert{AlertID: 7, FlightID: flightID, FlightNumber: flightNumber, Enabled: true}, nil
}

func (m *fakeAlertManager) ReleaseAlert(_ context.Context, _ repositories.Queryer, flightID string) error {
	m.released = append(m.released, flightID)
	return nil
}

type fakeReminderSyncer struct {
	synced  []string
	cleared []string
}

func (r *fakeReminderSyncer) SyncReminders(_ context.Context, _ repositories.Queryer, f *models.Flight, _, _ int64) error {
	r.synced = append(r.synced, f.FlightID)
	return nil
}

func (r *fakeReminderSyncer) ClearReminders(_ context.Context, _ repositories.Queryer, flightID string) error {
	r.cleared = append(r.cleared, flightID)
	return nil
}

type fakeDrivingTimer struct {
	seconds int64
}

func (d *fakeDrivingTimer) DrivingTime(_ context.Context, _, _, _, _ float64) (int64, error) {
	return d.seconds, nil
}

type fakeScheduler struct {
	kinds []constants.TaskKind
}

func (s *fakeScheduler) Schedule(_ context.Context, kind constants.TaskKind, _ interface{}, _ time.Time) error {
	s.kinds = append(s.kinds, kind)
	return nil
}

type trackingFixture struct {
	svc       *TrackingService
	tracked   *fakeTrackedStore
	members   *fakeMemberStore
	alerts    *fakeAlertManager
	reminders *fakeReminderSyncer
	fetcher   *fakeFetcher
	sender    *fakeSender
}

// newTrackingFixture backs the service with in-memory stores. The database
// handle only supplies transactions; the stores never touch it.
func newTrackingFixture(t *testing.T, f *models.Flight) *trackingFixture {
	t.Helper()

	db, err := sqlx.Connect("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := &fakeUserStore{users: map[string]*entities.User{}}
	fx := &trackingFixture{
		tracked:   &fakeTrackedStore{rows: map[string]*entities.TrackedFlight{}},
		members:   &fakeMemberStore{links: map[string]map[string]bool{}, users: users},
		alerts:    &fakeAlertManager{},
		reminders: &fakeReminderSyncer{},
		fetcher:   &fakeFetcher{flight: f},
		sender:    &fakeSender{},
	}
	fx.svc = NewTrackingService(
		db, fx.tracked, users, fx.members,
		fx.alerts, fx.reminders, fx.fetcher, &fakeDrivingTimer{}, fx.sender, &fakeScheduler{},
	)
	return fx
}

func TestTrackTwiceCreatesNothingTwice(t *testing.T) {
	flight, _ := departedFixtureFlights()
	fx := newTrackingFixture(t, flight)
	ctx := context.Background()

	req := &TrackRequest{
		UserUUID:       "u1",
		Flight:         flight,
		PushToken:      "tok1",
		NotifyArrived:  true,
		NotifyDeparted: true,
	}
	if err := fx.svc.Track(ctx, req); err != nil {
		t.Fatalf("first Track: %v", err)
	}
	if err := fx.svc.Track(ctx, req); err != nil {
		t.Fatalf("second Track: %v", err)
	}

	if len(fx.tracked.rows) != 1 {
		t.Errorf("tracked flights = %d, want 1", len(fx.tracked.rows))
	}
	if got := len(fx.members.links[flight.FlightID]); got != 1 {
		t.Errorf("memberships = %d, want 1", got)
	}
	if fx.tracked.upserts != 1 {
		t.Errorf("snapshot writes = %d, want 1 (identical snapshot must be skipped)", fx.tracked.upserts)
	}
	if len(fx.alerts.released) != 0 {
		t.Error("tracking must never release the alert")
	}
}

func TestUntrackLastTrackerTearsDown(t *testing.T) {
	flight, _ := departedFixtureFlights()
	fx := newTrackingFixture(t, flight)
	ctx := context.Background()

	for _, uuid := range []string{"u1", "u2"} {
		err := fx.svc.Track(ctx, &TrackRequest{UserUUID: uuid, Flight: flight, NotifyArrived: true})
		if err != nil {
			t.Fatalf("Track(%s): %v", uuid, err)
		}
	}

	if err := fx.svc.Untrack(ctx, "u1", flight.FlightID); err != nil {
		t.Fatalf("Untrack(u1): %v", err)
	}
	if len(fx.alerts.released) != 0 {
		t.Fatal("alert must survive while another tracker remains")
	}
	if fx.tracked.rows[flight.FlightID] == nil {
		t.Fatal("ledger row removed with a tracker remaining")
	}

	if err := fx.svc.Untrack(ctx, "u2", flight.FlightID); err != nil {
		t.Fatalf("Untrack(u2): %v", err)
	}
	if len(fx.alerts.released) != 1 || fx.alerts.released[0] != flight.FlightID {
		t.Errorf("released = %v, want [%s]", fx.alerts.released, flight.FlightID)
	}
	if len(fx.reminders.cleared) != 1 {
		t.Errorf("cleared reminders = %v, want one flight", fx.reminders.cleared)
	}
	if fx.tracked.rows[flight.FlightID] != nil {
		t.Error("ledger row should be gone after the last tracker leaves")
	}
	if len(fx.fetcher.invalidated) == 0 {
		t.Error("cached flight views should be invalidated on teardown")
	}

	err := fx.svc.Untrack(ctx, "u2", flight.FlightID)
	if !common.IsCode(err, common.CodeUntracked) {
		t.Errorf("untracking a gone flight: err = %v, want %s", err, common.CodeUntracked)
	}
}

func TestTrackTokenChangeDeregistersOldToken(t *testing.T) {
	flight, _ := departedFixtureFlights()
	fx := newTrackingFixture(t, flight)
	ctx := context.Background()

	if err := fx.svc.Track(ctx, &TrackRequest{UserUUID: "u1", Flight: flight, PushToken: "tok-old"}); err != nil {
		t.Fatalf("Track: %v", err)
	}
	if err := fx.svc.Track(ctx, &TrackRequest{UserUUID: "u1", Flight: flight, PushToken: "tok-new"}); err != nil {
		t.Fatalf("re-Track: %v", err)
	}

	if len(fx.sender.deregistered) != 1 || fx.sender.deregistered[0] != "tok-old" {
		t.Errorf("deregistered = %v, want [tok-old]", fx.sender.deregistered)
	}
	if len(fx.sender.registered) == 0 || fx.sender.registered[len(fx.sender.registered)-1] != "tok-new" {
		t.Errorf("registered = %v, want tok-new last", fx.sender.registered)
	}
}
