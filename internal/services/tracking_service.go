package services

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"just-landed/tracker/internal/common"
	"just-landed/tracker/internal/constants"
	"just-landed/tracker/internal/db/repositories"
	"just-landed/tracker/internal/logging"
	"just-landed/tracker/internal/models"
	"just-landed/tracker/internal/models/entities"
	"just-landed/tracker/internal/push"
)

// FlightFetcher is the flight data surface the ledger needs. Satisfied by
// FlightDataService.
type FlightFetcher interface {
	FlightInfo(ctx context.Context, flightID string) (*models.Flight, error)
	InvalidateFlight(flightID, flightNumber string)
}

// TrackedStore is the ledger row store. Satisfied by
// repositories.TrackedFlightRepository.
type TrackedStore interface {
	Get(ctx context.Context, q repositories.Queryer, flightID string) (*entities.TrackedFlight, error)
	GetForUpdate(ctx context.Context, q repositories.Queryer, flightID string) (*entities.TrackedFlight, error)
	Upsert(ctx context.Context, q repositories.Queryer, tf *entities.TrackedFlight) error
	UpdateSnapshot(ctx context.Context, q repositories.Queryer, flightID string, data []byte) error
	Delete(ctx context.Context, q repositories.Queryer, flightID string) error
}

// UserStore persists tracker identity and device state. Satisfied by
// repositories.UserRepository.
type UserStore interface {
	Get(ctx context.Context, q repositories.Queryer, uuid string) (*entities.User, error)
	Upsert(ctx context.Context, q repositories.Queryer, user *entities.User) error
}

// MemberStore records who follows which flight. Satisfied by
// repositories.UserFlightRepository.
type MemberStore interface {
	Link(ctx context.Context, q repositories.Queryer, userUUID, flightID string) error
	Unlink(ctx context.Context, q repositories.Queryer, userUUID, flightID string) (bool, error)
	CountTrackers(ctx context.Context, q repositories.Queryer, flightID string) (int64, error)
	UsersForFlight(ctx context.Context, q repositories.Queryer, flightID string) ([]entities.User, error)
	UnlinkAllForFlight(ctx context.Context, q repositories.Queryer, flightID string) error
}

// AlertManager owns the upstream subscription lifecycle. Satisfied by
// AlertRegistry.
type AlertManager interface {
	EnsureAlert(ctx context.Context, q repositories.Queryer, flightID, flightNumber string) (*entities.FlightAlert, error)
	ReleaseAlert(ctx context.Context, q repositories.Queryer, flightID string) error
}

// ReminderSyncer keeps reminders in step with the flight. Satisfied by
// ReminderService.
type ReminderSyncer interface {
	SyncReminders(ctx context.Context, q repositories.Queryer, f *models.Flight, drivingTime, leadTime int64) error
	ClearReminders(ctx context.Context, q repositories.Queryer, flightID string) error
}

// DrivingTimer answers driving-time queries. Satisfied by DrivingService.
type DrivingTimer interface {
	DrivingTime(ctx context.Context, fromLat, fromLon, toLat, toLon float64) (int64, error)
}

// TaskScheduler defers work to a later time. Satisfied by
// common.RedisDelayQueue.
type TaskScheduler interface {
	Schedule(ctx context.Context, kind constants.TaskKind, payload interface{}, at time.Time) error
}

// RetrackTask is the payload of a deferred re-track checkpoint.
type RetrackTask struct {
	FlightID     string `json:"flight_id"`
	FlightNumber string `json:"flight_number"`
}

// TrackRequest carries everything a track call needs: identity, device
// state, location and notification preferences. Preferences overwrite the
// stored user on every call.
type TrackRequest struct {
	UserUUID     string
	Flight       *models.Flight
	DrivingTime  int64 // seconds, 0 when no route was available
	PushToken    string
	Latitude     *float64
	Longitude    *float64
	ReminderLead int64

	NotifyChanged   bool
	NotifyDeparted  bool
	NotifyArrived   bool
	NotifyDiverted  bool
	NotifyCanceled  bool
	NotifyReminders bool
}

// TrackingService is the transactional ledger of who tracks what. All
// mutations to the tracked flight, its memberships, its alert subscription
// and its reminders commit atomically.
type TrackingService struct {
	db        *sqlx.DB
	tracked   TrackedStore
	users     UserStore
	members   MemberStore
	alerts    AlertManager
	reminders ReminderSyncer
	fetcher   FlightFetcher
	driving   DrivingTimer
	sender    push.Sender
	scheduler TaskScheduler
	now       func() time.Time
}

func NewTrackingService(
	db *sqlx.DB,
	tracked TrackedStore,
	users UserStore,
	members MemberStore,
	alerts AlertManager,
	reminders ReminderSyncer,
	fetcher FlightFetcher,
	driving DrivingTimer,
	sender push.Sender,
	scheduler TaskScheduler,
) *TrackingService {
	return &TrackingService{
		db:        db,
		tracked:   tracked,
		users:     users,
		members:   members,
		alerts:    alerts,
		reminders: reminders,
		fetcher:   fetcher,
		driving:   driving,
		sender:    sender,
		scheduler: scheduler,
		now:       time.Now,
	}
}

// Track records that the user follows the flight. Idempotent: re-tracking
// refreshes the user's device state and the flight snapshot but creates
// nothing twice. The first tracker of a flight pays for the alert
// subscription and the deferred re-track checkpoints.
func (s *TrackingService) Track(ctx context.Context, req *TrackRequest) error {
	f := req.Flight
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	existing, err := s.tracked.GetForUpdate(ctx, tx, f.FlightID)
	if err != nil {
		return err
	}
	firstTrack := existing == nil

	// An identical snapshot skips the write; membership and device state
	// still refresh below.
	if existing == nil || !bytes.Equal(existing.FlightData, data) {
		if err := s.tracked.Upsert(ctx, tx, &entities.TrackedFlight{
			FlightID:           f.FlightID,
			FlightNumber:       f.FlightNumber,
			FlightData:         data,
			OrigDepartureTime:  f.ScheduledDepartureTime,
			OrigFlightDuration: f.ScheduledFlightDuration,
		}); err != nil {
			return err
		}
	}

	prev, err := s.users.Get(ctx, tx, req.UserUUID)
	if err != nil {
		return err
	}

	user := userFromRequest(req)
	if err := s.users.Upsert(ctx, tx, user); err != nil {
		return err
	}
	if err := s.members.Link(ctx, tx, req.UserUUID, f.FlightID); err != nil {
		return err
	}

	if _, err := s.alerts.EnsureAlert(ctx, tx, f.FlightID, f.FlightNumber); err != nil {
		return err
	}

	if err := s.reminders.SyncReminders(ctx, tx, f, req.DrivingTime, user.LeadSeconds()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	if prev != nil && prev.PushToken != "" && prev.PushToken != req.PushToken {
		if err := s.sender.DeregisterToken(ctx, prev.PushToken); err != nil {
			logging.Warn("Failed to deregister replaced push token", "error", err.Error())
		}
	}
	if req.PushToken != "" {
		if err := s.sender.RegisterToken(ctx, req.PushToken); err != nil {
			logging.Warn("Failed to register push token", "error", err.Error())
		}
	}
	if firstTrack {
		s.scheduleRetracks(ctx, f, req.DrivingTime, user.LeadSeconds())
	}

	logging.Info("Tracking flight",
		"flight_id", f.FlightID, "flight_number", f.FlightNumber,
		"user", req.UserUUID, "first_track", firstTrack)
	return nil
}

// Untrack removes the user's membership. The last tracker out tears down
// the alert subscription, the reminders and the ledger row.
func (s *TrackingService) Untrack(ctx context.Context, userUUID, flightID string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	tf, err := s.tracked.Get(ctx, tx, flightID)
	if err != nil {
		return err
	}
	if tf == nil {
		return common.ErrUntracked()
	}

	removed, err := s.members.Unlink(ctx, tx, userUUID, flightID)
	if err != nil {
		return err
	}
	if !removed {
		return common.ErrUntracked()
	}

	remaining, err := s.members.CountTrackers(ctx, tx, flightID)
	if err != nil {
		return err
	}
	if remaining == 0 {
		if err := s.teardown(ctx, tx, flightID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	if remaining == 0 {
		s.fetcher.InvalidateFlight(flightID, tf.FlightNumber)
	}

	logging.Info("Untracked flight",
		"flight_id", flightID, "user", userUUID, "remaining", remaining)
	return nil
}

// RefreshTracked refetches a tracked flight, refreshes its stored snapshot
// and recomputes its reminders. Called from deferred re-track checkpoints
// and after alert reconciliation. A flight that has gone stale is expired
// for all trackers.
func (s *TrackingService) RefreshTracked(ctx context.Context, flightID string) error {
	tf, err := s.tracked.Get(ctx, s.db, flightID)
	if err != nil {
		return err
	}
	if tf == nil {
		return nil
	}

	s.fetcher.InvalidateFlight(flightID, tf.FlightNumber)
	f, err := s.fetcher.FlightInfo(ctx, flightID)
	if common.IsCode(err, common.CodeOldFlight) {
		return s.Expire(ctx, flightID)
	}
	if err != nil {
		return err
	}

	data, err := json.Marshal(f)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	locked, err := s.tracked.GetForUpdate(ctx, tx, flightID)
	if err != nil {
		return err
	}
	if locked == nil {
		// Untracked while we were fetching.
		return nil
	}

	if !bytes.Equal(locked.FlightData, data) {
		if err := s.tracked.UpdateSnapshot(ctx, tx, flightID, data); err != nil {
			return err
		}
	}

	drivingTime, leadTime := s.drivingForFlight(ctx, tx, f)
	if err := s.reminders.SyncReminders(ctx, tx, f, drivingTime, leadTime); err != nil {
		return err
	}

	return tx.Commit()
}

// ApplyCanceled stores the canceled view of a flight and clears its
// pending reminders. Canceled flights vanish upstream, so the snapshot is
// amended locally instead of refetched.
func (s *TrackingService) ApplyCanceled(ctx context.Context, flightID string, f *models.Flight) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	locked, err := s.tracked.GetForUpdate(ctx, tx, flightID)
	if err != nil {
		return err
	}
	if locked == nil {
		return nil
	}

	if err := s.tracked.UpdateSnapshot(ctx, tx, flightID, data); err != nil {
		return err
	}
	if err := s.reminders.SyncReminders(ctx, tx, f, 0, 0); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.fetcher.InvalidateFlight(flightID, f.FlightNumber)
	return nil
}

// Expire removes a stale flight for every tracker at once: memberships,
// alert subscription, reminders and the ledger row.
func (s *TrackingService) Expire(ctx context.Context, flightID string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	tf, err := s.tracked.GetForUpdate(ctx, tx, flightID)
	if err != nil {
		return err
	}
	if tf == nil {
		return nil
	}

	if err := s.members.UnlinkAllForFlight(ctx, tx, flightID); err != nil {
		return err
	}
	if err := s.teardown(ctx, tx, flightID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.fetcher.InvalidateFlight(flightID, tf.FlightNumber)
	logging.Info("Expired stale flight",
		"flight_id", flightID, "flight_number", tf.FlightNumber)
	return nil
}

// teardown removes the per-flight resources inside the caller's
// transaction: alert subscription, reminders, ledger row.
func (s *TrackingService) teardown(ctx context.Context, tx *sqlx.Tx, flightID string) error {
	if err := s.alerts.ReleaseAlert(ctx, tx, flightID); err != nil {
		return err
	}
	if err := s.reminders.ClearReminders(ctx, tx, flightID); err != nil {
		return err
	}
	return s.tracked.Delete(ctx, tx, flightID)
}

// scheduleRetracks queues the deferred checkpoints that re-verify the
// flight shortly before each reminder would fire, so reminders go out
// against fresh data even if no alert callback arrives.
func (s *TrackingService) scheduleRetracks(ctx context.Context, f *models.Flight, drivingTime, leadTime int64) {
	leaveSoon, _, ok := ComputeReminderTimes(f, drivingTime, leadTime)
	if !ok {
		return
	}

	payload := RetrackTask{FlightID: f.FlightID, FlightNumber: f.FlightNumber}
	checkpoints := []int64{
		f.EstimatedArrivalTime - int64(float64(drivingTime)*constants.LeaveNowRetrackFactor),
		leaveSoon - constants.ScheduleCheckBufferSeconds,
	}

	now := s.now()
	for _, at := range checkpoints {
		t := time.Unix(at, 0)
		if !t.After(now) {
			continue
		}
		if err := s.scheduler.Schedule(ctx, constants.TaskRetrack, payload, t); err != nil {
			logging.Warn("Failed to schedule re-track",
				"flight_id", f.FlightID, "error", err.Error())
		}
	}
}

// drivingForFlight recomputes driving time for reminder placement from the
// first tracker with a usable location. Zero when nobody is driving.
func (s *TrackingService) drivingForFlight(ctx context.Context, tx *sqlx.Tx, f *models.Flight) (drivingTime, leadTime int64) {
	leadTime = constants.DefaultReminderLeadSeconds

	users, err := s.members.UsersForFlight(ctx, tx, f.FlightID)
	if err != nil {
		logging.Warn("Failed to load trackers", "flight_id", f.FlightID, "error", err.Error())
		return 0, leadTime
	}

	dest := f.Destination
	for i := range users {
		u := &users[i]
		if !u.Latitude.Valid || !u.Longitude.Valid {
			continue
		}
		miles := models.MilesBetween(u.Latitude.Float64, u.Longitude.Float64, dest.Latitude, dest.Longitude)
		if miles < constants.CloseToAirportMiles || miles > constants.FarFromAirportMiles {
			continue
		}
		seconds, err := s.driving.DrivingTime(ctx, u.Latitude.Float64, u.Longitude.Float64, dest.Latitude, dest.Longitude)
		if err != nil {
			logging.Debug("Driving time unavailable on refresh",
				"flight_id", f.FlightID, "error", err.Error())
			continue
		}
		return seconds, u.LeadSeconds()
	}
	return 0, leadTime
}

func userFromRequest(req *TrackRequest) *entities.User {
	user := &entities.User{
		UUID:            req.UserUUID,
		PushToken:       req.PushToken,
		ReminderLead:    req.ReminderLead,
		NotifyChanged:   req.NotifyChanged,
		NotifyDeparted:  req.NotifyDeparted,
		NotifyArrived:   req.NotifyArrived,
		NotifyDiverted:  req.NotifyDiverted,
		NotifyCanceled:  req.NotifyCanceled,
		NotifyReminders: req.NotifyReminders,
	}
	if req.Latitude != nil && req.Longitude != nil {
		user.Latitude.Valid = true
		user.Latitude.Float64 = *req.Latitude
		user.Longitude.Valid = true
		user.Longitude.Float64 = *req.Longitude
	}
	return user
}
