package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"just-landed/tracker/internal/constants"
	"just-landed/tracker/internal/db/repositories"
	"just-landed/tracker/internal/logging"
	"just-landed/tracker/internal/models"
	"just-landed/tracker/internal/models/entities"
	"just-landed/tracker/internal/push"
)

// ReminderService owns the leave-soon/leave-now lifecycle: computing fire
// times from driving time, keeping unsent reminders in step with schedule
// changes, and the at-most-once due-reminder send.
type ReminderService struct {
	db        *sqlx.DB
	reminders *repositories.ReminderRepository
	tracked   *repositories.TrackedFlightRepository
	members   *repositories.UserFlightRepository
	sender    push.Sender
	now       func() time.Time
}

func NewReminderService(
	db *sqlx.DB,
	reminders *repositories.ReminderRepository,
	tracked *repositories.TrackedFlightRepository,
	members *repositories.UserFlightRepository,
	sender push.Sender,
) *ReminderService {
	return &ReminderService{
		db:        db,
		reminders: reminders,
		tracked:   tracked,
		members:   members,
		sender:    sender,
		now:       time.Now,
	}
}

// ComputeReminderTimes derives both fire times from the estimated arrival
// and current driving time.
//
// Leave-now is the latest moment departure still beats the flight:
// estimated arrival minus the drive. Leave-soon backs off a further 50%
// of the drive for traffic surprises, one schedule-check interval, and the
// user's lead preference.
func ComputeReminderTimes(f *models.Flight, drivingTime, leadTime int64) (leaveSoon, leaveNow int64, ok bool) {
	if f == nil || f.EstimatedArrivalTime <= 0 || drivingTime <= 0 {
		return 0, 0, false
	}
	if f.IsCanceled() || f.Diverted {
		return 0, 0, false
	}

	leaveNow = f.EstimatedArrivalTime - drivingTime
	leaveSoon = leaveNow - drivingTime/2 - constants.ScheduleCheckBufferSeconds - leadTime
	return leaveSoon, leaveNow, true
}

// reminderChange is one planned mutation against the reminder rows.
type reminderChange struct {
	insert *entities.FlightReminder
	update *entities.FlightReminder // carries the new fire time
}

// planReminders diffs the wanted fire times against existing rows. Sent
// rows are never touched. A wanted leave-soon already in the past is
// created pre-marked sent so it can never fire late.
func planReminders(existing []entities.FlightReminder, f *models.Flight, drivingTime, leadTime int64, now time.Time) (changes []reminderChange, clear bool) {
	leaveSoon, leaveNow, ok := ComputeReminderTimes(f, drivingTime, leadTime)
	if !ok {
		// Canceled or diverted flights keep no pending reminders. Missing
		// inputs (no driving time yet) leave existing rows alone.
		if f != nil && (f.IsCanceled() || f.Diverted) {
			return nil, true
		}
		return nil, false
	}

	wanted := map[constants.ReminderKind]int64{
		constants.ReminderLeaveSoon: leaveSoon,
		constants.ReminderLeaveNow:  leaveNow,
	}

	byKind := make(map[constants.ReminderKind]*entities.FlightReminder, len(existing))
	for i := range existing {
		byKind[existing[i].Kind] = &existing[i]
	}

	for _, kind := range []constants.ReminderKind{constants.ReminderLeaveSoon, constants.ReminderLeaveNow} {
		fireTime := wanted[kind]
		current := byKind[kind]

		if current == nil {
			rem := &entities.FlightReminder{
				FlightID: f.FlightID,
				Kind:     kind,
				FireTime: fireTime,
			}
			if kind == constants.ReminderLeaveSoon && fireTime <= now.Unix() {
				rem.Sent = true
			}
			changes = append(changes, reminderChange{insert: rem})
			continue
		}

		if current.Sent || current.FireTime == fireTime {
			continue
		}
		moved := *current
		moved.FireTime = fireTime
		changes = append(changes, reminderChange{update: &moved})
	}
	return changes, false
}

// SyncReminders reconciles the stored reminders for a flight inside the
// caller's transaction.
func (s *ReminderService) SyncReminders(ctx context.Context, q repositories.Queryer, f *models.Flight, drivingTime, leadTime int64) error {
	existing, err := s.reminders.ListForFlight(ctx, q, f.FlightID)
	if err != nil {
		return err
	}

	changes, clear := planReminders(existing, f, drivingTime, leadTime, s.now())
	if clear {
		return s.reminders.DeleteUnsentForFlight(ctx, q, f.FlightID)
	}

	for _, change := range changes {
		if change.insert != nil {
			if err := s.reminders.Insert(ctx, q, change.insert); err != nil {
				return err
			}
			continue
		}
		if err := s.reminders.UpdateFireTime(ctx, q, change.update.ID, change.update.FireTime); err != nil {
			return err
		}
	}
	return nil
}

// ClearReminders drops every reminder for a flight, sent or not. Used when
// the flight itself is torn down.
func (s *ReminderService) ClearReminders(ctx context.Context, q repositories.Queryer, flightID string) error {
	return s.reminders.DeleteForFlight(ctx, q, flightID)
}

// SendDue delivers every overdue unsent reminder. Each reminder is claimed
// by a guarded sent flip in its own transaction, then pushed to every
// opted-in tracker after commit; a reminder is delivered at most once.
func (s *ReminderService) SendDue(ctx context.Context) (int, error) {
	due, err := s.reminders.ListDue(ctx, s.db, s.now().Unix())
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, rem := range due {
		delivered, err := s.sendOne(ctx, rem)
		if err != nil {
			logging.Error("Failed to send reminder",
				"flight_id", rem.FlightID, "kind", string(rem.Kind), "error", err.Error())
			continue
		}
		if delivered {
			sent++
		}
	}
	return sent, nil
}

func (s *ReminderService) sendOne(ctx context.Context, rem entities.FlightReminder) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	won, err := s.reminders.MarkSent(ctx, tx, rem.ID)
	if err != nil {
		return false, err
	}
	if !won {
		return false, nil
	}

	tf, err := s.tracked.Get(ctx, tx, rem.FlightID)
	if err != nil {
		return false, err
	}
	if tf == nil {
		// Flight was untracked after the reminder was scheduled; the sent
		// flip still commits so nothing retries it.
		return false, tx.Commit()
	}

	users, err := s.members.UsersForFlight(ctx, tx, rem.FlightID)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}

	var flight models.Flight
	if err := json.Unmarshal(tf.FlightData, &flight); err != nil {
		return false, err
	}

	msg := push.ForReminder(rem.Kind, &flight, s.now())
	for _, user := range users {
		if !user.WantsPush(msg.Type) || user.PushToken == "" {
			continue
		}
		if err := s.sender.Notify(ctx, user.PushToken, msg); err != nil {
			logging.Warn("Reminder push failed", "flight_id", rem.FlightID, "error", err.Error())
		}
	}
	return true, nil
}
