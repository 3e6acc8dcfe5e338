package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"just-landed/tracker/internal/common"
	"just-landed/tracker/internal/constants"
	"just-landed/tracker/internal/db/repositories"
	"just-landed/tracker/internal/logging"
	"just-landed/tracker/internal/models"
	"just-landed/tracker/internal/models/dtos"
	"just-landed/tracker/internal/models/entities"
	"just-landed/tracker/internal/push"
)

// AlertLookup resolves upstream alert ids to local subscriptions.
type AlertLookup interface {
	FindByAlertID(ctx context.Context, q repositories.Queryer, alertID int64) (*entities.FlightAlert, error)
}

// TrackedLookup reads the ledger. Satisfied by
// repositories.TrackedFlightRepository.
type TrackedLookup interface {
	Get(ctx context.Context, q repositories.Queryer, flightID string) (*entities.TrackedFlight, error)
}

// TrackerLookup lists the users following a flight. Satisfied by
// repositories.UserFlightRepository.
type TrackerLookup interface {
	UsersForFlight(ctx context.Context, q repositories.Queryer, flightID string) ([]entities.User, error)
}

// Retracker refreshes the ledger after an event is handled. Satisfied by
// TrackingService.
type Retracker interface {
	RefreshTracked(ctx context.Context, flightID string) error
	ApplyCanceled(ctx context.Context, flightID string, f *models.Flight) error
}

// eventPushType maps upstream event codes to the notification type sent to
// trackers. Schedule nudges ("change", "minutes_out") both read as a plain
// change.
var eventPushType = map[string]constants.PushType{
	"change":      constants.PushFlightChanged,
	"minutes_out": constants.PushFlightChanged,
	"departure":   constants.PushFlightDeparted,
	"arrival":     constants.PushFlightArrived,
	"diverted":    constants.PushFlightDiverted,
	"cancelled":   constants.PushFlightCanceled,
}

// AlertReconciler turns upstream alert callbacks into user notifications
// and ledger refreshes. Callbacks arrive via the delay queue a few seconds
// after the event so the upstream record has settled.
type AlertReconciler struct {
	db      *sqlx.DB
	alerts  AlertLookup
	tracked TrackedLookup
	members TrackerLookup
	fetcher FlightFetcher
	tracker Retracker
	sender  push.Sender
	now     func() time.Time
}

func NewAlertReconciler(
	db *sqlx.DB,
	alerts AlertLookup,
	tracked TrackedLookup,
	members TrackerLookup,
	fetcher FlightFetcher,
	tracker Retracker,
	sender push.Sender,
) *AlertReconciler {
	return &AlertReconciler{
		db:      db,
		alerts:  alerts,
		tracked: tracked,
		members: members,
		fetcher: fetcher,
		tracker: tracker,
		sender:  sender,
		now:     time.Now,
	}
}

// Process handles one alert callback end to end: resolve the subscription,
// build before/after views of the flight, notify opted-in trackers, then
// bring the ledger up to date.
func (r *AlertReconciler) Process(ctx context.Context, cb *dtos.FAAlertCallback) error {
	alert, err := r.alerts.FindByAlertID(ctx, r.db, cb.AlertID)
	if err != nil {
		return err
	}
	if alert == nil {
		// Orphaned subscription; the audit sweep will delete it upstream.
		logging.Warn("Callback for unknown alert", "alert_id", cb.AlertID, "event", cb.EventCode)
		return nil
	}

	flightID := cb.Flight.FaFlightID
	if flightID == "" {
		flightID = alert.FlightID
	}

	tf, err := r.tracked.Get(ctx, r.db, flightID)
	if err != nil {
		return err
	}
	if tf == nil {
		logging.Info("Callback for untracked flight", "flight_id", flightID, "event", cb.EventCode)
		return nil
	}

	var before models.Flight
	if err := json.Unmarshal(tf.FlightData, &before); err != nil {
		return err
	}

	canceled := cb.EventCode == "cancelled"
	after, err := r.afterView(ctx, flightID, &before, canceled)
	if err != nil {
		if common.IsCode(err, common.CodeOldFlight) {
			return r.tracker.RefreshTracked(ctx, flightID)
		}
		return err
	}

	// Schedule revisions are detected against the originally filed times,
	// not whatever the last refresh happened to store.
	before.ScheduledDepartureTime = tf.OrigDepartureTime
	before.ScheduledFlightDuration = tf.OrigFlightDuration
	after.ScheduledDepartureTime = tf.OrigDepartureTime
	after.ScheduledFlightDuration = tf.OrigFlightDuration

	pushType, known := eventPushType[cb.EventCode]
	switch {
	case !known:
		// Unknown codes refresh the ledger but never notify anyone.
		logging.Warn("Unknown alert event code", "event", cb.EventCode, "flight_id", flightID)
	case pushType != constants.PushFlightChanged || r.materialChange(&before, after):
		r.notifyTrackers(ctx, flightID, pushType, after)
	}

	// A terminal reassignment rides along with lifecycle events and is
	// worth its own heads-up, first assignment included.
	if known && pushType != constants.PushFlightChanged && terminalChanged(&before, after) {
		r.notifyTrackers(ctx, flightID, constants.PushFlightChanged, after)
	}

	if canceled {
		return r.tracker.ApplyCanceled(ctx, flightID, after)
	}
	return r.tracker.RefreshTracked(ctx, flightID)
}

// afterView builds the post-event flight. Cancellations vanish upstream, so
// the canceled view is the stored snapshot with the cancel sentinel.
func (r *AlertReconciler) afterView(ctx context.Context, flightID string, before *models.Flight, canceled bool) (*models.Flight, error) {
	if canceled {
		after := *before
		after.ActualDepartureTime = -1
		after.LastUpdated = r.now().Unix()
		return &after, nil
	}

	r.fetcher.InvalidateFlight(flightID, before.FlightNumber)
	return r.fetcher.FlightInfo(ctx, flightID)
}

// materialChange reports whether a plain change callback actually moved
// anything a tracker cares about.
func (r *AlertReconciler) materialChange(before, after *models.Flight) bool {
	now := r.now()
	if before.Status(now) != after.Status(now) {
		return true
	}
	if before.EstimatedArrivalTime != after.EstimatedArrivalTime {
		return true
	}
	return terminalChanged(before, after)
}

// terminalChanged is true when the destination terminal moved or was
// assigned for the first time. Losing a terminal stays quiet; there is
// nothing actionable to tell the tracker.
func terminalChanged(before, after *models.Flight) bool {
	return after.Destination.Terminal != "" &&
		before.Destination.Terminal != after.Destination.Terminal
}

func (r *AlertReconciler) notifyTrackers(ctx context.Context, flightID string, pushType constants.PushType, f *models.Flight) {
	users, err := r.members.UsersForFlight(ctx, r.db, flightID)
	if err != nil {
		logging.Error("Failed to load trackers for notification",
			"flight_id", flightID, "error", err.Error())
		return
	}

	msg := push.ForAlert(pushType, f, r.now())
	delivered := 0
	for i := range users {
		u := &users[i]
		if !u.WantsPush(pushType) || u.PushToken == "" {
			continue
		}
		if err := r.sender.Notify(ctx, u.PushToken, msg); err != nil {
			logging.Warn("Alert push failed", "flight_id", flightID, "error", err.Error())
			continue
		}
		delivered++
	}

	logging.Info("Notified trackers",
		"flight_id", flightID, "type", string(pushType), "delivered", delivered)
}
