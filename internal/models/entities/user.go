package entities

import (
	"database/sql"
	"time"

	"just-landed/tracker/internal/constants"
)

// User is a device-scoped account identified by the client-generated UUID.
// Location and push token are refreshed on every track request.
type User struct {
	UUID      string          `db:"uuid"`
	PushToken string          `db:"push_token"`
	Latitude  sql.NullFloat64 `db:"latitude"`
	Longitude sql.NullFloat64 `db:"longitude"`

	// Reminder lead time in seconds before the computed leave-soon moment.
	ReminderLead int64 `db:"reminder_lead"`

	// Per-alert-type opt-ins.
	NotifyChanged   bool `db:"notify_changed"`
	NotifyDeparted  bool `db:"notify_departed"`
	NotifyArrived   bool `db:"notify_arrived"`
	NotifyDiverted  bool `db:"notify_diverted"`
	NotifyCanceled  bool `db:"notify_canceled"`
	NotifyReminders bool `db:"notify_reminders"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// WantsPush reports whether the user has opted in to the given push type.
func (u *User) WantsPush(t constants.PushType) bool {
	switch t {
	case constants.PushFlightChanged:
		return u.NotifyChanged
	case constants.PushFlightDeparted:
		return u.NotifyDeparted
	case constants.PushFlightArrived:
		return u.NotifyArrived
	case constants.PushFlightDiverted:
		return u.NotifyDiverted
	case constants.PushFlightCanceled:
		return u.NotifyCanceled
	case constants.PushLeaveSoon, constants.PushLeaveNow:
		return u.NotifyReminders
	default:
		return false
	}
}

// LeadSeconds returns the user's reminder lead, falling back to the default.
func (u *User) LeadSeconds() int64 {
	if u.ReminderLead > 0 {
		return u.ReminderLead
	}
	return constants.DefaultReminderLeadSeconds
}
