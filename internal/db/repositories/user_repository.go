package repositories

import (
	"context"
	"database/sql"
	"errors"

	"just-landed/tracker/internal/constants"
	"just-landed/tracker/internal/models/entities"
)

type UserRepository struct{}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

func (r *UserRepository) Get(ctx context.Context, q Queryer, uuid string) (*entities.User, error) {
	var user entities.User
	err := q.GetContext(ctx, &user, constants.GetUserByUUID, uuid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Upsert creates or refreshes a user. Location, push token, lead time and
// notification preferences are client-owned and overwrite on every track.
func (r *UserRepository) Upsert(ctx context.Context, q Queryer, user *entities.User) error {
	query := `
		INSERT INTO users (
			uuid, push_token, latitude, longitude, reminder_lead,
			notify_changed, notify_departed, notify_arrived,
			notify_diverted, notify_canceled, notify_reminders
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (uuid) DO UPDATE SET
			push_token = EXCLUDED.push_token,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			reminder_lead = EXCLUDED.reminder_lead,
			notify_changed = EXCLUDED.notify_changed,
			notify_departed = EXCLUDED.notify_departed,
			notify_arrived = EXCLUDED.notify_arrived,
			notify_diverted = EXCLUDED.notify_diverted,
			notify_canceled = EXCLUDED.notify_canceled,
			notify_reminders = EXCLUDED.notify_reminders,
			updated_at = now()
	`
	_, err := q.ExecContext(ctx, query,
		user.UUID, user.PushToken, user.Latitude, user.Longitude, user.ReminderLead,
		user.NotifyChanged, user.NotifyDeparted, user.NotifyArrived,
		user.NotifyDiverted, user.NotifyCanceled, user.NotifyReminders,
	)
	return err
}
