package postgres

import (
	"context"
	"database/sql"
	"time"

	"chapterevents/internal/domain"
)

type reminderRepository struct {
	DB *sql.DB
}

func NewReminderRepository(db *sql.DB) *reminderRepository {
	return &reminderRepository{
		DB: db,
	}
}

var _ domain.ReminderService = (*reminderRepository)(nil)

func (r *reminderRepository) Schedule(ctx context.Context, eventID, userID string, remindAt time.Time) error {
	// Scheduling twice for the same attendance just moves the reminder.
	query := `
		INSERT INTO event_reminders (event_id, user_id, remind_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id, user_id) DO UPDATE SET remind_at = EXCLUDED.remind_at
	`
	_, err := r.DB.ExecContext(ctx, query, eventID, userID, remindAt)
	return err
}

func (r *reminderRepository) Reschedule(ctx context.Context, eventID, userID string, remindAt time.Time) error {
	// Only moves an existing reminder; attendances without one stay silent.
	query := `
		UPDATE event_reminders
		SET remind_at = $3
		WHERE event_id = $1 AND user_id = $2
	`
	_, err := r.DB.ExecContext(ctx, query, eventID, userID, remindAt)
	return err
}

func (r *reminderRepository) CancelAll(ctx context.Context, eventID string) error {
	query := `
		DELETE FROM event_reminders
		WHERE event_id = $1
	`
	_, err := r.DB.ExecContext(ctx, query, eventID)
	return err
}
