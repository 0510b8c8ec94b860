package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"chapterevents/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) *eventRepository {
	return &eventRepository{
		DB: db,
	}
}

var _ domain.EventRepository = (*eventRepository)(nil)

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return scanEvent(r.DB.QueryRowContext(ctx, query, id))
}

func (r *eventRepository) MarkCanceled(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		UPDATE events
		SET canceled = TRUE, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + eventColumns + `
	`
	return scanEvent(r.DB.QueryRowContext(ctx, query, id))
}

func (r *eventRepository) UpdateSchedule(ctx context.Context, id string, update *domain.EventScheduleUpdate) (*domain.Event, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	lockQuery := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 FOR UPDATE`
	event, err := scanEvent(tx.QueryRowContext(ctx, lockQuery, id))
	if err != nil {
		return nil, err
	}

	if update.StartAt != nil {
		event.StartAt = *update.StartAt
	}
	if update.EndsAt != nil {
		event.EndsAt = *update.EndsAt
	}
	if update.VenueType != nil {
		event.VenueType = *update.VenueType
	}
	if update.VenueID != nil {
		event.VenueID = update.VenueID
	}
	if update.StreamingURL != nil {
		event.StreamingURL = update.StreamingURL
	}
	// A venue type change invalidates the location fields that no longer apply.
	if !event.VenueType.IsOnline() {
		event.StreamingURL = nil
	}
	if !event.VenueType.IsPhysical() {
		event.VenueID = nil
	}
	if event.EndsAt.Before(event.StartAt) {
		return nil, fmt.Errorf("ends_at precedes start_at: %w", domain.ErrInvalidInput)
	}

	updateQuery := `
		UPDATE events
		SET start_at = $2, ends_at = $3, venue_type = $4, venue_id = $5, streaming_url = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + eventColumns + `
	`
	updated, err := scanEvent(tx.QueryRowContext(ctx, updateQuery,
		id, event.StartAt, event.EndsAt, event.VenueType, event.VenueID, event.StreamingURL,
	))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return updated, nil
}
