package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"chapterevents/internal/domain"
)

type attendanceRepository struct {
	DB *sql.DB
}

// NewAttendanceRepository returns the Postgres-backed attendance store and
// repository. The store serializes per-event RSVP transitions by locking the
// event row for the duration of the transaction.
func NewAttendanceRepository(db *sql.DB) *attendanceRepository {
	return &attendanceRepository{
		DB: db,
	}
}

var (
	_ domain.AttendanceStore      = (*attendanceRepository)(nil)
	_ domain.AttendanceRepository = (*attendanceRepository)(nil)
)

const eventColumns = `
	id, chapter_id, name, description, url, capacity, invite_only, canceled,
	start_at, ends_at, venue_type, venue_id, streaming_url, created_at, updated_at
`

func scanEvent(row *sql.Row) (*domain.Event, error) {
	ev := &domain.Event{}
	err := row.Scan(
		&ev.ID, &ev.ChapterID, &ev.Name, &ev.Description, &ev.URL,
		&ev.Capacity, &ev.InviteOnly, &ev.Canceled,
		&ev.StartAt, &ev.EndsAt, &ev.VenueType, &ev.VenueID, &ev.StreamingURL,
		&ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return ev, nil
}

func (r *attendanceRepository) WithEvent(ctx context.Context, eventID string, fn func(tx domain.AttendanceTx) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	// Locking the event row serializes concurrent RSVPs for this event, so
	// the read-count-then-write sequence inside fn observes a stable state.
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 FOR UPDATE`
	event, err := scanEvent(tx.QueryRowContext(ctx, query, eventID))
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("lock event: %w", err)
	}

	if err := fn(&attendanceTx{tx: tx, event: event}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *attendanceRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Attendee, error) {
	query := `
		SELECT a.event_id, a.user_id, a.seq, a.status, a.subscribed, a.role,
		       a.created_at, a.updated_at,
		       u.id, u.email, u.first_name, u.last_name
		FROM event_attendances a
		JOIN users u ON u.id = a.user_id
		WHERE a.event_id = $1
		ORDER BY a.seq ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attendees []*domain.Attendee
	for rows.Next() {
		rec := &domain.AttendanceRecord{}
		user := &domain.User{}
		if err := rows.Scan(
			&rec.EventID, &rec.UserID, &rec.Seq, &rec.Status, &rec.Subscribed, &rec.Role,
			&rec.CreatedAt, &rec.UpdatedAt,
			&user.ID, &user.Email, &user.FirstName, &user.LastName,
		); err != nil {
			return nil, err
		}
		attendees = append(attendees, &domain.Attendee{Record: rec, User: user})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if attendees == nil {
		attendees = []*domain.Attendee{}
	}
	return attendees, nil
}

// attendanceTx operates on one event's attendance inside an open transaction.
type attendanceTx struct {
	tx    *sql.Tx
	event *domain.Event
}

func (t *attendanceTx) Event(ctx context.Context) (*domain.Event, error) {
	return t.event, nil
}

const recordColumns = `event_id, user_id, seq, status, subscribed, role, created_at, updated_at`

func scanRecord(row *sql.Row) (*domain.AttendanceRecord, error) {
	rec := &domain.AttendanceRecord{}
	err := row.Scan(
		&rec.EventID, &rec.UserID, &rec.Seq, &rec.Status, &rec.Subscribed, &rec.Role,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (t *attendanceTx) Record(ctx context.Context, userID string) (*domain.AttendanceRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM event_attendances
		WHERE event_id = $1 AND user_id = $2
	`
	return scanRecord(t.tx.QueryRowContext(ctx, query, t.event.ID, userID))
}

func (t *attendanceTx) ConfirmedCount(ctx context.Context) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM event_attendances
		WHERE event_id = $1 AND status = $2
	`
	var count int
	if err := t.tx.QueryRowContext(ctx, query, t.event.ID, domain.StatusConfirmed).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (t *attendanceTx) Waitlist(ctx context.Context) ([]*domain.AttendanceRecord, error) {
	// seq is the persisted arrival order; promotion depends on it.
	query := `
		SELECT ` + recordColumns + `
		FROM event_attendances
		WHERE event_id = $1 AND status = $2
		ORDER BY seq ASC
	`
	rows, err := t.tx.QueryContext(ctx, query, t.event.ID, domain.StatusWaitlisted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*domain.AttendanceRecord
	for rows.Next() {
		rec := &domain.AttendanceRecord{}
		if err := rows.Scan(
			&rec.EventID, &rec.UserID, &rec.Seq, &rec.Status, &rec.Subscribed, &rec.Role,
			&rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

func (t *attendanceTx) CreateRecord(ctx context.Context, rec *domain.AttendanceRecord) error {
	query := `
		INSERT INTO event_attendances (event_id, user_id, status, subscribed, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING seq
	`
	err := t.tx.QueryRowContext(ctx, query,
		rec.EventID, rec.UserID, rec.Status, rec.Subscribed, rec.Role,
		rec.CreatedAt, rec.UpdatedAt,
	).Scan(&rec.Seq)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("attendance record already exists: %w", domain.ErrInvalidInput)
		}
		return err
	}
	return nil
}

func (t *attendanceTx) SetStatus(ctx context.Context, userID string, status domain.RsvpStatus) (*domain.AttendanceRecord, error) {
	query := `
		UPDATE event_attendances
		SET status = $3, updated_at = NOW()
		WHERE event_id = $1 AND user_id = $2
		RETURNING ` + recordColumns + `
	`
	return scanRecord(t.tx.QueryRowContext(ctx, query, t.event.ID, userID, status))
}

func (t *attendanceTx) DeleteRecord(ctx context.Context, userID string) error {
	query := `
		DELETE FROM event_attendances
		WHERE event_id = $1 AND user_id = $2
	`
	res, err := t.tx.ExecContext(ctx, query, t.event.ID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
