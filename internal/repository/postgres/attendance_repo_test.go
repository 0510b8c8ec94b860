package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"chapterevents/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var eventCols = []string{
	"id", "chapter_id", "name", "description", "url", "capacity", "invite_only", "canceled",
	"start_at", "ends_at", "venue_type", "venue_id", "streaming_url", "created_at", "updated_at",
}

var recordCols = []string{
	"event_id", "user_id", "seq", "status", "subscribed", "role", "created_at", "updated_at",
}

func eventRow(id string) *sqlmock.Rows {
	now := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(eventCols).AddRow(
		id, "chapter-1", "Go Meetup", "Monthly meetup", "https://example.org", 50, false, false,
		now, now.Add(2*time.Hour), "online", nil, "https://meet.example.org/go", now, now,
	)
}

func TestAttendanceRepository_WithEvent(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		fn      func(tx domain.AttendanceTx) error
		wantErr error
	}{
		{
			name: "locks event and commits",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT (.+) FROM events WHERE id = \$1 FOR UPDATE`).
					WithArgs("ev-1").
					WillReturnRows(eventRow("ev-1"))
				mock.ExpectCommit()
			},
			fn: func(tx domain.AttendanceTx) error {
				ev, err := tx.Event(ctx)
				require.NoError(t, err)
				require.Equal(t, "ev-1", ev.ID)
				require.Equal(t, 50, ev.Capacity)
				return nil
			},
		},
		{
			name: "missing event",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT (.+) FROM events WHERE id = \$1 FOR UPDATE`).
					WithArgs("ev-1").
					WillReturnError(sql.ErrNoRows)
				mock.ExpectRollback()
			},
			fn:      func(tx domain.AttendanceTx) error { return nil },
			wantErr: domain.ErrNotFound,
		},
		{
			name: "fn error rolls back",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT (.+) FROM events WHERE id = \$1 FOR UPDATE`).
					WithArgs("ev-1").
					WillReturnRows(eventRow("ev-1"))
				mock.ExpectRollback()
			},
			fn:      func(tx domain.AttendanceTx) error { return domain.ErrForbidden },
			wantErr: domain.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			store := NewAttendanceRepository(db)
			err = store.WithEvent(ctx, "ev-1", tt.fn)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAttendanceTx_CreateRecord(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM events WHERE id = \$1 FOR UPDATE`).
		WithArgs("ev-1").
		WillReturnRows(eventRow("ev-1"))
	mock.ExpectQuery(`INSERT INTO event_attendances`).
		WithArgs("ev-1", "user-1", "confirmed", true, "member", now, now).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(int64(7)))
	mock.ExpectCommit()

	store := NewAttendanceRepository(db)
	err = store.WithEvent(ctx, "ev-1", func(tx domain.AttendanceTx) error {
		rec := &domain.AttendanceRecord{
			EventID:    "ev-1",
			UserID:     "user-1",
			Status:     domain.StatusConfirmed,
			Subscribed: true,
			Role:       domain.RoleMember,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := tx.CreateRecord(ctx, rec); err != nil {
			return err
		}
		require.Equal(t, int64(7), rec.Seq)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceTx_WaitlistOrdering(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(recordCols).
		AddRow("ev-1", "user-2", int64(2), "waitlisted", true, "member", now, now).
		AddRow("ev-1", "user-5", int64(5), "waitlisted", false, "member", now, now)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM events WHERE id = \$1 FOR UPDATE`).
		WithArgs("ev-1").
		WillReturnRows(eventRow("ev-1"))
	mock.ExpectQuery(`ORDER BY seq ASC`).
		WithArgs("ev-1", "waitlisted").
		WillReturnRows(rows)
	mock.ExpectCommit()

	store := NewAttendanceRepository(db)
	err = store.WithEvent(ctx, "ev-1", func(tx domain.AttendanceTx) error {
		waitlist, err := tx.Waitlist(ctx)
		require.NoError(t, err)
		require.Len(t, waitlist, 2)
		require.Equal(t, "user-2", waitlist[0].UserID)
		require.Equal(t, "user-5", waitlist[1].UserID)
		require.Less(t, waitlist[0].Seq, waitlist[1].Seq)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceTx_SetStatusAndDelete(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	updated := sqlmock.NewRows(recordCols).
		AddRow("ev-1", "user-1", int64(1), "declined", true, "member", now, now)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM events WHERE id = \$1 FOR UPDATE`).
		WithArgs("ev-1").
		WillReturnRows(eventRow("ev-1"))
	mock.ExpectQuery(`UPDATE event_attendances`).
		WithArgs("ev-1", "user-1", "declined").
		WillReturnRows(updated)
	mock.ExpectExec(`DELETE FROM event_attendances`).
		WithArgs("ev-1", "user-9").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	store := NewAttendanceRepository(db)
	err = store.WithEvent(ctx, "ev-1", func(tx domain.AttendanceTx) error {
		rec, err := tx.SetStatus(ctx, "user-1", domain.StatusDeclined)
		require.NoError(t, err)
		require.Equal(t, domain.StatusDeclined, rec.Status)

		return tx.DeleteRecord(ctx, "user-9")
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepository_ListByEvent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantLen int
		wantErr bool
	}{
		{
			name: "joined rows in arrival order",
			mock: func(mock sqlmock.Sqlmock) {
				cols := append(append([]string{}, recordCols...), "id", "email", "first_name", "last_name")
				rows := sqlmock.NewRows(cols).
					AddRow("ev-1", "user-1", int64(1), "confirmed", true, "member", now, now,
						"user-1", "ada@example.org", "Ada", "Lovelace").
					AddRow("ev-1", "user-2", int64(2), "waitlisted", false, "member", now, now,
						"user-2", "alan@example.org", "Alan", "Turing")
				mock.ExpectQuery(`JOIN users u ON u.id = a.user_id`).
					WithArgs("ev-1").
					WillReturnRows(rows)
			},
			wantLen: 2,
		},
		{
			name: "no attendees",
			mock: func(mock sqlmock.Sqlmock) {
				cols := append(append([]string{}, recordCols...), "id", "email", "first_name", "last_name")
				mock.ExpectQuery(`JOIN users u ON u.id = a.user_id`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows(cols))
			},
			wantLen: 0,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`JOIN users u ON u.id = a.user_id`).
					WillReturnError(errors.New("connection reset"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewAttendanceRepository(db)
			attendees, err := repo.ListByEvent(ctx, "ev-1")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, attendees, tt.wantLen)
			if tt.wantLen == 2 {
				require.Equal(t, "ada@example.org", attendees[0].User.Email)
				require.Equal(t, domain.StatusWaitlisted, attendees[1].Record.Status)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
