package postgres

import (
	"context"
	"database/sql"
	"errors"

	"chapterevents/internal/domain"
)

type chapterMemberRepository struct {
	DB *sql.DB
}

func NewChapterMemberRepository(db *sql.DB) *chapterMemberRepository {
	return &chapterMemberRepository{
		DB: db,
	}
}

var _ domain.ChapterMemberRepository = (*chapterMemberRepository)(nil)

func (r *chapterMemberRepository) GetMembership(ctx context.Context, chapterID, userID string) (*domain.ChapterMember, error) {
	query := `
		SELECT chapter_id, user_id, subscribed, role
		FROM chapter_users
		WHERE chapter_id = $1 AND user_id = $2
	`
	m := &domain.ChapterMember{}
	err := r.DB.QueryRowContext(ctx, query, chapterID, userID).Scan(
		&m.ChapterID, &m.UserID, &m.Subscribed, &m.Role,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *chapterMemberRepository) ListAdministrators(ctx context.Context, chapterID string) ([]*domain.User, error) {
	query := `
		SELECT u.id, u.email, u.first_name, u.last_name, u.created_at, u.updated_at
		FROM chapter_users cu
		JOIN users u ON u.id = cu.user_id
		WHERE cu.chapter_id = $1 AND cu.role = $2 AND cu.subscribed = TRUE
	`
	rows, err := r.DB.QueryContext(ctx, query, chapterID, domain.RoleAdministrator)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admins []*domain.User
	for rows.Next() {
		u := &domain.User{}
		if err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		admins = append(admins, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return admins, nil
}
