package postgres

import (
	"context"
	"database/sql"
	"errors"

	"chapterevents/internal/domain"
)

type venueRepository struct {
	DB *sql.DB
}

func NewVenueRepository(db *sql.DB) *venueRepository {
	return &venueRepository{
		DB: db,
	}
}

var _ domain.VenueRepository = (*venueRepository)(nil)

func (r *venueRepository) GetByID(ctx context.Context, id string) (*domain.Venue, error) {
	query := `
		SELECT id, name, street_address, city, region, postal_code
		FROM venues
		WHERE id = $1
	`
	v := &domain.Venue{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&v.ID, &v.Name, &v.StreetAddress, &v.City, &v.Region, &v.PostalCode,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}
