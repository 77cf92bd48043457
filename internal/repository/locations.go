package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/models"
)

// ListLocations returns the custom locations sorted by name
func (s *SQLStore) ListLocations(ctx context.Context) ([]models.Location, error) {
	locations := []models.Location{}
	query := `SELECT id, name, created_at FROM locations ORDER BY name`
	if err := sqlx.SelectContext(ctx, s.q, &locations, query); err != nil {
		return nil, fmt.Errorf("listing locations: %w", err)
	}
	return locations, nil
}

// LocationExists checks if a name is already taken, ignoring case
func (s *SQLStore) LocationExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	query := s.q.Rebind(`SELECT EXISTS(SELECT 1 FROM locations WHERE LOWER(name) = LOWER(?))`)
	err := sqlx.GetContext(ctx, s.q, &exists, query, name)
	return exists, err
}

// InsertLocation stores a new custom location
func (s *SQLStore) InsertLocation(ctx context.Context, loc *models.Location) error {
	exists, err := s.LocationExists(ctx, loc.Name)
	if err != nil {
		return fmt.Errorf("checking location %q: %w", loc.Name, err)
	}
	if exists {
		return ErrLocationExists
	}

	if loc.ID == uuid.Nil {
		loc.ID = uuid.New()
	}

	_, err = s.exec(ctx, `INSERT INTO locations (id, name, created_at) VALUES (?, ?, ?)`,
		loc.ID, loc.Name, dbTime(loc.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting location %q: %w", loc.Name, err)
	}
	return nil
}

// DeleteLocation removes a custom location. Plants keep their location text.
func (s *SQLStore) DeleteLocation(ctx context.Context, id uuid.UUID) error {
	rows, err := s.exec(ctx, `DELETE FROM locations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting location %s: %w", id, err)
	}
	if rows == 0 {
		return ErrLocationNotFound
	}
	return nil
}
