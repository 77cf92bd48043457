package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/models"
)

var (
	ErrPlantNotFound    = errors.New("plant not found")
	ErrCareLogNotFound  = errors.New("care log not found")
	ErrLocationNotFound = errors.New("location not found")
	ErrLocationExists   = errors.New("location already exists")
	ErrPlantNumberTaken = errors.New("plant number already in use")
)

// Store is the persistence contract for plants, care logs and custom
// locations. SQLStore is its only implementation.
type Store interface {
	ListPlants(ctx context.Context) ([]models.Plant, error)
	GetPlant(ctx context.Context, id uuid.UUID) (*models.Plant, error)
	PlantNumbers(ctx context.Context) ([]int, error)
	InsertPlant(ctx context.Context, plant *models.Plant) error
	UpdatePlant(ctx context.Context, plant *models.Plant) error
	DeletePlant(ctx context.Context, id uuid.UUID) error

	ListCareLogs(ctx context.Context, plantID uuid.UUID, kind models.CareKind) ([]models.CareLog, error)
	ListAllCareLogs(ctx context.Context) ([]models.CareLog, error)
	GetCareLog(ctx context.Context, kind models.CareKind, id uuid.UUID) (*models.CareLog, error)
	InsertCareLog(ctx context.Context, log *models.CareLog) error
	DeleteCareLog(ctx context.Context, kind models.CareKind, id uuid.UUID) error

	ListLocations(ctx context.Context) ([]models.Location, error)
	InsertLocation(ctx context.Context, loc *models.Location) error
	DeleteLocation(ctx context.Context, id uuid.UUID) error

	// DeleteAll wipes every plant, care log and location.
	DeleteAll(ctx context.Context) error

	// InTx runs fn against a Store bound to a single transaction. Nested
	// calls reuse the outer transaction.
	InTx(ctx context.Context, fn func(Store) error) error
}

// SQLStore implements Store on top of sqlx. Queries are written with ?
// placeholders and rebound for the active driver.
type SQLStore struct {
	db *sqlx.DB
	q  sqlx.ExtContext
}

// NewSQLStore wraps an open database handle.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db, q: db}
}

// InTx implements Store.
func (s *SQLStore) InTx(ctx context.Context, fn func(Store) error) error {
	if _, ok := s.q.(*sqlx.Tx); ok {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&SQLStore{db: s.db, q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DeleteAll implements Store.
func (s *SQLStore) DeleteAll(ctx context.Context) error {
	return s.InTx(ctx, func(st Store) error {
		tx := st.(*SQLStore)
		for _, table := range []string{"care_logs", "plants", "locations"} {
			if _, err := tx.q.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clearing %s: %w", table, err)
			}
		}
		return nil
	})
}

func (s *SQLStore) exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	result, err := s.q.ExecContext(ctx, s.q.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// dbTime normalises timestamps so both drivers round-trip them identically.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func dbTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := dbTime(*t)
	return &v
}
