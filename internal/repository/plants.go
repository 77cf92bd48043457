package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/models"
)

const plantColumns = `
	id, plant_number, name, personal_name, common_name, scientific_name,
	location, watering_frequency_days, feeding_frequency_days,
	last_watered, last_fed, next_check, notes, image_url, status,
	created_at, updated_at`

// ListPlants returns every plant ordered by plant number
func (s *SQLStore) ListPlants(ctx context.Context) ([]models.Plant, error) {
	plants := []models.Plant{}
	query := `SELECT ` + plantColumns + ` FROM plants ORDER BY plant_number`
	if err := sqlx.SelectContext(ctx, s.q, &plants, query); err != nil {
		return nil, fmt.Errorf("listing plants: %w", err)
	}
	return plants, nil
}

// GetPlant retrieves a plant by ID
func (s *SQLStore) GetPlant(ctx context.Context, id uuid.UUID) (*models.Plant, error) {
	var plant models.Plant
	query := s.q.Rebind(`SELECT ` + plantColumns + ` FROM plants WHERE id = ?`)
	err := sqlx.GetContext(ctx, s.q, &plant, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlantNotFound
		}
		return nil, fmt.Errorf("getting plant %s: %w", id, err)
	}
	return &plant, nil
}

// PlantNumbers returns every plant number currently in use
func (s *SQLStore) PlantNumbers(ctx context.Context) ([]int, error) {
	numbers := []int{}
	if err := sqlx.SelectContext(ctx, s.q, &numbers, `SELECT plant_number FROM plants`); err != nil {
		return nil, fmt.Errorf("listing plant numbers: %w", err)
	}
	return numbers, nil
}

// InsertPlant stores a new plant. A nil ID is replaced with a fresh one.
func (s *SQLStore) InsertPlant(ctx context.Context, plant *models.Plant) error {
	if plant.ID == uuid.Nil {
		plant.ID = uuid.New()
	}

	_, err := s.exec(ctx, `
		INSERT INTO plants (`+plantColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		plant.ID, plant.PlantNumber, plant.Name, plant.PersonalName, plant.CommonName, plant.ScientificName,
		plant.Location, plant.WateringFrequencyDays, plant.FeedingFrequencyDays,
		dbTimePtr(plant.LastWatered), dbTimePtr(plant.LastFed), dbTimePtr(plant.NextCheck),
		plant.Notes, plant.ImageURL, plant.Status,
		dbTime(plant.CreatedAt), dbTime(plant.UpdatedAt),
	)
	if err != nil {
		if isPlantNumberConflict(err) {
			return fmt.Errorf("inserting plant #%d: %w", plant.PlantNumber, ErrPlantNumberTaken)
		}
		return fmt.Errorf("inserting plant: %w", err)
	}
	return nil
}

// isPlantNumberConflict reports whether err is the plant_number unique
// violation on either backend.
func isPlantNumberConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23505 is unique_violation
		return pgErr.Code == "23505" && pgErr.ConstraintName == "plants_plant_number_key"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE &&
			strings.Contains(liteErr.Error(), "plants.plant_number")
	}
	return false
}

// UpdatePlant writes every mutable column of plant
func (s *SQLStore) UpdatePlant(ctx context.Context, plant *models.Plant) error {
	rows, err := s.exec(ctx, `
		UPDATE plants SET
			plant_number = ?, name = ?, personal_name = ?, common_name = ?, scientific_name = ?,
			location = ?, watering_frequency_days = ?, feeding_frequency_days = ?,
			last_watered = ?, last_fed = ?, next_check = ?,
			notes = ?, image_url = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		plant.PlantNumber, plant.Name, plant.PersonalName, plant.CommonName, plant.ScientificName,
		plant.Location, plant.WateringFrequencyDays, plant.FeedingFrequencyDays,
		dbTimePtr(plant.LastWatered), dbTimePtr(plant.LastFed), dbTimePtr(plant.NextCheck),
		plant.Notes, plant.ImageURL, plant.Status, dbTime(plant.UpdatedAt),
		plant.ID,
	)
	if err != nil {
		return fmt.Errorf("updating plant %s: %w", plant.ID, err)
	}
	if rows == 0 {
		return ErrPlantNotFound
	}
	return nil
}

// DeletePlant removes a plant and all of its care logs
func (s *SQLStore) DeletePlant(ctx context.Context, id uuid.UUID) error {
	return s.InTx(ctx, func(st Store) error {
		tx := st.(*SQLStore)

		if _, err := tx.exec(ctx, `DELETE FROM care_logs WHERE plant_id = ?`, id); err != nil {
			return fmt.Errorf("deleting care logs for plant %s: %w", id, err)
		}

		rows, err := tx.exec(ctx, `DELETE FROM plants WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("deleting plant %s: %w", id, err)
		}
		if rows == 0 {
			return ErrPlantNotFound
		}
		return nil
	})
}
