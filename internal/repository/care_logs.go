package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/models"
)

const careLogColumns = `
	id, plant_id, kind, date, amount, method, fertilizer, pot_size,
	soil_type, parts_removed, reason, notes, created_at`

// ListCareLogs returns one plant's logs of a kind, newest first
func (s *SQLStore) ListCareLogs(ctx context.Context, plantID uuid.UUID, kind models.CareKind) ([]models.CareLog, error) {
	logs := []models.CareLog{}
	query := s.q.Rebind(`
		SELECT ` + careLogColumns + `
		FROM care_logs
		WHERE plant_id = ? AND kind = ?
		ORDER BY date DESC, created_at DESC`)
	if err := sqlx.SelectContext(ctx, s.q, &logs, query, plantID, string(kind)); err != nil {
		return nil, fmt.Errorf("listing %s logs for plant %s: %w", kind, plantID, err)
	}
	return logs, nil
}

// ListAllCareLogs returns every log of every kind in insertion order
func (s *SQLStore) ListAllCareLogs(ctx context.Context) ([]models.CareLog, error) {
	logs := []models.CareLog{}
	query := `SELECT ` + careLogColumns + ` FROM care_logs ORDER BY created_at, id`
	if err := sqlx.SelectContext(ctx, s.q, &logs, query); err != nil {
		return nil, fmt.Errorf("listing care logs: %w", err)
	}
	return logs, nil
}

// GetCareLog retrieves a log by kind and ID
func (s *SQLStore) GetCareLog(ctx context.Context, kind models.CareKind, id uuid.UUID) (*models.CareLog, error) {
	var log models.CareLog
	query := s.q.Rebind(`SELECT ` + careLogColumns + ` FROM care_logs WHERE id = ? AND kind = ?`)
	err := sqlx.GetContext(ctx, s.q, &log, query, id, string(kind))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCareLogNotFound
		}
		return nil, fmt.Errorf("getting %s log %s: %w", kind, id, err)
	}
	return &log, nil
}

// InsertCareLog appends a log row. A nil ID is replaced with a fresh one.
func (s *SQLStore) InsertCareLog(ctx context.Context, log *models.CareLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}

	_, err := s.exec(ctx, `
		INSERT INTO care_logs (`+careLogColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID, log.PlantID, string(log.Kind), dbTime(log.Date),
		log.Amount, log.Method, log.Fertilizer, log.PotSize,
		log.SoilType, log.PartsRemoved, log.Reason, log.Notes, dbTime(log.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting %s log: %w", log.Kind, err)
	}
	return nil
}

// DeleteCareLog removes a single log row. The parent plant is not touched.
func (s *SQLStore) DeleteCareLog(ctx context.Context, kind models.CareKind, id uuid.UUID) error {
	rows, err := s.exec(ctx, `DELETE FROM care_logs WHERE id = ? AND kind = ?`, id, string(kind))
	if err != nil {
		return fmt.Errorf("deleting %s log %s: %w", kind, id, err)
	}
	if rows == 0 {
		return ErrCareLogNotFound
	}
	return nil
}
