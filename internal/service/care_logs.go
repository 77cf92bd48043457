package service

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/models"
	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/repository"
)

// ListCareLogs returns a plant's logs of one kind, newest first
func (g *Garden) ListCareLogs(ctx context.Context, plantID uuid.UUID, kind models.CareKind) ([]models.CareLog, error) {
	if _, err := g.store.GetPlant(ctx, plantID); err != nil {
		return nil, err
	}
	return g.store.ListCareLogs(ctx, plantID, kind)
}

func validateCareDetails(kind models.CareKind, req models.CareLogCreateRequest) error {
	v := &ValidationError{}

	allowed := models.AllowedDetails[kind]
	supplied := req.DetailFields()

	names := make([]string, 0, len(supplied))
	for name := range supplied {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !slices.Contains(allowed, name) {
			v.add(name, fmt.Sprintf("is not applicable to %s logs", kind))
		}
	}
	return v.err()
}

// LogCare appends a care log to a plant. Watering and feeding logs also move
// the plant's last-event field to the log date and recompute nextCheck, in
// the same transaction.
func (g *Garden) LogCare(ctx context.Context, plantID uuid.UUID, kind models.CareKind, req models.CareLogCreateRequest) (*models.CareLog, error) {
	if err := validateCareDetails(kind, req); err != nil {
		return nil, err
	}

	now := g.clock()
	var log *models.CareLog

	err := g.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		log, err = g.logCare(ctx, tx, plantID, kind, req, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	g.logger.Debug("Care logged",
		zap.String("plant_id", plantID.String()),
		zap.String("kind", string(kind)))
	return log, nil
}

func (g *Garden) logCare(ctx context.Context, tx repository.Store, plantID uuid.UUID, kind models.CareKind, req models.CareLogCreateRequest, now time.Time) (*models.CareLog, error) {
	plant, err := tx.GetPlant(ctx, plantID)
	if err != nil {
		return nil, err
	}

	date := now
	if req.Date != nil {
		date = normalize(*req.Date)
	}

	log := &models.CareLog{
		PlantID:      plantID,
		Kind:         kind,
		Date:         date,
		Amount:       req.Amount,
		Method:       req.Method,
		Fertilizer:   req.Fertilizer,
		PotSize:      req.PotSize,
		SoilType:     req.SoilType,
		PartsRemoved: req.PartsRemoved,
		Reason:       req.Reason,
		Notes:        req.Notes,
		CreatedAt:    now,
	}
	if err := tx.InsertCareLog(ctx, log); err != nil {
		return nil, err
	}

	if !kind.UpdatesPlant() {
		return log, nil
	}

	switch kind {
	case models.CareWatering:
		plant.LastWatered = &date
	case models.CareFeeding:
		plant.LastFed = &date
	}
	recomputeNextCheck(plant)
	plant.UpdatedAt = now

	if err := tx.UpdatePlant(ctx, plant); err != nil {
		return nil, err
	}
	return log, nil
}

// DeleteCareLog removes one log and returns it as it was stored. The
// plant's last-event fields are left as they are, even if they were set by
// this log.
func (g *Garden) DeleteCareLog(ctx context.Context, kind models.CareKind, id uuid.UUID) (*models.CareLog, error) {
	var deleted *models.CareLog

	err := g.store.InTx(ctx, func(tx repository.Store) error {
		log, err := tx.GetCareLog(ctx, kind, id)
		if err != nil {
			return err
		}
		if err := tx.DeleteCareLog(ctx, kind, id); err != nil {
			return err
		}
		deleted = log
		return nil
	})
	if err != nil {
		return nil, err
	}

	g.logger.Info("Care log deleted",
		zap.String("log_id", id.String()),
		zap.String("plant_id", deleted.PlantID.String()),
		zap.String("kind", string(kind)))
	return deleted, nil
}

// BulkCare applies the same watering or feeding event to many plants. Each
// plant is updated in its own transaction; a failure on one plant is
// recorded and the rest continue.
func (g *Garden) BulkCare(ctx context.Context, req models.BulkCareRequest) (*models.BulkCareResult, error) {
	v := &ValidationError{}
	if !req.Kind.UpdatesPlant() {
		v.add("kind", "must be watering or feeding")
	}
	if len(req.PlantIDs) == 0 {
		v.add("plantIds", "must contain at least one plant id")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	now := g.clock()
	logReq := models.CareLogCreateRequest{Date: req.Date, Notes: req.Notes}

	result := &models.BulkCareResult{
		Kind:      req.Kind,
		Succeeded: []uuid.UUID{},
		Failed:    []models.BulkCareFailure{},
		Logs:      []models.CareLog{},
	}

	for _, id := range req.PlantIDs {
		var log *models.CareLog
		err := g.store.InTx(ctx, func(tx repository.Store) error {
			var err error
			log, err = g.logCare(ctx, tx, id, req.Kind, logReq, now)
			return err
		})
		if err != nil {
			msg := "internal error"
			if isNotFound(err) {
				msg = err.Error()
			} else {
				g.logger.Error("Bulk care failed for plant",
					zap.String("plant_id", id.String()),
					zap.String("kind", string(req.Kind)),
					zap.Error(err))
			}
			result.Failed = append(result.Failed, models.BulkCareFailure{PlantID: id, Error: msg})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
		result.Logs = append(result.Logs, *log)
	}

	g.logger.Info("Bulk care applied",
		zap.String("kind", string(req.Kind)),
		zap.Int("succeeded", len(result.Succeeded)),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}

// Reminders lists the plants whose watering or feeding is due now.
func (g *Garden) Reminders(ctx context.Context) (*models.Reminders, error) {
	plants, err := g.ListPlants(ctx)
	if err != nil {
		return nil, err
	}

	r := &models.Reminders{
		GeneratedAt: g.clock(),
		Watering:    []models.PlantResponse{},
		Feeding:     []models.PlantResponse{},
	}
	for _, p := range plants {
		if p.NeedsWatering {
			r.Watering = append(r.Watering, p)
		}
		if p.NeedsFeeding {
			r.Feeding = append(r.Feeding, p)
		}
	}
	return r, nil
}
