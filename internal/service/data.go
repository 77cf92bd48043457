package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/models"
	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/repository"
)

// ListLocations returns the custom location names
func (g *Garden) ListLocations(ctx context.Context) ([]models.Location, error) {
	return g.store.ListLocations(ctx)
}

// CreateLocation adds a custom location
func (g *Garden) CreateLocation(ctx context.Context, req models.LocationCreateRequest) (*models.Location, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, Invalid("name", "is required")
	}

	loc := &models.Location{Name: name, CreatedAt: g.clock()}
	if err := g.store.InsertLocation(ctx, loc); err != nil {
		return nil, err
	}
	return loc, nil
}

// DeleteLocation removes a custom location
func (g *Garden) DeleteLocation(ctx context.Context, id uuid.UUID) error {
	return g.store.DeleteLocation(ctx, id)
}

// Export returns the complete data set: plants, every care log and the
// custom locations.
func (g *Garden) Export(ctx context.Context) (*models.DataExport, error) {
	out := &models.DataExport{
		Version:    models.ExportVersion,
		ExportedAt: g.clock(),
	}

	err := g.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		if out.Plants, err = tx.ListPlants(ctx); err != nil {
			return err
		}
		if out.CareLogs, err = tx.ListAllCareLogs(ctx); err != nil {
			return err
		}
		out.Locations, err = tx.ListLocations(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func validateImport(data *models.DataExport) error {
	v := &ValidationError{}

	if data.Version != models.ExportVersion {
		v.add("version", fmt.Sprintf("unsupported export version %d", data.Version))
	}

	plantIDs := make(map[uuid.UUID]bool, len(data.Plants))
	numbers := make(map[int]bool, len(data.Plants))
	for i, p := range data.Plants {
		field := fmt.Sprintf("plants[%d]", i)
		if p.ID == uuid.Nil {
			v.add(field+".id", "is required")
		} else if plantIDs[p.ID] {
			v.add(field+".id", "is duplicated")
		}
		plantIDs[p.ID] = true

		if p.PlantNumber < 1 {
			v.add(field+".plantNumber", "must be positive")
		} else if numbers[p.PlantNumber] {
			v.add(field+".plantNumber", "is duplicated")
		}
		numbers[p.PlantNumber] = true

		if strings.TrimSpace(p.PersonalName) == "" {
			v.add(field+".personalName", "is required")
		}
		if p.WateringFrequencyDays < 1 || p.WateringFrequencyDays > maxFrequencyDays {
			v.add(field+".wateringFrequencyDays", "must be between 1 and 365 days")
		}
		if p.FeedingFrequencyDays < 1 || p.FeedingFrequencyDays > maxFrequencyDays {
			v.add(field+".feedingFrequencyDays", "must be between 1 and 365 days")
		}
		if !models.ValidStatus(p.Status) {
			v.add(field+".status", "is not a known status")
		}
	}

	logIDs := make(map[uuid.UUID]bool, len(data.CareLogs))
	for i, l := range data.CareLogs {
		field := fmt.Sprintf("careLogs[%d]", i)
		if l.ID == uuid.Nil {
			v.add(field+".id", "is required")
		} else if logIDs[l.ID] {
			v.add(field+".id", "is duplicated")
		}
		logIDs[l.ID] = true

		if _, err := models.ParseCareKind(string(l.Kind)); err != nil {
			v.add(field+".kind", "is not a known care kind")
		}
		if !plantIDs[l.PlantID] {
			v.add(field+".plantId", "does not reference an imported plant")
		}
	}

	// Location names are unique ignoring case, as in LocationExists.
	names := make(map[string]bool, len(data.Locations))
	locationIDs := make(map[uuid.UUID]bool, len(data.Locations))
	for i, l := range data.Locations {
		field := fmt.Sprintf("locations[%d]", i)
		if l.ID != uuid.Nil {
			if locationIDs[l.ID] {
				v.add(field+".id", "is duplicated")
			}
			locationIDs[l.ID] = true
		}

		name := strings.ToLower(strings.TrimSpace(l.Name))
		if name == "" {
			v.add(field+".name", "is required")
			continue
		}
		if names[name] {
			v.add(field+".name", "is duplicated")
		}
		names[name] = true
	}

	return v.err()
}

// Import replaces all stored data with data, in one transaction. IDs,
// plant numbers and timestamps are kept as exported.
func (g *Garden) Import(ctx context.Context, data *models.DataExport) (*models.ImportSummary, error) {
	if err := validateImport(data); err != nil {
		return nil, err
	}

	err := g.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.DeleteAll(ctx); err != nil {
			return err
		}
		for i := range data.Plants {
			p := data.Plants[i]
			if p.Name == "" {
				p.Name = p.PersonalName
			}
			if err := tx.InsertPlant(ctx, &p); err != nil {
				return err
			}
		}
		for i := range data.CareLogs {
			if err := tx.InsertCareLog(ctx, &data.CareLogs[i]); err != nil {
				return err
			}
		}
		for i := range data.Locations {
			if err := tx.InsertLocation(ctx, &data.Locations[i]); err != nil {
				return fmt.Errorf("importing location %q: %w", data.Locations[i].Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary := &models.ImportSummary{
		Plants:    len(data.Plants),
		CareLogs:  len(data.CareLogs),
		Locations: len(data.Locations),
	}
	g.logger.Info("Data imported",
		zap.Int("plants", summary.Plants),
		zap.Int("care_logs", summary.CareLogs),
		zap.Int("locations", summary.Locations))
	return summary, nil
}

func (g *Garden) demoPlant() models.Plant {
	now := g.clock()
	scientific := "Monstera deliciosa"
	p := models.Plant{
		PlantNumber:           1,
		Name:                  "Demo Plant",
		PersonalName:          "Demo Plant",
		CommonName:            "Swiss Cheese Plant",
		ScientificName:        &scientific,
		Location:              "Living Room",
		WateringFrequencyDays: models.DefaultWateringFrequencyDays,
		FeedingFrequencyDays:  models.DefaultFeedingFrequencyDays,
		Notes:                 "Demo plant. Try logging a watering to see reminders update.",
		Status:                models.StatusHealthy,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	return p
}

// EnsureDemoPlant seeds plant number 1 when demo mode is on and the number
// is free. It returns whether a plant was created.
func (g *Garden) EnsureDemoPlant(ctx context.Context) (bool, error) {
	if !g.demoMode {
		return false, nil
	}

	created := false
	err := g.store.InTx(ctx, func(tx repository.Store) error {
		numbers, err := tx.PlantNumbers(ctx)
		if err != nil {
			return err
		}
		for _, n := range numbers {
			if n == 1 {
				return nil
			}
		}
		p := g.demoPlant()
		created = true
		return tx.InsertPlant(ctx, &p)
	})
	if err != nil {
		return false, err
	}

	if created {
		g.logger.Info("Demo plant seeded")
	}
	return created, nil
}

// ResetDemo wipes all data and reseeds the demo plant.
func (g *Garden) ResetDemo(ctx context.Context) error {
	if !g.demoMode {
		return ErrDemoModeDisabled
	}

	return g.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.DeleteAll(ctx); err != nil {
			return err
		}
		p := g.demoPlant()
		return tx.InsertPlant(ctx, &p)
	})
}
