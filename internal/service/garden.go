package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/care"
	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/models"
	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/repository"
)

const (
	maxFrequencyDays = 365

	// maxNumberAttempts bounds CreatePlant retries on plant number conflicts.
	maxNumberAttempts = 3
)

// ImageRemover deletes a stored plant image by its public URL.
type ImageRemover interface {
	Remove(url string) error
}

// Garden implements the plant registry, care logging, reminders, bulk care
// and data export on top of a repository.Store.
type Garden struct {
	store    repository.Store
	logger   *zap.Logger
	images   ImageRemover
	demoMode bool
	now      func() time.Time
}

// Option configures a Garden
type Option func(*Garden)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Garden) { g.now = now }
}

// WithDemoMode protects plant number 1 from deletion and enables demo
// seeding.
func WithDemoMode(enabled bool) Option {
	return func(g *Garden) { g.demoMode = enabled }
}

// WithImageRemover lets DeletePlant clean up the plant's stored image.
func WithImageRemover(r ImageRemover) Option {
	return func(g *Garden) { g.images = r }
}

// NewGarden creates the garden service
func NewGarden(store repository.Store, logger *zap.Logger, opts ...Option) *Garden {
	g := &Garden{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// DemoMode reports whether demo protections are active.
func (g *Garden) DemoMode() bool {
	return g.demoMode
}

func (g *Garden) clock() time.Time {
	return normalize(g.now())
}

func normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func normalizePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := normalize(*t)
	return &v
}

func (g *Garden) respond(p models.Plant, now time.Time) models.PlantResponse {
	return models.PlantResponse{
		Plant:         p,
		NeedsWatering: care.NeedsCare(p.LastWatered, p.WateringFrequencyDays, now),
		NeedsFeeding:  care.NeedsCare(p.LastFed, p.FeedingFrequencyDays, now),
	}
}

func recomputeNextCheck(p *models.Plant) {
	p.NextCheck = care.NextCheck(p.LastWatered, p.LastFed, p.WateringFrequencyDays, p.FeedingFrequencyDays)
}

func validFrequency(v *ValidationError, field string, days int) {
	if days < 1 || days > maxFrequencyDays {
		v.add(field, "must be between 1 and 365 days")
	}
}

// ListPlants returns every plant ordered by plant number
func (g *Garden) ListPlants(ctx context.Context) ([]models.PlantResponse, error) {
	plants, err := g.store.ListPlants(ctx)
	if err != nil {
		return nil, err
	}

	now := g.clock()
	out := make([]models.PlantResponse, 0, len(plants))
	for _, p := range plants {
		out = append(out, g.respond(p, now))
	}
	return out, nil
}

// GetPlant returns one plant or repository.ErrPlantNotFound
func (g *Garden) GetPlant(ctx context.Context, id uuid.UUID) (*models.PlantResponse, error) {
	plant, err := g.store.GetPlant(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := g.respond(*plant, g.clock())
	return &resp, nil
}

// CreatePlant validates req, applies defaults and assigns the lowest free
// plant number.
func (g *Garden) CreatePlant(ctx context.Context, req models.PlantCreateRequest) (*models.PlantResponse, error) {
	v := &ValidationError{}

	personalName := strings.TrimSpace(req.PersonalName)
	if personalName == "" {
		v.add("personalName", "is required")
	}

	watering := models.DefaultWateringFrequencyDays
	if req.WateringFrequencyDays != nil {
		watering = *req.WateringFrequencyDays
		validFrequency(v, "wateringFrequencyDays", watering)
	}

	feeding := models.DefaultFeedingFrequencyDays
	if req.FeedingFrequencyDays != nil {
		feeding = *req.FeedingFrequencyDays
		validFrequency(v, "feedingFrequencyDays", feeding)
	}

	status := req.Status
	if status == "" {
		status = models.StatusHealthy
	} else if !models.ValidStatus(status) {
		v.add("status", "must be one of healthy, check_soon, needs_water, unhealthy")
	}

	if err := v.err(); err != nil {
		return nil, err
	}

	now := g.clock()
	plant := models.Plant{
		Name:                  personalName,
		PersonalName:          personalName,
		CommonName:            strings.TrimSpace(req.CommonName),
		ScientificName:        req.ScientificName,
		Location:              strings.TrimSpace(req.Location),
		WateringFrequencyDays: watering,
		FeedingFrequencyDays:  feeding,
		LastWatered:           normalizePtr(req.LastWatered),
		LastFed:               normalizePtr(req.LastFed),
		Notes:                 req.Notes,
		ImageURL:              req.ImageURL,
		Status:                status,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	recomputeNextCheck(&plant)

	// A concurrent create can commit the same lowest free number first; the
	// losing insert picks again.
	var err error
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		err = g.store.InTx(ctx, func(tx repository.Store) error {
			numbers, err := tx.PlantNumbers(ctx)
			if err != nil {
				return err
			}
			plant.PlantNumber = care.NextPlantNumber(numbers)
			return tx.InsertPlant(ctx, &plant)
		})
		if !errors.Is(err, repository.ErrPlantNumberTaken) {
			break
		}
		g.logger.Warn("Plant number taken, retrying",
			zap.Int("plant_number", plant.PlantNumber),
			zap.Int("attempt", attempt))
	}
	if err != nil {
		return nil, err
	}

	g.logger.Info("Plant created",
		zap.String("plant_id", plant.ID.String()),
		zap.Int("plant_number", plant.PlantNumber))

	resp := g.respond(plant, now)
	return &resp, nil
}

// UpdatePlant applies a partial patch. Setting personalName also rewrites
// the legacy name field.
func (g *Garden) UpdatePlant(ctx context.Context, id uuid.UUID, req models.PlantUpdateRequest) (*models.PlantResponse, error) {
	v := &ValidationError{}

	if req.PersonalName != nil && strings.TrimSpace(*req.PersonalName) == "" {
		v.add("personalName", "must not be empty")
	}
	if req.WateringFrequencyDays != nil {
		validFrequency(v, "wateringFrequencyDays", *req.WateringFrequencyDays)
	}
	if req.FeedingFrequencyDays != nil {
		validFrequency(v, "feedingFrequencyDays", *req.FeedingFrequencyDays)
	}
	if req.Status != nil && !models.ValidStatus(*req.Status) {
		v.add("status", "must be one of healthy, check_soon, needs_water, unhealthy")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	now := g.clock()
	var updated models.Plant

	err := g.store.InTx(ctx, func(tx repository.Store) error {
		plant, err := tx.GetPlant(ctx, id)
		if err != nil {
			return err
		}

		if req.PersonalName != nil {
			name := strings.TrimSpace(*req.PersonalName)
			plant.PersonalName = name
			plant.Name = name
		}
		if req.CommonName != nil {
			plant.CommonName = strings.TrimSpace(*req.CommonName)
		}
		if req.ScientificName.Set {
			plant.ScientificName = req.ScientificName.Value
		}
		if req.Location != nil {
			plant.Location = strings.TrimSpace(*req.Location)
		}
		if req.WateringFrequencyDays != nil {
			plant.WateringFrequencyDays = *req.WateringFrequencyDays
		}
		if req.FeedingFrequencyDays != nil {
			plant.FeedingFrequencyDays = *req.FeedingFrequencyDays
		}
		if req.LastWatered.Set {
			plant.LastWatered = normalizePtr(req.LastWatered.Value)
		}
		if req.LastFed.Set {
			plant.LastFed = normalizePtr(req.LastFed.Value)
		}
		if req.Notes != nil {
			plant.Notes = *req.Notes
		}
		if req.ImageURL.Set {
			plant.ImageURL = req.ImageURL.Value
		}
		if req.Status != nil {
			plant.Status = *req.Status
		}

		recomputeNextCheck(plant)
		plant.UpdatedAt = now

		if err := tx.UpdatePlant(ctx, plant); err != nil {
			return err
		}
		updated = *plant
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := g.respond(updated, now)
	return &resp, nil
}

// DeletePlant removes a plant and its care logs. In demo mode plant number
// 1 is protected and ErrDemoPlantProtected is returned.
func (g *Garden) DeletePlant(ctx context.Context, id uuid.UUID) error {
	var imageURL *string

	err := g.store.InTx(ctx, func(tx repository.Store) error {
		plant, err := tx.GetPlant(ctx, id)
		if err != nil {
			return err
		}
		if g.demoMode && plant.PlantNumber == 1 {
			return ErrDemoPlantProtected
		}
		imageURL = plant.ImageURL
		return tx.DeletePlant(ctx, id)
	})
	if err != nil {
		return err
	}

	if imageURL != nil && g.images != nil {
		if err := g.images.Remove(*imageURL); err != nil {
			g.logger.Warn("Failed to remove plant image",
				zap.String("plant_id", id.String()),
				zap.String("image_url", *imageURL),
				zap.Error(err))
		}
	}

	g.logger.Info("Plant deleted", zap.String("plant_id", id.String()))
	return nil
}

// isNotFound reports whether err is one of the repository not-found errors.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrPlantNotFound) ||
		errors.Is(err, repository.ErrCareLogNotFound) ||
		errors.Is(err, repository.ErrLocationNotFound)
}
