package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/models"
	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/repository"
)

func TestWateringMovesNextCheck(t *testing.T) {
	ctx := context.Background()
	g, clock := newTestGarden(t)
	p := createPlant(t, g, "Monty")

	log, err := g.LogCare(ctx, p.ID, models.CareWatering, models.CareLogCreateRequest{Amount: strPtr("500ml")})
	require.NoError(t, err)
	assert.True(t, log.Date.Equal(start), "date defaults to now")
	assert.Equal(t, models.CareWatering, log.Kind)

	got, err := g.GetPlant(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastWatered)
	assert.True(t, got.LastWatered.Equal(start))
	require.NotNil(t, got.NextCheck)
	assert.True(t, got.NextCheck.Equal(start.AddDate(0, 0, 7)))
	assert.False(t, got.NeedsWatering)
	assert.True(t, got.NeedsFeeding, "never fed")

	clock.Advance(7*24*time.Hour - time.Hour)
	got, err = g.GetPlant(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.NeedsWatering, "six whole days elapsed")

	clock.Advance(time.Hour)
	got, err = g.GetPlant(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.NeedsWatering, "seven whole days elapsed")
}

func TestFeedingUsesEarlierDueDate(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGarden(t)

	watered := start.AddDate(0, 0, -1)
	p, err := g.CreatePlant(ctx, models.PlantCreateRequest{PersonalName: "Fern", LastWatered: &watered})
	require.NoError(t, err)

	fedAt := start.AddDate(0, 0, -10)
	_, err = g.LogCare(ctx, p.ID, models.CareFeeding, models.CareLogCreateRequest{
		Date:       timePtr(fedAt),
		Fertilizer: strPtr("liquid 10-10-10"),
	})
	require.NoError(t, err)

	got, err := g.GetPlant(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastFed)
	assert.True(t, got.LastFed.Equal(fedAt))
	// watering due in 6 days, feeding in 4
	assert.True(t, got.NextCheck.Equal(fedAt.AddDate(0, 0, 14)))
}

func TestOtherKindsLeavePlantAlone(t *testing.T) {
	ctx := context.Background()
	g, clock := newTestGarden(t)
	p := createPlant(t, g, "p")
	clock.Advance(time.Hour)

	for _, kind := range []models.CareKind{models.CareRepotting, models.CareSoilTopUp, models.CarePruning} {
		_, err := g.LogCare(ctx, p.ID, kind, models.CareLogCreateRequest{Reason: nil, Notes: "done"})
		require.NoError(t, err, kind)
	}

	got, err := g.GetPlant(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LastWatered)
	assert.Nil(t, got.LastFed)
	assert.True(t, got.UpdatedAt.Equal(start), "plant row untouched")

	logs, err := g.ListCareLogs(ctx, p.ID, models.CarePruning)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "done", logs[0].Notes)
}

func TestLogCareRejectsForeignDetails(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGarden(t)
	p := createPlant(t, g, "p")

	_, err := g.LogCare(ctx, p.ID, models.CareWatering, models.CareLogCreateRequest{
		PotSize:    strPtr("20cm"),
		Fertilizer: strPtr("slow release"),
	})
	assert.Equal(t, []string{"fertilizer", "potSize"}, fieldNames(t, err))

	logs, err := g.ListCareLogs(ctx, p.ID, models.CareWatering)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestLogCareUnknownPlant(t *testing.T) {
	g, _ := newTestGarden(t)

	_, err := g.LogCare(context.Background(), uuid.New(), models.CareWatering, models.CareLogCreateRequest{})
	assert.ErrorIs(t, err, repository.ErrPlantNotFound)

	_, err = g.ListCareLogs(context.Background(), uuid.New(), models.CareWatering)
	assert.ErrorIs(t, err, repository.ErrPlantNotFound)
}

func TestDeleteCareLogKeepsPlantFields(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGarden(t)
	p := createPlant(t, g, "p")

	log, err := g.LogCare(ctx, p.ID, models.CareWatering, models.CareLogCreateRequest{})
	require.NoError(t, err)

	_, err = g.DeleteCareLog(ctx, models.CareFeeding, log.ID)
	assert.ErrorIs(t, err, repository.ErrCareLogNotFound)

	deleted, err := g.DeleteCareLog(ctx, models.CareWatering, log.ID)
	require.NoError(t, err)
	assert.Equal(t, log.ID, deleted.ID)
	assert.Equal(t, p.ID, deleted.PlantID)

	_, err = g.DeleteCareLog(ctx, models.CareWatering, log.ID)
	assert.ErrorIs(t, err, repository.ErrCareLogNotFound)
	logs, err := g.ListCareLogs(ctx, p.ID, models.CareWatering)
	require.NoError(t, err)
	assert.Empty(t, logs)

	got, err := g.GetPlant(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastWatered, "lastWatered is not recomputed on log delete")
	assert.True(t, got.LastWatered.Equal(start))
}

func TestBulkCarePartialSuccess(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGarden(t)
	a := createPlant(t, g, "a")
	b := createPlant(t, g, "b")
	missing := uuid.New()

	result, err := g.BulkCare(ctx, models.BulkCareRequest{
		PlantIDs: []uuid.UUID{a.ID, missing, b.ID},
		Kind:     models.CareFeeding,
		Notes:    "spring feed",
	})
	require.NoError(t, err)

	assert.Equal(t, models.CareFeeding, result.Kind)
	assert.Equal(t, []uuid.UUID{a.ID, b.ID}, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, missing, result.Failed[0].PlantID)
	assert.Equal(t, repository.ErrPlantNotFound.Error(), result.Failed[0].Error)
	assert.Len(t, result.Logs, 2)

	for _, id := range []uuid.UUID{a.ID, b.ID} {
		got, err := g.GetPlant(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, got.LastFed)
		assert.True(t, got.LastFed.Equal(start))
		assert.False(t, got.NeedsFeeding)
	}
}

func TestBulkCareValidation(t *testing.T) {
	g, _ := newTestGarden(t)

	_, err := g.BulkCare(context.Background(), models.BulkCareRequest{Kind: models.CarePruning})
	assert.Equal(t, []string{"kind", "plantIds"}, fieldNames(t, err))
}

func TestReminders(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGarden(t)

	thirsty := createPlant(t, g, "thirsty")
	cared := createPlant(t, g, "cared")
	_, err := g.BulkCare(ctx, models.BulkCareRequest{PlantIDs: []uuid.UUID{cared.ID}, Kind: models.CareWatering})
	require.NoError(t, err)
	_, err = g.BulkCare(ctx, models.BulkCareRequest{PlantIDs: []uuid.UUID{cared.ID}, Kind: models.CareFeeding})
	require.NoError(t, err)

	r, err := g.Reminders(ctx)
	require.NoError(t, err)
	require.Len(t, r.Watering, 1)
	assert.Equal(t, thirsty.ID, r.Watering[0].ID)
	require.Len(t, r.Feeding, 1)
	assert.Equal(t, thirsty.ID, r.Feeding[0].ID)
}
