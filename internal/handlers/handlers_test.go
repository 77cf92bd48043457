package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/auth"
	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/models"
	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/repository"
	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/service"
	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/testutil"
	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/uploads"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

const maxImageBytes = 1024

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type testServer struct {
	router *gin.Engine
	garden *service.Garden
	images *uploads.Store
}

type serverOption func(*RouterConfig, *[]service.Option)

func withDemoMode() serverOption {
	return func(_ *RouterConfig, opts *[]service.Option) {
		*opts = append(*opts, service.WithDemoMode(true))
	}
}

func withAuth(t *testing.T, username, password string) serverOption {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return func(cfg *RouterConfig, _ *[]service.Option) {
		cfg.JWT = auth.NewJWTService("test-secret", "indoor-jungle", time.Hour)
		cfg.Authenticator = auth.NewAuthenticator(username, string(hash))
	}
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	db := testutil.NewDB(t)
	logger := zaptest.NewLogger(t)
	images, err := uploads.NewStore(filepath.Join(t.TempDir(), "uploads"), maxImageBytes)
	require.NoError(t, err)

	cfg := RouterConfig{Images: images, DB: db, Logger: logger, Version: "test"}
	gardenOpts := []service.Option{service.WithImageRemover(images)}
	for _, opt := range opts {
		opt(&cfg, &gardenOpts)
	}

	garden := service.NewGarden(repository.NewSQLStore(db.DB), logger, gardenOpts...)
	cfg.Garden = garden

	return &testServer{router: NewRouter(cfg), garden: garden, images: images}
}

func (s *testServer) request(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return s.request(t, req)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (s *testServer) createPlant(t *testing.T, name string) models.PlantResponse {
	t.Helper()
	w := s.do(t, http.MethodPost, "/plants", gin.H{"personalName": name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.PlantResponse](t, w)
}

func TestPlantCRUD(t *testing.T) {
	s := newTestServer(t)

	created := s.createPlant(t, "Monty")
	assert.Equal(t, 1, created.PlantNumber)
	assert.Equal(t, 7, created.WateringFrequencyDays)
	assert.True(t, created.NeedsWatering)

	w := s.do(t, http.MethodGet, "/plants/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Monty", decode[models.PlantResponse](t, w).PersonalName)

	w = s.do(t, http.MethodPatch, "/plants/"+created.ID.String(), gin.H{"location": "Kitchen", "feedingFrequencyDays": 21})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.PlantResponse](t, w)
	assert.Equal(t, "Kitchen", updated.Location)
	assert.Equal(t, 21, updated.FeedingFrequencyDays)
	assert.Equal(t, "Monty", updated.PersonalName)

	w = s.do(t, http.MethodPost, "/plants/"+created.ID.String()+"/watering-logs", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = s.do(t, http.MethodPatch, "/plants/"+created.ID.String(), gin.H{"notes": "moved"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotNil(t, decode[models.PlantResponse](t, w).LastWatered, "absent key keeps lastWatered")
	w = s.do(t, http.MethodPatch, "/plants/"+created.ID.String(), gin.H{"lastWatered": nil})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cleared := decode[models.PlantResponse](t, w)
	assert.Nil(t, cleared.LastWatered, "null clears lastWatered")
	assert.True(t, cleared.NeedsWatering)

	w = s.do(t, http.MethodPut, "/plants/"+created.ID.String(), gin.H{"personalName": "Monstera"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Monstera", decode[models.PlantResponse](t, w).Name)

	s.createPlant(t, "Second")
	w = s.do(t, http.MethodGet, "/plants", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]models.PlantResponse](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, []int{1, 2}, []int{list[0].PlantNumber, list[1].PlantNumber})

	w = s.do(t, http.MethodDelete, "/plants/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/plants/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 1, s.createPlant(t, "Third").PlantNumber, "freed number is reused")
}

func TestPlantErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
		check      func(t *testing.T, body map[string]any)
	}{
		{
			name:       "missing name",
			method:     http.MethodPost,
			path:       "/plants",
			body:       gin.H{"wateringFrequencyDays": 0},
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "Validation failed", body["error"])
				fields := body["fields"].([]any)
				require.Len(t, fields, 2)
				assert.Equal(t, "personalName", fields[0].(map[string]any)["field"])
			},
		},
		{
			name:       "malformed body",
			method:     http.MethodPost,
			path:       "/plants",
			body:       gin.H{"wateringFrequencyDays": "weekly"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed id",
			method:     http.MethodGet,
			path:       "/plants/not-a-uuid",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown plant",
			method:     http.MethodGet,
			path:       "/plants/" + uuid.NewString(),
			wantStatus: http.StatusNotFound,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "plant not found", body["error"])
			},
		},
		{
			name:       "update unknown plant",
			method:     http.MethodPatch,
			path:       "/plants/" + uuid.NewString(),
			body:       gin.H{"notes": "x"},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "delete unknown plant",
			method:     http.MethodDelete,
			path:       "/plants/" + uuid.NewString(),
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.check != nil {
				tt.check(t, decode[map[string]any](t, w))
			}
		})
	}
}

func TestCareLogRoutes(t *testing.T) {
	s := newTestServer(t)
	plant := s.createPlant(t, "Fern")
	base := "/plants/" + plant.ID.String()

	var pruning models.CareLog
	for _, kind := range models.CareKinds {
		w := s.do(t, http.MethodPost, base+"/"+string(kind)+"-logs", gin.H{"notes": "ok"})
		require.Equal(t, http.StatusCreated, w.Code, "%s: %s", kind, w.Body.String())
		log := decode[models.CareLog](t, w)
		assert.Equal(t, kind, log.Kind)
		if kind == models.CarePruning {
			pruning = log
		}
	}

	// empty body logs the event now
	req := httptest.NewRequest(http.MethodPost, base+"/watering-logs", nil)
	w := s.request(t, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, base+"/watering-logs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	logs := decode[[]models.CareLog](t, w)
	require.Len(t, logs, 2)

	w = s.do(t, http.MethodGet, base, nil)
	got := decode[models.PlantResponse](t, w)
	assert.NotNil(t, got.LastWatered)
	assert.NotNil(t, got.LastFed)
	assert.False(t, got.NeedsWatering)

	w = s.do(t, http.MethodDelete, "/feeding-logs/"+logs[0].ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "log id must match the route kind")

	w = s.do(t, http.MethodDelete, "/watering-logs/"+logs[0].ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	deleted := decode[map[string]any](t, w)
	assert.Equal(t, logs[0].ID.String(), deleted["log_id"])
	assert.Equal(t, plant.ID.String(), deleted["plant_id"])
	assert.Equal(t, "watering", deleted["kind"])

	w = s.do(t, http.MethodPost, base+"/pruning-logs", gin.H{"potSize": "20cm"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/plants/"+uuid.NewString()+"/feeding-logs", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodDelete, "/plants/"+plant.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodDelete, "/pruning-logs/"+pruning.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "logs go with their plant")
}

func TestBulkCareAndReminders(t *testing.T) {
	s := newTestServer(t)
	a := s.createPlant(t, "a")
	b := s.createPlant(t, "b")

	w := s.do(t, http.MethodPost, "/bulk-care", gin.H{
		"plantIds": []string{a.ID.String(), uuid.NewString()},
		"kind":     "watering",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode[models.BulkCareResult](t, w)
	assert.Equal(t, []uuid.UUID{a.ID}, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "plant not found", result.Failed[0].Error)

	w = s.do(t, http.MethodPost, "/bulk-care", gin.H{"plantIds": []string{a.ID.String()}, "kind": "pruning"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/reminders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	reminders := decode[models.Reminders](t, w)
	require.Len(t, reminders.Watering, 1)
	assert.Equal(t, b.ID, reminders.Watering[0].ID)
	assert.Len(t, reminders.Feeding, 2)
}

func TestDemoPlantCannotBeDeleted(t *testing.T) {
	s := newTestServer(t, withDemoMode())

	created, err := s.garden.EnsureDemoPlant(t.Context())
	require.NoError(t, err)
	require.True(t, created)

	w := s.do(t, http.MethodGet, "/plants", nil)
	demo := decode[[]models.PlantResponse](t, w)[0]
	base := "/plants/" + demo.ID.String()

	for _, kind := range models.CareKinds {
		w = s.do(t, http.MethodPost, base+"/"+string(kind)+"-logs", gin.H{"notes": "demo"})
		require.Equal(t, http.StatusCreated, w.Code, "%s: %s", kind, w.Body.String())
	}

	w = s.do(t, http.MethodDelete, base, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "cannot delete demo plant", body["error"])
	assert.Equal(t, "demo_plant_protected", body["code"])

	w = s.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[models.PlantResponse](t, w).PlantNumber)
	for _, kind := range models.CareKinds {
		w = s.do(t, http.MethodGet, base+"/"+string(kind)+"-logs", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]models.CareLog](t, w), 1, "%s logs survive a blocked delete", kind)
	}

	s.createPlant(t, "extra")
	w = s.do(t, http.MethodPost, "/demo/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodGet, "/plants", nil)
	assert.Len(t, decode[[]models.PlantResponse](t, w), 1)
}

func TestDemoResetOutsideDemoMode(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/demo/reset", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func multipartPlant(t *testing.T, name string, image []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("personalName", name))
	require.NoError(t, mw.WriteField("wateringFrequencyDays", "5"))
	if image != nil {
		part, err := mw.CreateFormFile("image", "plant.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/plants", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestCreatePlantWithImage(t *testing.T) {
	s := newTestServer(t)

	w := s.request(t, multipartPlant(t, "Pic", pngHeader))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	plant := decode[models.PlantResponse](t, w)
	assert.Equal(t, 5, plant.WateringFrequencyDays)
	require.NotNil(t, plant.ImageURL)
	assert.True(t, strings.HasPrefix(*plant.ImageURL, uploads.URLPrefix))

	w = s.do(t, http.MethodGet, *plant.ImageURL, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pngHeader, w.Body.Bytes())

	w = s.do(t, http.MethodDelete, "/plants/"+plant.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodGet, *plant.ImageURL, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "image is removed with its plant")
}

func TestCreatePlantMultipartWithoutImage(t *testing.T) {
	s := newTestServer(t)

	w := s.request(t, multipartPlant(t, "Plain", nil))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Nil(t, decode[models.PlantResponse](t, w).ImageURL)
}

func TestCreatePlantRejectsBadImages(t *testing.T) {
	s := newTestServer(t)

	oversized := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 2*maxImageBytes)...)
	w := s.request(t, multipartPlant(t, "Big", oversized))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())

	w = s.request(t, multipartPlant(t, "Text", []byte("definitely not an image")))
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/plants", nil)
	assert.Empty(t, decode[[]models.PlantResponse](t, w), "rejected uploads create no plant")
}

func TestLocationRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/locations", gin.H{"name": "Sunroom"})
	require.Equal(t, http.StatusCreated, w.Code)
	loc := decode[models.Location](t, w)

	w = s.do(t, http.MethodPost, "/locations", gin.H{"name": "sunroom"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodGet, "/locations", nil)
	assert.Len(t, decode[[]models.Location](t, w), 1)

	w = s.do(t, http.MethodDelete, "/locations/"+loc.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodDelete, "/locations/"+loc.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportImportYAML(t *testing.T) {
	src := newTestServer(t)
	plant := src.createPlant(t, "Traveller")
	w := src.do(t, http.MethodPost, "/plants/"+plant.ID.String()+"/watering-logs", gin.H{"amount": "1L"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = src.do(t, http.MethodGet, "/export?format=yaml", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".yaml")
	exported := w.Body.Bytes()

	dst := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/import", bytes.NewReader(exported))
	req.Header.Set("Content-Type", mimeYAML)
	w = dst.request(t, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = dst.do(t, http.MethodGet, "/plants/"+plant.ID.String()+"/watering-logs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	logs := decode[[]models.CareLog](t, w)
	require.Len(t, logs, 1)
	require.NotNil(t, logs[0].Amount)
	assert.Equal(t, "1L", *logs[0].Amount)

	w = dst.do(t, http.MethodGet, "/export?format=xml", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportImportJSON(t *testing.T) {
	s := newTestServer(t)
	s.createPlant(t, "a")

	w := s.do(t, http.MethodGet, "/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode[models.DataExport](t, w)
	require.Len(t, data.Plants, 1)

	s.createPlant(t, "b")
	w = s.do(t, http.MethodPost, "/import", data)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/plants", nil)
	assert.Len(t, decode[[]models.PlantResponse](t, w), 1, "import replaces existing data")

	data.Version = 42
	w = s.do(t, http.MethodPost, "/import", data)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportDuplicatesAreValidationErrors(t *testing.T) {
	s := newTestServer(t)
	plant := s.createPlant(t, "a")

	w := s.do(t, http.MethodGet, "/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode[models.DataExport](t, w)

	logID := uuid.New()
	data.CareLogs = []models.CareLog{
		{ID: logID, PlantID: plant.ID, Kind: models.CareWatering, Date: time.Now()},
		{ID: logID, PlantID: plant.ID, Kind: models.CareWatering, Date: time.Now()},
	}
	data.Locations = []models.Location{{Name: "Hall"}, {Name: "hall"}}

	w = s.do(t, http.MethodPost, "/import", data)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	body := decode[struct {
		Fields []service.FieldError `json:"fields"`
	}](t, w)
	fields := make([]string, 0, len(body.Fields))
	for _, f := range body.Fields {
		fields = append(fields, f.Field)
	}
	assert.Equal(t, []string{"careLogs[1].id", "locations[1].name"}, fields)

	w = s.do(t, http.MethodGet, "/plants/"+plant.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code, "rejected import keeps existing data")
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t, withAuth(t, "gardener", "hunter2"))

	w := s.do(t, http.MethodGet, "/plants", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/plants", nil, "Authorization", "Token abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/auth/token", gin.H{"username": "gardener", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/auth/token", gin.H{"username": "gardener"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/auth/token", gin.H{"username": "gardener", "password": "hunter2"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := decode[LoginResponse](t, w)
	assert.Equal(t, "gardener", login.Username)

	w = s.do(t, http.MethodGet, "/plants", nil, "Authorization", "Bearer "+login.Token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code, "health stays public")
}

func TestLoginLogsHashFailures(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	router := gin.New()
	router.POST("/auth/token", Login(
		auth.NewAuthenticator("gardener", "not-a-bcrypt-hash"),
		auth.NewJWTService("test-secret", "indoor-jungle", time.Hour),
		zap.New(core)))

	body := strings.NewReader(`{"username": "gardener", "password": "hunter2"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/token", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	entries := logs.FilterMessage("Failed to check credentials").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "gardener", entries[0].ContextMap()["username"])
}

func TestHealthAndVersion(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "sqlite", body["database"])

	w = s.do(t, http.MethodGet, "/version", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "test", decode[map[string]any](t, w)["version"])
}
