package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/auth"
	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/middleware"
	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/models"
	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/service"
	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/uploads"
)

// RouterConfig carries everything NewRouter wires together. JWT and
// Authenticator are nil when authentication is disabled.
type RouterConfig struct {
	Garden        *service.Garden
	Images        *uploads.Store
	DB            HealthChecker
	Logger        *zap.Logger
	JWT           *auth.JWTService
	Authenticator *auth.Authenticator
	Version       string
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(cfg.Logger), middleware.RequestLogger(cfg.Logger))
	r.MaxMultipartMemory = cfg.Images.MaxBytes() + multipartOverhead

	h := New(cfg.Garden, cfg.Images, cfg.Logger)

	r.GET("/health", Health(cfg.DB, cfg.Version))
	r.GET("/version", Version(cfg.Version))
	r.Static(strings.TrimSuffix(uploads.URLPrefix, "/"), cfg.Images.Dir())

	api := r.Group("/")
	if cfg.JWT != nil {
		r.POST("/auth/token", Login(cfg.Authenticator, cfg.JWT, cfg.Logger))
		api.Use(middleware.RequireAuth(cfg.JWT))
	}

	{
		api.GET("/plants", h.ListPlants)
		api.POST("/plants", h.CreatePlant)
		api.GET("/plants/:id", h.GetPlant)
		api.PUT("/plants/:id", h.UpdatePlant)
		api.PATCH("/plants/:id", h.UpdatePlant)
		api.DELETE("/plants/:id", h.DeletePlant)

		for _, kind := range models.CareKinds {
			logs := string(kind) + "-logs"
			api.GET("/plants/:id/"+logs, h.ListCareLogs(kind))
			api.POST("/plants/:id/"+logs, h.CreateCareLog(kind))
			api.DELETE("/"+logs+"/:id", h.DeleteCareLog(kind))
		}

		api.POST("/bulk-care", h.BulkCare)
		api.GET("/reminders", h.Reminders)

		api.GET("/locations", h.ListLocations)
		api.POST("/locations", h.CreateLocation)
		api.DELETE("/locations/:id", h.DeleteLocation)

		api.GET("/export", h.Export)
		api.POST("/import", h.Import)

		api.POST("/demo/reset", middleware.DemoOnly(cfg.Garden.DemoMode()), h.ResetDemo)
	}

	return r
}
