package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/repository"
	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/service"
	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/uploads"
)

// Handler serves the plant, care log and data routes.
type Handler struct {
	garden *service.Garden
	images *uploads.Store
	logger *zap.Logger
}

func New(garden *service.Garden, images *uploads.Store, logger *zap.Logger) *Handler {
	return &Handler{garden: garden, images: images, logger: logger}
}

// respondError maps service and repository errors to HTTP responses.
func (h *Handler) respondError(c *gin.Context, err error) {
	var verr *service.ValidationError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": verr.Fields})
	case errors.Is(err, repository.ErrPlantNotFound),
		errors.Is(err, repository.ErrCareLogNotFound),
		errors.Is(err, repository.ErrLocationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrDemoPlantProtected):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "code": "demo_plant_protected"})
	case errors.Is(err, service.ErrDemoModeDisabled):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrLocationExists),
		errors.Is(err, repository.ErrPlantNumberTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, uploads.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.Is(err, uploads.ErrNotImage):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Validation failed",
			"fields": []service.FieldError{{Field: "image", Message: err.Error()}},
		})
	default:
		h.logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// badRequest reports a body that could not be decoded at all.
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
}

// paramID parses the :id path parameter, writing a 400 when it is not a UUID.
func paramID(c *gin.Context, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + what + " id"})
		return uuid.Nil, false
	}
	return id, true
}
