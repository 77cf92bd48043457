package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/models"
)

// ListCareLogs returns a plant's logs of one kind, newest first
func (h *Handler) ListCareLogs(kind models.CareKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		plantID, ok := paramID(c, "plant")
		if !ok {
			return
		}

		logs, err := h.garden.ListCareLogs(c.Request.Context(), plantID, kind)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, logs)
	}
}

// CreateCareLog records a care event. An empty body logs the event now.
func (h *Handler) CreateCareLog(kind models.CareKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		plantID, ok := paramID(c, "plant")
		if !ok {
			return
		}

		var req models.CareLogCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, err)
			return
		}

		log, err := h.garden.LogCare(c.Request.Context(), plantID, kind, req)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, log)
	}
}

// DeleteCareLog removes one log. The plant's last-event fields are kept.
func (h *Handler) DeleteCareLog(kind models.CareKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "log")
		if !ok {
			return
		}

		log, err := h.garden.DeleteCareLog(c.Request.Context(), kind, id)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":  "Care log deleted successfully",
			"log_id":   log.ID,
			"plant_id": log.PlantID,
			"kind":     kind,
		})
	}
}

// BulkCare waters or feeds many plants at once. Per-plant failures are
// reported in the body; the request itself still succeeds.
func (h *Handler) BulkCare(c *gin.Context) {
	var req models.BulkCareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.garden.BulkCare(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Reminders lists plants due for watering or feeding
func (h *Handler) Reminders(c *gin.Context) {
	reminders, err := h.garden.Reminders(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reminders)
}
