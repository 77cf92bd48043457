package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/models"
)

func (h *Handler) ListLocations(c *gin.Context) {
	locations, err := h.garden.ListLocations(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, locations)
}

func (h *Handler) CreateLocation(c *gin.Context) {
	var req models.LocationCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	loc, err := h.garden.CreateLocation(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, loc)
}

func (h *Handler) DeleteLocation(c *gin.Context) {
	id, ok := paramID(c, "location")
	if !ok {
		return
	}

	if err := h.garden.DeleteLocation(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Location deleted successfully",
		"location_id": id,
	})
}
