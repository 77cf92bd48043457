package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/models"
)

// multipartOverhead is allowed on top of the image ceiling for the other
// form fields and part headers.
const multipartOverhead = 64 << 10

// ListPlants returns all plants ordered by plant number
func (h *Handler) ListPlants(c *gin.Context) {
	plants, err := h.garden.ListPlants(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plants)
}

// GetPlant returns a single plant
func (h *Handler) GetPlant(c *gin.Context) {
	id, ok := paramID(c, "plant")
	if !ok {
		return
	}

	plant, err := h.garden.GetPlant(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plant)
}

// CreatePlant accepts a JSON body, or a multipart form whose optional
// "image" part is stored and linked to the new plant.
func (h *Handler) CreatePlant(c *gin.Context) {
	multipart := strings.HasPrefix(c.ContentType(), gin.MIMEMultipartPOSTForm)
	if multipart {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.images.MaxBytes()+multipartOverhead)
	}

	var req models.PlantCreateRequest
	if err := c.ShouldBind(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
			return
		}
		badRequest(c, err)
		return
	}

	var imageURL string
	if multipart {
		fh, err := c.FormFile("image")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			badRequest(c, err)
			return
		default:
			imageURL, err = h.images.Save(fh)
			if err != nil {
				h.respondError(c, err)
				return
			}
			req.ImageURL = &imageURL
		}
	}

	plant, err := h.garden.CreatePlant(c.Request.Context(), req)
	if err != nil {
		if imageURL != "" {
			if rmErr := h.images.Remove(imageURL); rmErr != nil {
				h.logger.Warn("Failed to remove orphaned image", zap.String("image_url", imageURL), zap.Error(rmErr))
			}
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plant)
}

// UpdatePlant applies a partial update. PUT and PATCH behave the same.
func (h *Handler) UpdatePlant(c *gin.Context) {
	id, ok := paramID(c, "plant")
	if !ok {
		return
	}

	var req models.PlantUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	plant, err := h.garden.UpdatePlant(c.Request.Context(), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plant)
}

// DeletePlant removes a plant with all of its care logs
func (h *Handler) DeletePlant(c *gin.Context) {
	id, ok := paramID(c, "plant")
	if !ok {
		return
	}

	if err := h.garden.DeletePlant(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Plant deleted successfully",
		"plant_id": id,
	})
}
