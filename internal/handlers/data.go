package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"

	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/models"
)

const mimeYAML = "application/yaml"

// Export downloads every plant, care log and location as JSON or YAML
func (h *Handler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "json")
	if format != "json" && format != "yaml" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be json or yaml"})
		return
	}

	data, err := h.garden.Export(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	filename := fmt.Sprintf("indoor-jungle-%s.%s", data.ExportedAt.Format("20060102-150405"), format)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if format == "json" {
		c.JSON(http.StatusOK, data)
		return
	}

	out, err := yaml.Marshal(data)
	if err != nil {
		h.respondError(c, fmt.Errorf("encoding yaml export: %w", err))
		return
	}
	c.Data(http.StatusOK, mimeYAML, out)
}

// Import replaces all data with an uploaded export. YAML is detected by
// content type; anything else is read as JSON.
func (h *Handler) Import(c *gin.Context) {
	var data models.DataExport

	if strings.Contains(c.ContentType(), "yaml") {
		if err := yaml.NewDecoder(c.Request.Body).Decode(&data); err != nil {
			badRequest(c, err)
			return
		}
	} else if err := c.ShouldBindJSON(&data); err != nil {
		badRequest(c, err)
		return
	}

	summary, err := h.garden.Import(c.Request.Context(), &data)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Import completed successfully",
		"imported": summary,
	})
}

// ResetDemo wipes all data and reseeds the demo plant
func (h *Handler) ResetDemo(c *gin.Context) {
	if err := h.garden.ResetDemo(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Demo data reset"})
}
