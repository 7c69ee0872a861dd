package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"plant_monitor/internal/chart"
	"plant_monitor/internal/dashboard"

	"github.com/gin-gonic/gin"
)

const errInvalidDays = "invalid 'days'; use one of 3, 5, 10, 30"

// parseDays reads ?days=N. Zero means the configured default.
func parseDays(c *gin.Context) (int, bool) {
	s := c.Query("days")
	if s == "" {
		return 0, true
	}
	d, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return d, true
}

// @Summary      Plant telemetry
// @Description  Runs the telemetry pipeline once and returns the dashboard state (loaded, empty or failed).
// @Tags         telemetry
// @Produce      json
// @Param        id    path      string  true   "Plant id"
// @Param        days  query     int     false  "Lookback in days"  Enums(3,5,10,30)
// @Success      200   {object}  service.Snapshot
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/plants/{id}/telemetry [get]
// @Security     BearerAuth
func (h *Handler) getTelemetry(c *gin.Context) {
	days, ok := parseDays(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidDays})
		return
	}
	plantID := c.Param("id")
	if _, ok := parsePlantID(plantID); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidPlantID})
		return
	}
	snap, err := h.services.Snapshot(c.Request.Context(), plantID, days)
	if err != nil {
		if errors.Is(err, dashboard.ErrInvalidWindow) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidDays})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load telemetry", "telemetry_snapshot_failed", err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// @Summary      Plant chart
// @Description  Renders temperature and humidity for the window as PNG (default) or SVG.
// @Tags         telemetry
// @Produce      png
// @Produce      image/svg+xml
// @Param        id      path   string  true   "Plant id"
// @Param        days    query  int     false  "Lookback in days"  Enums(3,5,10,30)
// @Param        format  query  string  false  "Image format"  Enums(png,svg)
// @Success      200
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string  "no data available"
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/plants/{id}/chart [get]
// @Security     BearerAuth
func (h *Handler) getChart(c *gin.Context) {
	format, err := chart.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	days, ok := parseDays(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidDays})
		return
	}
	plantID := c.Param("id")
	if _, ok := parsePlantID(plantID); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidPlantID})
		return
	}
	snap, err := h.services.Snapshot(c.Request.Context(), plantID, days)
	if err != nil {
		if errors.Is(err, dashboard.ErrInvalidWindow) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidDays})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load telemetry", "telemetry_snapshot_failed", err)
		return
	}

	switch snap.Status {
	case dashboard.StatusFailed:
		c.JSON(http.StatusBadGateway, gin.H{"error": snap.Message, "status": snap.Status})
		return
	case dashboard.StatusEmpty:
		c.JSON(http.StatusNotFound, gin.H{"error": snap.Message, "status": snap.Status})
		return
	}

	var buf bytes.Buffer
	if err := h.services.RenderChart(&buf, snap, format); err != nil {
		if errors.Is(err, chart.ErrNothingToPlot) {
			c.JSON(http.StatusNotFound, gin.H{"error": dashboard.MessageEmpty, "status": dashboard.StatusEmpty})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to render chart", "chart_render_failed", err,
			"plant_id", snap.PlantID, "format", format)
		return
	}
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
