package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"plant_monitor/internal/models"
	"plant_monitor/internal/service"
	"plant_monitor/internal/telemetry"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK        = "ok"
	statusLoggedOut = "logged_out"
	statusUpdated   = "status_set"
	statusCreated   = "created"

	errListPlants         = "failed to load plants"
	errSetStatus          = "failed to update plant status"
	errCreatePlant        = "failed to register plant"
	errBackendUnavailable = "plant backend unavailable"
	errInvalidPlantID     = "invalid plant id"
	errInvalidBodyPref    = "invalid body: "

	maxImageBytes = 5 << 20 // 5 MB
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// backendFailure writes 502 for errors that came from the plant backend, using
// its own error text when it sent one, and 500 otherwise.
func (h *Handler) backendFailure(c *gin.Context, userMsg, logKey string, err error, kv ...interface{}) {
	if !errors.Is(err, telemetry.ErrNetworkOrServer) {
		h.logAndJSONError(c, http.StatusInternalServerError, userMsg, logKey, err, kv...)
		return
	}
	var fe *telemetry.FetchError
	if errors.As(err, &fe) && fe.StatusCode != 0 && fe.Err != nil {
		userMsg = fe.Err.Error()
	}
	h.logAndJSONError(c, http.StatusBadGateway, userMsg, logKey, err, kv...)
}

// plantView is a plant as the home list renders it.
type plantView struct {
	models.Plant
	Active  bool    `json:"active"`
	Opacity float64 `json:"opacity"`
}

func viewOf(p models.Plant) plantView {
	return plantView{Plant: p, Active: p.Active(), Opacity: p.Opacity()}
}

// SetStatusRequest is an exported model for Swagger docs of the status payload.
type SetStatusRequest struct {
	// Allowed: active, inactive
	Status string `json:"status" example:"inactive"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// parsePlantID accepts the backend's positive integer ids only.
func parsePlantID(s string) (int, bool) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      List plants
// @Tags         plants
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, plants"
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/plants [get]
// @Security     BearerAuth
func (h *Handler) listPlants(c *gin.Context) {
	plants, err := h.services.Plants.List(c.Request.Context())
	if err != nil {
		h.backendFailure(c, errListPlants, "plants_list_failed", err)
		return
	}
	views := make([]plantView, 0, len(plants))
	for _, p := range plants {
		views = append(views, viewOf(p))
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(views),
		"plants": views,
	})
}

// @Summary      Set plant status
// @Tags         plants
// @Accept       json
// @Produce      json
// @Param        id    path      int               true  "Plant id"
// @Param        body  body      SetStatusRequest  true  "Status payload"
// @Success      200   {object}  map[string]interface{}  "status, plant"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/plants/{id}/status [put]
// @Security     BearerAuth
func (h *Handler) setPlantStatus(c *gin.Context) {
	id, ok := parsePlantID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidPlantID})
		return
	}
	var req statusRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	status, ok := models.ParsePlantStatus(req.Status)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + "status must be active or inactive"})
		return
	}

	plant, err := h.services.SetStatus(c.Request.Context(), actor(c), id, status)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPlant) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.backendFailure(c, errSetStatus, "plant_set_status_failed", err, "plant_id", id, "status", status.String())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": statusUpdated,
		"plant":  viewOf(plant),
	})
}

// @Summary      Register plant
// @Tags         plants
// @Accept       multipart/form-data
// @Produce      json
// @Param        name           formData  string  true   "Plant name"
// @Param        description    formData  string  true   "Description"
// @Param        interval_type  formData  int     true   "1 minutes, 2 hours, 3 days"  Enums(1,2,3)
// @Param        interval_time  formData  int     true   "Interval length, at least 1"
// @Param        image          formData  file    false  "Picture"
// @Success      201  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/plants [post]
// @Security     BearerAuth
func (h *Handler) createPlant(c *gin.Context) {
	p, err := readNewPlant(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	if err := h.services.Create(c.Request.Context(), actor(c), p); err != nil {
		if errors.Is(err, service.ErrInvalidPlant) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.backendFailure(c, errCreatePlant, "plant_create_failed", err, "name", p.Name)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": statusCreated})
}

// readNewPlant decodes the registration form. Range checks are left to the service.
func readNewPlant(c *gin.Context) (models.NewPlant, error) {
	p := models.NewPlant{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
	}
	it, err := strconv.Atoi(c.PostForm("interval_type"))
	if err != nil {
		return p, errors.New("interval_type must be an integer")
	}
	iv, err := strconv.Atoi(c.PostForm("interval_time"))
	if err != nil {
		return p, errors.New("interval_time must be an integer")
	}
	p.IntervalType = models.IntervalType(it)
	p.IntervalValue = iv

	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("image: %w", err)
	}
	if fh.Size > maxImageBytes {
		return p, fmt.Errorf("image larger than %d bytes", maxImageBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return p, fmt.Errorf("open image: %w", err)
	}
	defer func() { _ = f.Close() }()
	content, err := io.ReadAll(io.LimitReader(f, maxImageBytes))
	if err != nil {
		return p, fmt.Errorf("read image: %w", err)
	}
	p.Image = &models.Image{Filename: fh.Filename, Content: content}
	return p, nil
}
