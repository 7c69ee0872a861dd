package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"plant_monitor/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid   = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"
	errMineInvalid = "invalid 'mine'; use true or false"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// @Summary      List activity
// @Description  Audit trail of logins, logouts, status changes and registrations. Dates accept RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'; a date-only 'to' covers the whole day. 'mine=true' restricts the trail to the caller.
// @Tags         activity
// @Produce      json
// @Param        from   query   string  false  "Start of range"  example(2025-03-01)
// @Param        to     query   string  false  "End of range"    example(2025-03-31)
// @Param        type   query   string  false  "Event type"  Enums(LOGIN,LOGOUT,STATUS_CHANGE,PLANT_CREATED)
// @Param        actor  query   string  false  "Email of the user who acted"
// @Param        mine   query   bool    false  "Only the caller's own actions; overrides actor"
// @Success      200    {object}  map[string]interface{}  "count, events"
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/v1/activity [get]
// @Security     BearerAuth
func (h *Handler) getActivity(c *gin.Context) {
	f, msg := activityFilter(c)
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	events, err := h.services.ActivityLog.List(c.Request.Context(), f)
	if err != nil {
		if service.IsInvalidFilter(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load activity", "activity_list_failed", err,
			"from", f.From, "to", f.To, "type", f.Type, "actor", f.Actor)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

// activityFilter reads the query string. A non-empty message means a bad request.
func activityFilter(c *gin.Context) (service.LogFilter, string) {
	f := service.LogFilter{Type: c.Query("type"), Actor: c.Query("actor")}

	if qs := c.Query("from"); qs != "" {
		t, ok := parseQueryTime(qs)
		if !ok {
			return f, errFromInvalid
		}
		f.From = t
	}
	if qs := c.Query("to"); qs != "" {
		t, ok := parseQueryTime(qs)
		if !ok {
			return f, errToInvalid
		}
		if !strings.ContainsAny(qs, "T ") {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		f.To = t
	}
	if qs := c.Query("mine"); qs != "" {
		mine, err := strconv.ParseBool(qs)
		if err != nil {
			return f, errMineInvalid
		}
		if mine {
			f.Actor = actor(c)
		}
	}
	return f, ""
}

func parseQueryTime(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
