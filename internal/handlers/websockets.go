package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"plant_monitor/internal/dashboard"
	"plant_monitor/internal/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12 // 4 KB
)

// Message types exchanged on the dashboard socket.
const (
	wsTypeState        = "state"
	wsTypeError        = "error"
	wsTypeSelectPlant  = "select_plant"
	wsTypeSelectWindow = "select_window"
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// wsCommand is a selection sent by the client.
type wsCommand struct {
	Type    string `json:"type"`
	PlantID string `json:"plant_id"`
	Days    int    `json:"days"`
}

// Upgrader for HTTP -> WebSocket. Consider tightening CheckOrigin in production.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary      Live dashboard
// @Description  WebSocket. Pushes {"type":"state"} on every state change; accepts {"type":"select_plant","plant_id":"7"} and {"type":"select_window","days":10}.
// @Tags         telemetry
// @Param        plant_id      query  string  false  "Initial plant"
// @Param        days          query  int     false  "Initial window"  Enums(3,5,10,30)
// @Param        access_token  query  string  false  "Session token when headers cannot be set"
// @Router       /api/v1/dashboard/ws [get]
// @Security     BearerAuth
func (h *Handler) wsDashboard(c *gin.Context) {
	days, ok := parseDays(c)
	if !ok || (days != 0 && !telemetry.ValidWindow(days)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidDays})
		return
	}
	plantID := c.Query("plant_id")
	if plantID != "" {
		if _, ok := parsePlantID(plantID); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidPlantID})
			return
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	ctrl := h.services.NewDashboard(ctx)
	defer ctrl.Close()
	if days != 0 {
		_ = ctrl.SelectWindow(days)
	}
	ctrl.SelectPlant(plantID)

	// Configure read limits and pong handler to extend read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// The reader only decodes; all writes happen on this goroutine.
	cmds := make(chan wsCommand)
	done := make(chan struct{})
	go h.startReader(ctx, conn, cmds, done)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	// The initial frame already reflects the selections above.
	select {
	case <-ctrl.Changed():
	default:
	}
	if err := h.sendState(conn, ctrl); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err)
		}
		return
	}

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case cmd := <-cmds:
			if err := applyCommand(ctrl, cmd); err != nil {
				if werr := writeEnvelope(conn, wsEnvelope{Type: wsTypeError, Error: err.Error()}); werr != nil {
					return
				}
			}
		case <-ctrl.Changed():
			if err := h.sendState(conn, ctrl); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		}
	}
}

var (
	errUnknownCommand = errors.New("unknown message type")
	errBadPlantID     = errors.New(errInvalidPlantID)
)

func applyCommand(ctrl *dashboard.Controller, cmd wsCommand) error {
	switch cmd.Type {
	case wsTypeSelectPlant:
		if cmd.PlantID != "" {
			if _, ok := parsePlantID(cmd.PlantID); !ok {
				return errBadPlantID
			}
		}
		ctrl.SelectPlant(cmd.PlantID)
		return nil
	case wsTypeSelectWindow:
		return ctrl.SelectWindow(cmd.Days)
	}
	return errUnknownCommand
}

// Helper: startReader decodes client selections and detects closure.
func (h *Handler) startReader(ctx context.Context, conn *websocket.Conn, cmds chan<- wsCommand, done chan<- struct{}) {
	defer close(done)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
		var cmd wsCommand
		if err := json.Unmarshal(msg, &cmd); err != nil {
			if h.log != nil {
				h.log.Infow("ws_bad_message", "err", err)
			}
			cmd = wsCommand{Type: "invalid"}
		}
		select {
		case cmds <- cmd:
		case <-ctx.Done():
			return
		}
	}
}

// Helper: sendState writes the controller's current state with a write deadline.
func (h *Handler) sendState(conn *websocket.Conn, ctrl *dashboard.Controller) error {
	snap := h.services.Describe(ctrl.CurrentState())
	return writeEnvelope(conn, wsEnvelope{Type: wsTypeState, Data: snap})
}

func writeEnvelope(conn *websocket.Conn, env wsEnvelope) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(env)
}
