// Package dashboard holds the per-viewer state machine that keeps the chart
// in step with the selected plant and window.
package dashboard

import (
	"plant_monitor/internal/telemetry"
)

// Status is the tag of a FetchState.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusLoaded  Status = "loaded"
	StatusEmpty   Status = "empty"
	StatusFailed  Status = "failed"
)

// User-facing texts attached to the non-loaded states.
const (
	MessageLoading = "loading"
	MessageEmpty   = "no data available"
	MessageFailed  = "failed to load plant data"
)

// FetchState is the outcome of the latest selection. Series is set only when
// Status is StatusLoaded; Reason only when it is StatusFailed.
type FetchState struct {
	Status     Status                 `json:"status"`
	PlantID    string                 `json:"plant_id,omitempty"`
	WindowDays int                    `json:"window_days"`
	Series     *telemetry.ChartSeries `json:"series,omitempty"`
	Reason     telemetry.ErrorKind    `json:"reason,omitempty"`
	Message    string                 `json:"message,omitempty"`
}

// key identifies the selection a request was issued for.
type key struct {
	plantID    string
	windowDays int
}

func idleState(k key) FetchState {
	return FetchState{Status: StatusIdle, PlantID: k.plantID, WindowDays: k.windowDays}
}

func loadingState(k key) FetchState {
	return FetchState{Status: StatusLoading, PlantID: k.plantID, WindowDays: k.windowDays, Message: MessageLoading}
}

// Resolve maps a pipeline outcome onto a terminal state.
func Resolve(plantID string, windowDays int, series telemetry.ChartSeries, err error) FetchState {
	st := FetchState{PlantID: plantID, WindowDays: windowDays}
	switch {
	case err != nil:
		st.Status = StatusFailed
		st.Reason = telemetry.KindOf(err)
		st.Message = MessageFailed
	case series.IsEmpty():
		st.Status = StatusEmpty
		st.Message = MessageEmpty
	default:
		st.Status = StatusLoaded
		st.Series = &series
	}
	return st
}

// Terminal reports whether no request is pending for the state's selection.
func (s FetchState) Terminal() bool {
	return s.Status == StatusLoaded || s.Status == StatusEmpty || s.Status == StatusFailed
}
