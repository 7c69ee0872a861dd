package service

import (
	"context"
	"io"

	"plant_monitor/internal/chart"
	"plant_monitor/internal/dashboard"
	"plant_monitor/internal/logger"
	"plant_monitor/internal/telemetry"
)

// Snapshot is the dashboard state for one request, with the plant's name.
type Snapshot struct {
	dashboard.FetchState
	PlantName string `json:"plant_name"`
}

type TelemetryService struct {
	pipeline      *telemetry.Pipeline
	plants        Plants
	renderer      chart.Renderer
	defaultWindow int
	log           *logger.Logger
}

func NewTelemetryService(api telemetry.Fetcher, plants Plants, opts Options, log *logger.Logger) *TelemetryService {
	window := opts.DefaultWindow
	if !telemetry.ValidWindow(window) {
		window = telemetry.DefaultWindow
	}
	return &TelemetryService{
		pipeline:      telemetry.NewPipeline(api, opts.Transformer, opts.Now),
		plants:        plants,
		renderer:      opts.Chart,
		defaultWindow: window,
		log:           log,
	}
}

// DefaultWindow is the lookback used when a request does not name one.
func (s *TelemetryService) DefaultWindow() int { return s.defaultWindow }

// Snapshot runs the pipeline once. Fetch failures are reported through the
// state; only an unsupported window is returned as an error.
func (s *TelemetryService) Snapshot(ctx context.Context, plantID string, days int) (Snapshot, error) {
	if days == 0 {
		days = s.defaultWindow
	}
	if !telemetry.ValidWindow(days) {
		return Snapshot{}, dashboard.ErrInvalidWindow
	}

	series, err := s.pipeline.Run(ctx, plantID, days)
	if err != nil && s.log != nil {
		s.log.Errorw("telemetry_fetch_failed",
			"plant_id", plantID, "window_days", days, "kind", telemetry.KindOf(err), "err", err)
	}
	return s.Describe(dashboard.Resolve(plantID, days, series, err)), nil
}

// Describe attaches the plant name to a controller state.
func (s *TelemetryService) Describe(st dashboard.FetchState) Snapshot {
	return Snapshot{FetchState: st, PlantName: s.plantName(st.PlantID)}
}

// NewDashboard returns a live controller bound to ctx. The caller must Close it.
func (s *TelemetryService) NewDashboard(ctx context.Context) *dashboard.Controller {
	return dashboard.New(ctx, s.pipeline, dashboard.Options{WindowDays: s.defaultWindow, Log: s.log})
}

// RenderChart draws a loaded snapshot. Other states yield chart.ErrNothingToPlot.
func (s *TelemetryService) RenderChart(w io.Writer, snap Snapshot, f chart.Format) error {
	if snap.Status != dashboard.StatusLoaded || snap.Series == nil {
		return chart.ErrNothingToPlot
	}
	r := s.renderer
	if r.Title == "" {
		r.Title = snap.PlantName
	}
	return r.Render(w, *snap.Series, f)
}

func (s *TelemetryService) plantName(plantID string) string {
	if plantID == "" {
		return ""
	}
	if s.plants != nil {
		if name, ok := s.plants.PlantName(plantID); ok {
			return name
		}
	}
	return UnknownPlantName
}
