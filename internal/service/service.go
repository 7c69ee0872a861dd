package service

import (
	"context"
	"io"
	"time"

	"plant_monitor/internal/chart"
	"plant_monitor/internal/dashboard"
	"plant_monitor/internal/logger"
	"plant_monitor/internal/models"
	"plant_monitor/internal/repository"
	"plant_monitor/internal/telemetry"
)

// Authorization signs users in against the backend and tracks their sessions.
type Authorization interface {
	Login(ctx context.Context, email, password string) (string, error)
	ParseToken(accessToken string) (*Claims, error)
	ValidateSession(ctx context.Context, accessToken string) (*models.Session, error)
	Logout(ctx context.Context, s *models.Session) error
}

// Plants exposes the plant list and its mutations.
type Plants interface {
	List(ctx context.Context) ([]models.Plant, error)
	Cached() []models.Plant
	PlantName(plantID string) (string, bool)
	SetStatus(ctx context.Context, actor string, id int, status models.PlantStatus) (models.Plant, error)
	Create(ctx context.Context, actor string, p models.NewPlant) error
}

// Telemetry serves dashboard state, one-shot or as a live controller.
type Telemetry interface {
	Snapshot(ctx context.Context, plantID string, days int) (Snapshot, error)
	NewDashboard(ctx context.Context) *dashboard.Controller
	Describe(st dashboard.FetchState) Snapshot
	RenderChart(w io.Writer, snap Snapshot, f chart.Format) error
	DefaultWindow() int
}

// ActivityLog exposes the audit trail with filtering access.
type ActivityLog interface {
	List(ctx context.Context, f LogFilter) ([]models.ActivityEvent, error)
}

// Janitor runs the background loop that drops expired sessions.
// Stop via context cancellation in main() for graceful shutdown.
type Janitor interface {
	Run(ctx context.Context, tick time.Duration)
}

// Backend is the part of the REST client the services depend on.
// *backend.Client satisfies it.
type Backend interface {
	telemetry.Fetcher
	Login(ctx context.Context, email, password string) (string, error)
	ListPlants(ctx context.Context) ([]models.Plant, error)
	SetPlantStatus(ctx context.Context, id int, status models.PlantStatus) error
	CreatePlant(ctx context.Context, p models.NewPlant) error
}

// Options carries the tunables read from the config file.
type Options struct {
	SigningKey    string
	TokenTTL      time.Duration
	DefaultWindow int
	Transformer   telemetry.Transformer
	Chart         chart.Renderer
	Now           func() time.Time // time.Now when nil
}

type Service struct {
	Authorization
	Plants
	Telemetry
	ActivityLog
	Janitor
}

// NewService wires the repository layer and the backend client into concrete services.
func NewService(repos *repository.Repository, api Backend, opts Options, log *logger.Logger) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	plants := NewPlantService(api, repos.Activity, log.Named("plants"))
	return &Service{
		Authorization: NewAuthService(api, repos.Sessions, repos.Activity, opts, log.Named("auth")),
		Plants:        plants,
		Telemetry:     NewTelemetryService(api, plants, opts, log.Named("telemetry")),
		ActivityLog:   NewActivityLogService(repos.Activity),
		Janitor:       NewSessionJanitor(repos.Sessions, opts.Now, log.Named("janitor")),
	}
}

// record appends an audit event. Failures are logged and never surface to the caller.
func record(ctx context.Context, repo repository.Activity, log *logger.Logger, e models.ActivityEvent) {
	if repo == nil {
		return
	}
	if err := repo.Append(ctx, e); err != nil && log != nil {
		log.Warnw("activity_append_failed", "type", e.Type, "actor", e.Actor, "err", err)
	}
}
