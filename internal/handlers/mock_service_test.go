package handlers

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"plant_monitor/internal/chart"
	"plant_monitor/internal/dashboard"
	"plant_monitor/internal/models"
	"plant_monitor/internal/service"
	"plant_monitor/internal/telemetry"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	loginToken string
	loginErr   error
	session    *models.Session
	validErr   error
	logoutErr  error

	lastLoginEmail    string
	lastLoginPassword string
	lastToken         string
	loggedOut         *models.Session
}

func (m *mockAuth) Login(ctx context.Context, email, password string) (string, error) {
	m.lastLoginEmail = email
	m.lastLoginPassword = password
	return m.loginToken, m.loginErr
}

func (m *mockAuth) ParseToken(token string) (*service.Claims, error) {
	return &service.Claims{}, nil
}

func (m *mockAuth) ValidateSession(ctx context.Context, token string) (*models.Session, error) {
	m.lastToken = token
	if m.validErr != nil {
		return nil, m.validErr
	}
	if m.session != nil {
		return m.session, nil
	}
	return &models.Session{ID: "s-1", Email: "ana@example.com"}, nil
}

func (m *mockAuth) Logout(ctx context.Context, s *models.Session) error {
	m.loggedOut = s
	return m.logoutErr
}

type mockPlants struct {
	plants    []models.Plant
	listErr   error
	statusErr error
	createErr error

	lastActor  string
	lastID     int
	lastStatus models.PlantStatus
	created    []models.NewPlant
}

func (m *mockPlants) List(ctx context.Context) ([]models.Plant, error) {
	return m.plants, m.listErr
}

func (m *mockPlants) Cached() []models.Plant { return m.plants }

func (m *mockPlants) PlantName(id string) (string, bool) { return "", false }

func (m *mockPlants) SetStatus(ctx context.Context, actor string, id int, status models.PlantStatus) (models.Plant, error) {
	m.lastActor, m.lastID, m.lastStatus = actor, id, status
	if m.statusErr != nil {
		return models.Plant{}, m.statusErr
	}
	return models.Plant{ID: id, Name: "Basil", Status: status}, nil
}

func (m *mockPlants) Create(ctx context.Context, actor string, p models.NewPlant) error {
	m.lastActor = actor
	m.created = append(m.created, p)
	return m.createErr
}

// mockTelemetry serves snapshots from a fixed series and builds real
// controllers over the same loader.
type mockTelemetry struct {
	mu       sync.Mutex
	series   map[string]telemetry.ChartSeries
	err      error
	lastDays int
	renders  int
	// hold, when set, blocks loads until it is closed.
	hold chan struct{}
}

func (m *mockTelemetry) load(ctx context.Context, plantID string, days int) (telemetry.ChartSeries, error) {
	if m.hold != nil {
		select {
		case <-m.hold:
		case <-ctx.Done():
			return telemetry.ChartSeries{}, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastDays = days
	if m.err != nil {
		return telemetry.ChartSeries{}, m.err
	}
	return m.series[plantID], nil
}

func (m *mockTelemetry) Snapshot(ctx context.Context, plantID string, days int) (service.Snapshot, error) {
	if days == 0 {
		days = telemetry.DefaultWindow
	}
	if !telemetry.ValidWindow(days) {
		return service.Snapshot{}, dashboard.ErrInvalidWindow
	}
	series, err := m.load(ctx, plantID, days)
	return m.Describe(dashboard.Resolve(plantID, days, series, err)), nil
}

func (m *mockTelemetry) NewDashboard(ctx context.Context) *dashboard.Controller {
	return dashboard.New(ctx, dashboard.LoaderFunc(m.load), dashboard.Options{})
}

func (m *mockTelemetry) Describe(st dashboard.FetchState) service.Snapshot {
	name := ""
	if st.PlantID != "" {
		name = "Plant " + st.PlantID
	}
	return service.Snapshot{FetchState: st, PlantName: name}
}

func (m *mockTelemetry) RenderChart(w io.Writer, snap service.Snapshot, f chart.Format) error {
	m.mu.Lock()
	m.renders++
	m.mu.Unlock()
	if snap.Series == nil {
		return chart.ErrNothingToPlot
	}
	return chart.Renderer{Width: 320, Height: 200}.Render(w, *snap.Series, f)
}

func (m *mockTelemetry) DefaultWindow() int { return telemetry.DefaultWindow }

type mockActivity struct {
	resp      []models.ActivityEvent
	err       error
	lastFrom  time.Time
	lastTo    time.Time
	lastType  string
	lastActor string
}

func (m *mockActivity) List(ctx context.Context, f service.LogFilter) ([]models.ActivityEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	m.lastActor = f.Actor
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func withAuth(req *http.Request) *http.Request {
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	return req
}

func fp(v float64) *float64 { return &v }
