package service

import (
	"context"
	"sync"
	"time"

	"plant_monitor/internal/models"
	"plant_monitor/internal/repository"
	"plant_monitor/internal/telemetry"
)

// fakeBackend is an in-memory stand-in for *backend.Client.
type fakeBackend struct {
	mu sync.Mutex

	loginPayload string
	loginErr     error
	loginCalls   int

	plants     []models.Plant
	listErr    error
	listCalls  int
	statusErr  error
	statusSets []struct {
		id     int
		status models.PlantStatus
	}
	createErr error
	created   []models.NewPlant

	entries  []telemetry.LogEntry
	fetchErr error
	fetches  []struct {
		plantID string
		r       telemetry.DateRange
	}
}

func (f *fakeBackend) Login(ctx context.Context, email, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls++
	return f.loginPayload, f.loginErr
}

func (f *fakeBackend) ListPlants(ctx context.Context) ([]models.Plant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Plant, len(f.plants))
	copy(out, f.plants)
	return out, nil
}

func (f *fakeBackend) SetPlantStatus(ctx context.Context, id int, status models.PlantStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusSets = append(f.statusSets, struct {
		id     int
		status models.PlantStatus
	}{id, status})
	return f.statusErr
}

func (f *fakeBackend) CreatePlant(ctx context.Context, p models.NewPlant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, p)
	return f.createErr
}

func (f *fakeBackend) Fetch(ctx context.Context, plantID string, r telemetry.DateRange) ([]telemetry.LogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches = append(f.fetches, struct {
		plantID string
		r       telemetry.DateRange
	}{plantID, r})
	return f.entries, f.fetchErr
}

// fakeSessionRepo keeps sessions in a map.
type fakeSessionRepo struct {
	mu        sync.Mutex
	sessions  map[string]models.Session
	createErr error
	getErr    error
	deleteErr error
	sweepErr  error
	sweeps    []time.Time
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]models.Session{}}
}

func (r *fakeSessionRepo) Create(ctx context.Context, s models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.sessions[s.ID] = s
	return nil
}

func (r *fakeSessionRepo) Get(ctx context.Context, id string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.sessions, id)
	return nil
}

func (r *fakeSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweeps = append(r.sweeps, now)
	if r.sweepErr != nil {
		return 0, r.sweepErr
	}
	var n int64
	for id, s := range r.sessions {
		if s.Expired(now) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeSessionRepo) sweepCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sweeps)
}

// fakeActivityRepo records appended events and captures List arguments.
type fakeActivityRepo struct {
	mu        sync.Mutex
	appended  []models.ActivityEvent
	appendErr error

	got     repository.ActivityQuery
	events  []models.ActivityEvent
	listErr error
	calls   int
}

func (f *fakeActivityRepo) Append(ctx context.Context, e models.ActivityEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended = append(f.appended, e)
	return f.appendErr
}

func (f *fakeActivityRepo) List(ctx context.Context, q repository.ActivityQuery) ([]models.ActivityEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.got = q
	return f.events, f.listErr
}

func (f *fakeActivityRepo) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.appended))
	for _, e := range f.appended {
		out = append(out, e.Type)
	}
	return out
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func fptr(v float64) *float64 { return &v }
