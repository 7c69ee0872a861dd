package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"plant_monitor/internal/logger"
	"plant_monitor/internal/models"
	"plant_monitor/internal/repository"
)

// UnknownPlantName is shown when a plant id is not in the cached list.
const UnknownPlantName = "unknown plant"

// ErrInvalidPlant matches every validation failure of Create.
var ErrInvalidPlant = errors.New("invalid plant")

var (
	errEmptyPlantName      = fmt.Errorf("%w: name is required", ErrInvalidPlant)
	errEmptyDescription    = fmt.Errorf("%w: description is required", ErrInvalidPlant)
	errInvalidInterval     = fmt.Errorf("%w: interval_type must be 1 (minutes), 2 (hours) or 3 (days)", ErrInvalidPlant)
	errInvalidIntervalTime = fmt.Errorf("%w: interval_time must be at least 1", ErrInvalidPlant)
)

// PlantService keeps the last plant list fetched from the backend so status
// changes can be applied locally without a refetch.
type PlantService struct {
	api      Backend
	activity repository.Activity
	log      *logger.Logger

	mu     sync.RWMutex
	plants []models.Plant
}

func NewPlantService(api Backend, activity repository.Activity, log *logger.Logger) *PlantService {
	return &PlantService{api: api, activity: activity, log: log}
}

// List fetches the plant list and replaces the cached copy.
func (s *PlantService) List(ctx context.Context) ([]models.Plant, error) {
	plants, err := s.api.ListPlants(ctx)
	if err != nil {
		return nil, fmt.Errorf("list plants: %w", err)
	}
	s.mu.Lock()
	s.plants = plants
	s.mu.Unlock()

	if s.log != nil {
		s.log.Debugw("plant_list_loaded", "count", len(plants))
	}
	return clonePlants(plants), nil
}

// Cached returns the last fetched list without contacting the backend.
func (s *PlantService) Cached() []models.Plant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePlants(s.plants)
}

// PlantName looks a plant up in the cached list.
func (s *PlantService) PlantName(plantID string) (string, bool) {
	id, err := strconv.Atoi(plantID)
	if err != nil {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.plants {
		if p.ID == id {
			return p.Name, true
		}
	}
	return "", false
}

// SetStatus switches a plant on the backend and, on success, updates the
// cached entry in place.
func (s *PlantService) SetStatus(ctx context.Context, actor string, id int, status models.PlantStatus) (models.Plant, error) {
	if status != models.PlantActive && status != models.PlantInactive {
		return models.Plant{}, fmt.Errorf("%w: unknown status %d", ErrInvalidPlant, status)
	}
	if err := s.api.SetPlantStatus(ctx, id, status); err != nil {
		return models.Plant{}, fmt.Errorf("set plant %d status: %w", id, err)
	}

	updated := models.Plant{ID: id, Status: status}
	s.mu.Lock()
	for i := range s.plants {
		if s.plants[i].ID == id {
			s.plants[i].Status = status
			updated = s.plants[i]
			break
		}
	}
	s.mu.Unlock()

	record(ctx, s.activity, s.log, models.ActivityEvent{
		OccurredAt:  time.Now().UTC(),
		Type:        models.ActivityStatusChange,
		Actor:       actor,
		Description: fmt.Sprintf("plant %d set to %s", id, status),
		Metadata:    map[string]any{"plant_id": id, "status": status.String()},
	})
	return updated, nil
}

// ValidateNewPlant applies the registration form rules.
func ValidateNewPlant(p models.NewPlant) error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return errEmptyPlantName
	case strings.TrimSpace(p.Description) == "":
		return errEmptyDescription
	case !p.IntervalType.Valid():
		return errInvalidInterval
	case p.IntervalValue < 1:
		return errInvalidIntervalTime
	}
	return nil
}

// Create registers a plant on the backend.
func (s *PlantService) Create(ctx context.Context, actor string, p models.NewPlant) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	if err := ValidateNewPlant(p); err != nil {
		return err
	}
	if err := s.api.CreatePlant(ctx, p); err != nil {
		return fmt.Errorf("create plant %q: %w", p.Name, err)
	}

	meta := map[string]any{
		"name":           p.Name,
		"interval_type":  int(p.IntervalType),
		"interval_value": p.IntervalValue,
	}
	if p.Image != nil {
		meta["image"] = p.Image.Filename
	}
	record(ctx, s.activity, s.log, models.ActivityEvent{
		OccurredAt:  time.Now().UTC(),
		Type:        models.ActivityPlantCreated,
		Actor:       actor,
		Description: "registered plant " + p.Name,
		Metadata:    meta,
	})
	return nil
}

func clonePlants(in []models.Plant) []models.Plant {
	if in == nil {
		return []models.Plant{}
	}
	out := make([]models.Plant, len(in))
	copy(out, in)
	return out
}
