package service

import (
	"context"

	"plant_monitor/internal/models"
	"plant_monitor/internal/repository"
)

// ActivityLogService reads the audit trail written by the other services.
type ActivityLogService struct {
	activityRepo repository.Activity
}

func NewActivityLogService(activityRepo repository.Activity) *ActivityLogService {
	return &ActivityLogService{activityRepo: activityRepo}
}

func (s *ActivityLogService) List(ctx context.Context, f LogFilter) ([]models.ActivityEvent, error) {
	q, err := f.query()
	if err != nil {
		return nil, err
	}
	return s.activityRepo.List(ctx, q)
}
