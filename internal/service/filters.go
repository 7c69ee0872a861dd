package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"plant_monitor/internal/models"
	"plant_monitor/internal/repository"
)

// LogFilter narrows the audit trail. Zero fields do not filter.
type LogFilter struct {
	From  time.Time // inclusive
	To    time.Time // inclusive
	Type  string    // one of the models.Activity* types, any case
	Actor string    // email of the session owner
}

var (
	errInvalidTimeRange = errors.New("'from' must be <= 'to'")
	errUnknownEventType = errors.New("unknown activity type")
	errInvalidActor     = errors.New("actor must be an email address")
)

var activityTypes = map[string]struct{}{
	models.ActivityLogin:        {},
	models.ActivityLogout:       {},
	models.ActivityStatusChange: {},
	models.ActivityPlantCreated: {},
}

// query validates f and converts it to a repository query in UTC.
func (f LogFilter) query() (repository.ActivityQuery, error) {
	q := repository.ActivityQuery{
		From:  utcOrZero(f.From),
		To:    utcOrZero(f.To),
		Type:  strings.ToUpper(strings.TrimSpace(f.Type)),
		Actor: strings.ToLower(strings.TrimSpace(f.Actor)),
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.From.After(q.To) {
		return repository.ActivityQuery{}, errInvalidTimeRange
	}
	if q.Type != "" {
		if _, ok := activityTypes[q.Type]; !ok {
			return repository.ActivityQuery{}, fmt.Errorf("%w %q", errUnknownEventType, f.Type)
		}
	}
	if q.Actor != "" && !strings.Contains(q.Actor, "@") {
		return repository.ActivityQuery{}, errInvalidActor
	}
	return q, nil
}

func utcOrZero(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// IsInvalidFilter reports whether err came from filter validation.
func IsInvalidFilter(err error) bool {
	return errors.Is(err, errInvalidTimeRange) ||
		errors.Is(err, errUnknownEventType) ||
		errors.Is(err, errInvalidActor)
}
