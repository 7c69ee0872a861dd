package repository

import (
	"context"
	"database/sql"
	"time"

	"plant_monitor/internal/models"
)

// sqliteTimeLayout is how timestamps are stored so that text comparison
// orders them chronologically.
const sqliteTimeLayout = "2006-01-02 15:04:05"

type Sessions interface {
	Create(ctx context.Context, s models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type Activity interface {
	Append(ctx context.Context, e models.ActivityEvent) error
	List(ctx context.Context, q ActivityQuery) ([]models.ActivityEvent, error)
}

// ActivityQuery selects audit trail entries. Zero fields do not filter.
type ActivityQuery struct {
	From  time.Time // inclusive
	To    time.Time // inclusive
	Type  string
	Actor string // matched case-insensitively
}

type Repository struct {
	Sessions Sessions
	Activity Activity
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Sessions: NewSessionSQLite(db),
		Activity: NewActivitySQLite(db),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}
