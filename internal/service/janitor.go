package service

import (
	"context"
	"time"

	"plant_monitor/internal/logger"
	"plant_monitor/internal/repository"
)

// SessionJanitor periodically deletes expired sessions.
type SessionJanitor struct {
	sessions repository.Sessions
	now      func() time.Time
	log      *logger.Logger
}

func NewSessionJanitor(sessions repository.Sessions, now func() time.Time, log *logger.Logger) *SessionJanitor {
	if now == nil {
		now = time.Now
	}
	return &SessionJanitor{sessions: sessions, now: now, log: log}
}

// Run ticks at the given interval until ctx is canceled.
func (j *SessionJanitor) Run(ctx context.Context, tick time.Duration) {
	if tick <= 0 {
		tick = time.Minute
	}
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			j.sweep(ctx)
		}
	}
}

// sweep runs one cleanup pass and returns the number of removed sessions.
func (j *SessionJanitor) sweep(ctx context.Context) int64 {
	n, err := j.sessions.DeleteExpired(ctx, j.now())
	if err != nil {
		if j.log != nil && ctx.Err() == nil {
			j.log.Warnw("session_sweep_failed", "err", err)
		}
		return 0
	}
	if n > 0 && j.log != nil {
		j.log.Infow("sessions_expired", "count", n)
	}
	return n
}
