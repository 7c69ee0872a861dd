package models

import "time"

// Session is a signed-in user as seen by this service.
type Session struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	BackendSession string    `json:"-"` // raw login payload returned by the backend
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer usable at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
