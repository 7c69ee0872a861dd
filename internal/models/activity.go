package models

import "time"

// Activity types recorded in the audit trail.
const (
	ActivityLogin        = "LOGIN"
	ActivityLogout       = "LOGOUT"
	ActivityStatusChange = "STATUS_CHANGE"
	ActivityPlantCreated = "PLANT_CREATED"
)

// ActivityEvent is a single audit trail entry.
type ActivityEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // LOGIN | LOGOUT | STATUS_CHANGE | PLANT_CREATED
	Actor       string    `json:"actor"`       // email of the session owner
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
