package models

import "time"

// Activity types recorded in the per-order ledger.
const (
	ActivityCreated       = "created"
	ActivityPaid          = "paid"
	ActivityViewed        = "viewed"
	ActivityStatusChanged = "status_changed"
)

// ActivityLogEntry is append-only: written once, never updated or deleted.
type ActivityLogEntry struct {
	ID           int64     `json:"id"`
	OrderNo      string    `json:"order_no"`
	ActivityType string    `json:"activity_type"`
	Description  string    `json:"description"`
	ActorEmail   string    `json:"actor_email"`
	CreatedAt    time.Time `json:"created_at"`
}

func ValidActivityType(t string) bool {
	switch t {
	case ActivityCreated, ActivityPaid, ActivityViewed, ActivityStatusChanged:
		return true
	}
	return false
}
