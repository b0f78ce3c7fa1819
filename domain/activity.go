package domain

import "time"

// ActivityRepository defines the interface for the sink-side activity store.
type ActivityRepository interface {
	// InsertActivity stores a delivered entry. Inserting an entry whose ID is
	// already stored is a no-op.
	InsertActivity(activity *Activity) error
	// GetActivities returns stored activities matching filter, newest first.
	GetActivities(filter ActivityFilter) ([]*Activity, error)
}

// Activity is an entry as kept by the sink store.
type Activity struct {
	Entry
	ReceivedAt time.Time // Time the sink accepted the entry.
}

// ActivityFilter narrows GetActivities. Zero-valued fields are ignored.
type ActivityFilter struct {
	UserID    string
	Action    string
	Level     Level
	SessionID string
	Limit     int
}
