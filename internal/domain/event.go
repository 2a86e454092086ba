package domain

import "time"

// Lifecycle event names delivered to external collaborators
const (
	EventContentCreated   = "content.created"
	EventContentUpdated   = "content.updated"
	EventContentPublished = "content.published"
	EventContentModerated = "content.moderated"
	EventContentDeleted   = "content.deleted"
)

// LifecycleEvent is the notification payload pushed to the event sink on
// every committed mutation
type LifecycleEvent struct {
	Event           string    `json:"event"`
	Timestamp       time.Time `json:"timestamp"`
	ContentID       uint64    `json:"content_id"`
	ActorID         string    `json:"actor_id,omitempty"`
	ResultingStatus string    `json:"resulting_status"`
}
