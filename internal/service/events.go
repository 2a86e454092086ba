package service

import (
	"time"

	"github.com/newsdesk/content-service/internal/domain"
	pkglogger "github.com/newsdesk/content-service/pkg/logger"
)

// EventSink receives lifecycle events after their triggering state change
// has committed. Implementations must not block the calling path.
type EventSink interface {
	Publish(event domain.LifecycleEvent)
}

// LogSink writes lifecycle events to the structured log
type LogSink struct{}

// NewLogSink creates a new LogSink
func NewLogSink() *LogSink {
	return &LogSink{}
}

// Publish logs the event
func (s *LogSink) Publish(event domain.LifecycleEvent) {
	pkglogger.GetLogger().Info().
		Str("event", event.Event).
		Uint64("content_id", event.ContentID).
		Str("actor_id", event.ActorID).
		Str("resulting_status", event.ResultingStatus).
		Time("timestamp", event.Timestamp).
		Msg("lifecycle event")
}

func emitEvent(sink EventSink, name string, c *domain.Content, actorID string) {
	if sink == nil {
		return
	}
	sink.Publish(domain.LifecycleEvent{
		Event:           name,
		Timestamp:       time.Now(),
		ContentID:       c.ID,
		ActorID:         actorID,
		ResultingStatus: string(c.Status),
	})
}
