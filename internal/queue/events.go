package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/unclebandit/framestorm-backend/internal/logger"
	"github.com/unclebandit/framestorm-backend/internal/model"
)

// Emitter records activity without blocking the caller on the outcome.
type Emitter interface {
	Emit(ev model.ActivityEvent)
}

// Events publishes activity to a topic. A nil *Events drops everything.
type Events struct {
	Queue Queue
	Topic string
}

func (e *Events) Emit(ev model.ActivityEvent) {
	if e == nil || e.Queue == nil {
		return
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	if err := e.Queue.Publish(e.Topic, ev); err != nil {
		logger.Get("queue").WithError(err).WithField("kind", ev.Kind).Warn("failed to publish activity")
	}
}
