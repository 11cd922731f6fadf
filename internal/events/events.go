// Package events publishes domain events to the message bus.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/models"
)

const (
	StreamName      = "TASKMATE"
	ActivityPrefix  = "taskmate.activity."
	ActivitySubject = ActivityPrefix + ">"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, v any) error
}

// Noop discards events. Used when no bus is configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }

type ActivityEvent struct {
	ID          uuid.UUID           `json:"id"`
	UserID      uuid.UUID           `json:"user_id"`
	TaskID      *uuid.UUID          `json:"task_id,omitempty"`
	Type        models.ActivityType `json:"type"`
	Description string              `json:"description"`
	OccurredAt  time.Time           `json:"occurred_at"`
}

func Subject(t models.ActivityType) string {
	return ActivityPrefix + string(t)
}

func FromActivity(a *models.Activity) ActivityEvent {
	return ActivityEvent{
		ID:          a.ID,
		UserID:      a.UserID,
		TaskID:      a.TaskID,
		Type:        a.Type,
		Description: a.Description,
		OccurredAt:  a.CreatedAt,
	}
}
