package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/events"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/models"
	"github.com/zhanserikAmangeldi/taskmate-service/pkg/logger"
)

// ActivityService keeps the per-user activity feed. Recording is best effort:
// callers never fail because a feed entry or its event could not be written.
type ActivityService struct {
	store     ActivityStore
	publisher events.Publisher
}

func NewActivityService(store ActivityStore, publisher events.Publisher) *ActivityService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &ActivityService{store: store, publisher: publisher}
}

func (s *ActivityService) Record(ctx context.Context, userID uuid.UUID, taskID *uuid.UUID, kind models.ActivityType, description string) {
	a := &models.Activity{
		UserID:      userID,
		TaskID:      taskID,
		Type:        kind,
		Description: description,
	}

	log := logger.ForUser("activity", userID)
	if err := s.store.Create(ctx, a); err != nil {
		log.Warn("failed to record activity",
			zap.String("type", string(kind)),
			zap.Error(err),
		)
		return
	}

	if err := s.publisher.Publish(ctx, events.Subject(kind), events.FromActivity(a)); err != nil {
		log.Warn("failed to publish activity event",
			zap.String("activity_id", a.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *ActivityService) List(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Activity, error) {
	activities, err := s.store.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, upstream("list activity", err)
	}
	if activities == nil {
		activities = []*models.Activity{}
	}
	return activities, nil
}

// activityRecorder is what the state machines need from ActivityService.
type activityRecorder interface {
	Record(ctx context.Context, userID uuid.UUID, taskID *uuid.UUID, kind models.ActivityType, description string)
}

type noopRecorder struct{}

func (noopRecorder) Record(context.Context, uuid.UUID, *uuid.UUID, models.ActivityType, string) {}
