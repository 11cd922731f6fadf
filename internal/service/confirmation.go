package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/mailer"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/models"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/repository"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/token"
	"github.com/zhanserikAmangeldi/taskmate-service/pkg/logger"
	"github.com/zhanserikAmangeldi/taskmate-service/pkg/metrics"
)

type ConfirmationOption func(*ConfirmationService)

func WithConfirmationClock(clock Clock) ConfirmationOption {
	return func(s *ConfirmationService) {
		if clock != nil {
			s.now = clock
		}
	}
}

func WithConfirmationActivity(rec activityRecorder) ConfirmationOption {
	return func(s *ConfirmationService) {
		if rec != nil {
			s.activity = rec
		}
	}
}

// ConfirmationService lets a partner mark an owner's task completed through a
// one-time emailed link.
type ConfirmationService struct {
	confirmations ConfirmationStore
	tasks         TaskStore
	profiles      ProfileStore
	emails        EmailSender
	activity      activityRecorder
	now           Clock
}

func NewConfirmationService(confirmations ConfirmationStore, tasks TaskStore, profiles ProfileStore, emails EmailSender, opts ...ConfirmationOption) *ConfirmationService {
	s := &ConfirmationService{
		confirmations: confirmations,
		tasks:         tasks,
		profiles:      profiles,
		emails:        emails,
		activity:      noopRecorder{},
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Confirm consumes the confirmation token and completes its task atomically.
func (s *ConfirmationService) Confirm(ctx context.Context, tok string) (confirmed *models.ConfirmedTask, err error) {
	defer func() { metrics.Confirmations.WithLabelValues(outcome(err)).Inc() }()

	if tok == "" {
		return nil, ErrTokenRequired
	}

	confirmed, err = s.confirmations.Confirm(ctx, tok, s.now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrConfirmationNotFound):
			return nil, ErrTokenNotFound
		case errors.Is(err, repository.ErrAlreadyConfirmed):
			return nil, ErrAlreadyConfirmed
		case errors.Is(err, repository.ErrTaskNotFound):
			return nil, ErrTaskNotFound
		default:
			return nil, upstream("confirm task", err)
		}
	}

	taskID := confirmed.ID
	s.activity.Record(ctx, confirmed.UserID, &taskID, models.ActivityTaskCompleted,
		fmt.Sprintf("Partner confirmed %q", confirmed.Title))
	logger.Audit("task_confirmed", confirmed.UserID, logger.TaskID(confirmed.ID))

	return confirmed, nil
}

// RequestConfirmation creates a confirmation for one of the owner's tasks and
// emails the partner the link. The email is best effort; the confirmation stands
// even if it could not be delivered.
func (s *ConfirmationService) RequestConfirmation(ctx context.Context, ownerID, taskID uuid.UUID) (*models.TaskConfirmation, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, upstream("load task", err)
	}
	if task.UserID != ownerID {
		return nil, ErrTaskNotFound
	}
	if !task.HasPartner() {
		return nil, ErrNoPartner
	}
	if task.PartnerConfirmed {
		return nil, ErrAlreadyConfirmed
	}

	tok, err := token.Generate()
	if err != nil {
		return nil, fmt.Errorf("issue confirmation token: %w", err)
	}

	confirmation := &models.TaskConfirmation{
		TaskID:            task.ID,
		ConfirmationToken: tok,
	}
	if err := s.confirmations.Create(ctx, confirmation); err != nil {
		return nil, upstream("create confirmation", err)
	}

	ownerName := ""
	if owner, err := s.profiles.GetByID(ctx, task.UserID); err == nil {
		ownerName = owner.Name()
	}

	err = s.emails.SendConfirmationRequest(ctx, *task.PartnerEmail, mailer.ConfirmationData{
		OwnerName:  ownerName,
		TaskTitle:  task.Title,
		Deadline:   task.Deadline,
		ConfirmURL: s.emails.ConfirmationURL(tok),
	})
	metrics.EmailsSent.WithLabelValues("confirmation_request", metrics.Result(err)).Inc()
	if err != nil {
		logger.ForTask("confirmation", task.ID).Warn("failed to email partner confirmation link",
			zap.Error(err),
		)
	}

	return confirmation, nil
}
