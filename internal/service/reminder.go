package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/mailer"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/models"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/repository"
	"github.com/zhanserikAmangeldi/taskmate-service/pkg/logger"
	"github.com/zhanserikAmangeldi/taskmate-service/pkg/metrics"
)

type ReminderOption func(*ReminderService)

func WithReminderActivity(rec activityRecorder) ReminderOption {
	return func(s *ReminderService) {
		if rec != nil {
			s.activity = rec
		}
	}
}

// ReminderService sends at most one reminder per (task, reminder type).
type ReminderService struct {
	tasks     TaskStore
	profiles  ProfileStore
	reminders ReminderStore
	emails    EmailSender
	activity  activityRecorder
}

func NewReminderService(tasks TaskStore, profiles ProfileStore, reminders ReminderStore, emails EmailSender, opts ...ReminderOption) *ReminderService {
	s := &ReminderService{
		tasks:     tasks,
		profiles:  profiles,
		reminders: reminders,
		emails:    emails,
		activity:  noopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SendReminder emails the task owner the reminder of the given type, then the
// partner if one is set. It reports alreadySent when the reminder went out
// before, in which case nobody is emailed.
func (s *ReminderService) SendReminder(ctx context.Context, taskID uuid.UUID, reminderType models.ReminderType) (alreadySent bool, err error) {
	if !reminderType.Valid() {
		return false, ErrInvalidReminderType
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return false, ErrTaskNotFound
		}
		return false, upstream("load task", err)
	}

	// Claim still decides under concurrency; this only skips the owner lookup and
	// rendering for reminders that are already on record.
	sent, err := s.reminders.Exists(ctx, task.ID, reminderType)
	if err != nil {
		return false, upstream("check reminder record", err)
	}
	if sent {
		metrics.Reminders.WithLabelValues(string(reminderType), "already_sent").Inc()
		return true, nil
	}

	owner, err := s.profiles.GetByID(ctx, task.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return false, ErrProfileNotFound
		}
		return false, upstream("load task owner", err)
	}

	data := mailer.ReminderData{
		OwnerName: owner.Name(),
		TaskTitle: task.Title,
		Deadline:  task.Deadline,
	}
	record := &models.EmailReminder{
		TaskID:         task.ID,
		ReminderType:   reminderType,
		RecipientEmail: owner.Email,
	}

	log := logger.ForTask("reminder", task.ID).With(zap.String("reminder_type", string(reminderType)))

	var sendErr error
	claimed, err := s.reminders.Claim(ctx, record, func(ctx context.Context) error {
		sendErr = s.emails.SendReminder(ctx, owner.Email, reminderType, data)
		metrics.EmailsSent.WithLabelValues("reminder", metrics.Result(sendErr)).Inc()
		return sendErr
	})
	switch {
	case errors.Is(err, repository.ErrReminderNotRecorded):
		log.Error("reminder sent but dedup record was not committed", zap.Error(err))
	case err != nil && sendErr != nil:
		metrics.Reminders.WithLabelValues(string(reminderType), "failed").Inc()
		return false, upstream("send reminder", sendErr)
	case err != nil:
		metrics.Reminders.WithLabelValues(string(reminderType), "failed").Inc()
		return false, upstream("claim reminder", err)
	case !claimed:
		metrics.Reminders.WithLabelValues(string(reminderType), "already_sent").Inc()
		return true, nil
	}
	metrics.Reminders.WithLabelValues(string(reminderType), "sent").Inc()

	if task.HasPartner() {
		err := s.emails.SendPartnerUpdate(ctx, *task.PartnerEmail, data)
		metrics.EmailsSent.WithLabelValues("partner_update", metrics.Result(err)).Inc()
		if err != nil {
			log.Warn("failed to notify partner", zap.Error(err))
		}
	}

	s.activity.Record(ctx, task.UserID, &task.ID, models.ActivityReminderSent,
		fmt.Sprintf("Sent %s reminder for %q", reminderType, task.Title))
	logger.Audit("reminder_sent", task.UserID,
		logger.TaskID(task.ID),
		zap.String("reminder_type", string(reminderType)),
	)

	return false, nil
}
