package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/mailer"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/models"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/repository"
)

type ProfileStore interface {
	Create(ctx context.Context, p *models.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	GetByVerificationToken(ctx context.Context, token string) (*models.Profile, error)
	SetVerificationToken(ctx context.Context, id uuid.UUID, token string, sentAt, expiresAt, notSentAfter time.Time) (bool, error)
	MarkVerified(ctx context.Context, id uuid.UUID, token string, at time.Time) (bool, error)
	UpdateDisplayName(ctx context.Context, id uuid.UUID, displayName *string) error
	UpdateAvatar(ctx context.Context, id uuid.UUID, path string) error
}

type VerificationLogStore interface {
	Create(ctx context.Context, l *models.EmailVerificationLog) error
	MarkVerified(ctx context.Context, userID uuid.UUID, token string, at time.Time) error
}

type TaskStore interface {
	Create(ctx context.Context, t *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter repository.TaskFilter) ([]*models.Task, error)
	Update(ctx context.Context, t *models.Task) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.TaskStatus, at time.Time) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
	Stats(ctx context.Context, userID uuid.UUID, now time.Time) (*models.TaskStats, error)
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

type ConfirmationStore interface {
	Create(ctx context.Context, c *models.TaskConfirmation) error
	Confirm(ctx context.Context, token string, at time.Time) (*models.ConfirmedTask, error)
}

type ReminderStore interface {
	Exists(ctx context.Context, taskID uuid.UUID, reminderType models.ReminderType) (bool, error)
	Claim(ctx context.Context, rec *models.EmailReminder, send func(ctx context.Context) error) (bool, error)
}

type ActivityStore interface {
	Create(ctx context.Context, a *models.Activity) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Activity, error)
}

// EmailSender renders and delivers every email the service sends.
type EmailSender interface {
	SendVerificationEmail(ctx context.Context, to, name, verifyURL string) error
	SendReminder(ctx context.Context, to string, reminderType models.ReminderType, data mailer.ReminderData) error
	SendPartnerUpdate(ctx context.Context, to string, data mailer.ReminderData) error
	SendConfirmationRequest(ctx context.Context, to string, data mailer.ConfirmationData) error
	VerificationURL(token string) string
	ConfirmationURL(token string) string
}

// Clock lets tests pin the current time.
type Clock func() time.Time
