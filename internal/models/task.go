package models

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskOverdue    TaskStatus = "overdue"
)

func TaskStatuses() []TaskStatus {
	return []TaskStatus{TaskPending, TaskInProgress, TaskCompleted, TaskOverdue}
}

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted, TaskOverdue:
		return true
	}
	return false
}

type Task struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	UserID           uuid.UUID  `json:"user_id" db:"user_id"`
	Title            string     `json:"title" db:"title"`
	Description      string     `json:"description" db:"description"`
	Deadline         time.Time  `json:"deadline" db:"deadline"`
	Status           TaskStatus `json:"status" db:"status"`
	PartnerEmail     *string    `json:"partner_email,omitempty" db:"partner_email"`
	PartnerConfirmed bool       `json:"partner_confirmed" db:"partner_confirmed"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// EffectiveStatus applies the time-driven overdue transition without persisting it.
// Completed and already-overdue tasks are reported as stored.
func (t *Task) EffectiveStatus(now time.Time) TaskStatus {
	if (t.Status == TaskPending || t.Status == TaskInProgress) && now.After(t.Deadline) {
		return TaskOverdue
	}
	return t.Status
}

func (t *Task) HasPartner() bool {
	return t.PartnerEmail != nil && *t.PartnerEmail != ""
}

// CanMoveTo reports whether the owner may set the given status.
// A partner-confirmed task stays completed.
func (t *Task) CanMoveTo(status TaskStatus) bool {
	if !status.Valid() {
		return false
	}
	if t.PartnerConfirmed && status != TaskCompleted {
		return false
	}
	return true
}

type TaskStats struct {
	Total            int `json:"total"`
	Completed        int `json:"completed"`
	Pending          int `json:"pending"`
	InProgress       int `json:"in_progress"`
	Overdue          int `json:"overdue"`
	CompletionRate   int `json:"completion_rate"`
	WeeklyCompleted  int `json:"weekly_completed"`
	MonthlyCompleted int `json:"monthly_completed"`
	WithPartner      int `json:"with_partner"`
}
