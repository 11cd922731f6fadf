package models

import (
	"time"

	"github.com/google/uuid"
)

type ActivityType string

const (
	ActivityTaskCreated   ActivityType = "task_created"
	ActivityTaskUpdated   ActivityType = "task_updated"
	ActivityTaskCompleted ActivityType = "task_completed"
	ActivityPartnerAdded  ActivityType = "partner_added"
	ActivityReminderSent  ActivityType = "reminder_sent"
)

type Activity struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	UserID      uuid.UUID    `json:"user_id" db:"user_id"`
	TaskID      *uuid.UUID   `json:"task_id,omitempty" db:"task_id"`
	Type        ActivityType `json:"type" db:"type"`
	Description string       `json:"description" db:"description"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
}
