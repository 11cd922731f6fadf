package models

import (
	"time"

	"github.com/google/uuid"
)

type ReminderType string

const (
	Reminder24HoursBefore ReminderType = "24_hours_before"
	ReminderDeadline      ReminderType = "deadline"
	Reminder24HoursAfter  ReminderType = "24_hours_after"
)

func ReminderTypes() []ReminderType {
	return []ReminderType{Reminder24HoursBefore, ReminderDeadline, Reminder24HoursAfter}
}

func (t ReminderType) Valid() bool {
	for _, rt := range ReminderTypes() {
		if t == rt {
			return true
		}
	}
	return false
}

// EmailReminder marks that the owner-facing reminder of a type went out for a task.
// (TaskID, ReminderType) is unique.
type EmailReminder struct {
	ID             uuid.UUID    `json:"id"`
	TaskID         uuid.UUID    `json:"task_id"`
	ReminderType   ReminderType `json:"reminder_type"`
	RecipientEmail string       `json:"recipient_email"`
	SentAt         time.Time    `json:"sent_at"`
}
