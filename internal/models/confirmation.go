package models

import (
	"time"

	"github.com/google/uuid"
)

type TaskConfirmation struct {
	ID                uuid.UUID  `json:"id"`
	TaskID            uuid.UUID  `json:"task_id"`
	ConfirmationToken string     `json:"-"`
	ConfirmedAt       *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// ConfirmedTask is what a partner sees after confirming: the task and who owns it.
type ConfirmedTask struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	UserID      uuid.UUID `json:"user_id"`
	OwnerEmail  string    `json:"owner_email"`
	OwnerName   *string   `json:"owner_name,omitempty"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}
