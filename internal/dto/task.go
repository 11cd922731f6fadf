package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/models"
)

type TaskRequest struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Deadline     time.Time `json:"deadline"`
	PartnerEmail string    `json:"partner_email,omitempty"`
}

type UpdateStatusRequest struct {
	Status models.TaskStatus `json:"status" binding:"required"`
}

type TaskListResponse struct {
	Tasks []*models.Task `json:"tasks"`
	Count int            `json:"count"`
}

type ConfirmTaskRequest struct {
	Token string `json:"token"`
}

type ConfirmTaskResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Task    *models.ConfirmedTask `json:"task"`
}

type RequestConfirmationResponse struct {
	ConfirmationID uuid.UUID `json:"confirmation_id"`
	Message        string    `json:"message"`
}

type SendReminderRequest struct {
	TaskID       uuid.UUID           `json:"taskId" binding:"required"`
	ReminderType models.ReminderType `json:"reminderType" binding:"required"`
}

type SendReminderResponse struct {
	Success bool   `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
}

type SweepResponse struct {
	Marked int64 `json:"marked"`
}

type ActivityListResponse struct {
	Activities []*models.Activity `json:"activities"`
}
