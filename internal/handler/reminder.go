package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/dto"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/models"
)

type reminderService interface {
	SendReminder(ctx context.Context, taskID uuid.UUID, reminderType models.ReminderType) (bool, error)
}

type ReminderHandler struct {
	reminders reminderService
}

func NewReminderHandler(reminders reminderService) *ReminderHandler {
	return &ReminderHandler{reminders: reminders}
}

// Send godoc
// @Summary Send a deadline reminder at most once per task and type
// @Tags internal
// @Accept json
// @Produce json
// @Param request body dto.SendReminderRequest true "Reminder"
// @Success 200 {object} dto.SendReminderResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/reminders [post]
func (h *ReminderHandler) Send(c *gin.Context) {
	var req dto.SendReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	alreadySent, err := h.reminders.SendReminder(c.Request.Context(), req.TaskID, req.ReminderType)
	if err != nil {
		writeError(c, err)
		return
	}

	if alreadySent {
		c.JSON(http.StatusOK, dto.SendReminderResponse{Message: "Reminder already sent"})
		return
	}
	c.JSON(http.StatusOK, dto.SendReminderResponse{Success: true})
}
