package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/dto"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/middleware"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/models"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/service"
)

type taskService interface {
	Create(ctx context.Context, ownerID uuid.UUID, in service.TaskInput) (*models.Task, error)
	Get(ctx context.Context, ownerID, taskID uuid.UUID) (*models.Task, error)
	List(ctx context.Context, ownerID uuid.UUID, q service.TaskListQuery) ([]*models.Task, error)
	Update(ctx context.Context, ownerID, taskID uuid.UUID, in service.TaskInput) (*models.Task, error)
	SetStatus(ctx context.Context, ownerID, taskID uuid.UUID, status models.TaskStatus) (*models.Task, error)
	Delete(ctx context.Context, ownerID, taskID uuid.UUID) error
	Stats(ctx context.Context, ownerID uuid.UUID) (*models.TaskStats, error)
	SweepOverdue(ctx context.Context) (int64, error)
}

type confirmationService interface {
	Confirm(ctx context.Context, token string) (*models.ConfirmedTask, error)
	RequestConfirmation(ctx context.Context, ownerID, taskID uuid.UUID) (*models.TaskConfirmation, error)
}

type TaskHandler struct {
	tasks         taskService
	confirmations confirmationService
}

func NewTaskHandler(tasks taskService, confirmations confirmationService) *TaskHandler {
	return &TaskHandler{tasks: tasks, confirmations: confirmations}
}

func toTaskInput(req *dto.TaskRequest) service.TaskInput {
	return service.TaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Deadline:     req.Deadline,
		PartnerEmail: req.PartnerEmail,
	}
}

// ownerAndTask resolves the caller and the :id path parameter, writing the error response itself.
func ownerAndTask(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("unauthorized", ""))
		return uuid.Nil, uuid.Nil, false
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("validation_error", "Invalid task ID"))
		return uuid.Nil, uuid.Nil, false
	}
	return userID, taskID, true
}

// Create godoc
// @Summary Create a task
// @Tags tasks
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.TaskRequest true "Task"
// @Success 201 {object} models.Task
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("unauthorized", ""))
		return
	}

	var req dto.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), userID, toTaskInput(&req))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// List godoc
// @Summary List own tasks, newest first
// @Tags tasks
// @Security BearerAuth
// @Produce json
// @Param status query string false "pending, in_progress, completed, overdue or all"
// @Param search query string false "Title substring"
// @Param limit query int false "Maximum number of tasks"
// @Success 200 {object} dto.TaskListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("unauthorized", ""))
		return
	}

	q := service.TaskListQuery{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse("validation_error", "limit must be a non-negative integer"))
			return
		}
		q.Limit = limit
	}

	tasks, err := h.tasks.List(c.Request.Context(), userID, q)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TaskListResponse{Tasks: tasks, Count: len(tasks)})
}

// Get godoc
// @Summary Get one of the caller's tasks
// @Tags tasks
// @Security BearerAuth
// @Param id path string true "Task ID" format(uuid)
// @Success 200 {object} models.Task
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/tasks/{id} [get]
func (h *TaskHandler) Get(c *gin.Context) {
	userID, taskID, ok := ownerAndTask(c)
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), userID, taskID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// Update godoc
// @Summary Edit a task
// @Tags tasks
// @Security BearerAuth
// @Accept json
// @Param id path string true "Task ID" format(uuid)
// @Param request body dto.TaskRequest true "Task"
// @Success 200 {object} models.Task
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	userID, taskID, ok := ownerAndTask(c)
	if !ok {
		return
	}

	var req dto.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), userID, taskID, toTaskInput(&req))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// UpdateStatus godoc
// @Summary Change a task's status
// @Tags tasks
// @Security BearerAuth
// @Accept json
// @Param id path string true "Task ID" format(uuid)
// @Param request body dto.UpdateStatusRequest true "Status"
// @Success 200 {object} models.Task
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/tasks/{id}/status [patch]
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	userID, taskID, ok := ownerAndTask(c)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	task, err := h.tasks.SetStatus(c.Request.Context(), userID, taskID, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// Delete godoc
// @Summary Delete a task
// @Tags tasks
// @Security BearerAuth
// @Param id path string true "Task ID" format(uuid)
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, taskID, ok := ownerAndTask(c)
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), userID, taskID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "Task deleted"})
}

// Stats godoc
// @Summary Task counters for the dashboard
// @Tags tasks
// @Security BearerAuth
// @Success 200 {object} models.TaskStats
// @Router /api/v1/tasks/stats [get]
func (h *TaskHandler) Stats(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("unauthorized", ""))
		return
	}

	stats, err := h.tasks.Stats(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// RequestConfirmation godoc
// @Summary Ask the task's partner to confirm completion
// @Tags tasks
// @Security BearerAuth
// @Param id path string true "Task ID" format(uuid)
// @Success 201 {object} dto.RequestConfirmationResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/tasks/{id}/request-confirmation [post]
func (h *TaskHandler) RequestConfirmation(c *gin.Context) {
	userID, taskID, ok := ownerAndTask(c)
	if !ok {
		return
	}

	confirmation, err := h.confirmations.RequestConfirmation(c.Request.Context(), userID, taskID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.RequestConfirmationResponse{
		ConfirmationID: confirmation.ID,
		Message:        "Confirmation request sent to your partner",
	})
}

// Confirm godoc
// @Summary Partner confirms a task with the emailed token
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body dto.ConfirmTaskRequest true "Token"
// @Success 200 {object} dto.ConfirmTaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/tasks/confirm [post]
func (h *TaskHandler) Confirm(c *gin.Context) {
	var req dto.ConfirmTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	confirmed, err := h.confirmations.Confirm(c.Request.Context(), req.Token)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ConfirmTaskResponse{
		Success: true,
		Message: "Task confirmed successfully",
		Task:    confirmed,
	})
}

// SweepOverdue godoc
// @Summary Persist overdue status for open tasks past their deadline
// @Tags internal
// @Success 200 {object} dto.SweepResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/v1/internal/tasks/sweep-overdue [post]
func (h *TaskHandler) SweepOverdue(c *gin.Context) {
	n, err := h.tasks.SweepOverdue(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SweepResponse{Marked: n})
}
