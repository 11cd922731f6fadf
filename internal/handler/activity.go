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
)

type activityService interface {
	List(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Activity, error)
}

type ActivityHandler struct {
	activity activityService
}

func NewActivityHandler(activity activityService) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

// List godoc
// @Summary Recent activity, newest first
// @Tags activity
// @Security BearerAuth
// @Param limit query int false "Maximum number of entries (default 20, max 100)"
// @Success 200 {object} dto.ActivityListResponse
// @Router /api/v1/activity [get]
func (h *ActivityHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("unauthorized", ""))
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse("validation_error", "limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	activities, err := h.activity.List(c.Request.Context(), userID, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ActivityListResponse{Activities: activities})
}
