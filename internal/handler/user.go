package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/dto"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/middleware"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/models"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/service"
)

type profileService interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpdateDisplayName(ctx context.Context, userID uuid.UUID, displayName *string) (*models.Profile, error)
	SetAvatar(ctx context.Context, userID uuid.UUID, ext string, body io.Reader, size int64, contentType string) (string, error)
	Avatar(ctx context.Context, userID uuid.UUID) (*service.Avatar, error)
	DeleteAvatar(ctx context.Context, userID uuid.UUID) error
}

type UserHandler struct {
	profiles profileService
}

func NewUserHandler(profiles profileService) *UserHandler {
	return &UserHandler{profiles: profiles}
}

// GetMe godoc
// @Summary Get current user profile
// @Tags users
// @Security BearerAuth
// @Success 200 {object} models.Profile
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("unauthorized", ""))
		return
	}

	profile, err := h.profiles.Get(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateMe godoc
// @Summary Update current user profile
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.UpdateProfileRequest true "Update data"
// @Success 200 {object} models.Profile
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/v1/users/me [put]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("unauthorized", ""))
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	profile, err := h.profiles.UpdateDisplayName(c.Request.Context(), userID, req.DisplayName)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
