package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/dto"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/middleware"
)

const (
	MaxAvatarSize     = 5 << 20 // 5 MB
	AvatarContentType = "image/"
)

var allowedAvatarExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// AvatarHandler serves the caller's avatar out of object storage.
type AvatarHandler struct {
	profiles profileService
}

func NewAvatarHandler(profiles profileService) *AvatarHandler {
	return &AvatarHandler{profiles: profiles}
}

// UploadAvatar godoc
// @Summary Upload user avatar
// @Tags users
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} map[string]string
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/v1/users/avatar [post]
func (h *AvatarHandler) UploadAvatar(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("unauthorized", ""))
		return
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("validation_error", "Avatar file is required"))
		return
	}

	if fileHeader.Size > MaxAvatarSize {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("validation_error", "Avatar file is too large (max 5MB)"))
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, AvatarContentType) {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("validation_error", "Invalid file type. Only images are allowed"))
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedAvatarExtensions[ext] {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("validation_error", "Invalid file extension"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("internal_error", "Failed to open file"))
		return
	}
	defer file.Close()

	objectName, err := h.profiles.SetAvatar(c.Request.Context(), userID, ext, file, fileHeader.Size, contentType)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Avatar uploaded successfully",
		"path":    objectName,
	})
}

// GetAvatar godoc
// @Summary Get current user's avatar
// @Tags users
// @Security BearerAuth
// @Produce image/*
// @Success 200 {file} binary
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/users/avatar [get]
func (h *AvatarHandler) GetAvatar(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("unauthorized", ""))
		return
	}

	avatar, err := h.profiles.Avatar(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	defer avatar.Body.Close()

	c.DataFromReader(
		http.StatusOK,
		avatar.Size,
		avatar.ContentType,
		avatar.Body,
		map[string]string{
			"Content-Disposition": "inline",
			"Cache-Control":       "private, max-age=86400",
		},
	)
}

// DeleteAvatar godoc
// @Summary Delete current user's avatar
// @Tags users
// @Security BearerAuth
// @Success 200 {object} dto.SuccessResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/users/avatar [delete]
func (h *AvatarHandler) DeleteAvatar(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("unauthorized", ""))
		return
	}

	if err := h.profiles.DeleteAvatar(c.Request.Context(), userID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "Avatar deleted successfully"})
}
