package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/dto"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/middleware"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/service"
)

// writeError maps service errors onto HTTP statuses by category.
func writeError(c *gin.Context, err error) {
	var inputErr *service.InputError

	switch {
	case errors.As(err, &inputErr):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: "Request validation failed",
			Fields:  inputErr.Fields,
		})
	case errors.Is(err, service.ErrUserAlreadyExists):
		c.JSON(http.StatusConflict, dto.NewErrorResponse("user_exists", "User with this email already exists"))
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid_request", err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("not_found", err.Error()))
	case errors.Is(err, service.ErrAlreadyDone):
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("already_done", err.Error()))
	case errors.Is(err, service.ErrExpired):
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("expired", err.Error()))
	case errors.Is(err, service.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, dto.NewErrorResponse("rate_limited", err.Error()))
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("unauthorized", err.Error()))
	default:
		middleware.GetLogger(c).Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("internal_error", "Something went wrong, please try again"))
	}
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse("validation_error", err.Error()))
}

func clientInfo(c *gin.Context) service.ClientInfo {
	return service.ClientInfo{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}
