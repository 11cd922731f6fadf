package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/dto"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/middleware"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/models"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/service"
	"github.com/zhanserikAmangeldi/taskmate-service/pkg/jwt"
)

type authService interface {
	Register(ctx context.Context, req *dto.RegisterRequest, client service.ClientInfo) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Logout(ctx context.Context, claims *jwt.Claims) error
}

type verificationService interface {
	RequestVerification(ctx context.Context, userID uuid.UUID, client service.ClientInfo) error
	ConsumeVerification(ctx context.Context, token string) (*models.Profile, error)
}

type AuthHandler struct {
	auth         authService
	verification verificationService
}

func NewAuthHandler(auth authService, verification verificationService) *AuthHandler {
	return &AuthHandler{auth: auth, verification: verification}
}

// Register godoc
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Account data"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	authResp, err := h.auth.Register(c.Request.Context(), &req, clientInfo(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, authResp)
}

// Login godoc
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	authResp, err := h.auth.Login(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, authResp)
}

// Logout godoc
// @Summary Revoke the presented access token
// @Tags auth
// @Security BearerAuth
// @Success 200 {object} dto.SuccessResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("unauthorized", ""))
		return
	}

	if err := h.auth.Logout(c.Request.Context(), claims); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "Logged out successfully"})
}

// SendVerification godoc
// @Summary Send (or resend) the email verification link
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /api/v1/auth/send-verification [post]
func (h *AuthHandler) SendVerification(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("unauthorized", ""))
		return
	}

	if err := h.verification.RequestVerification(c.Request.Context(), userID, clientInfo(c)); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "Verification email sent"})
}

// VerifyEmail godoc
// @Summary Consume an email verification token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.VerifyEmailRequest true "Token"
// @Success 200 {object} dto.VerifyEmailResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/auth/verify-email [post]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req dto.VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	h.consume(c, req.Token)
}

// VerifyEmailLink godoc
// @Summary Consume an email verification token from the emailed link
// @Tags auth
// @Produce json
// @Param token query string true "Verification token"
// @Success 200 {object} dto.VerifyEmailResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /verify-email [get]
func (h *AuthHandler) VerifyEmailLink(c *gin.Context) {
	h.consume(c, c.Query("token"))
}

func (h *AuthHandler) consume(c *gin.Context, token string) {
	profile, err := h.verification.ConsumeVerification(c.Request.Context(), token)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.VerifyEmailResponse{
		Success: true,
		Message: "Email verified successfully",
		User:    profile.ToPublic(),
	})
}
