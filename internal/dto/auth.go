package dto

import "github.com/zhanserikAmangeldi/taskmate-service/internal/models"

type RegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken string          `json:"access_token"`
	ExpiresIn   int64           `json:"expires_in"`
	User        *models.Profile `json:"user"`
}

type VerifyEmailRequest struct {
	Token string `json:"token"`
}

type VerifyEmailResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	User    *models.PublicProfile `json:"user"`
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
}
