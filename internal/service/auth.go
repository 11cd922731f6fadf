package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/dto"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/models"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/repository"
	"github.com/zhanserikAmangeldi/taskmate-service/pkg/jwt"
	"github.com/zhanserikAmangeldi/taskmate-service/pkg/logger"
	"github.com/zhanserikAmangeldi/taskmate-service/pkg/validator"
)

type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

type verificationRequester interface {
	RequestVerification(ctx context.Context, userID uuid.UUID, client ClientInfo) error
}

type AuthService struct {
	profiles     ProfileStore
	tokenManager *jwt.TokenManager
	revoker      TokenRevoker
	verification verificationRequester
	bcryptCost   int
}

func NewAuthService(profiles ProfileStore, tokenManager *jwt.TokenManager, revoker TokenRevoker, verification verificationRequester) *AuthService {
	return &AuthService{
		profiles:     profiles,
		tokenManager: tokenManager,
		revoker:      revoker,
		verification: verification,
		bcryptCost:   bcrypt.DefaultCost,
	}
}

// Register creates the profile and sends the first verification email. A failed
// email does not fail registration; the user can ask for another one.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest, client ClientInfo) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	displayName := strings.TrimSpace(req.DisplayName)
	if errs := validator.ValidateRegisterRequest(email, req.Password, displayName); errs.HasErrors() {
		return nil, &InputError{Fields: errs}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile := &models.Profile{
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if displayName != "" {
		profile.DisplayName = &displayName
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrProfileAlreadyExists) {
			return nil, ErrUserAlreadyExists
		}
		return nil, upstream("create profile", err)
	}

	if s.verification != nil {
		if err := s.verification.RequestVerification(ctx, profile.ID, client); err != nil {
			logger.ForUser("auth", profile.ID).Warn("failed to send initial verification email",
				zap.Error(err),
			)
		}
	}

	logger.Audit("profile_registered", profile.ID)
	return s.issue(profile)
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if errs := validator.ValidateLoginRequest(email, req.Password); errs.HasErrors() {
		return nil, &InputError{Fields: errs}
	}

	profile, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, upstream("load profile", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(profile)
}

// Logout revokes the presented access token until it expires.
func (s *AuthService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}

	if err := s.revoker.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		return upstream("revoke access token", err)
	}
	return nil
}

func (s *AuthService) issue(profile *models.Profile) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.tokenManager.GenerateAccessToken(profile.ID, profile.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	return &dto.AuthResponse{
		AccessToken: token,
		ExpiresIn:   int64(time.Until(expiresAt).Seconds()),
		User:        profile,
	}, nil
}
