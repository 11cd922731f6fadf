package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/models"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/repository"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/token"
	"github.com/zhanserikAmangeldi/taskmate-service/pkg/logger"
	"github.com/zhanserikAmangeldi/taskmate-service/pkg/metrics"
)

const (
	VerificationExpiry         = 24 * time.Hour
	VerificationResendInterval = 2 * time.Minute
)

// ClientInfo identifies the caller that requested a verification email.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

type VerificationOption func(*VerificationService)

// WithVerificationClock injects a custom time source.
func WithVerificationClock(clock Clock) VerificationOption {
	return func(s *VerificationService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// VerificationService moves a profile from unverified to verified through a
// single-use emailed token.
type VerificationService struct {
	profiles ProfileStore
	logs     VerificationLogStore
	emails   EmailSender
	now      Clock
}

func NewVerificationService(profiles ProfileStore, logs VerificationLogStore, emails EmailSender, opts ...VerificationOption) *VerificationService {
	s := &VerificationService{
		profiles: profiles,
		logs:     logs,
		emails:   emails,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestVerification issues a fresh token and emails the verification link.
// A second request within VerificationResendInterval fails with ErrRateLimited.
func (s *VerificationService) RequestVerification(ctx context.Context, userID uuid.UUID, client ClientInfo) (err error) {
	defer func() { metrics.Verifications.WithLabelValues("request", outcome(err)).Inc() }()

	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return err
	}
	if profile.EmailVerified {
		return ErrAlreadyVerified
	}

	now := s.now()
	if profile.EmailVerificationSentAt != nil && now.Sub(*profile.EmailVerificationSentAt) < VerificationResendInterval {
		return ErrVerificationLimited
	}

	tok, err := token.Generate()
	if err != nil {
		return fmt.Errorf("issue verification token: %w", err)
	}

	ok, err := s.profiles.SetVerificationToken(ctx, profile.ID, tok, now, now.Add(VerificationExpiry), now.Add(-VerificationResendInterval))
	if err != nil {
		return upstream("store verification token", err)
	}
	if !ok {
		// Lost a race with a concurrent request or verification.
		current, err := s.loadProfile(ctx, userID)
		if err != nil {
			return err
		}
		if current.EmailVerified {
			return ErrAlreadyVerified
		}
		return ErrVerificationLimited
	}

	entry := &models.EmailVerificationLog{
		UserID:            profile.ID,
		Email:             profile.Email,
		VerificationToken: tok,
		IPAddress:         client.IPAddress,
		UserAgent:         client.UserAgent,
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		logger.ForUser("verification", profile.ID).Warn("failed to write verification log",
			zap.Error(err),
		)
	}

	err = s.emails.SendVerificationEmail(ctx, profile.Email, profile.Name(), s.emails.VerificationURL(tok))
	metrics.EmailsSent.WithLabelValues("verification", metrics.Result(err)).Inc()
	if err != nil {
		return upstream("send verification email", err)
	}

	logger.Audit("verification_requested", profile.ID, zap.String("ip_address", client.IPAddress))
	return nil
}

// ConsumeVerification marks the profile holding tok as verified and clears the token.
// Tokens are single use: replaying a consumed token yields ErrTokenNotFound.
func (s *VerificationService) ConsumeVerification(ctx context.Context, tok string) (profile *models.Profile, err error) {
	defer func() { metrics.Verifications.WithLabelValues("consume", outcome(err)).Inc() }()

	if tok == "" {
		return nil, ErrTokenRequired
	}

	profile, err = s.profiles.GetByVerificationToken(ctx, tok)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, upstream("lookup verification token", err)
	}

	if profile.EmailVerified {
		return nil, ErrAlreadyVerified
	}

	now := s.now()
	if profile.EmailVerificationExpiresAt != nil && now.After(*profile.EmailVerificationExpiresAt) {
		return nil, ErrTokenExpired
	}

	ok, err := s.profiles.MarkVerified(ctx, profile.ID, tok, now)
	if err != nil {
		return nil, upstream("mark profile verified", err)
	}
	if !ok {
		return nil, ErrTokenNotFound
	}

	if err := s.logs.MarkVerified(ctx, profile.ID, tok, now); err != nil {
		logger.ForUser("verification", profile.ID).Warn("failed to mark verification log",
			zap.Error(err),
		)
	}

	profile.EmailVerified = true
	profile.EmailVerificationToken = nil
	profile.EmailVerificationSentAt = nil
	profile.EmailVerificationExpiresAt = nil
	profile.UpdatedAt = now

	logger.Audit("email_verified", profile.ID)
	return profile, nil
}

func (s *VerificationService) loadProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, upstream("load profile", err)
	}
	return profile, nil
}

// outcome maps an error to a metrics label by category.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyDone):
		return "already_done"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrInvalidInput):
		return "invalid"
	default:
		return "error"
	}
}
