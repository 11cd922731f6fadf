package service

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by a service either wraps one of these
// or is an unclassified internal failure.
var (
	ErrNotFound     = errors.New("not found")
	ErrAlreadyDone  = errors.New("already done")
	ErrExpired      = errors.New("expired")
	ErrRateLimited  = errors.New("rate limited")
	ErrUpstream     = errors.New("upstream failure")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
)

var (
	ErrTokenNotFound       = fmt.Errorf("token not found: %w", ErrNotFound)
	ErrTaskNotFound        = fmt.Errorf("task not found: %w", ErrNotFound)
	ErrProfileNotFound     = fmt.Errorf("profile not found: %w", ErrNotFound)
	ErrAlreadyVerified     = fmt.Errorf("email already verified: %w", ErrAlreadyDone)
	ErrAlreadyConfirmed    = fmt.Errorf("task already confirmed: %w", ErrAlreadyDone)
	ErrTokenExpired        = fmt.Errorf("token expired: %w", ErrExpired)
	ErrVerificationLimited = fmt.Errorf("verification email requested too recently: %w", ErrRateLimited)
	ErrInvalidReminderType = fmt.Errorf("unknown reminder type: %w", ErrInvalidInput)
	ErrInvalidTransition   = fmt.Errorf("status change not allowed: %w", ErrInvalidInput)
	ErrNoPartner           = fmt.Errorf("task has no partner email: %w", ErrInvalidInput)
	ErrTokenRequired       = fmt.Errorf("token is required: %w", ErrInvalidInput)
	ErrInvalidCredentials  = fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	ErrUserAlreadyExists   = fmt.Errorf("user already exists: %w", ErrAlreadyDone)
)

func upstream(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
}
