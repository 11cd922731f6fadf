package models

import (
	"time"

	"github.com/google/uuid"
)

// EmailVerificationLog is an audit row written for every verification email sent.
type EmailVerificationLog struct {
	ID                uuid.UUID  `json:"id"`
	UserID            uuid.UUID  `json:"user_id"`
	Email             string     `json:"email"`
	VerificationToken string     `json:"-"`
	IPAddress         string     `json:"ip_address"`
	UserAgent         string     `json:"user_agent"`
	CreatedAt         time.Time  `json:"created_at"`
	VerifiedAt        *time.Time `json:"verified_at,omitempty"`
}
