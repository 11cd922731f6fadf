package models

import (
	"time"

	"github.com/google/uuid"
)

type Profile struct {
	ID                         uuid.UUID  `json:"id"`
	Email                      string     `json:"email"`
	PasswordHash               string     `json:"-"`
	DisplayName                *string    `json:"display_name,omitempty"`
	AvatarPath                 *string    `json:"avatar_path,omitempty"`
	EmailVerified              bool       `json:"email_verified"`
	EmailVerificationToken     *string    `json:"-"`
	EmailVerificationSentAt    *time.Time `json:"-"`
	EmailVerificationExpiresAt *time.Time `json:"-"`
	CreatedAt                  time.Time  `json:"created_at"`
	UpdatedAt                  time.Time  `json:"updated_at"`
}

// Name is what emails greet the profile with.
func (p *Profile) Name() string {
	if p.DisplayName != nil && *p.DisplayName != "" {
		return *p.DisplayName
	}
	return p.Email
}

// VerificationState reports where the profile sits in the email verification flow.
func (p *Profile) VerificationState() VerificationState {
	switch {
	case p.EmailVerified:
		return VerificationVerified
	case p.EmailVerificationToken != nil:
		return VerificationTokenPending
	default:
		return VerificationNoToken
	}
}

type VerificationState string

const (
	VerificationNoToken      VerificationState = "unverified-no-token"
	VerificationTokenPending VerificationState = "unverified-token-pending"
	VerificationVerified     VerificationState = "verified"
)

type PublicProfile struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName *string   `json:"full_name,omitempty"`
}

func (p *Profile) ToPublic() *PublicProfile {
	return &PublicProfile{
		ID:          p.ID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
	}
}
