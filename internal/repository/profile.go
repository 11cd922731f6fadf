package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/models"
)

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileAlreadyExists = errors.New("profile already exists")
)

const profileColumns = `
	id, email, password_hash, display_name, avatar_path, email_verified,
	email_verification_token, email_verification_sent_at, email_verification_expires_at,
	created_at, updated_at`

type ProfileRepository struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(ctx context.Context, p *models.Profile) error {
	query := `
		INSERT INTO profiles (email, password_hash, display_name)
		VALUES ($1, $2, $3)
		RETURNING id, email_verified, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, p.Email, p.PasswordHash, p.DisplayName).
		Scan(&p.ID, &p.EmailVerified, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrProfileAlreadyExists
		}
		return err
	}

	return nil
}

func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return r.getOne(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
}

func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return r.getOne(ctx, `SELECT `+profileColumns+` FROM profiles WHERE email = $1`, email)
}

func (r *ProfileRepository) GetByVerificationToken(ctx context.Context, token string) (*models.Profile, error) {
	return r.getOne(ctx, `SELECT `+profileColumns+` FROM profiles WHERE email_verification_token = $1`, token)
}

// SetVerificationToken stores a freshly issued token. The write only happens while the
// profile is unverified and its previous email was sent at or before notSentAfter, so
// two concurrent requests cannot both get past the rate limit. It reports whether the
// row was updated.
func (r *ProfileRepository) SetVerificationToken(ctx context.Context, id uuid.UUID, token string, sentAt, expiresAt, notSentAfter time.Time) (bool, error) {
	query := `
		UPDATE profiles
		SET email_verification_token = $2,
		    email_verification_sent_at = $3,
		    email_verification_expires_at = $4,
		    updated_at = $3
		WHERE id = $1
		  AND email_verified = FALSE
		  AND (email_verification_sent_at IS NULL OR email_verification_sent_at <= $5)
	`

	result, err := r.db.Exec(ctx, query, id, token, sentAt, expiresAt, notSentAfter)
	if err != nil {
		return false, err
	}

	return result.RowsAffected() == 1, nil
}

// MarkVerified consumes the token: it flips email_verified and clears the token columns,
// but only if the profile still holds exactly this token.
func (r *ProfileRepository) MarkVerified(ctx context.Context, id uuid.UUID, token string, at time.Time) (bool, error) {
	query := `
		UPDATE profiles
		SET email_verified = TRUE,
		    email_verification_token = NULL,
		    email_verification_sent_at = NULL,
		    email_verification_expires_at = NULL,
		    updated_at = $3
		WHERE id = $1 AND email_verification_token = $2 AND email_verified = FALSE
	`

	result, err := r.db.Exec(ctx, query, id, token, at)
	if err != nil {
		return false, err
	}

	return result.RowsAffected() == 1, nil
}

func (r *ProfileRepository) UpdateDisplayName(ctx context.Context, id uuid.UUID, displayName *string) error {
	query := `
		UPDATE profiles
		SET display_name = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id, displayName)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrProfileNotFound
	}

	return nil
}

func (r *ProfileRepository) UpdateAvatar(ctx context.Context, id uuid.UUID, path string) error {
	query := `
		UPDATE profiles
		SET avatar_path = NULLIF($2, ''), updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id, path)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrProfileNotFound
	}

	return nil
}

func (r *ProfileRepository) getOne(ctx context.Context, query string, arg any) (*models.Profile, error) {
	p := &models.Profile{}
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&p.ID,
		&p.Email,
		&p.PasswordHash,
		&p.DisplayName,
		&p.AvatarPath,
		&p.EmailVerified,
		&p.EmailVerificationToken,
		&p.EmailVerificationSentAt,
		&p.EmailVerificationExpiresAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	return p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
