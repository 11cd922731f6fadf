package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/models"
)

type VerificationLogRepository struct {
	db *pgxpool.Pool
}

func NewVerificationLogRepository(db *pgxpool.Pool) *VerificationLogRepository {
	return &VerificationLogRepository{db: db}
}

func (r *VerificationLogRepository) Create(ctx context.Context, l *models.EmailVerificationLog) error {
	query := `
		INSERT INTO email_verification_logs (user_id, email, verification_token, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	return r.db.QueryRow(ctx, query, l.UserID, l.Email, l.VerificationToken, l.IPAddress, l.UserAgent).
		Scan(&l.ID, &l.CreatedAt)
}

func (r *VerificationLogRepository) MarkVerified(ctx context.Context, userID uuid.UUID, token string, at time.Time) error {
	query := `
		UPDATE email_verification_logs
		SET verified_at = $3
		WHERE user_id = $1 AND verification_token = $2 AND verified_at IS NULL
	`

	_, err := r.db.Exec(ctx, query, userID, token, at)
	return err
}

func (r *VerificationLogRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.EmailVerificationLog, error) {
	query := `
		SELECT id, user_id, email, verification_token, ip_address, user_agent, created_at, verified_at
		FROM email_verification_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.EmailVerificationLog
	for rows.Next() {
		l := &models.EmailVerificationLog{}
		if err := rows.Scan(&l.ID, &l.UserID, &l.Email, &l.VerificationToken, &l.IPAddress, &l.UserAgent, &l.CreatedAt, &l.VerifiedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}

	return logs, rows.Err()
}

// DeleteOlderThan prunes audit rows; the log is observability only.
func (r *VerificationLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM email_verification_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
