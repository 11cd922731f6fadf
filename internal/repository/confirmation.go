package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/models"
)

var (
	ErrConfirmationNotFound = errors.New("confirmation not found")
	ErrAlreadyConfirmed     = errors.New("confirmation already used")
)

type ConfirmationRepository struct {
	db *pgxpool.Pool
}

func NewConfirmationRepository(db *pgxpool.Pool) *ConfirmationRepository {
	return &ConfirmationRepository{db: db}
}

func (r *ConfirmationRepository) Create(ctx context.Context, c *models.TaskConfirmation) error {
	query := `
		INSERT INTO task_confirmations (task_id, confirmation_token)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	return r.db.QueryRow(ctx, query, c.TaskID, c.ConfirmationToken).Scan(&c.ID, &c.CreatedAt)
}

func (r *ConfirmationRepository) GetByToken(ctx context.Context, token string) (*models.TaskConfirmation, error) {
	query := `
		SELECT id, task_id, confirmation_token, confirmed_at, created_at
		FROM task_confirmations
		WHERE confirmation_token = $1
	`

	c := &models.TaskConfirmation{}
	err := r.db.QueryRow(ctx, query, token).Scan(&c.ID, &c.TaskID, &c.ConfirmationToken, &c.ConfirmedAt, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConfirmationNotFound
		}
		return nil, err
	}
	return c, nil
}

// Confirm consumes a confirmation token and completes its task in one transaction.
// The confirmation row is locked first, so of two concurrent calls with the same token
// exactly one succeeds and the other sees ErrAlreadyConfirmed.
func (r *ConfirmationRepository) Confirm(ctx context.Context, token string, at time.Time) (*models.ConfirmedTask, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin confirm: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		confirmationID uuid.UUID
		taskID         uuid.UUID
		confirmedAt    *time.Time
	)
	err = tx.QueryRow(ctx, `
		SELECT id, task_id, confirmed_at
		FROM task_confirmations
		WHERE confirmation_token = $1
		FOR UPDATE
	`, token).Scan(&confirmationID, &taskID, &confirmedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConfirmationNotFound
		}
		return nil, err
	}

	if confirmedAt != nil {
		return nil, ErrAlreadyConfirmed
	}

	if _, err := tx.Exec(ctx, `
		UPDATE task_confirmations SET confirmed_at = $2 WHERE id = $1
	`, confirmationID, at); err != nil {
		return nil, fmt.Errorf("mark confirmation: %w", err)
	}

	result := &models.ConfirmedTask{ConfirmedAt: at}
	err = tx.QueryRow(ctx, `
		UPDATE tasks t
		SET status = 'completed', partner_confirmed = TRUE, updated_at = $2
		FROM profiles p
		WHERE t.id = $1 AND p.id = t.user_id
		RETURNING t.id, t.title, t.user_id, p.email, p.display_name
	`, taskID, at).Scan(&result.ID, &result.Title, &result.UserID, &result.OwnerEmail, &result.OwnerName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("complete task: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit confirm: %w", err)
	}

	return result, nil
}
