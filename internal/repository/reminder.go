package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/models"
)

// ErrReminderNotRecorded means the reminder went out but its dedup record could not be committed.
var ErrReminderNotRecorded = errors.New("reminder sent but not recorded")

type ReminderRepository struct {
	db *pgxpool.Pool
}

func NewReminderRepository(db *pgxpool.Pool) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// Claim inserts the dedup record for (task, type) inside a transaction and keeps that
// transaction open while send runs. The record is committed only if send succeeds.
//
// A concurrent Claim for the same key blocks on the unique index until the first one
// finishes: if it committed, the second sees the row and returns false without sending;
// if it rolled back, the second claims the key itself.
func (r *ReminderRepository) Claim(ctx context.Context, rec *models.EmailReminder, send func(ctx context.Context) error) (bool, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, fmt.Errorf("begin claim: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO email_reminders (task_id, reminder_type, recipient_email)
		VALUES ($1, $2, $3)
		ON CONFLICT (task_id, reminder_type) DO NOTHING
		RETURNING id, sent_at
	`, rec.TaskID, rec.ReminderType, rec.RecipientEmail).Scan(&rec.ID, &rec.SentAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("claim reminder: %w", err)
	}

	if err := send(ctx); err != nil {
		return true, err
	}

	if err := tx.Commit(ctx); err != nil {
		return true, fmt.Errorf("%w: %v", ErrReminderNotRecorded, err)
	}

	return true, nil
}

func (r *ReminderRepository) Exists(ctx context.Context, taskID uuid.UUID, reminderType models.ReminderType) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM email_reminders WHERE task_id = $1 AND reminder_type = $2)
	`, taskID, reminderType).Scan(&exists)
	return exists, err
}

func (r *ReminderRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*models.EmailReminder, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, task_id, reminder_type, recipient_email, sent_at
		FROM email_reminders
		WHERE task_id = $1
		ORDER BY sent_at
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []*models.EmailReminder
	for rows.Next() {
		rec := &models.EmailReminder{}
		if err := rows.Scan(&rec.ID, &rec.TaskID, &rec.ReminderType, &rec.RecipientEmail, &rec.SentAt); err != nil {
			return nil, err
		}
		reminders = append(reminders, rec)
	}
	return reminders, rows.Err()
}
