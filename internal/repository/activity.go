package repository

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/models"
)

const defaultActivityLimit = 20

type ActivityRepository struct {
	db *pgxpool.Pool
}

func NewActivityRepository(db *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, a *models.Activity) error {
	query := `
		INSERT INTO activities (user_id, task_id, type, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	return r.db.QueryRow(ctx, query, a.UserID, a.TaskID, a.Type, a.Description).Scan(&a.ID, &a.CreatedAt)
}

func (r *ActivityRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Activity, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultActivityLimit
	}

	var activities []*models.Activity
	err := pgxscan.Select(ctx, r.db, &activities, `
		SELECT id, user_id, task_id, type, description, created_at
		FROM activities
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	return activities, nil
}
