package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/models"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrTaskLocked   = errors.New("task is partner confirmed")
)

const taskColumns = `
	id, user_id, title, description, deadline, status, partner_email,
	partner_confirmed, created_at, updated_at`

const defaultTaskListLimit = 100

// TaskFilter narrows a task listing. When Now is set, Status matches the
// effective status: open tasks past their deadline count as overdue.
type TaskFilter struct {
	Status models.TaskStatus
	Search string
	Limit  int
	Now    time.Time
}

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, t *models.Task) error {
	query := `
		INSERT INTO tasks (user_id, title, description, deadline, status, partner_email)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, partner_confirmed, created_at, updated_at
	`

	if t.Status == "" {
		t.Status = models.TaskPending
	}

	return r.db.QueryRow(ctx, query,
		t.UserID,
		t.Title,
		t.Description,
		t.Deadline,
		t.Status,
		t.PartnerEmail,
	).Scan(&t.ID, &t.PartnerConfirmed, &t.CreatedAt, &t.UpdatedAt)
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	t := &models.Task{}
	err := pgxscan.Get(ctx, r.db, t, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *TaskRepository) ListByUser(ctx context.Context, userID uuid.UUID, filter TaskFilter) ([]*models.Task, error) {
	var (
		where = []string{"user_id = $1"}
		args  = []any{userID}
	)

	switch {
	case filter.Status == "":
	case filter.Now.IsZero():
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	case filter.Status == models.TaskOverdue:
		args = append(args, filter.Now)
		where = append(where, fmt.Sprintf("(status = 'overdue' OR (status IN ('pending', 'in_progress') AND deadline < $%d))", len(args)))
	case filter.Status == models.TaskPending || filter.Status == models.TaskInProgress:
		args = append(args, filter.Status, filter.Now)
		where = append(where, fmt.Sprintf("status = $%d AND deadline >= $%d", len(args)-1, len(args)))
	default:
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	limit := filter.Limit
	if limit <= 0 || limit > defaultTaskListLimit {
		limit = defaultTaskListLimit
	}
	args = append(args, limit)

	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE %s ORDER BY created_at DESC LIMIT $%d`,
		taskColumns, strings.Join(where, " AND "), len(args))

	var tasks []*models.Task
	if err := pgxscan.Select(ctx, r.db, &tasks, query, args...); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) Update(ctx context.Context, t *models.Task) error {
	query := `
		UPDATE tasks
		SET title = $2, description = $3, deadline = $4, partner_email = $5, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query, t.ID, t.Title, t.Description, t.Deadline, t.PartnerEmail).Scan(&t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTaskNotFound
		}
		return err
	}
	return nil
}

// UpdateStatus sets an owner-chosen status. A partner-confirmed task can only stay
// completed; moving it anywhere else returns ErrTaskLocked.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.TaskStatus, at time.Time) error {
	query := `
		WITH target AS (
			SELECT id, partner_confirmed FROM tasks WHERE id = $1 FOR UPDATE
		), updated AS (
			UPDATE tasks t
			SET status = $2, updated_at = $3
			FROM target
			WHERE t.id = target.id AND (target.partner_confirmed = FALSE OR $2 = 'completed')
			RETURNING t.id
		)
		SELECT EXISTS (SELECT 1 FROM target), EXISTS (SELECT 1 FROM updated)
	`

	var found, updated bool
	if err := r.db.QueryRow(ctx, query, id, status, at).Scan(&found, &updated); err != nil {
		return err
	}

	switch {
	case !found:
		return ErrTaskNotFound
	case !updated:
		return ErrTaskLocked
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Stats aggregates a user's tasks, counting open tasks past their deadline as overdue.
func (r *TaskRepository) Stats(ctx context.Context, userID uuid.UUID, now time.Time) (*models.TaskStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'pending' AND deadline >= $2),
			COUNT(*) FILTER (WHERE status = 'in_progress' AND deadline >= $2),
			COUNT(*) FILTER (WHERE status = 'overdue' OR (status IN ('pending', 'in_progress') AND deadline < $2)),
			COUNT(*) FILTER (WHERE status = 'completed' AND updated_at >= $3),
			COUNT(*) FILTER (WHERE status = 'completed' AND updated_at >= $4),
			COUNT(*) FILTER (WHERE partner_email IS NOT NULL AND partner_email <> '')
		FROM tasks
		WHERE user_id = $1
	`

	s := &models.TaskStats{}
	err := r.db.QueryRow(ctx, query, userID, now, now.AddDate(0, 0, -7), now.AddDate(0, 0, -30)).Scan(
		&s.Total,
		&s.Completed,
		&s.Pending,
		&s.InProgress,
		&s.Overdue,
		&s.WeeklyCompleted,
		&s.MonthlyCompleted,
		&s.WithPartner,
	)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// MarkOverdue persists the time-driven overdue transition for every open task past its deadline.
func (r *TaskRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE tasks
		SET status = 'overdue', updated_at = $1
		WHERE status IN ('pending', 'in_progress') AND deadline < $1
	`

	result, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
