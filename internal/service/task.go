package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/models"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/repository"
	"github.com/zhanserikAmangeldi/taskmate-service/pkg/logger"
	"github.com/zhanserikAmangeldi/taskmate-service/pkg/metrics"
	"github.com/zhanserikAmangeldi/taskmate-service/pkg/validator"
)

// InputError carries field-level validation failures. It matches ErrInvalidInput.
type InputError struct {
	Fields validator.ValidationErrors
}

func (e *InputError) Error() string {
	return "invalid input: " + e.Fields.Error()
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

type TaskInput struct {
	Title        string
	Description  string
	Deadline     time.Time
	PartnerEmail string
}

func (in TaskInput) normalize() TaskInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.PartnerEmail = strings.ToLower(strings.TrimSpace(in.PartnerEmail))
	return in
}

func (in TaskInput) validate() error {
	if errs := validator.ValidateTask(in.Title, in.Description, in.Deadline, in.PartnerEmail); errs.HasErrors() {
		return &InputError{Fields: errs}
	}
	return nil
}

func (in TaskInput) partner() *string {
	if in.PartnerEmail == "" {
		return nil
	}
	p := in.PartnerEmail
	return &p
}

// TaskListQuery is the owner-facing list filter. Status "all" or "" means no status filter.
type TaskListQuery struct {
	Status string
	Search string
	Limit  int
}

type TaskOption func(*TaskService)

func WithTaskClock(clock Clock) TaskOption {
	return func(s *TaskService) {
		if clock != nil {
			s.now = clock
		}
	}
}

func WithTaskActivity(rec activityRecorder) TaskOption {
	return func(s *TaskService) {
		if rec != nil {
			s.activity = rec
		}
	}
}

// TaskService is the owner-facing task lifecycle. Reads report the effective
// status; SweepOverdue persists it.
type TaskService struct {
	tasks    TaskStore
	activity activityRecorder
	now      Clock
}

func NewTaskService(tasks TaskStore, opts ...TaskOption) *TaskService {
	s := &TaskService{
		tasks:    tasks,
		activity: noopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TaskService) Create(ctx context.Context, ownerID uuid.UUID, in TaskInput) (*models.Task, error) {
	in = in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	task := &models.Task{
		UserID:       ownerID,
		Title:        in.Title,
		Description:  in.Description,
		Deadline:     in.Deadline,
		Status:       models.TaskPending,
		PartnerEmail: in.partner(),
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, upstream("create task", err)
	}

	s.activity.Record(ctx, ownerID, &task.ID, models.ActivityTaskCreated, fmt.Sprintf("Created %q", task.Title))
	if task.HasPartner() {
		s.activity.Record(ctx, ownerID, &task.ID, models.ActivityPartnerAdded,
			fmt.Sprintf("Added %s as partner for %q", *task.PartnerEmail, task.Title))
	}

	task.Status = task.EffectiveStatus(s.now())
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, ownerID, taskID uuid.UUID) (*models.Task, error) {
	task, err := s.owned(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}
	task.Status = task.EffectiveStatus(s.now())
	return task, nil
}

func (s *TaskService) List(ctx context.Context, ownerID uuid.UUID, q TaskListQuery) ([]*models.Task, error) {
	filter := repository.TaskFilter{
		Search: q.Search,
		Limit:  q.Limit,
		Now:    s.now(),
	}
	if q.Status != "" && q.Status != "all" {
		status := models.TaskStatus(q.Status)
		if !status.Valid() {
			return nil, &InputError{Fields: validator.New().
				OneOf("status", q.Status, statusNames()).Errors()}
		}
		filter.Status = status
	}

	tasks, err := s.tasks.ListByUser(ctx, ownerID, filter)
	if err != nil {
		return nil, upstream("list tasks", err)
	}

	for _, t := range tasks {
		t.Status = t.EffectiveStatus(filter.Now)
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}
	return tasks, nil
}

func (s *TaskService) Update(ctx context.Context, ownerID, taskID uuid.UUID, in TaskInput) (*models.Task, error) {
	in = in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	task, err := s.owned(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	hadPartner := task.HasPartner()
	task.Title = in.Title
	task.Description = in.Description
	task.Deadline = in.Deadline
	task.PartnerEmail = in.partner()

	if err := s.tasks.Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, upstream("update task", err)
	}

	s.activity.Record(ctx, ownerID, &task.ID, models.ActivityTaskUpdated, fmt.Sprintf("Updated %q", task.Title))
	if !hadPartner && task.HasPartner() {
		s.activity.Record(ctx, ownerID, &task.ID, models.ActivityPartnerAdded,
			fmt.Sprintf("Added %s as partner for %q", *task.PartnerEmail, task.Title))
	}

	task.Status = task.EffectiveStatus(s.now())
	return task, nil
}

// SetStatus applies an owner-chosen status. A partner-confirmed task cannot leave completed.
func (s *TaskService) SetStatus(ctx context.Context, ownerID, taskID uuid.UUID, status models.TaskStatus) (*models.Task, error) {
	if !status.Valid() {
		return nil, &InputError{Fields: validator.New().
			OneOf("status", string(status), statusNames()).Errors()}
	}

	task, err := s.owned(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}
	if !task.CanMoveTo(status) {
		return nil, ErrInvalidTransition
	}

	now := s.now()
	if err := s.tasks.UpdateStatus(ctx, task.ID, status, now); err != nil {
		switch {
		case errors.Is(err, repository.ErrTaskNotFound):
			return nil, ErrTaskNotFound
		case errors.Is(err, repository.ErrTaskLocked):
			return nil, ErrInvalidTransition
		}
		return nil, upstream("update task status", err)
	}

	previous := task.Status
	task.Status = status
	task.UpdatedAt = now

	if status == models.TaskCompleted && previous != models.TaskCompleted {
		s.activity.Record(ctx, ownerID, &task.ID, models.ActivityTaskCompleted, fmt.Sprintf("Completed %q", task.Title))
	} else if status != previous {
		s.activity.Record(ctx, ownerID, &task.ID, models.ActivityTaskUpdated,
			fmt.Sprintf("Moved %q to %s", task.Title, status))
	}

	task.Status = task.EffectiveStatus(now)
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	if err := s.tasks.Delete(ctx, taskID, ownerID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		return upstream("delete task", err)
	}
	return nil
}

func (s *TaskService) Stats(ctx context.Context, ownerID uuid.UUID) (*models.TaskStats, error) {
	stats, err := s.tasks.Stats(ctx, ownerID, s.now())
	if err != nil {
		return nil, upstream("task stats", err)
	}
	stats.CompletionRate = completionRate(stats.Completed, stats.Total)
	return stats, nil
}

// SweepOverdue persists the overdue status of every open task past its deadline.
func (s *TaskService) SweepOverdue(ctx context.Context) (int64, error) {
	start := time.Now()
	n, err := s.tasks.MarkOverdue(ctx, s.now())
	if err != nil {
		return 0, upstream("sweep overdue tasks", err)
	}

	metrics.OverdueSwept.Add(float64(n))
	logger.Performance("sweep_overdue", time.Since(start), zap.Int64("marked", n))
	return n, nil
}

func (s *TaskService) owned(ctx context.Context, ownerID, taskID uuid.UUID) (*models.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, upstream("load task", err)
	}
	if task.UserID != ownerID {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func completionRate(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) * 100 / float64(total)))
}

func statusNames() []string {
	statuses := models.TaskStatuses()
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}
	return names
}
