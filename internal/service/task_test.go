package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/models"
)

type taskFixture struct {
	clock      *fakeClock
	tasks      *fakeTasks
	activities *fakeActivities
	svc        *TaskService
	owner      uuid.UUID
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()
	f := &taskFixture{
		clock:      newFakeClock(),
		tasks:      newFakeTasks(),
		activities: &fakeActivities{},
		owner:      uuid.New(),
	}
	f.svc = NewTaskService(f.tasks,
		WithTaskClock(f.clock.Now),
		WithTaskActivity(NewActivityService(f.activities, nil)))
	return f
}

func TestCreateTask(t *testing.T) {
	f := newTaskFixture(t)

	task, err := f.svc.Create(context.Background(), f.owner, TaskInput{
		Title:        "  Write report ",
		Deadline:     f.clock.Now().Add(time.Hour),
		PartnerEmail: "P@Example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, models.TaskPending, task.Status)
	require.NotNil(t, task.PartnerEmail)
	assert.Equal(t, "p@example.com", *task.PartnerEmail)
	assert.Equal(t, []models.ActivityType{models.ActivityTaskCreated, models.ActivityPartnerAdded}, f.activities.types())
}

func TestCreateTaskValidation(t *testing.T) {
	f := newTaskFixture(t)

	_, err := f.svc.Create(context.Background(), f.owner, TaskInput{PartnerEmail: "not-an-email"})
	require.ErrorIs(t, err, ErrInvalidInput)

	var inputErr *InputError
	require.True(t, errors.As(err, &inputErr))
	assert.Len(t, inputErr.Fields, 3)
	assert.Empty(t, f.tasks.tasks)
}

func TestGetTaskOwnershipAndLazyOverdue(t *testing.T) {
	f := newTaskFixture(t)
	task := f.tasks.add(&models.Task{UserID: f.owner, Title: "Old", Deadline: f.clock.Now().Add(-time.Minute)})

	got, err := f.svc.Get(context.Background(), f.owner, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskOverdue, got.Status)
	assert.Equal(t, models.TaskPending, f.tasks.snapshot(task.ID).Status)

	_, err = f.svc.Get(context.Background(), uuid.New(), task.ID)
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestListTasksByStatus(t *testing.T) {
	f := newTaskFixture(t)
	now := f.clock.Now()
	f.tasks.add(&models.Task{UserID: f.owner, Title: "late", Deadline: now.Add(-time.Hour)})
	f.tasks.add(&models.Task{UserID: f.owner, Title: "soon", Deadline: now.Add(time.Hour)})
	f.tasks.add(&models.Task{UserID: f.owner, Title: "done", Deadline: now.Add(-time.Hour), Status: models.TaskCompleted})
	f.tasks.add(&models.Task{UserID: uuid.New(), Title: "other", Deadline: now})

	all, err := f.svc.List(context.Background(), f.owner, TaskListQuery{Status: "all"})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	overdue, err := f.svc.List(context.Background(), f.owner, TaskListQuery{Status: "overdue"})
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "late", overdue[0].Title)

	_, err = f.svc.List(context.Background(), f.owner, TaskListQuery{Status: "someday"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSetStatus(t *testing.T) {
	f := newTaskFixture(t)
	task := f.tasks.add(&models.Task{UserID: f.owner, Title: "A", Deadline: f.clock.Now().Add(time.Hour)})

	got, err := f.svc.SetStatus(context.Background(), f.owner, task.ID, models.TaskInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.TaskInProgress, got.Status)

	got, err = f.svc.SetStatus(context.Background(), f.owner, task.ID, models.TaskCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, got.Status)
	assert.Contains(t, f.activities.types(), models.ActivityTaskCompleted)

	_, err = f.svc.SetStatus(context.Background(), f.owner, task.ID, models.TaskStatus("done"))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSetStatusKeepsPartnerConfirmedTaskCompleted(t *testing.T) {
	f := newTaskFixture(t)
	task := f.tasks.add(&models.Task{
		UserID:           f.owner,
		Title:            "Confirmed",
		Deadline:         f.clock.Now(),
		Status:           models.TaskCompleted,
		PartnerEmail:     strPtr("p@example.com"),
		PartnerConfirmed: true,
	})

	_, err := f.svc.SetStatus(context.Background(), f.owner, task.ID, models.TaskPending)
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, models.TaskCompleted, f.tasks.snapshot(task.ID).Status)
}

func TestSetStatusOnTaskDeletedMidUpdate(t *testing.T) {
	f := newTaskFixture(t)
	task := f.tasks.add(&models.Task{UserID: f.owner, Title: "A", Deadline: f.clock.Now().Add(time.Hour)})
	f.tasks.beforeUpdate = func(tasks map[uuid.UUID]*models.Task) { delete(tasks, task.ID) }

	_, err := f.svc.SetStatus(context.Background(), f.owner, task.ID, models.TaskInProgress)
	require.ErrorIs(t, err, ErrTaskNotFound)
	assert.NotErrorIs(t, err, ErrInvalidTransition)
}

func TestDeleteTask(t *testing.T) {
	f := newTaskFixture(t)
	task := f.tasks.add(&models.Task{UserID: f.owner, Title: "A", Deadline: f.clock.Now()})

	require.ErrorIs(t, f.svc.Delete(context.Background(), uuid.New(), task.ID), ErrTaskNotFound)
	require.NoError(t, f.svc.Delete(context.Background(), f.owner, task.ID))
	require.ErrorIs(t, f.svc.Delete(context.Background(), f.owner, task.ID), ErrTaskNotFound)
}

func TestStatsCompletionRate(t *testing.T) {
	f := newTaskFixture(t)
	now := f.clock.Now()
	f.tasks.add(&models.Task{UserID: f.owner, Deadline: now.Add(time.Hour), Status: models.TaskCompleted})
	f.tasks.add(&models.Task{UserID: f.owner, Deadline: now.Add(time.Hour)})
	f.tasks.add(&models.Task{UserID: f.owner, Deadline: now.Add(-time.Hour)})

	stats, err := f.svc.Stats(context.Background(), f.owner)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.Overdue)
	assert.Equal(t, 33, stats.CompletionRate)

	assert.Equal(t, 0, completionRate(0, 0))
	assert.Equal(t, 67, completionRate(2, 3))
	assert.Equal(t, 100, completionRate(4, 4))
}

func TestSweepOverdue(t *testing.T) {
	f := newTaskFixture(t)
	now := f.clock.Now()
	late := f.tasks.add(&models.Task{UserID: f.owner, Deadline: now.Add(-time.Hour), Status: models.TaskInProgress})
	f.tasks.add(&models.Task{UserID: f.owner, Deadline: now.Add(time.Hour)})
	f.tasks.add(&models.Task{UserID: f.owner, Deadline: now.Add(-time.Hour), Status: models.TaskCompleted})

	n, err := f.svc.SweepOverdue(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, models.TaskOverdue, f.tasks.snapshot(late.ID).Status)

	n, err = f.svc.SweepOverdue(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}
