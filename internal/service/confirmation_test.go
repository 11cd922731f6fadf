package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/models"
)

type confirmationFixture struct {
	clock         *fakeClock
	profiles      *fakeProfiles
	tasks         *fakeTasks
	confirmations *fakeConfirmations
	emails        *fakeEmails
	activities    *fakeActivities
	svc           *ConfirmationService
	owner         *models.Profile
	task          *models.Task
}

func newConfirmationFixture(t *testing.T) *confirmationFixture {
	t.Helper()
	f := &confirmationFixture{
		clock:      newFakeClock(),
		profiles:   newFakeProfiles(),
		tasks:      newFakeTasks(),
		emails:     &fakeEmails{},
		activities: &fakeActivities{},
	}
	f.confirmations = newFakeConfirmations(f.tasks, f.profiles)
	f.owner = f.profiles.add(&models.Profile{Email: "owner@example.com", DisplayName: strPtr("Owner")})
	f.task = f.tasks.add(&models.Task{
		UserID:       f.owner.ID,
		Title:        "Run 5k",
		Deadline:     f.clock.Now().Add(48 * time.Hour),
		Status:       models.TaskInProgress,
		PartnerEmail: strPtr("p@example.com"),
	})
	f.svc = NewConfirmationService(f.confirmations, f.tasks, f.profiles, f.emails,
		WithConfirmationClock(f.clock.Now),
		WithConfirmationActivity(NewActivityService(f.activities, nil)),
	)
	return f
}

func (f *confirmationFixture) requestToken(t *testing.T) string {
	t.Helper()
	_, err := f.svc.RequestConfirmation(context.Background(), f.owner.ID, f.task.ID)
	require.NoError(t, err)
	sent := f.emails.byKind("confirmation")
	require.NotEmpty(t, sent)
	return tokenFromURL(sent[len(sent)-1].URL)
}

func TestConfirmOnceThenAlreadyDone(t *testing.T) {
	f := newConfirmationFixture(t)
	tok := f.requestToken(t)

	got, err := f.svc.Confirm(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, f.task.ID, got.ID)
	assert.Equal(t, "Run 5k", got.Title)
	assert.Equal(t, f.owner.ID, got.UserID)
	assert.Equal(t, "owner@example.com", got.OwnerEmail)
	assert.Equal(t, f.clock.Now(), got.ConfirmedAt)

	stored := f.tasks.snapshot(f.task.ID)
	assert.Equal(t, models.TaskCompleted, stored.Status)
	assert.True(t, stored.PartnerConfirmed)
	assert.NotNil(t, f.confirmations.confirmations[tok].ConfirmedAt)
	assert.Contains(t, f.activities.types(), models.ActivityTaskCompleted)

	_, err = f.svc.Confirm(context.Background(), tok)
	require.ErrorIs(t, err, ErrAlreadyConfirmed)
	require.ErrorIs(t, err, ErrAlreadyDone)
}

func TestConfirmUnknownToken(t *testing.T) {
	f := newConfirmationFixture(t)

	_, err := f.svc.Confirm(context.Background(), "missing")
	require.ErrorIs(t, err, ErrTokenNotFound)

	_, err = f.svc.Confirm(context.Background(), "")
	require.ErrorIs(t, err, ErrTokenRequired)
}

func TestConfirmConcurrentCallsSucceedOnce(t *testing.T) {
	f := newConfirmationFixture(t)
	tok := f.requestToken(t)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		already   int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Confirm(context.Background(), tok)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrAlreadyConfirmed):
				already++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 15, already)
}

func TestRequestConfirmationPreconditions(t *testing.T) {
	f := newConfirmationFixture(t)
	solo := f.tasks.add(&models.Task{UserID: f.owner.ID, Title: "Solo", Deadline: f.clock.Now()})

	_, err := f.svc.RequestConfirmation(context.Background(), f.owner.ID, solo.ID)
	require.ErrorIs(t, err, ErrNoPartner)

	_, err = f.svc.RequestConfirmation(context.Background(), uuid.New(), f.task.ID)
	require.ErrorIs(t, err, ErrTaskNotFound)

	_, err = f.svc.RequestConfirmation(context.Background(), f.owner.ID, uuid.New())
	require.ErrorIs(t, err, ErrTaskNotFound)

	tok := f.requestToken(t)
	_, err = f.svc.Confirm(context.Background(), tok)
	require.NoError(t, err)

	_, err = f.svc.RequestConfirmation(context.Background(), f.owner.ID, f.task.ID)
	require.ErrorIs(t, err, ErrAlreadyConfirmed)
}

func TestRequestConfirmationEmailIsBestEffort(t *testing.T) {
	f := newConfirmationFixture(t)
	f.emails.partnerErr = errors.New("smtp down")

	c, err := f.svc.RequestConfirmation(context.Background(), f.owner.ID, f.task.ID)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, f.task.ID, c.TaskID)
	assert.NotEmpty(t, c.ConfirmationToken)

	_, err = f.svc.Confirm(context.Background(), c.ConfirmationToken)
	require.NoError(t, err)
}
