package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/mailer"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/models"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/repository"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*models.Profile
	err      error
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{profiles: map[uuid.UUID]*models.Profile{}}
}

func (f *fakeProfiles) add(p *models.Profile) *models.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.profiles[p.ID] = p
	return p
}

func (f *fakeProfiles) snapshot(id uuid.UUID) *models.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *f.profiles[id]
	return &cp
}

func (f *fakeProfiles) Create(_ context.Context, p *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.profiles {
		if existing.Email == p.Email {
			return repository.ErrProfileAlreadyExists
		}
	}
	p.ID = uuid.New()
	cp := *p
	f.profiles[p.ID] = &cp
	return nil
}

func (f *fakeProfiles) GetByID(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[id]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) GetByEmail(_ context.Context, email string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrProfileNotFound
}

func (f *fakeProfiles) GetByVerificationToken(_ context.Context, token string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.EmailVerificationToken != nil && *p.EmailVerificationToken == token {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrProfileNotFound
}

func (f *fakeProfiles) SetVerificationToken(_ context.Context, id uuid.UUID, token string, sentAt, expiresAt, notSentAfter time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	p, ok := f.profiles[id]
	if !ok || p.EmailVerified {
		return false, nil
	}
	if p.EmailVerificationSentAt != nil && p.EmailVerificationSentAt.After(notSentAfter) {
		return false, nil
	}
	p.EmailVerificationToken = &token
	p.EmailVerificationSentAt = &sentAt
	p.EmailVerificationExpiresAt = &expiresAt
	p.UpdatedAt = sentAt
	return true, nil
}

func (f *fakeProfiles) MarkVerified(_ context.Context, id uuid.UUID, token string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok || p.EmailVerified || p.EmailVerificationToken == nil || *p.EmailVerificationToken != token {
		return false, nil
	}
	p.EmailVerified = true
	p.EmailVerificationToken = nil
	p.EmailVerificationSentAt = nil
	p.EmailVerificationExpiresAt = nil
	p.UpdatedAt = at
	return true, nil
}

func (f *fakeProfiles) UpdateDisplayName(_ context.Context, id uuid.UUID, displayName *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return repository.ErrProfileNotFound
	}
	p.DisplayName = displayName
	return nil
}

func (f *fakeProfiles) UpdateAvatar(_ context.Context, id uuid.UUID, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return repository.ErrProfileNotFound
	}
	if path == "" {
		p.AvatarPath = nil
	} else {
		p.AvatarPath = &path
	}
	return nil
}

type fakeVerificationLogs struct {
	mu      sync.Mutex
	entries []*models.EmailVerificationLog
}

func (f *fakeVerificationLogs) Create(_ context.Context, l *models.EmailVerificationLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l.ID = uuid.New()
	f.entries = append(f.entries, l)
	return nil
}

func (f *fakeVerificationLogs) MarkVerified(_ context.Context, userID uuid.UUID, token string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.entries {
		if l.UserID == userID && l.VerificationToken == token && l.VerifiedAt == nil {
			t := at
			l.VerifiedAt = &t
		}
	}
	return nil
}

type fakeTasks struct {
	mu      sync.Mutex
	tasks   map[uuid.UUID]*models.Task
	err     error
	overdue int64

	// beforeUpdate runs under the lock at the start of UpdateStatus.
	beforeUpdate func(tasks map[uuid.UUID]*models.Task)
}

func newFakeTasks() *fakeTasks {
	return &fakeTasks{tasks: map[uuid.UUID]*models.Task{}}
}

func (f *fakeTasks) add(t *models.Task) *models.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = models.TaskPending
	}
	f.tasks[t.ID] = t
	return t
}

func (f *fakeTasks) snapshot(id uuid.UUID) *models.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *f.tasks[id]
	return &cp
}

func (f *fakeTasks) Create(_ context.Context, t *models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	t.ID = uuid.New()
	cp := *t
	f.tasks[t.ID] = &cp
	return nil
}

func (f *fakeTasks) GetByID(_ context.Context, id uuid.UUID) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.tasks[id]
	if !ok {
		return nil, repository.ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTasks) ListByUser(_ context.Context, userID uuid.UUID, filter repository.TaskFilter) ([]*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Task
	for _, t := range f.tasks {
		if t.UserID != userID {
			continue
		}
		if filter.Status != "" && t.EffectiveStatus(filter.Now) != filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(filter.Search)) {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeTasks) Update(_ context.Context, t *models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.tasks[t.ID]
	if !ok {
		return repository.ErrTaskNotFound
	}
	existing.Title = t.Title
	existing.Description = t.Description
	existing.Deadline = t.Deadline
	existing.PartnerEmail = t.PartnerEmail
	return nil
}

func (f *fakeTasks) UpdateStatus(_ context.Context, id uuid.UUID, status models.TaskStatus, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.beforeUpdate != nil {
		f.beforeUpdate(f.tasks)
	}
	t, ok := f.tasks[id]
	if !ok {
		return repository.ErrTaskNotFound
	}
	if t.PartnerConfirmed && status != models.TaskCompleted {
		return repository.ErrTaskLocked
	}
	t.Status = status
	t.UpdatedAt = at
	return nil
}

func (f *fakeTasks) Delete(_ context.Context, id, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok || t.UserID != userID {
		return repository.ErrTaskNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeTasks) Stats(_ context.Context, userID uuid.UUID, now time.Time) (*models.TaskStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &models.TaskStats{}
	for _, t := range f.tasks {
		if t.UserID != userID {
			continue
		}
		s.Total++
		switch t.EffectiveStatus(now) {
		case models.TaskCompleted:
			s.Completed++
		case models.TaskPending:
			s.Pending++
		case models.TaskInProgress:
			s.InProgress++
		case models.TaskOverdue:
			s.Overdue++
		}
		if t.HasPartner() {
			s.WithPartner++
		}
	}
	return s, nil
}

func (f *fakeTasks) MarkOverdue(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, t := range f.tasks {
		if (t.Status == models.TaskPending || t.Status == models.TaskInProgress) && t.Deadline.Before(now) {
			t.Status = models.TaskOverdue
			n++
		}
	}
	return n, nil
}

// fakeConfirmations shares the task map so Confirm can complete the task in one step.
type fakeConfirmations struct {
	mu            sync.Mutex
	tasks         *fakeTasks
	profiles      *fakeProfiles
	confirmations map[string]*models.TaskConfirmation
}

func newFakeConfirmations(tasks *fakeTasks, profiles *fakeProfiles) *fakeConfirmations {
	return &fakeConfirmations{
		tasks:         tasks,
		profiles:      profiles,
		confirmations: map[string]*models.TaskConfirmation{},
	}
}

func (f *fakeConfirmations) Create(_ context.Context, c *models.TaskConfirmation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = uuid.New()
	cp := *c
	f.confirmations[c.ConfirmationToken] = &cp
	return nil
}

func (f *fakeConfirmations) Confirm(_ context.Context, token string, at time.Time) (*models.ConfirmedTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.confirmations[token]
	if !ok {
		return nil, repository.ErrConfirmationNotFound
	}
	if c.ConfirmedAt != nil {
		return nil, repository.ErrAlreadyConfirmed
	}

	f.tasks.mu.Lock()
	defer f.tasks.mu.Unlock()
	task, ok := f.tasks.tasks[c.TaskID]
	if !ok {
		return nil, repository.ErrTaskNotFound
	}

	confirmedAt := at
	c.ConfirmedAt = &confirmedAt
	task.Status = models.TaskCompleted
	task.PartnerConfirmed = true

	owner := f.profiles.snapshot(task.UserID)
	return &models.ConfirmedTask{
		ID:          task.ID,
		Title:       task.Title,
		UserID:      task.UserID,
		OwnerEmail:  owner.Email,
		OwnerName:   owner.DisplayName,
		ConfirmedAt: at,
	}, nil
}

// fakeReminders serialises claims per key the way the unique index does.
type fakeReminders struct {
	mu        sync.Mutex
	records   map[string]*models.EmailReminder
	inflight  map[string]*sync.Mutex
	commitErr error
	existsErr error
	lookups   int
}

func newFakeReminders() *fakeReminders {
	return &fakeReminders{
		records:  map[string]*models.EmailReminder{},
		inflight: map[string]*sync.Mutex{},
	}
}

func reminderKey(taskID uuid.UUID, t models.ReminderType) string {
	return taskID.String() + "/" + string(t)
}

func (f *fakeReminders) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func (f *fakeReminders) Exists(_ context.Context, taskID uuid.UUID, t models.ReminderType) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.records[reminderKey(taskID, t)]
	return ok, nil
}

func (f *fakeReminders) Claim(ctx context.Context, rec *models.EmailReminder, send func(ctx context.Context) error) (bool, error) {
	key := reminderKey(rec.TaskID, rec.ReminderType)

	f.mu.Lock()
	lock, ok := f.inflight[key]
	if !ok {
		lock = &sync.Mutex{}
		f.inflight[key] = lock
	}
	f.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()

	f.mu.Lock()
	_, exists := f.records[key]
	f.mu.Unlock()
	if exists {
		return false, nil
	}

	if err := send(ctx); err != nil {
		return true, err
	}
	if f.commitErr != nil {
		return true, errors.Join(repository.ErrReminderNotRecorded, f.commitErr)
	}

	f.mu.Lock()
	rec.ID = uuid.New()
	cp := *rec
	f.records[key] = &cp
	f.mu.Unlock()
	return true, nil
}

type fakeActivities struct {
	mu      sync.Mutex
	entries []*models.Activity
}

func (f *fakeActivities) Create(_ context.Context, a *models.Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a.ID = uuid.New()
	f.entries = append(f.entries, a)
	return nil
}

func (f *fakeActivities) ListByUser(_ context.Context, userID uuid.UUID, _ int) ([]*models.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Activity
	for _, a := range f.entries {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeActivities) types() []models.ActivityType {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ActivityType
	for _, a := range f.entries {
		out = append(out, a.Type)
	}
	return out
}

type sentEmail struct {
	Kind         string
	To           string
	ReminderType models.ReminderType
	URL          string
}

type fakeEmails struct {
	mu         sync.Mutex
	sent       []sentEmail
	err        error
	partnerErr error
}

func (f *fakeEmails) record(e sentEmail, err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		return err
	}
	f.sent = append(f.sent, e)
	return nil
}

func (f *fakeEmails) byKind(kind string) []sentEmail {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentEmail
	for _, e := range f.sent {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeEmails) SendVerificationEmail(_ context.Context, to, _ string, verifyURL string) error {
	return f.record(sentEmail{Kind: "verification", To: to, URL: verifyURL}, f.err)
}

func (f *fakeEmails) SendReminder(_ context.Context, to string, reminderType models.ReminderType, _ mailer.ReminderData) error {
	return f.record(sentEmail{Kind: "reminder", To: to, ReminderType: reminderType}, f.err)
}

func (f *fakeEmails) SendPartnerUpdate(_ context.Context, to string, _ mailer.ReminderData) error {
	return f.record(sentEmail{Kind: "partner", To: to}, f.partnerErr)
}

func (f *fakeEmails) SendConfirmationRequest(_ context.Context, to string, data mailer.ConfirmationData) error {
	return f.record(sentEmail{Kind: "confirmation", To: to, URL: data.ConfirmURL}, f.partnerErr)
}

func (f *fakeEmails) VerificationURL(token string) string {
	return "https://taskmate.test/verify-email?token=" + token
}

func (f *fakeEmails) ConfirmationURL(token string) string {
	return "https://taskmate.test/confirm/" + token
}

func tokenFromURL(u string) string {
	if i := strings.LastIndexAny(u, "=/"); i >= 0 {
		return u[i+1:]
	}
	return u
}

type fakeRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func (f *fakeRevoker) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.revoked == nil {
		f.revoked = map[string]time.Duration{}
	}
	f.revoked[tokenID] = ttl
	return nil
}

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeObjects) Put(_ context.Context, name string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[name] = data
	f.types[name] = contentType
	return nil
}

func (f *fakeObjects) Get(_ context.Context, name string) (io.ReadCloser, int64, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[name]
	if !ok {
		return nil, 0, "", ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), f.types[name], nil
}

func (f *fakeObjects) Delete(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, name)
	return nil
}

func strPtr(s string) *string { return &s }
