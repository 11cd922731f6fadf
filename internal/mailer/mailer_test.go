package mailer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/models"
)

type captureSender struct {
	sent []Message
	err  error
}

func (c *captureSender) Send(_ context.Context, msg Message) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

func newTestMailer(t *testing.T) (*Mailer, *captureSender) {
	t.Helper()
	sender := &captureSender{}
	m, err := New(sender, "", "https://taskmate.test/")
	require.NoError(t, err)
	return m, sender
}

func TestEveryReminderTypeHasTemplate(t *testing.T) {
	m, _ := newTestMailer(t)
	for _, rt := range models.ReminderTypes() {
		tmpl, ok := reminderTemplates[rt]
		require.True(t, ok, "missing template for %s", rt)
		require.NotNil(t, m.templates.Lookup(tmpl.template), "template file %s not embedded", tmpl.template)
	}
	require.Len(t, reminderTemplates, len(models.ReminderTypes()))
}

func TestSendReminderSubjects(t *testing.T) {
	deadline := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	data := ReminderData{OwnerName: "Ann", TaskTitle: "Write report", Deadline: deadline}

	cases := map[models.ReminderType]string{
		models.Reminder24HoursBefore: `⏰ Reminder: "Write report" is due tomorrow`,
		models.ReminderDeadline:      `🚨 "Write report" is due today!`,
		models.Reminder24HoursAfter:  `📋 Follow-up: How did "Write report" go?`,
	}

	for rt, subject := range cases {
		t.Run(string(rt), func(t *testing.T) {
			m, sender := newTestMailer(t)
			require.NoError(t, m.SendReminder(context.Background(), "ann@example.com", rt, data))
			require.Len(t, sender.sent, 1)

			msg := sender.sent[0]
			assert.Equal(t, subject, msg.Subject)
			assert.Equal(t, DefaultFrom, msg.From)
			assert.Equal(t, []string{"ann@example.com"}, msg.To)
			assert.Contains(t, msg.HTML, "Hi Ann!")
			assert.Contains(t, msg.HTML, "Mar 14, 2026")
			assert.Contains(t, msg.HTML, "https://taskmate.test/dashboard")
		})
	}
}

func TestSendReminderUnknownType(t *testing.T) {
	m, sender := newTestMailer(t)
	err := m.SendReminder(context.Background(), "ann@example.com", models.ReminderType("weekly"), ReminderData{})
	require.Error(t, err)
	require.Empty(t, sender.sent)
}

func TestVerificationEmailCarriesLink(t *testing.T) {
	m, sender := newTestMailer(t)
	url := m.VerificationURL("abc_DEF-123")
	require.Equal(t, "https://taskmate.test/verify-email?token=abc_DEF-123", url)

	require.NoError(t, m.SendVerificationEmail(context.Background(), "u@example.com", "U", url))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Verify your TaskMate account", sender.sent[0].Subject)
	assert.Contains(t, sender.sent[0].HTML, url)
}

func TestPartnerUpdateAndConfirmationRequest(t *testing.T) {
	m, sender := newTestMailer(t)
	data := ReminderData{OwnerName: "Ann", TaskTitle: "Run 5k", Deadline: time.Now()}

	require.NoError(t, m.SendPartnerUpdate(context.Background(), "p@example.com", data))
	require.NoError(t, m.SendConfirmationRequest(context.Background(), "p@example.com", ConfirmationData{
		OwnerName:  "Ann",
		TaskTitle:  "Run 5k",
		Deadline:   data.Deadline,
		ConfirmURL: m.ConfirmationURL("tok"),
	}))

	require.Len(t, sender.sent, 2)
	assert.Equal(t, `📋 TaskMate: "Run 5k" update from Ann`, sender.sent[0].Subject)
	assert.Contains(t, sender.sent[0].HTML, "accountability partner")
	assert.Contains(t, sender.sent[1].HTML, "https://taskmate.test/confirm/tok")
}

func TestTemplatesEscapeUserInput(t *testing.T) {
	m, sender := newTestMailer(t)
	data := ReminderData{OwnerName: "<script>x</script>", TaskTitle: "a & b", Deadline: time.Now()}

	require.NoError(t, m.SendReminder(context.Background(), "ann@example.com", models.ReminderDeadline, data))
	assert.NotContains(t, sender.sent[0].HTML, "<script>")
	assert.Contains(t, sender.sent[0].HTML, "a &amp; b")
}

func TestSenderErrorPropagates(t *testing.T) {
	sender := &captureSender{err: errors.New("smtp down")}
	m, err := New(sender, "Ops <ops@example.com>", "http://localhost")
	require.NoError(t, err)

	err = m.SendVerificationEmail(context.Background(), "u@example.com", "U", "http://localhost/verify-email?token=t")
	require.EqualError(t, err, "smtp down")
}

func TestBuildMessageHeaders(t *testing.T) {
	raw := string(buildMessage(Message{
		From:    DefaultFrom,
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "Hello",
		HTML:    "<p>hi</p>",
	}))

	assert.Contains(t, raw, "To: a@example.com, b@example.com\r\n")
	assert.Contains(t, raw, "Content-Type: text/html; charset=UTF-8\r\n")
	assert.Contains(t, raw, "\r\n\r\n<p>hi</p>")
}
