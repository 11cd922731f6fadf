package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	DefaultFrom  = "TaskMate <noreply@taskmate.app>"
	deadlineDate = "Jan 2, 2006"
)

type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

// Sender delivers a rendered message. Failures are returned synchronously.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type ReminderData struct {
	OwnerName string
	TaskTitle string
	Deadline  time.Time
}

type ConfirmationData struct {
	OwnerName  string
	TaskTitle  string
	Deadline   time.Time
	ConfirmURL string
}

type reminderTemplate struct {
	subject  func(title string) string
	template string
}

var reminderTemplates = map[models.ReminderType]reminderTemplate{
	models.Reminder24HoursBefore: {
		subject:  func(title string) string { return fmt.Sprintf("⏰ Reminder: %q is due tomorrow", title) },
		template: "reminder_24_hours_before.html",
	},
	models.ReminderDeadline: {
		subject:  func(title string) string { return fmt.Sprintf("🚨 %q is due today!", title) },
		template: "reminder_deadline.html",
	},
	models.Reminder24HoursAfter: {
		subject:  func(title string) string { return fmt.Sprintf("📋 Follow-up: How did %q go?", title) },
		template: "reminder_24_hours_after.html",
	},
}

type Mailer struct {
	sender    Sender
	from      string
	baseURL   string
	templates *template.Template
}

func New(sender Sender, from, baseURL string) (*Mailer, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	if from == "" {
		from = DefaultFrom
	}

	return &Mailer{
		sender:    sender,
		from:      from,
		baseURL:   strings.TrimRight(baseURL, "/"),
		templates: tmpl,
	}, nil
}

func (m *Mailer) VerificationURL(token string) string {
	return fmt.Sprintf("%s/verify-email?token=%s", m.baseURL, token)
}

func (m *Mailer) ConfirmationURL(token string) string {
	return fmt.Sprintf("%s/confirm/%s", m.baseURL, token)
}

func (m *Mailer) SendVerificationEmail(ctx context.Context, to, name, verifyURL string) error {
	body, err := m.render("verification.html", map[string]string{
		"Name":      name,
		"VerifyURL": verifyURL,
	})
	if err != nil {
		return err
	}

	return m.send(ctx, to, "Verify your TaskMate account", body)
}

func (m *Mailer) SendReminder(ctx context.Context, to string, reminderType models.ReminderType, data ReminderData) error {
	rt, ok := reminderTemplates[reminderType]
	if !ok {
		return fmt.Errorf("no template for reminder type %q", reminderType)
	}

	body, err := m.render(rt.template, m.reminderView(data))
	if err != nil {
		return err
	}

	return m.send(ctx, to, rt.subject(data.TaskTitle), body)
}

func (m *Mailer) SendPartnerUpdate(ctx context.Context, to string, data ReminderData) error {
	body, err := m.render("partner_update.html", m.reminderView(data))
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("📋 TaskMate: %q update from %s", data.TaskTitle, data.OwnerName)
	return m.send(ctx, to, subject, body)
}

func (m *Mailer) SendConfirmationRequest(ctx context.Context, to string, data ConfirmationData) error {
	body, err := m.render("confirmation_request.html", map[string]string{
		"OwnerName":  data.OwnerName,
		"TaskTitle":  data.TaskTitle,
		"Deadline":   data.Deadline.Format(deadlineDate),
		"ConfirmURL": data.ConfirmURL,
	})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("✅ %s asked you to confirm %q", data.OwnerName, data.TaskTitle)
	return m.send(ctx, to, subject, body)
}

func (m *Mailer) reminderView(data ReminderData) map[string]string {
	return map[string]string{
		"OwnerName":    data.OwnerName,
		"TaskTitle":    data.TaskTitle,
		"Deadline":     data.Deadline.Format(deadlineDate),
		"DashboardURL": m.baseURL + "/dashboard",
	}
}

func (m *Mailer) render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := m.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func (m *Mailer) send(ctx context.Context, to, subject, body string) error {
	return m.sender.Send(ctx, Message{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		HTML:    body,
	})
}
