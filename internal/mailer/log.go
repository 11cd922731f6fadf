package mailer

import (
	"context"

	"go.uber.org/zap"

	"github.com/zhanserikAmangeldi/taskmate-service/pkg/logger"
)

// LogSender writes messages to the log instead of delivering them. Used when SMTP is disabled.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	logger.WithModule("mailer").Info("email not delivered, SMTP disabled",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("html_bytes", len(msg.HTML)),
	)
	return nil
}
