// Package notifications delivers out-of-band messages such as password reset links.
package notifications

import (
	"context"
	"fmt"
	"sync"

	"todoapi/backend/pkg/config"
	"todoapi/backend/pkg/features"

	"go.uber.org/zap"
)

// Message é uma mensagem a ser entregue fora da API.
type Message struct {
	To       string
	Subject  string
	BodyText string
	BodyHTML string
}

// Notifier entrega mensagens. Implementações devem respeitar o ctx.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// LogNotifier writes messages to the log instead of sending them. It is the default
// delivery channel and keeps the last message for inspection.
type LogNotifier struct {
	logger *zap.Logger

	mu   sync.Mutex
	last *Message
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger.Named("notifier")}
}

func (n *LogNotifier) Send(_ context.Context, msg Message) error {
	n.mu.Lock()
	n.last = &msg
	n.mu.Unlock()

	n.logger.Info("--- SIMULATING EMAIL SEND ---",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.BodyText))
	return nil
}

// Last returns the most recent message passed to Send.
func (n *LogNotifier) Last() (Message, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.last == nil {
		return Message{}, false
	}
	return *n.last, true
}

// New picks the notifier for cfg. SES is used only when the SES_EMAIL feature is on
// and the client can be built; every other case logs.
func New(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	fallback := NewLogNotifier(logger)
	if !features.IsEnabled(cfg, features.SESEmail) {
		return fallback
	}

	ses, err := NewSESNotifier(ctx, cfg.Email.AWSRegion, cfg.Email.From)
	if err != nil {
		logger.Warn("AWS SES email service unavailable, falling back to log delivery", zap.Error(err))
		return fallback
	}
	logger.Info("AWS SES email service initialized",
		zap.String("sender", cfg.Email.From),
		zap.String("region", cfg.Email.AWSRegion))
	return ses
}

// PasswordResetMessage builds the message carrying a reset link.
func PasswordResetMessage(to, resetURL string) Message {
	text := fmt.Sprintf("You are receiving this email because you (or someone else) has requested the reset of a password.\n\n"+
		"Please open the following link to choose a new password. It expires in a few minutes:\n\n%s\n", resetURL)
	html := fmt.Sprintf("<p>You are receiving this email because you (or someone else) has requested the reset of a password.</p>"+
		"<p><a href=\"%s\">Reset your password</a></p>", resetURL)
	return Message{To: to, Subject: "Password reset token", BodyText: text, BodyHTML: html}
}
