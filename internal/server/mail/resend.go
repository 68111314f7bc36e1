package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// ResendSender отправляет письма через Resend API
type ResendSender struct {
	client *resend.Client
	logger *slog.Logger
	from   string
}

// NewResendSender creates a Resend-backed mail sender
func NewResendSender(apiKey, from string, logger *slog.Logger) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		logger: logger,
		from:   from,
	}
}

// NewSender выбирает реализацию по наличию API key:
// без ключа работаем в режиме симуляции
func NewSender(apiKey, from string, logger *slog.Logger) Sender {
	if apiKey == "" {
		return NewSimulateSender(logger)
	}
	return NewResendSender(apiKey, from, logger)
}

// SendResetCode delivers the one-time reset code to the user's email
func (s *ResendSender) SendResetCode(ctx context.Context, email, username, resetCode string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{email},
		Subject: "Password reset code",
		Text: fmt.Sprintf("Hello %s,\n\nYour password reset code is: %s\n\n"+
			"If you did not request a password reset, ignore this message.\n", username, resetCode),
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	s.logger.InfoContext(ctx, "reset email sent",
		slog.String("email", email),
		slog.String("message_id", sent.Id),
	)

	return nil
}
