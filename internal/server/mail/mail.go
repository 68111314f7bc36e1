// Package mail отправляет пользователям письма с кодом сброса пароля.
package mail

import (
	"context"
	"log/slog"
)

// Sender defines interface for outbound reset-code mail dispatch
type Sender interface {
	// SendResetCode delivers the one-time reset code to the user's email
	SendResetCode(ctx context.Context, email, username, resetCode string) error
}

// SimulateSender логирует письмо вместо отправки.
// Используется, когда API key почтового провайдера не задан: запрос
// resetPassword при этом не падает, а код просто попадает в лог.
type SimulateSender struct {
	logger *slog.Logger
}

// NewSimulateSender creates a sender that only logs
func NewSimulateSender(logger *slog.Logger) *SimulateSender {
	return &SimulateSender{logger: logger}
}

// SendResetCode logs the dispatch instead of sending
func (s *SimulateSender) SendResetCode(ctx context.Context, email, username, resetCode string) error {
	s.logger.InfoContext(ctx, "mail provider API key not provided, simulate send email",
		slog.String("email", email),
		slog.String("username", username),
	)
	return nil
}
