package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/iudanet/authd/internal/models"
	"github.com/iudanet/authd/pkg/api"
)

// UserHandlerFunc — продолжение, которое получает пользователя из токена
// и возвращает статус и тело ответа
type UserHandlerFunc func(ctx context.Context, user *models.User) (int, any)

// WithUser оборачивает продолжение в проверку access token.
// Токен берется из заголовка X-Access-Token; любой сбой — отсутствующий,
// невалидный или истекший токен, неизвестный пользователь, ошибка
// продолжения — дает единый 401 Not authorized.
func (h *AuthHandler) WithUser(fn UserHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token := r.Header.Get(api.AccessTokenHeader)
		if token == "" {
			h.notAuthorized(w)
			return
		}

		claims, err := ValidateAccessToken(h.jwtConfig, token)
		if err != nil {
			h.logger.WarnContext(ctx, "token validation failed", slog.Any("error", err))
			h.notAuthorized(w)
			return
		}

		user, err := h.userStorage.GetUserByEmail(ctx, claims.Email)
		if err != nil {
			h.logger.WarnContext(ctx, "token user lookup failed", slog.Any("error", err))
			h.notAuthorized(w)
			return
		}

		code, body := fn(ctx, user)
		if code == 0 {
			// Продолжение не дало ответа — считаем это отказом
			h.notAuthorized(w)
			return
		}

		if body == nil {
			w.WriteHeader(code)
			return
		}
		h.sendJSON(w, body, code)
	}
}

// Me обрабатывает GET /api/v1/auth/me
// Возвращает личность, привязанную к предъявленному токену
func (h *AuthHandler) Me() http.HandlerFunc {
	return h.WithUser(func(ctx context.Context, user *models.User) (int, any) {
		return http.StatusOK, api.MeResponse{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
		}
	})
}

func (h *AuthHandler) notAuthorized(w http.ResponseWriter) {
	h.sendError(w, "", "Not authorized", http.StatusUnauthorized)
}
