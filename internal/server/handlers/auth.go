package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/authd/internal/crypto"
	"github.com/iudanet/authd/internal/models"
	"github.com/iudanet/authd/internal/server/mail"
	"github.com/iudanet/authd/internal/server/storage"
	"github.com/iudanet/authd/internal/validation"
	"github.com/iudanet/authd/pkg/api"
)

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	logger      *slog.Logger
	userStorage storage.UserStorage
	mailSender  mail.Sender
	jwtConfig   JWTConfig
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, userStorage storage.UserStorage, mailSender mail.Sender, jwtConfig JWTConfig) *AuthHandler {
	return &AuthHandler{
		logger:      logger,
		userStorage: userStorage,
		mailSender:  mailSender,
		jwtConfig:   jwtConfig,
	}
}

// SignUp обрабатывает POST /api/v1/auth/signup
// Регистрация нового пользователя
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if !h.requireTokenKey(ctx, w) {
		return
	}

	var req api.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode signup request", slog.Any("error", err))
		h.sendError(w, "", "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateUsername(req.Username); err != nil {
		h.logger.WarnContext(ctx, "invalid username", slog.String("username", req.Username), slog.Any("error", err))
		h.sendError(w, "", err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		h.logger.WarnContext(ctx, "invalid email", slog.Any("error", err))
		h.sendError(w, "", err.Error(), http.StatusBadRequest)
		return
	}
	if req.Password == "" {
		h.sendError(w, "", "password is required", http.StatusBadRequest)
		return
	}
	if req.Salt == "" {
		h.sendError(w, "", "salt is required", http.StatusBadRequest)
		return
	}

	// Проверки уникальности до любых изменений: контракт обещает
	// err.emailUsed раньше err.usernameUsed
	if _, err := h.userStorage.GetUserByEmail(ctx, req.Email); err == nil {
		h.logger.WarnContext(ctx, "email is already used")
		h.sendError(w, api.ErrCodeEmailUsed, "Email is already used.", http.StatusConflict)
		return
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		h.logger.ErrorContext(ctx, "failed to check email", slog.Any("error", err))
		h.sendError(w, "", err.Error(), http.StatusInternalServerError)
		return
	}

	if _, err := h.userStorage.GetUserByUsername(ctx, req.Username); err == nil {
		h.logger.WarnContext(ctx, "username is already used", slog.String("username", req.Username))
		h.sendError(w, api.ErrCodeUsernameUsed, "Username is already used.", http.StatusConflict)
		return
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		h.logger.ErrorContext(ctx, "failed to check username", slog.Any("error", err))
		h.sendError(w, "", err.Error(), http.StatusInternalServerError)
		return
	}

	passwordHash, err := crypto.HashPassword(req.Password)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		h.sendError(w, "", err.Error(), http.StatusInternalServerError)
		return
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Salt:         req.Salt,
		CreatedAt:    time.Now(),
	}

	if err := h.userStorage.CreateUser(ctx, user); err != nil {
		// UNIQUE индексы в БД закрывают гонку двух одновременных signup
		switch {
		case errors.Is(err, storage.ErrEmailExists):
			h.sendError(w, api.ErrCodeEmailUsed, "Email is already used.", http.StatusConflict)
		case errors.Is(err, storage.ErrUsernameExists):
			h.sendError(w, api.ErrCodeUsernameUsed, "Username is already used.", http.StatusConflict)
		default:
			h.logger.ErrorContext(ctx, "failed to create user", slog.Any("error", err))
			h.sendError(w, "", err.Error(), http.StatusInternalServerError)
		}
		return
	}

	token, err := GenerateAccessToken(h.jwtConfig, user.ID, user.Email)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate access token", slog.Any("error", err))
		h.sendError(w, "", err.Error(), http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "user registered successfully",
		slog.String("username", req.Username),
		slog.String("user_id", user.ID))

	w.Header().Set(api.AccessTokenHeader, token)
	h.sendJSON(w, api.AuthResponse{
		ID:       user.ID,
		Username: user.Username,
		Token:    token,
	}, http.StatusOK)
}

// SignIn обрабатывает POST /api/v1/auth/signin
// Аутентификация пользователя
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if !h.requireTokenKey(ctx, w) {
		return
	}

	var req api.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode signin request", slog.Any("error", err))
		h.sendError(w, "", "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.userStorage.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			// Единое сообщение: не раскрываем, что именно не совпало
			h.logger.WarnContext(ctx, "signin failed: user not found")
			h.sendError(w, "", "Username or password is incorrect", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		h.sendError(w, "", err.Error(), http.StatusInternalServerError)
		return
	}

	if !crypto.CheckPassword(req.Password, user.PasswordHash) {
		h.logger.WarnContext(ctx, "signin failed: invalid password", slog.String("user_id", user.ID))
		h.sendError(w, "", "Username or password is incorrect", http.StatusUnauthorized)
		return
	}

	token, err := GenerateAccessToken(h.jwtConfig, user.ID, user.Email)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate access token", slog.Any("error", err))
		h.sendError(w, "", err.Error(), http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "user logged in successfully",
		slog.String("username", user.Username),
		slog.String("user_id", user.ID))

	w.Header().Set(api.AccessTokenHeader, token)
	h.sendJSON(w, api.AuthResponse{
		ID:       user.ID,
		Username: user.Username,
		Token:    token,
	}, http.StatusOK)
}

// SignInSalt обрабатывает POST /api/v1/auth/signin/salt
// Выдает клиентскую соль пользователя перед sign-in
func (h *AuthHandler) SignInSalt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var req api.SaltRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode salt request", slog.Any("error", err))
		h.sendError(w, "", "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.userStorage.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.logger.WarnContext(ctx, "salt lookup failed: email not found")
			h.sendError(w, "", "Email not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		h.sendError(w, "", err.Error(), http.StatusInternalServerError)
		return
	}

	h.sendJSON(w, api.SaltResponse{Salt: user.Salt}, http.StatusOK)
}

// ResetPassword обрабатывает POST /api/v1/auth/reset
// Генерирует одноразовый код, сохраняет его на пользователе и шлет письмо
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if !h.requireTokenKey(ctx, w) {
		return
	}

	var req api.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode reset request", slog.Any("error", err))
		h.sendError(w, "", "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.userStorage.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			// Исторически неизвестный email здесь дает 500, а не 404,
			// в отличие от signin/salt. Сохраняем наблюдаемый контракт.
			h.logger.WarnContext(ctx, "reset failed: email not found")
			h.sendError(w, "", "Can't send email.", http.StatusInternalServerError)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		h.sendError(w, "", err.Error(), http.StatusInternalServerError)
		return
	}

	resetCode, err := crypto.GenerateResetCode()
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate reset code", slog.Any("error", err))
		h.sendError(w, "", err.Error(), http.StatusInternalServerError)
		return
	}

	if err := h.userStorage.SetResetCode(ctx, user.ID, resetCode); err != nil {
		h.logger.ErrorContext(ctx, "failed to store reset code", slog.Any("error", err))
		h.sendError(w, "", "Can't store reset code.", http.StatusInternalServerError)
		return
	}

	if err := h.mailSender.SendResetCode(ctx, user.Email, user.Username, resetCode); err != nil {
		h.logger.ErrorContext(ctx, "failed to send reset email", slog.Any("error", err))
		h.sendError(w, "", err.Error(), http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "reset code issued", slog.String("user_id", user.ID))

	w.WriteHeader(http.StatusOK)
}

// ChangePassword обрабатывает POST /api/v1/auth/change
// Проверяет reset code и атомарно заменяет соль и хеш пароля
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if !h.requireTokenKey(ctx, w) {
		return
	}

	var req api.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode change password request", slog.Any("error", err))
		h.sendError(w, "", "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.userStorage.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			// Та же историческая несимметричность, что и в ResetPassword
			h.logger.WarnContext(ctx, "change password failed: email not found")
			h.sendError(w, "", "Can't send email.", http.StatusInternalServerError)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		h.sendError(w, "", err.Error(), http.StatusInternalServerError)
		return
	}

	// Код обязан совпасть строково; отсутствие pending кода — тоже отказ
	if user.ResetCode == nil || req.ResetCode == "" || *user.ResetCode != req.ResetCode {
		h.logger.WarnContext(ctx, "change password failed: invalid reset code", slog.String("user_id", user.ID))
		h.sendError(w, "", "Invalid reset code", http.StatusUnauthorized)
		return
	}

	passwordHash, err := crypto.HashPassword(req.NewPassword)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		h.sendError(w, "", err.Error(), http.StatusInternalServerError)
		return
	}

	// Соль, хеш и снятие reset code — один UPDATE
	if err := h.userStorage.UpdateCredentials(ctx, user.ID, req.Salt, passwordHash); err != nil {
		h.logger.ErrorContext(ctx, "failed to update credentials", slog.Any("error", err))
		h.sendError(w, "", "Can't store reset code.", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "password changed", slog.String("user_id", user.ID))

	w.WriteHeader(http.StatusOK)
}

// requireTokenKey проверяет, что signing secret задан.
// Отсутствие секрета — фатальная мисконфигурация: отвечаем 500 с диагностикой
func (h *AuthHandler) requireTokenKey(ctx context.Context, w http.ResponseWriter) bool {
	if h.jwtConfig.Configured() {
		return true
	}
	h.logger.ErrorContext(ctx, "MISCONFIGURATION - Missing TOKEN_KEY. Please add it to environment variables.")
	h.sendError(w, "", "Missing TOKEN KEY", http.StatusInternalServerError)
	return false
}

// sendJSON отправляет JSON ответ
func (h *AuthHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError отправляет JSON ответ с ошибкой
func (h *AuthHandler) sendError(w http.ResponseWriter, errorCode, message string, statusCode int) {
	h.sendJSON(w, api.ErrorResponse{
		ErrorCode: errorCode,
		Message:   message,
	}, statusCode)
}
