package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/authd/internal/client/storage"
	"github.com/iudanet/authd/internal/crypto"
	"github.com/iudanet/authd/internal/validation"
	"github.com/iudanet/authd/pkg/api"
)

// APIClient defines the server calls the auth service needs.
// Реализуется internal/client/api.Client, в тестах — моком.
type APIClient interface {
	SignUp(ctx context.Context, req api.SignUpRequest) (*api.AuthResponse, error)
	SignIn(ctx context.Context, req api.SignInRequest) (*api.AuthResponse, error)
	SignInSalt(ctx context.Context, email string) (*api.SaltResponse, error)
	ResetPassword(ctx context.Context, email string) error
	ChangePassword(ctx context.Context, req api.ChangePasswordRequest) error
	Me(ctx context.Context, token string) (*api.MeResponse, error)
}

// WhoAmIResult содержит личность, подтвержденную сервером
type WhoAmIResult struct {
	ID       string
	Username string
	Email    string
}

// AuthService предоставляет функции авторизации поверх API клиента
// и локального хранилища сессии
type AuthService struct {
	apiClient APIClient
	authStore storage.AuthStorage
}

var _ Service = (*AuthService)(nil)

// NewService создает новый сервис авторизации
func NewService(apiClient APIClient, authStore storage.AuthStorage) *AuthService {
	return &AuthService{
		apiClient: apiClient,
		authStore: authStore,
	}
}

// SignUp регистрирует нового пользователя
func (s *AuthService) SignUp(ctx context.Context, username, email, password string) (*storage.AuthData, error) {
	// Валидация входных данных до похода на сервер
	if err := validation.ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("invalid username: %w", err)
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("invalid email: %w", err)
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}

	// 1. Генерируем клиентскую соль
	saltBase64, err := crypto.GenerateSaltBase64()
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	// 2. Пре-хешируем пароль клиентской солью
	// Сервер никогда не видит пароль в открытом виде
	preHash, err := crypto.PreHashPassword(password, saltBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to pre-hash password: %w", err)
	}

	// 3. Отправляем запрос на регистрацию
	resp, err := s.apiClient.SignUp(ctx, api.SignUpRequest{
		Username: username,
		Email:    strings.ToLower(email),
		Password: preHash,
		Salt:     saltBase64,
	})
	if err != nil {
		return nil, fmt.Errorf("signup failed: %w", err)
	}

	// 4. Сохраняем сессию локально
	authData := &storage.AuthData{
		UserID:    resp.ID,
		Username:  resp.Username,
		Email:     strings.ToLower(email),
		Token:     resp.Token,
		ExpiresAt: tokenExpiry(resp.Token),
	}
	if err := s.authStore.SaveAuth(ctx, authData); err != nil {
		return nil, fmt.Errorf("failed to save auth data: %w", err)
	}

	return authData, nil
}

// SignIn выполняет аутентификацию пользователя
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*storage.AuthData, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("invalid email: %w", err)
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}

	// 1. Получаем клиентскую соль с сервера
	saltResp, err := s.apiClient.SignInSalt(ctx, strings.ToLower(email))
	if err != nil {
		return nil, fmt.Errorf("failed to get salt: %w", err)
	}

	// 2. Пре-хешируем пароль той же солью, что и при регистрации
	preHash, err := crypto.PreHashPassword(password, saltResp.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to pre-hash password: %w", err)
	}

	// 3. Отправляем запрос на логин
	resp, err := s.apiClient.SignIn(ctx, api.SignInRequest{
		Email:    strings.ToLower(email),
		Password: preHash,
	})
	if err != nil {
		return nil, fmt.Errorf("signin failed: %w", err)
	}

	// 4. Сохраняем сессию локально
	authData := &storage.AuthData{
		UserID:    resp.ID,
		Username:  resp.Username,
		Email:     strings.ToLower(email),
		Token:     resp.Token,
		ExpiresAt: tokenExpiry(resp.Token),
	}
	if err := s.authStore.SaveAuth(ctx, authData); err != nil {
		return nil, fmt.Errorf("failed to save auth data: %w", err)
	}

	return authData, nil
}

// ResetPassword запрашивает отправку кода сброса на email
func (s *AuthService) ResetPassword(ctx context.Context, email string) error {
	if err := validation.ValidateEmail(email); err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}
	if err := s.apiClient.ResetPassword(ctx, strings.ToLower(email)); err != nil {
		return fmt.Errorf("reset password failed: %w", err)
	}
	return nil
}

// ChangePassword меняет пароль по коду из письма
func (s *AuthService) ChangePassword(ctx context.Context, email, resetCode, newPassword string) error {
	if err := validation.ValidateEmail(email); err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}
	if resetCode == "" {
		return fmt.Errorf("reset code is required")
	}
	if newPassword == "" {
		return fmt.Errorf("new password is required")
	}

	// Новая соль для нового пароля, иначе пре-хеш остался бы
	// привязан к старой соли
	saltBase64, err := crypto.GenerateSaltBase64()
	if err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	preHash, err := crypto.PreHashPassword(newPassword, saltBase64)
	if err != nil {
		return fmt.Errorf("failed to pre-hash password: %w", err)
	}

	if err := s.apiClient.ChangePassword(ctx, api.ChangePasswordRequest{
		Email:       strings.ToLower(email),
		ResetCode:   resetCode,
		Salt:        saltBase64,
		NewPassword: preHash,
	}); err != nil {
		return fmt.Errorf("change password failed: %w", err)
	}
	return nil
}

// WhoAmI проверяет сохраненный токен на сервере
func (s *AuthService) WhoAmI(ctx context.Context) (*WhoAmIResult, error) {
	authData, err := s.authStore.GetAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get auth data: %w", err)
	}

	resp, err := s.apiClient.Me(ctx, authData.Token)
	if err != nil {
		return nil, fmt.Errorf("token check failed: %w", err)
	}

	return &WhoAmIResult{
		ID:       resp.ID,
		Username: resp.Username,
		Email:    resp.Email,
	}, nil
}

// Status возвращает локально сохраненную сессию без обращения к серверу
func (s *AuthService) Status(ctx context.Context) (*storage.AuthData, error) {
	return s.authStore.GetAuth(ctx)
}

// Logout удаляет локальные данные авторизации
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.authStore.DeleteAuth(ctx); err != nil {
		return fmt.Errorf("failed to delete local auth data: %w", err)
	}
	return nil
}

// tokenExpiry достает exp из JWT без проверки подписи.
// Клиенту подпись проверять нечем, exp нужен только чтобы
// показать в status истекшую сессию. При ошибке возвращает 0.
func tokenExpiry(token string) int64 {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return 0
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return 0
	}
	return exp.Unix()
}
