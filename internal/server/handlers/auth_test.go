package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/authd/internal/crypto"
	"github.com/iudanet/authd/internal/models"
	"github.com/iudanet/authd/internal/server/storage"
	"github.com/iudanet/authd/pkg/api"
)

// mockUserStorage is a mock implementation of UserStorage for testing
type mockUserStorage struct {
	users       map[string]*models.User // email -> User
	getError    error
	createError error
	updateError error
}

func newMockUserStorage() *mockUserStorage {
	return &mockUserStorage{users: make(map[string]*models.User)}
}

func (m *mockUserStorage) CreateUser(ctx context.Context, user *models.User) error {
	if m.createError != nil {
		return m.createError
	}
	if _, exists := m.users[user.Email]; exists {
		return storage.ErrEmailExists
	}
	for _, u := range m.users {
		if u.Username == user.Username {
			return storage.ErrUsernameExists
		}
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	user, ok := m.users[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *mockUserStorage) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	for _, u := range m.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *mockUserStorage) SetResetCode(ctx context.Context, userID, resetCode string) error {
	if m.updateError != nil {
		return m.updateError
	}
	for _, u := range m.users {
		if u.ID == userID {
			u.ResetCode = &resetCode
			return nil
		}
	}
	return storage.ErrUserNotFound
}

func (m *mockUserStorage) UpdateCredentials(ctx context.Context, userID, salt, passwordHash string) error {
	if m.updateError != nil {
		return m.updateError
	}
	for _, u := range m.users {
		if u.ID == userID {
			u.Salt = salt
			u.PasswordHash = passwordHash
			u.ResetCode = nil
			now := time.Now()
			u.UpdatedAt = &now
			return nil
		}
	}
	return storage.ErrUserNotFound
}

// mockMailSender records dispatched reset codes
type mockMailSender struct {
	sent      []string // "email:code"
	sendError error
}

func (m *mockMailSender) SendResetCode(ctx context.Context, email, username, resetCode string) error {
	if m.sendError != nil {
		return m.sendError
	}
	m.sent = append(m.sent, email+":"+resetCode)
	return nil
}

func testJWTConfig() JWTConfig {
	return JWTConfig{
		Secret:   []byte("test-secret-key"),
		TokenTTL: 7 * 24 * time.Hour,
	}
}

func newTestHandler(users *mockUserStorage, mailer *mockMailSender) *AuthHandler {
	return NewAuthHandler(testLogger(), users, mailer, testJWTConfig())
}

func doJSON(t *testing.T, h http.HandlerFunc, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func signUpAlice(t *testing.T, h *AuthHandler) api.AuthResponse {
	t.Helper()

	w := doJSON(t, h.SignUp, http.MethodPost, "/api/v1/auth/signup", api.SignUpRequest{
		Username: "alice",
		Email:    "a@x.com",
		Password: "pw1",
		Salt:     "s1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.AuthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestAuthHandler_SignUp_Success(t *testing.T) {
	users := newMockUserStorage()
	h := newTestHandler(users, &mockMailSender{})

	w := doJSON(t, h.SignUp, http.MethodPost, "/api/v1/auth/signup", api.SignUpRequest{
		Username: "alice",
		Email:    "a@x.com",
		Password: "pw1",
		Salt:     "s1",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.AuthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "alice", resp.Username)
	assert.NotEmpty(t, resp.Token)

	// Токен дублируется в заголовке
	assert.Equal(t, resp.Token, w.Header().Get(api.AccessTokenHeader))

	// Пароль хранится только как bcrypt хеш
	stored := users.users["a@x.com"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "pw1", stored.PasswordHash)
	assert.True(t, crypto.CheckPassword("pw1", stored.PasswordHash))
	assert.Equal(t, "s1", stored.Salt)

	// Выданный токен валиден
	claims, err := ValidateAccessToken(testJWTConfig(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
}

func TestAuthHandler_SignUp_EmailUsed(t *testing.T) {
	users := newMockUserStorage()
	h := newTestHandler(users, &mockMailSender{})

	signUpAlice(t, h)

	// Тот же email, другой username
	w := doJSON(t, h.SignUp, http.MethodPost, "/api/v1/auth/signup", api.SignUpRequest{
		Username: "bob",
		Email:    "a@x.com",
		Password: "pw2",
		Salt:     "s2",
	})

	require.Equal(t, http.StatusConflict, w.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, api.ErrCodeEmailUsed, resp.ErrorCode)

	// Никаких изменений: alice осталась одна
	assert.Len(t, users.users, 1)
}

func TestAuthHandler_SignUp_UsernameUsed(t *testing.T) {
	users := newMockUserStorage()
	h := newTestHandler(users, &mockMailSender{})

	signUpAlice(t, h)

	// Другой email, тот же username
	w := doJSON(t, h.SignUp, http.MethodPost, "/api/v1/auth/signup", api.SignUpRequest{
		Username: "alice",
		Email:    "b@x.com",
		Password: "pw2",
		Salt:     "s2",
	})

	require.Equal(t, http.StatusConflict, w.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, api.ErrCodeUsernameUsed, resp.ErrorCode)
	assert.Len(t, users.users, 1)
}

func TestAuthHandler_SignUp_BadRequests(t *testing.T) {
	h := newTestHandler(newMockUserStorage(), &mockMailSender{})

	tests := []struct {
		name string
		req  api.SignUpRequest
	}{
		{"empty body fields", api.SignUpRequest{}},
		{"bad username", api.SignUpRequest{Username: "a b", Email: "a@x.com", Password: "p", Salt: "s"}},
		{"bad email", api.SignUpRequest{Username: "alice", Email: "not-an-email", Password: "p", Salt: "s"}},
		{"missing password", api.SignUpRequest{Username: "alice", Email: "a@x.com", Salt: "s"}},
		{"missing salt", api.SignUpRequest{Username: "alice", Email: "a@x.com", Password: "p"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, h.SignUp, http.MethodPost, "/api/v1/auth/signup", tt.req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAuthHandler_SignUp_EmptyBody(t *testing.T) {
	h := newTestHandler(newMockUserStorage(), &mockMailSender{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", http.NoBody)
	w := httptest.NewRecorder()
	h.SignUp(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_NonPost(t *testing.T) {
	h := newTestHandler(newMockUserStorage(), &mockMailSender{})

	// Все write-эндпоинты отвечают 404 на не-POST методы
	endpoints := []struct {
		name    string
		target  string
		handler http.HandlerFunc
	}{
		{"signup", "/api/v1/auth/signup", h.SignUp},
		{"signin", "/api/v1/auth/signin", h.SignIn},
		{"signin salt", "/api/v1/auth/signin/salt", h.SignInSalt},
		{"reset", "/api/v1/auth/reset", h.ResetPassword},
		{"change", "/api/v1/auth/change", h.ChangePassword},
	}

	for _, ep := range endpoints {
		for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
			t.Run(ep.name+" "+method, func(t *testing.T) {
				req := httptest.NewRequest(method, ep.target, http.NoBody)
				w := httptest.NewRecorder()
				ep.handler(w, req)

				assert.Equal(t, http.StatusNotFound, w.Code)
			})
		}
	}
}

func TestAuthHandler_SignUp_MissingTokenKey(t *testing.T) {
	h := NewAuthHandler(testLogger(), newMockUserStorage(), &mockMailSender{}, JWTConfig{})

	w := doJSON(t, h.SignUp, http.MethodPost, "/api/v1/auth/signup", api.SignUpRequest{
		Username: "alice",
		Email:    "a@x.com",
		Password: "pw1",
		Salt:     "s1",
	})

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Missing TOKEN KEY")
}

func TestAuthHandler_SignUp_StorageError(t *testing.T) {
	users := newMockUserStorage()
	users.getError = errors.New("db connection lost")
	h := newTestHandler(users, &mockMailSender{})

	w := doJSON(t, h.SignUp, http.MethodPost, "/api/v1/auth/signup", api.SignUpRequest{
		Username: "alice",
		Email:    "a@x.com",
		Password: "pw1",
		Salt:     "s1",
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAuthHandler_SignIn_Success(t *testing.T) {
	users := newMockUserStorage()
	h := newTestHandler(users, &mockMailSender{})

	signed := signUpAlice(t, h)

	w := doJSON(t, h.SignIn, http.MethodPost, "/api/v1/auth/signin", api.SignInRequest{
		Email:    "a@x.com",
		Password: "pw1",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.AuthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, signed.ID, resp.ID)
	assert.Equal(t, "alice", resp.Username)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, resp.Token, w.Header().Get(api.AccessTokenHeader))
}

func TestAuthHandler_SignIn_WrongPassword(t *testing.T) {
	h := newTestHandler(newMockUserStorage(), &mockMailSender{})
	signUpAlice(t, h)

	w := doJSON(t, h.SignIn, http.MethodPost, "/api/v1/auth/signin", api.SignInRequest{
		Email:    "a@x.com",
		Password: "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_SignIn_UnknownEmail(t *testing.T) {
	h := newTestHandler(newMockUserStorage(), &mockMailSender{})
	signUpAlice(t, h)

	wUnknown := doJSON(t, h.SignIn, http.MethodPost, "/api/v1/auth/signin", api.SignInRequest{
		Email:    "ghost@x.com",
		Password: "pw1",
	})
	wWrongPw := doJSON(t, h.SignIn, http.MethodPost, "/api/v1/auth/signin", api.SignInRequest{
		Email:    "a@x.com",
		Password: "wrong",
	})

	// Единый 401 и одинаковое сообщение: по ответу нельзя понять,
	// существует ли аккаунт
	assert.Equal(t, http.StatusUnauthorized, wUnknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wWrongPw.Code)
	assert.Equal(t, wUnknown.Body.String(), wWrongPw.Body.String())
}

func TestAuthHandler_SignInSalt(t *testing.T) {
	h := newTestHandler(newMockUserStorage(), &mockMailSender{})
	signUpAlice(t, h)

	w := doJSON(t, h.SignInSalt, http.MethodPost, "/api/v1/auth/signin/salt", api.SaltRequest{
		Email: "a@x.com",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.SaltResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "s1", resp.Salt)
}

func TestAuthHandler_SignInSalt_EmailNotFound(t *testing.T) {
	h := newTestHandler(newMockUserStorage(), &mockMailSender{})

	w := doJSON(t, h.SignInSalt, http.MethodPost, "/api/v1/auth/signin/salt", api.SaltRequest{
		Email: "ghost@x.com",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthHandler_ResetPassword_Success(t *testing.T) {
	users := newMockUserStorage()
	mailer := &mockMailSender{}
	h := newTestHandler(users, mailer)
	signUpAlice(t, h)

	w := doJSON(t, h.ResetPassword, http.MethodPost, "/api/v1/auth/reset", api.ResetPasswordRequest{
		Email: "a@x.com",
	})

	require.Equal(t, http.StatusOK, w.Code)

	// Код сохранен на пользователе и отправлен в письме
	stored := users.users["a@x.com"]
	require.NotNil(t, stored.ResetCode)
	assert.Len(t, *stored.ResetCode, 6)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "a@x.com:"+*stored.ResetCode, mailer.sent[0])
}

func TestAuthHandler_ResetPassword_UnknownEmail(t *testing.T) {
	mailer := &mockMailSender{}
	h := newTestHandler(newMockUserStorage(), mailer)

	w := doJSON(t, h.ResetPassword, http.MethodPost, "/api/v1/auth/reset", api.ResetPasswordRequest{
		Email: "ghost@x.com",
	})

	// Исторический контракт: generic 500, не 404
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, mailer.sent)
}

func TestAuthHandler_ResetPassword_StoreFailure(t *testing.T) {
	users := newMockUserStorage()
	h := newTestHandler(users, &mockMailSender{})
	signUpAlice(t, h)
	users.updateError = errors.New("disk full")

	w := doJSON(t, h.ResetPassword, http.MethodPost, "/api/v1/auth/reset", api.ResetPasswordRequest{
		Email: "a@x.com",
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAuthHandler_ChangePassword_Flow(t *testing.T) {
	users := newMockUserStorage()
	mailer := &mockMailSender{}
	h := newTestHandler(users, mailer)
	signUpAlice(t, h)

	// Запрашиваем сброс, берем код из "письма"
	w := doJSON(t, h.ResetPassword, http.MethodPost, "/api/v1/auth/reset", api.ResetPasswordRequest{
		Email: "a@x.com",
	})
	require.Equal(t, http.StatusOK, w.Code)
	resetCode := *users.users["a@x.com"].ResetCode

	w = doJSON(t, h.ChangePassword, http.MethodPost, "/api/v1/auth/change", api.ChangePasswordRequest{
		Email:       "a@x.com",
		ResetCode:   resetCode,
		Salt:        "s2",
		NewPassword: "pw2",
	})
	require.Equal(t, http.StatusOK, w.Code)

	stored := users.users["a@x.com"]
	// Код снят, старый пароль больше не подходит, новый — подходит
	assert.Nil(t, stored.ResetCode)
	assert.Equal(t, "s2", stored.Salt)
	assert.False(t, crypto.CheckPassword("pw1", stored.PasswordHash))
	assert.True(t, crypto.CheckPassword("pw2", stored.PasswordHash))

	// Повторное использование кода — отказ
	w = doJSON(t, h.ChangePassword, http.MethodPost, "/api/v1/auth/change", api.ChangePasswordRequest{
		Email:       "a@x.com",
		ResetCode:   resetCode,
		Salt:        "s3",
		NewPassword: "pw3",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_ChangePassword_WrongCode(t *testing.T) {
	users := newMockUserStorage()
	h := newTestHandler(users, &mockMailSender{})
	signUpAlice(t, h)

	w := doJSON(t, h.ResetPassword, http.MethodPost, "/api/v1/auth/reset", api.ResetPasswordRequest{
		Email: "a@x.com",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, h.ChangePassword, http.MethodPost, "/api/v1/auth/change", api.ChangePasswordRequest{
		Email:       "a@x.com",
		ResetCode:   "000000",
		Salt:        "s2",
		NewPassword: "pw2",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	// Пароль не изменился
	assert.True(t, crypto.CheckPassword("pw1", users.users["a@x.com"].PasswordHash))
}

func TestAuthHandler_ChangePassword_NoPendingReset(t *testing.T) {
	h := newTestHandler(newMockUserStorage(), &mockMailSender{})
	signUpAlice(t, h)

	// Сброс не запрашивался: пустой код не равен отсутствующему
	w := doJSON(t, h.ChangePassword, http.MethodPost, "/api/v1/auth/change", api.ChangePasswordRequest{
		Email:       "a@x.com",
		ResetCode:   "",
		Salt:        "s2",
		NewPassword: "pw2",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
