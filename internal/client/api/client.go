package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iudanet/authd/pkg/api"
)

// APIError — структурированная ошибка сервера
type APIError struct {
	StatusCode int    // HTTP статус
	ErrorCode  string // машинный код (err.emailUsed и т.п.), может быть пуст
	Message    string
}

func (e *APIError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("server error (%d, %s): %s", e.StatusCode, e.ErrorCode, e.Message)
	}
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SignUp регистрирует нового пользователя
func (c *Client) SignUp(ctx context.Context, req api.SignUpRequest) (*api.AuthResponse, error) {
	var resp api.AuthResponse
	header, err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/signup", "", req, &resp)
	if err != nil {
		return nil, fmt.Errorf("signup request failed: %w", err)
	}
	// Токен приходит и в заголовке, и в теле
	if resp.Token == "" {
		resp.Token = header.Get(api.AccessTokenHeader)
	}
	return &resp, nil
}

// SignIn выполняет аутентификацию пользователя
func (c *Client) SignIn(ctx context.Context, req api.SignInRequest) (*api.AuthResponse, error) {
	var resp api.AuthResponse
	header, err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/signin", "", req, &resp)
	if err != nil {
		return nil, fmt.Errorf("signin request failed: %w", err)
	}
	if resp.Token == "" {
		resp.Token = header.Get(api.AccessTokenHeader)
	}
	return &resp, nil
}

// SignInSalt получает клиентскую соль пользователя перед sign-in
func (c *Client) SignInSalt(ctx context.Context, email string) (*api.SaltResponse, error) {
	var resp api.SaltResponse
	if _, err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/signin/salt", "", api.SaltRequest{Email: email}, &resp); err != nil {
		return nil, fmt.Errorf("salt request failed: %w", err)
	}
	return &resp, nil
}

// ResetPassword запрашивает код сброса пароля на email
func (c *Client) ResetPassword(ctx context.Context, email string) error {
	if _, err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/reset", "", api.ResetPasswordRequest{Email: email}, nil); err != nil {
		return fmt.Errorf("reset password request failed: %w", err)
	}
	return nil
}

// ChangePassword меняет пароль по коду сброса
func (c *Client) ChangePassword(ctx context.Context, req api.ChangePasswordRequest) error {
	if _, err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/change", "", req, nil); err != nil {
		return fmt.Errorf("change password request failed: %w", err)
	}
	return nil
}

// Me возвращает личность по access token
func (c *Client) Me(ctx context.Context, token string) (*api.MeResponse, error) {
	var resp api.MeResponse
	if _, err := c.doRequest(ctx, http.MethodGet, "/api/v1/auth/me", token, nil, &resp); err != nil {
		return nil, fmt.Errorf("me request failed: %w", err)
	}
	return &resp, nil
}

// doRequest выполняет HTTP запрос и возвращает заголовки ответа
func (c *Client) doRequest(ctx context.Context, method, path, token string, body, result interface{}) (http.Header, error) {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(api.AccessTokenHeader, token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			apiErr.ErrorCode = errResp.ErrorCode
			apiErr.Message = errResp.Message
		}
		return resp.Header, apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return resp.Header, fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return resp.Header, nil
}
