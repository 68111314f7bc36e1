package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/authd/pkg/api"
)

func TestClient_SignUp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/signup", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req api.SignUpRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req.Username)
		assert.Equal(t, "alice@example.com", req.Email)

		w.Header().Set(api.AccessTokenHeader, "jwt-token")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.AuthResponse{
			ID:       "user-1",
			Username: "alice",
			Token:    "jwt-token",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.SignUp(context.Background(), api.SignUpRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "prehash",
		Salt:     "c2FsdA==",
	})

	require.NoError(t, err)
	assert.Equal(t, "user-1", resp.ID)
	assert.Equal(t, "alice", resp.Username)
	assert.Equal(t, "jwt-token", resp.Token)
}

func TestClient_SignUp_EmailUsed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{
			ErrorCode: api.ErrCodeEmailUsed,
			Message:   "Email already in use",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.SignUp(context.Background(), api.SignUpRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "prehash",
		Salt:     "c2FsdA==",
	})

	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, api.ErrCodeEmailUsed, apiErr.ErrorCode)
	assert.Equal(t, "Email already in use", apiErr.Message)
}

func TestClient_SignIn_TokenFromHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Токен только в заголовке, тело без него
		w.Header().Set(api.AccessTokenHeader, "header-token")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.AuthResponse{ID: "user-1", Username: "alice"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.SignIn(context.Background(), api.SignInRequest{
		Email:    "alice@example.com",
		Password: "prehash",
	})

	require.NoError(t, err)
	assert.Equal(t, "header-token", resp.Token)
}

func TestClient_SignIn_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{
			Message: "Username or password is incorrect",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.SignIn(context.Background(), api.SignInRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})

	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Username or password is incorrect", apiErr.Message)
}

func TestClient_SignInSalt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/signin/salt", r.URL.Path)

		var req api.SaltRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice@example.com", req.Email)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.SaltResponse{Salt: "c2FsdA=="})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.SignInSalt(context.Background(), "alice@example.com")

	require.NoError(t, err)
	assert.Equal(t, "c2FsdA==", resp.Salt)
}

func TestClient_ResetPassword(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/reset", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	require.NoError(t, client.ResetPassword(context.Background(), "alice@example.com"))
}

func TestClient_ChangePassword_InvalidCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/change", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{Message: "Invalid reset code"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.ChangePassword(context.Background(), api.ChangePasswordRequest{
		Email:       "alice@example.com",
		ResetCode:   "000000",
		Salt:        "c2FsdA==",
		NewPassword: "prehash",
	})

	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestClient_Me(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/auth/me", r.URL.Path)
		assert.Equal(t, "jwt-token", r.Header.Get(api.AccessTokenHeader))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.MeResponse{
			ID:       "user-1",
			Username: "alice",
			Email:    "alice@example.com",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.Me(context.Background(), "jwt-token")

	require.NoError(t, err)
	assert.Equal(t, "user-1", resp.ID)
	assert.Equal(t, "alice", resp.Username)
}

func TestClient_NonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("bad gateway"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Me(context.Background(), "jwt-token")

	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "bad gateway", apiErr.Message)
	assert.Empty(t, apiErr.ErrorCode)
}
