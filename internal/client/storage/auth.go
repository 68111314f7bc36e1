package storage

import (
	"context"
	"errors"
)

// ErrAuthNotFound indicates that no session is stored locally
var ErrAuthNotFound = errors.New("auth data not found")

// AuthStorage defines interface for storing the local session on client.
// Это аналог localStorage из web-версии: одна запись с данными
// залогиненного пользователя
type AuthStorage interface {
	// SaveAuth stores the session data
	SaveAuth(ctx context.Context, auth *AuthData) error

	// GetAuth retrieves the stored session
	// Returns ErrAuthNotFound if no session exists
	GetAuth(ctx context.Context) (*AuthData, error)

	// DeleteAuth removes the stored session (logout)
	DeleteAuth(ctx context.Context) error

	// IsAuthenticated checks if a non-expired session exists
	IsAuthenticated(ctx context.Context) (bool, error)
}

// AuthData represents the logged-in user session kept on the client
type AuthData struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Token     string `json:"token"`      // JWT access token
	ExpiresAt int64  `json:"expires_at"` // unix seconds, из exp claim токена
}
