package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/authd/internal/models"
	"github.com/iudanet/authd/internal/server/storage"
)

// CreateUser creates a new user in the storage
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, salt, reset_code, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Salt,
		user.ResetCode,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		// UNIQUE индексы закрывают гонку check-then-insert на уровне БД
		if strings.Contains(err.Error(), "users.email") {
			return storage.ErrEmailExists
		}
		if strings.Contains(err.Error(), "users.username") {
			return storage.ErrUsernameExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves user by email
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email = ?", email)
}

// GetUserByUsername retrieves user by username
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, "username = ?", username)
}

// GetUserByID retrieves user by ID
func (s *Storage) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return s.getUser(ctx, "id = ?", userID)
}

func (s *Storage) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	query := `
		SELECT id, username, email, password_hash, salt, reset_code, created_at, updated_at
		FROM users
		WHERE ` + where

	user := &models.User{}
	var resetCode sql.NullString
	var updatedAt sql.NullTime

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Salt,
		&resetCode,
		&user.CreatedAt,
		&updatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if resetCode.Valid {
		user.ResetCode = &resetCode.String
	}
	if updatedAt.Valid {
		user.UpdatedAt = &updatedAt.Time
	}

	return user, nil
}

// SetResetCode stores a pending reset code on the user record
func (s *Storage) SetResetCode(ctx context.Context, userID, resetCode string) error {
	query := `UPDATE users SET reset_code = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, resetCode, userID)
	if err != nil {
		return fmt.Errorf("failed to set reset code: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrUserNotFound
	}

	return nil
}

// UpdateCredentials replaces salt and password hash and clears the reset code
// in a single update
func (s *Storage) UpdateCredentials(ctx context.Context, userID, salt, passwordHash string) error {
	query := `
		UPDATE users
		SET salt = ?, password_hash = ?, reset_code = NULL, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query, salt, passwordHash, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update credentials: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrUserNotFound
	}

	return nil
}
