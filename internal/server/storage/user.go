package storage

import (
	"context"

	"github.com/iudanet/authd/internal/models"
)

// UserStorage defines interface for user data persistence
type UserStorage interface {
	// CreateUser creates a new user in the storage
	// Returns ErrEmailExists / ErrUsernameExists on unique constraint violation
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves user by email
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByUsername retrieves user by username
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserByID retrieves user by ID
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByID(ctx context.Context, userID string) (*models.User, error)

	// SetResetCode stores a pending reset code on the user record
	// Returns ErrUserNotFound if user doesn't exist
	SetResetCode(ctx context.Context, userID, resetCode string) error

	// UpdateCredentials replaces salt and password hash and clears the
	// reset code in a single update
	// Returns ErrUserNotFound if user doesn't exist
	UpdateCredentials(ctx context.Context, userID, salt, passwordHash string) error
}
