// internal/repository/user_repo.go
package repository

import (
	"context"

	"cashcard-api/internal/domain"
)

// UserRepository defines the interface for credential store lookups.
type UserRepository interface {
	// GetUserByUsername retrieves a user by username, util.ErrNotFound if absent.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
}
