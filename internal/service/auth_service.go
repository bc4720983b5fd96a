// internal/service/auth_service.go
package service

import (
	"context"
	"fmt"

	"cashcard-api/internal/domain"
	"cashcard-api/internal/repository"
	"cashcard-api/internal/util"

	"golang.org/x/crypto/bcrypt"
)

// AuthService verifies HTTP Basic credentials against the credential store.
type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (domain.Principal, error)
}

type authService struct {
	userRepo repository.UserRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

// Authenticate returns the principal for a valid username/password pair.
// Unknown users and wrong passwords both yield util.ErrUnauthenticated.
func (s *authService) Authenticate(ctx context.Context, username, password string) (domain.Principal, error) {
	if username == "" {
		return domain.Principal{}, util.ErrUnauthenticated
	}

	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return domain.Principal{}, util.ErrUnauthenticated
		}
		return domain.Principal{}, fmt.Errorf("authenticate %s: %w", username, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return domain.Principal{}, util.ErrUnauthenticated
	}

	return domain.Principal{Username: user.Username, Roles: user.Roles}, nil
}
