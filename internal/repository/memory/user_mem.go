// internal/repository/memory/user_mem.go
package memory

import (
	"context"

	"cashcard-api/internal/domain"
	"cashcard-api/internal/repository"
	"cashcard-api/internal/util"
)

// UserRepository is an in-memory credential store. It is read-only after
// construction.
type UserRepository struct {
	users map[string]domain.User
}

var _ repository.UserRepository = (*UserRepository)(nil)

// NewUserRepository builds a credential store holding users.
func NewUserRepository(users ...domain.User) *UserRepository {
	r := &UserRepository{users: make(map[string]domain.User, len(users))}
	for _, u := range users {
		r.users[u.Username] = u
	}
	return r
}

func (r *UserRepository) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	user, ok := r.users[username]
	if !ok {
		return nil, util.ErrNotFound
	}
	return &user, nil
}
