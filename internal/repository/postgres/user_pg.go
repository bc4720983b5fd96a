// internal/repository/postgres/user_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cashcard-api/internal/domain"
	"cashcard-api/internal/repository"
	"cashcard-api/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// UserRepository implements repository.UserRepository for PostgreSQL.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

var _ repository.UserRepository = (*UserRepository)(nil)

// GetUserByUsername retrieves a user and its roles.
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	query := `SELECT username, password_hash, roles FROM users WHERE username = $1`
	err := r.db.QueryRowContext(ctx, query, username).Scan(&user.Username, &user.PasswordHash, pq.Array(&user.Roles))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by username '%s': %w", username, err)
	}
	return &user, nil
}

// createUser inserts a user unless the username is already taken.
func createUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	query := `INSERT INTO users (username, password_hash, roles) VALUES ($1, $2, $3)
              ON CONFLICT (username) DO NOTHING`
	if _, err := q.ExecContext(ctx, query, user.Username, user.PasswordHash, pq.Array(user.Roles)); err != nil {
		return fmt.Errorf("failed to create user '%s': %w", user.Username, err)
	}
	return nil
}
