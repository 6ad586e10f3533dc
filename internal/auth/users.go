package auth

import (
	"context"
	"database/sql"
	"errors"
)

// User is an account allowed to call the API.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
}

// UserFinder looks up accounts for login.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
}

// UserRepository is a Postgres store for user accounts.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository constructs a repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	if db == nil {
		return nil
	}
	return &UserRepository{db: db}
}

// FindByEmail returns the user for an email, or nil when absent.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("user repo: nil db")
	}
	if email == "" {
		return nil, errors.New("user repo: empty email")
	}
	var user User
	var role string
	err := r.db.QueryRowContext(ctx, `
SELECT id, email, password_hash, role
FROM users
WHERE email = $1
LIMIT 1`, email).Scan(&user.ID, &user.Email, &user.PasswordHash, &role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	normalized, ok := NormalizeRole(role)
	if !ok {
		return nil, errors.New("user repo: invalid role on account")
	}
	user.Role = normalized
	return &user, nil
}
