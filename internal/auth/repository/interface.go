package repository

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the account storage operations the auth service needs.
type UserRepository interface {
	CreateUser(ctx context.Context, email, passwordHash string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (User, error)
}

// Ensure Repository implements UserRepository
var _ UserRepository = (*Repository)(nil)
