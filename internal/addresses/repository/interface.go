package repository

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists saved addresses.
type Repository interface {
	// Insert stores the address. Inserting an id the same user already owns
	// returns the stored row; an id owned by someone else is ErrIDConflict.
	Insert(ctx context.Context, address Address) (Address, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Address, error)
}
