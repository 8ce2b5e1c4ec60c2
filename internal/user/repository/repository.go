package repository

import (
	"context"

	"github.com/shahwaiz14/event-tracker/internal/user/domain"
)

// Repository persists accounts. Lookups return (nil, nil) when no row matches.
type Repository interface {
	// GetByUsername matches the username exactly, as stored.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// Create returns apperr.ErrUsernameTaken when the username is already in use.
	Create(ctx context.Context, u *domain.User) error
}
