package repository

import (
	"context"

	"github.com/shahwaiz14/event-tracker/internal/event/domain"
)

// Repository defines persistence for events. Every method except FindByName is scoped
// to an owner; rows owned by someone else behave exactly like missing rows.
type Repository interface {
	// ListNames returns names of the owner's events, newest first. Each whitespace- or
	// comma-separated term in search must appear in the name or description (case-insensitive).
	ListNames(ctx context.Context, ownerID, search string) ([]string, error)
	// ExistsByName reports whether the owner already has an event called name.
	ExistsByName(ctx context.Context, ownerID, name string) (bool, error)
	// Create inserts e and sets ID, CreatedAt, ModifiedAt. Returns apperr.ErrDuplicate
	// when the (owner, name) pair is taken.
	Create(ctx context.Context, e *domain.Event) error
	// GetByID returns the owner's event, or nil if not found.
	GetByID(ctx context.Context, ownerID string, id int64) (*domain.Event, error)
	// Update writes name and description and refreshes ModifiedAt. Returns apperr.ErrNotFound
	// when the row is gone and apperr.ErrDuplicate on a name collision.
	Update(ctx context.Context, e *domain.Event) error
	// Delete removes the owner's event and, by cascade, its logs. It returns the ids of
	// users whose logs were removed, and false when nothing was deleted.
	Delete(ctx context.Context, ownerID string, id int64) (affectedCreators []string, deleted bool, err error)
	// FindByName returns the first event with this name across all owners, or nil.
	FindByName(ctx context.Context, name string) (*domain.Event, error)
}
