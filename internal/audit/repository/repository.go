package repository

import (
	"context"

	"github.com/shahwaiz14/event-tracker/internal/audit/domain"
)

// Repository stores audit entries. Entries are append-only.
type Repository interface {
	// Create inserts a; a.ID must be set by the caller.
	Create(ctx context.Context, a *domain.AuditLog) error
}
