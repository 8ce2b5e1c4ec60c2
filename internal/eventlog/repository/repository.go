package repository

import (
	"context"

	"github.com/shahwaiz14/event-tracker/internal/eventlog/domain"
)

// Repository defines persistence for event logs.
type Repository interface {
	// Insert stores l and fills in ID and Timestamp. It returns apperr.ErrEventNotFound
	// when l.EventID no longer references an event.
	Insert(ctx context.Context, l *domain.EventLog) error
}
