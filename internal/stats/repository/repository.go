package repository

import (
	"context"

	"github.com/shahwaiz14/event-tracker/internal/stats/domain"
)

// Repository aggregates event logs. Every query is restricted to logs the creator wrote.
type Repository interface {
	// CountByName counts logs of eventName whose day lies strictly between start and end (YYYY-MM-DD).
	CountByName(ctx context.Context, creatorID, eventName, start, end string) (int64, error)
	// CountAll counts logs per event name, ordered by name.
	CountAll(ctx context.Context, creatorID string) ([]domain.Frequency, error)
	// DailyCounts counts logs per day and event name, ordered by day then name.
	DailyCounts(ctx context.Context, creatorID string) ([]domain.DailyCount, error)
}
