package repository

import (
	"context"
	"database/sql"

	"github.com/shahwaiz14/event-tracker/internal/stats/domain"
)

// PostgresRepository aggregates the event_logs table. It never writes.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a statistics repository reading from the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CountByName counts the creator's logs of eventName whose calendar day lies strictly
// between start and end (YYYY-MM-DD). No matching rows yields 0, not an error.
func (r *PostgresRepository) CountByName(ctx context.Context, creatorID, eventName, start, end string) (int64, error) {
	const q = `SELECT COUNT(*) FROM event_logs
		WHERE creator_id = $1 AND event_name = $2
		AND "timestamp"::date > $3::date AND "timestamp"::date < $4::date`
	var n int64
	if err := r.db.QueryRowContext(ctx, q, creatorID, eventName, start, end).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// CountAll returns one count per event name the creator has logged, ordered by name.
// A creator with no logs gets an empty, non-nil slice.
func (r *PostgresRepository) CountAll(ctx context.Context, creatorID string) ([]domain.Frequency, error) {
	const q = `SELECT event_name, COUNT(*) FROM event_logs
		WHERE creator_id = $1
		GROUP BY event_name ORDER BY event_name`
	rows, err := r.db.QueryContext(ctx, q, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Frequency, 0)
	for rows.Next() {
		var f domain.Frequency
		if err := rows.Scan(&f.EventName, &f.Total); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// DailyCounts returns the creator's log counts grouped by day and event name, ordered by
// day then name. It returns nil when the creator has no logs.
func (r *PostgresRepository) DailyCounts(ctx context.Context, creatorID string) ([]domain.DailyCount, error) {
	const q = `SELECT to_char("timestamp"::date, 'YYYY-MM-DD') AS day, event_name, COUNT(*)
		FROM event_logs
		WHERE creator_id = $1
		GROUP BY day, event_name
		ORDER BY day, event_name`
	rows, err := r.db.QueryContext(ctx, q, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DailyCount
	for rows.Next() {
		var c domain.DailyCount
		if err := rows.Scan(&c.Day, &c.EventName, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
