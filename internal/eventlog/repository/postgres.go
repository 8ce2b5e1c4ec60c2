package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/shahwaiz14/event-tracker/internal/apperr"
	"github.com/shahwaiz14/event-tracker/internal/eventlog/domain"
)

const foreignKeyViolation = "23503"

// PostgresRepository appends to the event_logs table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an event log repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert stores l. The timestamp is assigned by the database.
func (r *PostgresRepository) Insert(ctx context.Context, l *domain.EventLog) error {
	const q = `INSERT INTO event_logs (creator_id, event_id, event_name, data)
		VALUES ($1, $2, $3, $4::jsonb)
		RETURNING id, "timestamp"`
	err := r.db.QueryRowContext(ctx, q, l.CreatorID, l.EventID, l.EventName, string(l.Data)).
		Scan(&l.ID, &l.Timestamp)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return apperr.ErrEventNotFound
		}
		return err
	}
	return nil
}
