package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/shahwaiz14/event-tracker/internal/apperr"
	"github.com/shahwaiz14/event-tracker/internal/db"
	"github.com/shahwaiz14/event-tracker/internal/event/domain"
)

const (
	uniqueViolation     = "23505"
	ownerNameConstraint = "events_owner_name_key"

	eventColumns = "id, owner_id, name, description, created_at, modified_at"
)

// PostgresRepository stores events in the events table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an event repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListNames returns the owner's event names ordered by creation time, newest first.
func (r *PostgresRepository) ListNames(ctx context.Context, ownerID, search string) ([]string, error) {
	var b strings.Builder
	b.WriteString("SELECT name FROM events WHERE owner_id = $1")
	args := []any{ownerID}
	for _, term := range SearchTerms(search) {
		args = append(args, "%"+escapeLike(term)+"%")
		n := len(args)
		fmt.Fprintf(&b, ` AND (name ILIKE $%d ESCAPE '\' OR description ILIKE $%d ESCAPE '\')`, n, n)
	}
	b.WriteString(" ORDER BY created_at DESC, id DESC")

	rows, err := r.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ExistsByName reports whether the owner has an event with exactly this name.
func (r *PostgresRepository) ExistsByName(ctx context.Context, ownerID, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM events WHERE owner_id = $1 AND name = $2)",
		ownerID, name,
	).Scan(&exists)
	return exists, err
}

// Create inserts the event. The unique index on (owner_id, name) is authoritative, so two
// concurrent creates with the same name cannot both succeed.
func (r *PostgresRepository) Create(ctx context.Context, e *domain.Event) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO events (owner_id, name, description)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, modified_at`,
		e.OwnerID, e.Name, nullString(e.Description),
	).Scan(&e.ID, &e.CreatedAt, &e.ModifiedAt)
	if err != nil {
		if isOwnerNameViolation(err) {
			return apperr.ErrDuplicate
		}
		return err
	}
	return nil
}

// GetByID returns the owner's event for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, ownerID string, id int64) (*domain.Event, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE id = $1 AND owner_id = $2",
		id, ownerID,
	)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

// Update persists name and description for the owner's event and bumps modified_at.
func (r *PostgresRepository) Update(ctx context.Context, e *domain.Event) error {
	err := r.db.QueryRowContext(ctx,
		`UPDATE events SET name = $3, description = $4, modified_at = now()
		 WHERE id = $1 AND owner_id = $2
		 RETURNING modified_at`,
		e.ID, e.OwnerID, e.Name, nullString(e.Description),
	).Scan(&e.ModifiedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return apperr.ErrNotFound
	case isOwnerNameViolation(err):
		return apperr.ErrDuplicate
	}
	return err
}

// Delete removes the owner's event; event_logs rows go with it via ON DELETE CASCADE.
// The creators of those logs are collected first, in the same transaction.
func (r *PostgresRepository) Delete(ctx context.Context, ownerID string, id int64) ([]string, bool, error) {
	var (
		creators []string
		deleted  bool
	)
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT DISTINCT l.creator_id FROM event_logs l
			 JOIN events e ON e.id = l.event_id
			 WHERE e.id = $1 AND e.owner_id = $2`,
			id, ownerID,
		)
		if err != nil {
			return err
		}
		for rows.Next() {
			var c string
			if err := rows.Scan(&c); err != nil {
				rows.Close()
				return err
			}
			creators = append(creators, c)
		}
		if err := rows.Close(); err != nil {
			return err
		}
		if err := rows.Err(); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, "DELETE FROM events WHERE id = $1 AND owner_id = $2", id, ownerID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		deleted = n > 0
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if !deleted {
		return nil, false, nil
	}
	return creators, true, nil
}

// FindByName returns the lowest-id event with this name regardless of owner, or nil.
func (r *PostgresRepository) FindByName(ctx context.Context, name string) (*domain.Event, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE name = $1 ORDER BY id LIMIT 1",
		name,
	)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

// SearchTerms splits a search string on whitespace and commas, dropping NUL bytes.
func SearchTerms(search string) []string {
	search = strings.ReplaceAll(search, "\x00", "")
	return strings.FieldsFunc(search, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func scanEvent(row *sql.Row) (*domain.Event, error) {
	var (
		e    domain.Event
		desc sql.NullString
	)
	if err := row.Scan(&e.ID, &e.OwnerID, &e.Name, &desc, &e.CreatedAt, &e.ModifiedAt); err != nil {
		return nil, err
	}
	if desc.Valid {
		e.Description = &desc.String
	}
	return &e, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func isOwnerNameViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return pgErr.ConstraintName == "" || pgErr.ConstraintName == ownerNameConstraint
}
