// Package migrate applies the embedded schema migrations with golang-migrate.
package migrate

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/shahwaiz14/event-tracker/internal/db"
)

// Result describes the schema after a run.
type Result struct {
	// Version is the applied migration version; 0 when none is applied.
	Version uint
	// Dirty is set when a migration failed halfway and needs manual repair.
	Dirty bool
	// Changed is false when the schema was already at the target.
	Changed bool
}

// Run migrates the database at dsn. direction is "up" or "down"; steps > 0 limits the
// run to that many migrations, 0 means all of them.
func Run(dsn, direction string, steps int) (Result, error) {
	if dsn == "" {
		return Result{}, errors.New("DATABASE_URL is not set; create a .env or set DATABASE_URL")
	}
	if direction != "up" && direction != "down" {
		return Result{}, fmt.Errorf("direction must be up or down, got %q", direction)
	}
	if steps < 0 {
		return Result{}, fmt.Errorf("steps must not be negative, got %d", steps)
	}

	src, err := iofs.New(db.MigrationFS, "migrations")
	if err != nil {
		return Result{}, fmt.Errorf("migrate source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return Result{}, fmt.Errorf("migrate: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	switch {
	case steps > 0 && direction == "down":
		err = m.Steps(-steps)
	case steps > 0:
		err = m.Steps(steps)
	case direction == "down":
		err = m.Down()
	default:
		err = m.Up()
	}
	res := Result{Changed: err == nil}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return res, fmt.Errorf("migrate %s: %w", direction, err)
	}

	v, dirty, verr := m.Version()
	switch {
	case errors.Is(verr, migrate.ErrNilVersion):
	case verr != nil:
		return res, fmt.Errorf("migrate version: %w", verr)
	default:
		res.Version, res.Dirty = v, dirty
	}
	return res, nil
}
