// Package dbtest opens a migrated Postgres database for integration tests. Tests share
// the database, so each one works on its own users rather than emptying tables.
package dbtest

import (
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shahwaiz14/event-tracker/internal/db"
	"github.com/shahwaiz14/event-tracker/internal/db/migrate"
)

// Open connects to DATABASE_URL after applying the migrations. The test is skipped when
// DATABASE_URL is unset.
func Open(t testing.TB) *sql.DB {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	if _, err := migrate.Run(dsn, "up", 0); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	conn, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// CreateUser inserts a user with a unique username and returns its id.
func CreateUser(t testing.TB, conn *sql.DB) string {
	t.Helper()
	id := uuid.NewString()
	_, err := conn.Exec(`INSERT INTO users (id, username, password_hash) VALUES ($1, $2, 'x')`, id, "it-"+id)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return id
}

// CreateEvent inserts an event owned by ownerID and returns its id.
func CreateEvent(t testing.TB, conn *sql.DB, ownerID, name string) int64 {
	t.Helper()
	var id int64
	err := conn.QueryRow(`INSERT INTO events (owner_id, name) VALUES ($1, $2) RETURNING id`, ownerID, name).Scan(&id)
	if err != nil {
		t.Fatalf("insert event: %v", err)
	}
	return id
}

// InsertLog writes an event log with an explicit timestamp.
func InsertLog(t testing.TB, conn *sql.DB, creatorID string, eventID int64, eventName string, ts time.Time) {
	t.Helper()
	_, err := conn.Exec(
		`INSERT INTO event_logs (creator_id, event_id, event_name, "timestamp", data) VALUES ($1, $2, $3, $4, '{}')`,
		creatorID, eventID, eventName, ts)
	if err != nil {
		t.Fatalf("insert event log: %v", err)
	}
}

// CountLogs returns the number of logs referencing eventID.
func CountLogs(t testing.TB, conn *sql.DB, eventID int64) int {
	t.Helper()
	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM event_logs WHERE event_id = $1`, eventID).Scan(&n); err != nil {
		t.Fatalf("count event logs: %v", err)
	}
	return n
}
