package db

import "embed"

// MigrationFS holds the schema for users, events, event_logs and audit_logs.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
