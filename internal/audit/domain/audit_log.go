package domain

import "time"

// AuditLog is one row of the audit trail: who performed which action on which resource.
// UserID is empty when the actor is unknown, e.g. a login for a username that does not exist.
// Metadata, when set, is a JSON object such as {"status":201}.
type AuditLog struct {
	ID        string
	UserID    string
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
