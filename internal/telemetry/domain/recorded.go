// Package domain holds the notification published when an event log is recorded.
package domain

import (
	"encoding/json"
	"time"
)

// RecordedType is the type tag carried by every Recorded notification.
const RecordedType = "eventlog.recorded"

// Recorded describes one event log that was just written.
type Recorded struct {
	Type      string          `json:"type"`
	LogID     int64           `json:"log_id"`
	EventID   int64           `json:"event_id"`
	EventName string          `json:"event_name"`
	CreatorID string          `json:"creator_id"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}
