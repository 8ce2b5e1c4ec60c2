package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shahwaiz14/event-tracker/internal/apperr"
)

// MaxEventNameLength matches the events.name column.
const MaxEventNameLength = 255

// EventLog is one occurrence of an event. EventName is copied from the event when the
// log is written and is not changed by later renames.
type EventLog struct {
	ID        int64
	CreatorID string
	EventID   int64
	EventName string
	Timestamp time.Time
	Data      json.RawMessage
}

// ValidateInput checks the caller-supplied part of a log. eventName is expected trimmed.
func ValidateInput(eventName string, data json.RawMessage) error {
	verr := &apperr.ValidationError{}
	switch {
	case eventName == "":
		verr.Add("event_name", "This field may not be blank.")
	case utf8.RuneCountInString(eventName) > MaxEventNameLength:
		verr.Add("event_name", "Ensure this field has no more than 255 characters.")
	}

	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0:
		verr.Add("data", "This field is required.")
	case string(trimmed) == "null":
		verr.Add("data", "This field may not be null.")
	case !json.Valid(trimmed):
		verr.Add("data", "Value must be valid JSON.")
	}
	return verr.OrNil()
}

// NormalizeName trims surrounding whitespace from an event name.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}
