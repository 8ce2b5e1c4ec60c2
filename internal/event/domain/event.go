package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shahwaiz14/event-tracker/internal/apperr"
)

// MaxNameLength is the longest event name the store accepts.
const MaxNameLength = 255

// Event is a named category a user tracks occurrences of.
// Name is unique per owner; two owners may share a name.
type Event struct {
	ID          int64
	OwnerID     string
	Name        string
	Description *string
	CreatedAt   time.Time
	ModifiedAt  time.Time
}

// Validate reports a ValidationError when the event cannot be persisted.
func (e *Event) Validate() error {
	return ValidateName(e.Name)
}

// ValidateName checks an event name on its own, for partial updates.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return apperr.NewValidationError("name", "This field may not be blank.")
	case utf8.RuneCountInString(name) > MaxNameLength:
		return apperr.NewValidationError("name", "Ensure this field has no more than 255 characters.")
	}
	return nil
}
