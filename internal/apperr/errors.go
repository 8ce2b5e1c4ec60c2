// Package apperr holds the error taxonomy shared by the services. Handlers map these to
// HTTP status codes; services never pick status codes themselves.
package apperr

import (
	"errors"
	"sort"
	"strings"
)

// EventNotFoundMessage is returned verbatim to clients logging against an unknown event.
const EventNotFoundMessage = "The specified event does not exist. Please create the event first."

var (
	// ErrNotFound is returned when a resource is absent or not owned by the caller.
	// The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when the caller already owns an event with the given name.
	ErrDuplicate = errors.New("Event with this name already exists.")
	// ErrEventNotFound is returned when an event log names an event that does not exist.
	ErrEventNotFound = errors.New(EventNotFoundMessage)
	// ErrUnauthenticated is returned when no caller identity is available.
	ErrUnauthenticated = errors.New("authentication credentials were not provided or are invalid")
	// ErrInvalidCredentials is returned by login for unknown users and bad passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUsernameTaken is returned by register when the username is already in use.
	ErrUsernameTaken = errors.New("a user with that username already exists")
)

// ValidationError reports missing or malformed input, keyed by field name.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns a ValidationError with a single field message.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {msg}}}
}

// Add appends msg to field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Merge adds every message of err to e when err is a ValidationError. Other errors are ignored.
func (e *ValidationError) Merge(err error) {
	other, ok := AsValidation(err)
	if !ok {
		return
	}
	for field, msgs := range other.Fields {
		for _, m := range msgs {
			e.Add(field, m)
		}
	}
}

// Empty reports whether no field has been flagged.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// OrNil returns e as an error when it holds at least one field, nil otherwise.
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// AsValidation unwraps err into a *ValidationError.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
