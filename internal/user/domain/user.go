package domain

import (
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/shahwaiz14/event-tracker/internal/apperr"
)

// MaxUsernameLength matches the users.username column.
const MaxUsernameLength = 150

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

// User is an account that owns events and records event logs.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// ValidateUsername checks length and allowed characters (letters, digits and @.+-_).
func ValidateUsername(username string) error {
	switch {
	case username == "":
		return apperr.NewValidationError("username", "This field may not be blank.")
	case utf8.RuneCountInString(username) > MaxUsernameLength:
		return apperr.NewValidationError("username", "Ensure this field has no more than 150 characters.")
	case !usernamePattern.MatchString(username):
		return apperr.NewValidationError("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	return nil
}
