// Package validate checks request DTOs with go-playground/validator and reports failures
// as field-keyed apperr.ValidationError values named after the JSON fields.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/shahwaiz14/event-tracker/internal/apperr"
)

// Validator wraps a configured *validator.Validate. Safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator that reports fields by their json tag.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Struct validates s. It returns nil, an *apperr.ValidationError, or the underlying
// error when s is not a validatable struct.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &apperr.ValidationError{}
	for _, fe := range verrs {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "alphanumunicode", "printascii":
		return "Enter a valid value."
	case "datetime":
		return fmt.Sprintf("Date has wrong format. Use one of these formats instead: %s.", "YYYY-MM-DD")
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}
