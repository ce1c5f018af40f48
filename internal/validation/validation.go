// Package validation turns untrusted route parameters and request bodies into
// normalized values, or into a ValidationError listing every offending field.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// FieldError describes one invalid input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries all field failures found in a single pass
type ValidationError struct {
	Details []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		msgs = append(msgs, d.Field+": "+d.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Details = append(e.Details, FieldError{Field: field, Message: message})
}

// err returns e as an error, or nil when nothing was recorded.
func (e *ValidationError) err() error {
	if len(e.Details) == 0 {
		return nil
	}
	return e
}

// checkVar runs a validator tag against a single value and records the first failure under field.
func (e *ValidationError) checkVar(field string, value any, tag string) bool {
	err := validate.Var(value, tag)
	if err == nil {
		return true
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		e.add(field, tagMessage(ve[0]))
		return false
	}
	e.add(field, err.Error())
	return false
}

// tagMessage converts a validator failure into a human-readable message.
func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("failed validation (%s)", fe.Tag())
	}
}
