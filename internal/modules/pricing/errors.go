package pricing

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is; the concrete error types below match them.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
)

// ValidationError reports malformed caller input. Message is shown to the user as-is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports an unknown or inactive service (a configuration fault).
type NotFoundError struct {
	Service ServiceKind
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("service %q is unavailable", string(e.Service))
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
