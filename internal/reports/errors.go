package reports

import "errors"

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("report not found")
	ErrForbidden         = errors.New("report belongs to another user")
	ErrPersistenceFailed = errors.New("failed to persist report")
)

// ValidationError names the offending input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
