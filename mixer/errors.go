package mixer

import (
	"errors"
	"fmt"
)

var (
	// ErrInputValidation is matched by every *ValidationError
	ErrInputValidation = errors.New("invalid input")

	// ErrCanceled is the Result error of a run that ended in a Canceled event
	ErrCanceled = errors.New("mix canceled")
)

// ValidationError reports a form field that cannot be turned into a Request.
// It is raised before any task is created.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInputValidation }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// RelocateError is returned when the encoded output could not be moved into
// the source directory. The encoded file is left at From.
type RelocateError struct {
	From string
	To   string
	Err  error
}

func (e *RelocateError) Error() string {
	return fmt.Sprintf("output written to %s but could not be moved to %s: %v", e.From, e.To, e.Err)
}

func (e *RelocateError) Unwrap() error { return e.Err }
