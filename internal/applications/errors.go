package applications

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSubmission = errors.New("invalid submission")
	ErrNotFound          = errors.New("application not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrStorageCorrupt    = errors.New("application store is corrupt")
	ErrTokenTaken        = errors.New("token already in use")
)

// ValidationError names the submission field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s is required", e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidSubmission
}
