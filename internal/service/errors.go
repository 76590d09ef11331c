package service

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyExists is returned when registering a username that is taken.
	ErrAlreadyExists = errors.New("username already exists")
	// ErrStorageFault marks failures of the underlying store. The operation did not complete.
	ErrStorageFault = errors.New("storage fault")
	// ErrReportsDisabled is returned when no report archive is configured.
	ErrReportsDisabled = errors.New("report archive not configured")
)

// ValidationError reports a rejected input field. Nothing was persisted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func storageFault(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageFault, err)
}
