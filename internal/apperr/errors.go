// Package apperr defines sentinel errors shared across pagewright packages.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrInvalidOptions marks configuration errors raised while constructing a pipeline.
	ErrInvalidOptions = errors.New("invalid options")

	ErrNoExtension      = errors.New("could not parse document without an extension")
	ErrUnknownExtension = errors.New("unknown extension")
	ErrAliasCycle       = errors.New("parser alias chain did not terminate")

	ErrMissingField = errors.New("missing field in the document")
)

// MissingFieldError reports a document lacking a field the default namer or
// renderer requires. It matches ErrMissingField with errors.Is.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing '%s' field in the document", e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}
