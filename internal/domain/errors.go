package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound               = errors.New("post not found")
	ErrUnsupportedContentKind = errors.New("unsupported content kind")
)

// ValidationError is a user-facing intake rejection for a single field.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// PublishError wraps a failure reported by the external platform. Error
// returns the platform message unchanged so it can be stored as last error.
type PublishError struct {
	Message string
	Err     error
}

func NewPublishError(err error) *PublishError {
	return &PublishError{Message: err.Error(), Err: err}
}

func (e *PublishError) Error() string {
	return e.Message
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

func UnsupportedContentKind(kind ContentKind) error {
	return fmt.Errorf("%w: %q", ErrUnsupportedContentKind, string(kind))
}
