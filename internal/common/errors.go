package common

import (
	"errors"
	"fmt"
)

// Business logic errors
var (
	// General errors
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden")

	// Content errors
	ErrContentNotFound = errors.New("content not found")
	ErrVersionNotFound = errors.New("version not found")

	// Conflict: compare-and-swap mismatch, the caller must re-read and retry
	ErrConflict = errors.New("version conflict")

	// InvalidTransition: the requested status change is not allowed from the
	// current state. Never retried.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ValidationError kinds
	ErrValidation = errors.New("validation failed")

	// IndexUnavailable: search is degraded; mutations on the store and
	// ledger are unaffected.
	ErrIndexUnavailable = errors.New("search index unavailable")

	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// ValidationError carries field-level detail for a rejected request
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d invalid field(s)", len(e.Fields))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a ValidationError for a single field
func NewValidationError(field, detail string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: detail}}
}

// TransitionError describes a rejected lifecycle transition
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
