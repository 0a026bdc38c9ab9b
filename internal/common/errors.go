// Package common contains shared constants and sentinel errors used across
// equiadmin components. Callers should use errors.Is / errors.As to match
// these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors (missing or malformed input).
	ErrorValidation = errors.New("validation error")

	// Operations refused regardless of capabilities (bootstrap account
	// protection, self-lock).
	ErrorForbidden = errors.New("forbidden")

	// Auth errors (invalid, malformed, expired or tampered token).
	// The verifier deliberately collapses all token failures into this one
	// value so callers cannot distinguish why a token was rejected.
	ErrInvalidToken = errors.New("invalid token")

	// Datastore availability errors.
	ErrorStore      = errors.New("datastore unavailable")
	ErrorAllocation = errors.New("identifier allocation failed")
)

// DuplicateError reports a uniqueness-constraint violation on a named field.
// The datastore constraint, not any pre-validation pass, is the authority
// for duplicate detection.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate value for field %q", e.Field)
}

// CredentialsError reports a failed credential check together with the
// number of attempts left before a timed lock is imposed.
type CredentialsError struct {
	Remaining int
}

func (e *CredentialsError) Error() string {
	return fmt.Sprintf("invalid credentials, %d attempt(s) remaining", e.Remaining)
}

// Lock types reported to callers on a 403.
const (
	LockTypeAdmin    = "admin"
	LockTypePassword = "password"
)

// LockError reports that an account is locked and which lock applies.
type LockError struct {
	Type string
}

func (e *LockError) Error() string {
	return fmt.Sprintf("account locked (%s)", e.Type)
}

// RightsError reports insufficient capabilities for an operation.
type RightsError struct {
	Missing []string
}

func (e *RightsError) Error() string {
	return fmt.Sprintf("missing rights: %v", e.Missing)
}
