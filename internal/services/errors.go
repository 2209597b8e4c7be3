package services

import (
	"errors"
	"fmt"

	"pet-adoption-backend/internal/models"
	"pet-adoption-backend/internal/repository"
)

var (
	// ErrUserExists is returned when an email is already registered
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials is returned when signin fails
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden is returned when the caller may not perform an action
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned when the addressed resource does not exist
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when the current state does not allow an action
	ErrConflict = errors.New("conflict")
	// ErrInvalidReference is returned when a referenced document does not exist
	ErrInvalidReference = errors.New("invalid reference")
	// ErrUploadsDisabled is returned when no object storage is configured
	ErrUploadsDisabled = errors.New("uploads disabled")
)

// reasonError attaches a client-facing message to a sentinel
type reasonError struct {
	sentinel error
	msg      string
}

func (e *reasonError) Error() string { return e.msg }
func (e *reasonError) Unwrap() error { return e.sentinel }

func fail(sentinel error, format string, args ...any) error {
	return &reasonError{sentinel: sentinel, msg: fmt.Sprintf(format, args...)}
}

// Reason returns the client-facing message carried by err, if any
func Reason(err error) (string, bool) {
	var r *reasonError
	if errors.As(err, &r) {
		return r.msg, true
	}
	return "", false
}

// lookup maps a missing addressed resource to ErrNotFound
func lookup(what string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fail(ErrNotFound, "%s not found", what)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

// reference maps a missing referenced document to ErrInvalidReference
func reference(what string, err error) error {
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidReference) {
		return fail(ErrInvalidReference, "%s does not exist", what)
	}
	return fmt.Errorf("failed to resolve %s: %w", what, err)
}

// Caller is the authenticated user on whose behalf a service acts
type Caller struct {
	ID   string
	Role models.Role
}

// IsAdmin reports whether the caller holds the admin role
func (c Caller) IsAdmin() bool { return c.Role == models.RoleAdmin }

// normalizePaging clamps limit to 1..100 (default 50) and offset to >= 0
func normalizePaging(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
