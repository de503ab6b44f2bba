package service

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to the HTTP layer. Authentication failures stay
// deliberately vague (wrong email and wrong password are the same error) to
// avoid aiding enumeration; validation errors carry the specific reason.
var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotFound           = errors.New("user not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInternal           = errors.New("internal error")
)

// ValidationError reports which field failed and why.
type ValidationError struct {
	Field  string
	Reason error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Reason }

// LockedError reports an active lockout with the remaining wait.
type LockedError struct {
	RetryAfterSeconds int64
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account locked, retry in %ds", e.RetryAfterSeconds)
}
