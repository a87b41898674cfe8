// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when a user cannot be found by email, username or ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailOrUsernameTaken is returned when signup collides with an existing account.
	ErrEmailOrUsernameTaken = errors.New("email or username already in use")

	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrCodeNotFound is returned by code stores when nothing matches.
	ErrCodeNotFound = errors.New("verification code not found")

	// ErrInvalidOrExpiredCode is returned when verification fails for any reason.
	ErrInvalidOrExpiredCode = errors.New("invalid or expired verification code")

	// ErrAlreadyVerified is returned when resending a code to a verified account.
	ErrAlreadyVerified = errors.New("email is already verified")
)

// ValidationError carries a message that is safe to show to the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }
