package usecase

import "errors"

var (
	// ErrTooClose is returned when a pin lies strictly within the exclusivity radius.
	ErrTooClose = errors.New("too close to an existing memory")
	// ErrUploadsDisabled is returned when no object storage is configured.
	ErrUploadsDisabled = errors.New("uploads are not configured")
)

// ValidationError carries a message that is safe to show to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }
