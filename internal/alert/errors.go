package alert

import "errors"

// Domain errors for the alert package.
var (
	// ErrPersistenceFailure is returned when an alert latch cannot be
	// read or written.
	ErrPersistenceFailure = errors.New("alert: persistence failure")
)
