package telemetry

import "errors"

// Domain errors for the telemetry package.
var (
	// ErrPersistenceFailure is returned when a telemetry row cannot be written.
	ErrPersistenceFailure = errors.New("telemetry: persistence failure")
)
