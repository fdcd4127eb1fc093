package notify

import "errors"

// Domain errors for the notify package.
//
// These errors can be checked using errors.Is() for error handling.
var (
	// ErrDeliveryFailure is returned when a notification cannot be delivered.
	ErrDeliveryFailure = errors.New("notify: delivery failure")

	// ErrNoTargets is returned when the owning user has no registered
	// delivery targets.
	ErrNoTargets = errors.New("notify: no delivery targets")

	// ErrUnknownKind is returned when a target kind has no dispatcher.
	ErrUnknownKind = errors.New("notify: unknown target kind")

	// ErrDisabled is returned when a transport is disabled in configuration.
	ErrDisabled = errors.New("notify: transport disabled")
)
