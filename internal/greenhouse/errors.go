package greenhouse

import "errors"

// Domain errors for the greenhouse package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, greenhouse.ErrNotFound) {
//	    // handle unknown controller
//	}
var (
	// ErrNotFound is returned when no greenhouse exists for a guid or id.
	ErrNotFound = errors.New("greenhouse: not found")

	// ErrEmptyPayload is returned when a registration message carries a
	// blank pairing pin.
	ErrEmptyPayload = errors.New("greenhouse: empty registration payload")

	// ErrEmptyGUID is returned when an operation is attempted with a blank guid.
	ErrEmptyGUID = errors.New("greenhouse: empty guid")

	// ErrAlreadyOwned is returned when binding a greenhouse that already
	// has an owner.
	ErrAlreadyOwned = errors.New("greenhouse: already owned")

	// ErrPinMismatch is returned when the pairing pin presented during
	// binding does not match the controller's current pin.
	ErrPinMismatch = errors.New("greenhouse: pin mismatch")

	// ErrNotOwned is returned when unbinding a greenhouse that has no owner.
	ErrNotOwned = errors.New("greenhouse: not owned")
)
