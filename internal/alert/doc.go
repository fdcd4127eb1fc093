// Package alert implements the hysteresis alert latch over sensor readings.
//
// Each (sensor, greenhouse) pair carries one boolean latch. The first
// out-of-range reading fires a notification message and sets the latch;
// further out-of-range readings are suppressed until an in-range reading
// silently re-arms the latch. The next crossing fires again, so every
// excursion produces exactly one notification.
//
// Evaluations for the same (sensor, greenhouse) key are serialised through
// a striped mutex set, so concurrent readings cannot both observe an
// unlatched state and double-fire. The latch is persisted before the caller
// delivers any notification, which keeps the state machine consistent when
// delivery fails.
package alert
