// Package greenhouse provides the controller registry for the core.
//
// Each physical greenhouse controller is identified by a guid burned into
// its firmware. On boot the controller publishes a pairing pin; a user later
// claims the controller by presenting that pin, which binds the greenhouse
// row to their account. Until a greenhouse is owned, repeated registrations
// rotate the pin; once owned, registrations are ignored.
//
// The registration upsert is a single SQL statement keyed on the unique
// guid column, so N concurrent duplicate registrations collapse into one
// row without application-level locking.
package greenhouse
