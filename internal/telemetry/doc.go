// Package telemetry stores the append-only facts reported by controllers:
// sensor readings, device on/off states and setting value snapshots.
//
// Rows are written only by the ingestion dispatcher, inside the dispatcher's
// per-message transaction, and are never updated afterwards. The read side
// serves latest-value queries for a greenhouse.
package telemetry
