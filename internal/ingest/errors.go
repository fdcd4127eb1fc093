package ingest

import "errors"

// Classification errors for the ingestion pipeline.
//
// Every inbound failure maps onto exactly one of these (or onto the
// greenhouse/telemetry/notify sentinels it wraps), so handlers can log a
// stable error class per dropped message.
var (
	// ErrMalformedTopic is returned when a topic does not parse as
	// m/{guid}/{known suffix}.
	ErrMalformedTopic = errors.New("ingest: malformed topic")

	// ErrUnknownDeviceGroup is returned when a data message references a
	// guid that was never registered.
	ErrUnknownDeviceGroup = errors.New("ingest: unknown device group")

	// ErrInvalidPayloadShape is returned when a payload is not a flat JSON
	// object keyed by stringified integer IDs with values of the expected
	// type.
	ErrInvalidPayloadShape = errors.New("ingest: invalid payload shape")
)
