package ingest

import (
	"fmt"
	"strings"
)

// MessageKind identifies what a controller topic carries.
type MessageKind int

// Message kinds in the controller topic scheme.
const (
	// KindRegistration is m/{guid}/reg: the pairing pin.
	KindRegistration MessageKind = iota

	// KindSensorData is m/{guid}/d/cur: current sensor readings.
	KindSensorData

	// KindDeviceState is m/{guid}/st/cur: current device on/off states.
	KindDeviceState

	// KindSettings is m/{guid}/s/cur: current setting values.
	KindSettings
)

// String returns the kind's topic suffix for logging.
func (k MessageKind) String() string {
	switch k {
	case KindRegistration:
		return "reg"
	case KindSensorData:
		return "d/cur"
	case KindDeviceState:
		return "st/cur"
	case KindSettings:
		return "s/cur"
	default:
		return "unknown"
	}
}

// ParseTopic splits a controller topic into its guid and message kind.
//
// Accepted shapes:
//
//	m/{guid}/reg
//	m/{guid}/d/cur
//	m/{guid}/st/cur
//	m/{guid}/s/cur
//
// Anything else, including an empty guid segment, is ErrMalformedTopic.
func ParseTopic(topic string) (string, MessageKind, error) {
	parts := strings.Split(topic, "/")
	if len(parts) < 3 || parts[0] != "m" || parts[1] == "" {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformedTopic, topic)
	}

	guid := parts[1]
	suffix := strings.Join(parts[2:], "/")

	switch suffix {
	case "reg":
		return guid, KindRegistration, nil
	case "d/cur":
		return guid, KindSensorData, nil
	case "st/cur":
		return guid, KindDeviceState, nil
	case "s/cur":
		return guid, KindSettings, nil
	default:
		return "", 0, fmt.Errorf("%w: %q", ErrMalformedTopic, topic)
	}
}
