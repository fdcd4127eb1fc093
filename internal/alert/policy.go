package alert

import "fmt"

// Rule is one upper-bound threshold for a sensor.
type Rule struct {
	// Label is the human-readable sensor name used in notification text.
	Label string

	// Limit is the exclusive upper bound; readings above it are out of range.
	Limit float64
}

// Policy maps sensor IDs to their threshold rules. Sensors without a rule
// are never alerted on.
type Policy map[int]Rule

// DefaultPolicy returns the static threshold policy for the stock sensor
// catalog: air temperature above 60, air humidity above 80, both soil
// moisture probes above 85.
func DefaultPolicy() Policy {
	return Policy{
		1: {Label: "air temperature", Limit: 60},
		2: {Label: "air humidity", Limit: 80},
		3: {Label: "soil moisture 1", Limit: 85},
		4: {Label: "soil moisture 2", Limit: 85},
	}
}

// OutOfRange reports whether a reading crosses the sensor's threshold.
// Sensors without a rule are always in range.
func (p Policy) OutOfRange(sensorID int, value float64) bool {
	rule, ok := p[sensorID]
	if !ok {
		return false
	}
	return value > rule.Limit
}

// Message renders the notification line for an out-of-range reading.
func (p Policy) Message(sensorID int, value float64) string {
	rule, ok := p[sensorID]
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s is %.1f (limit %.0f)", rule.Label, value, rule.Limit)
}
