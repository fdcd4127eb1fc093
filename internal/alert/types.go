package alert

import "time"

// State is the persisted latch for one (sensor, greenhouse) pair.
type State struct {
	SensorID     int        `json:"sensor_id"`
	GreenhouseID int64      `json:"greenhouse_id"`
	Latched      bool       `json:"latched"`
	LastAlertAt  *time.Time `json:"last_alert_at,omitempty"`
}

// Alert is the outcome of an evaluation that should notify the owner.
type Alert struct {
	SensorID     int
	GreenhouseID int64
	Value        float64
	Message      string
}
