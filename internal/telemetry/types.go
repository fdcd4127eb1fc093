package telemetry

import "time"

// SensorReading is one measured value from one sensor of one greenhouse.
type SensorReading struct {
	ID           int64     `json:"id"`
	SensorID     int       `json:"sensor_id"`
	GreenhouseID int64     `json:"greenhouse_id"`
	Value        float64   `json:"value"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// DeviceState is one reported on/off state of one device of one greenhouse.
type DeviceState struct {
	ID           int64     `json:"id"`
	DeviceID     int       `json:"device_id"`
	GreenhouseID int64     `json:"greenhouse_id"`
	On           bool      `json:"on"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// SettingValue is one reported configuration value of one parameter of
// one greenhouse.
type SettingValue struct {
	ID           int64     `json:"id"`
	ParameterID  int       `json:"parameter_id"`
	GreenhouseID int64     `json:"greenhouse_id"`
	Value        float64   `json:"value"`
	RecordedAt   time.Time `json:"recorded_at"`
}
