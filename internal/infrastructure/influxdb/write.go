package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteSensorReading writes a single sensor reading to InfluxDB.
//
// This is the primary method for mirroring sensor telemetry.
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - guid: Controller identifier (e.g., "abc-123")
//   - sensorID: Numeric sensor identifier from the catalog
//   - value: The reading value
//   - at: When the reading was received
//
// Example:
//
//	client.WriteSensorReading("abc-123", 1, 24.5, time.Now())
func (c *Client) WriteSensorReading(guid string, sensorID int, value float64, at time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"sensor_readings",
		map[string]string{
			"greenhouse": guid,
			"sensor_id":  strconv.Itoa(sensorID),
		},
		map[string]interface{}{
			"value": value,
		},
		at,
	)

	c.writeAPI.WritePoint(point)
}

// WriteDeviceState writes a device on/off state change to InfluxDB.
//
// Parameters:
//   - guid: Controller identifier
//   - deviceID: Numeric device identifier from the catalog
//   - on: Whether the device is currently running
//   - at: When the state was received
func (c *Client) WriteDeviceState(guid string, deviceID int, on bool, at time.Time) {
	if !c.IsConnected() {
		return
	}

	state := 0
	if on {
		state = 1
	}

	point := write.NewPoint(
		"device_states",
		map[string]string{
			"greenhouse": guid,
			"device_id":  strconv.Itoa(deviceID),
		},
		map[string]interface{}{
			"on": state,
		},
		at,
	)

	c.writeAPI.WritePoint(point)
}

// WriteSettingValue writes a setting value snapshot to InfluxDB.
//
// Parameters:
//   - guid: Controller identifier
//   - parameterID: Numeric parameter identifier from the catalog
//   - value: The configured setting value
//   - at: When the snapshot was received
func (c *Client) WriteSettingValue(guid string, parameterID int, value float64, at time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"setting_values",
		map[string]string{
			"greenhouse":   guid,
			"parameter_id": strconv.Itoa(parameterID),
		},
		map[string]interface{}{
			"value": value,
		},
		at,
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
