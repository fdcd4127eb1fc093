// Package influxdb provides the optional time-series mirror for telemetry.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, measurement writing, and health monitoring.
//
// # Purpose
//
// SQLite is the system of record for all telemetry. When enabled, this
// package mirrors the same data into InfluxDB for:
//   - Long-horizon sensor reading history
//   - Device runtime dashboards
//   - Setting value snapshots
//
// Ingestion never depends on the mirror: if InfluxDB is disabled or
// unreachable, readings still land in SQLite and alerts still fire.
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    Enabled: true,
//	    URL:     "http://localhost:8086",
//	    Token:   "your-token",
//	    Org:     "agrolab",
//	    Bucket:  "telemetry",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteSensorReading("abc-123", 1, 24.5, time.Now())
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a callback.
// Connection and health check errors are returned directly.
package influxdb
