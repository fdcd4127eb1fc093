package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Repository defines the interface for telemetry persistence.
//
// Inserts take an explicit *sql.Tx because the ingestion dispatcher writes
// every entry of an inbound message inside one transaction: either all rows
// of a payload land, or none do.
type Repository interface {
	// InsertReading appends one sensor reading inside the given transaction.
	InsertReading(ctx context.Context, tx *sql.Tx, r *SensorReading) error

	// InsertState appends one device state inside the given transaction.
	InsertState(ctx context.Context, tx *sql.Tx, s *DeviceState) error

	// InsertSetting appends one setting value inside the given transaction.
	InsertSetting(ctx context.Context, tx *sql.Tx, v *SettingValue) error

	// LatestReadings returns the most recent reading per sensor for a greenhouse.
	LatestReadings(ctx context.Context, greenhouseID int64) ([]SensorReading, error)

	// LatestStates returns the most recent state per device for a greenhouse.
	LatestStates(ctx context.Context, greenhouseID int64) ([]DeviceState, error)

	// LatestSettings returns the most recent value per parameter for a greenhouse.
	LatestSettings(ctx context.Context, greenhouseID int64) ([]SettingValue, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// InsertReading appends one sensor reading inside the given transaction.
func (r *SQLiteRepository) InsertReading(ctx context.Context, tx *sql.Tx, reading *SensorReading) error {
	query := `
		INSERT INTO sensor_readings (sensor_id, greenhouse_id, value, recorded_at)
		VALUES (?, ?, ?, ?)`

	res, err := tx.ExecContext(ctx, query,
		reading.SensorID,
		reading.GreenhouseID,
		reading.Value,
		reading.RecordedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("%w: inserting sensor reading: %w", ErrPersistenceFailure, err)
	}

	if reading.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("%w: reading insert id: %w", ErrPersistenceFailure, err)
	}
	return nil
}

// InsertState appends one device state inside the given transaction.
func (r *SQLiteRepository) InsertState(ctx context.Context, tx *sql.Tx, state *DeviceState) error {
	query := `
		INSERT INTO device_states (device_id, greenhouse_id, state, recorded_at)
		VALUES (?, ?, ?, ?)`

	res, err := tx.ExecContext(ctx, query,
		state.DeviceID,
		state.GreenhouseID,
		boolToInt(state.On),
		state.RecordedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("%w: inserting device state: %w", ErrPersistenceFailure, err)
	}

	if state.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("%w: state insert id: %w", ErrPersistenceFailure, err)
	}
	return nil
}

// InsertSetting appends one setting value inside the given transaction.
func (r *SQLiteRepository) InsertSetting(ctx context.Context, tx *sql.Tx, value *SettingValue) error {
	query := `
		INSERT INTO setting_values (parameter_id, greenhouse_id, value, recorded_at)
		VALUES (?, ?, ?, ?)`

	res, err := tx.ExecContext(ctx, query,
		value.ParameterID,
		value.GreenhouseID,
		value.Value,
		value.RecordedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("%w: inserting setting value: %w", ErrPersistenceFailure, err)
	}

	if value.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("%w: setting insert id: %w", ErrPersistenceFailure, err)
	}
	return nil
}

// LatestReadings returns the most recent reading per sensor for a greenhouse.
func (r *SQLiteRepository) LatestReadings(ctx context.Context, greenhouseID int64) ([]SensorReading, error) {
	// The MAX(id) subquery picks the newest row per sensor; id order and
	// recorded_at order coincide because the table is append-only.
	query := `
		SELECT id, sensor_id, greenhouse_id, value, recorded_at
		FROM sensor_readings
		WHERE id IN (
			SELECT MAX(id) FROM sensor_readings
			WHERE greenhouse_id = ?
			GROUP BY sensor_id
		)
		ORDER BY sensor_id`

	rows, err := r.db.QueryContext(ctx, query, greenhouseID)
	if err != nil {
		return nil, fmt.Errorf("querying latest readings: %w", err)
	}
	defer rows.Close()

	var result []SensorReading
	for rows.Next() {
		var (
			reading    SensorReading
			recordedAt string
		)
		if err := rows.Scan(&reading.ID, &reading.SensorID, &reading.GreenhouseID, &reading.Value, &recordedAt); err != nil {
			return nil, fmt.Errorf("scanning reading row: %w", err)
		}
		if reading.RecordedAt, err = time.Parse(time.RFC3339, recordedAt); err != nil {
			return nil, fmt.Errorf("parsing recorded_at: %w", err)
		}
		result = append(result, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reading rows: %w", err)
	}
	return result, nil
}

// LatestStates returns the most recent state per device for a greenhouse.
func (r *SQLiteRepository) LatestStates(ctx context.Context, greenhouseID int64) ([]DeviceState, error) {
	query := `
		SELECT id, device_id, greenhouse_id, state, recorded_at
		FROM device_states
		WHERE id IN (
			SELECT MAX(id) FROM device_states
			WHERE greenhouse_id = ?
			GROUP BY device_id
		)
		ORDER BY device_id`

	rows, err := r.db.QueryContext(ctx, query, greenhouseID)
	if err != nil {
		return nil, fmt.Errorf("querying latest states: %w", err)
	}
	defer rows.Close()

	var result []DeviceState
	for rows.Next() {
		var (
			state      DeviceState
			on         int
			recordedAt string
		)
		if err := rows.Scan(&state.ID, &state.DeviceID, &state.GreenhouseID, &on, &recordedAt); err != nil {
			return nil, fmt.Errorf("scanning state row: %w", err)
		}
		state.On = on != 0
		if state.RecordedAt, err = time.Parse(time.RFC3339, recordedAt); err != nil {
			return nil, fmt.Errorf("parsing recorded_at: %w", err)
		}
		result = append(result, state)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating state rows: %w", err)
	}
	return result, nil
}

// LatestSettings returns the most recent value per parameter for a greenhouse.
func (r *SQLiteRepository) LatestSettings(ctx context.Context, greenhouseID int64) ([]SettingValue, error) {
	query := `
		SELECT id, parameter_id, greenhouse_id, value, recorded_at
		FROM setting_values
		WHERE id IN (
			SELECT MAX(id) FROM setting_values
			WHERE greenhouse_id = ?
			GROUP BY parameter_id
		)
		ORDER BY parameter_id`

	rows, err := r.db.QueryContext(ctx, query, greenhouseID)
	if err != nil {
		return nil, fmt.Errorf("querying latest settings: %w", err)
	}
	defer rows.Close()

	var result []SettingValue
	for rows.Next() {
		var (
			value      SettingValue
			recordedAt string
		)
		if err := rows.Scan(&value.ID, &value.ParameterID, &value.GreenhouseID, &value.Value, &recordedAt); err != nil {
			return nil, fmt.Errorf("scanning setting row: %w", err)
		}
		if value.RecordedAt, err = time.Parse(time.RFC3339, recordedAt); err != nil {
			return nil, fmt.Errorf("parsing recorded_at: %w", err)
		}
		result = append(result, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating setting rows: %w", err)
	}
	return result, nil
}

// boolToInt converts a bool to its SQLite integer representation.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
