package alert

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository defines the interface for alert latch persistence.
type Repository interface {
	// Get retrieves the latch for one (sensor, greenhouse) pair.
	// A pair that has never alerted returns an unlatched zero state.
	Get(ctx context.Context, sensorID int, greenhouseID int64) (*State, error)

	// SetLatched stores the latch for one (sensor, greenhouse) pair,
	// creating the row on first use.
	SetLatched(ctx context.Context, sensorID int, greenhouseID int64, latched bool, at time.Time) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Get retrieves the latch for one (sensor, greenhouse) pair.
func (r *SQLiteRepository) Get(ctx context.Context, sensorID int, greenhouseID int64) (*State, error) {
	query := `
		SELECT latched, last_alert_at
		FROM alert_states
		WHERE sensor_id = ? AND greenhouse_id = ?`

	var (
		latched     int
		lastAlertAt sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, sensorID, greenhouseID).Scan(&latched, &lastAlertAt)
	if errors.Is(err, sql.ErrNoRows) {
		// Never alerted, nothing latched.
		return &State{SensorID: sensorID, GreenhouseID: greenhouseID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: querying alert state: %w", ErrPersistenceFailure, err)
	}

	state := &State{
		SensorID:     sensorID,
		GreenhouseID: greenhouseID,
		Latched:      latched != 0,
	}
	if lastAlertAt.Valid {
		at, err := time.Parse(time.RFC3339, lastAlertAt.String)
		if err != nil {
			return nil, fmt.Errorf("%w: parsing last_alert_at: %w", ErrPersistenceFailure, err)
		}
		state.LastAlertAt = &at
	}
	return state, nil
}

// SetLatched stores the latch for one (sensor, greenhouse) pair.
//
// Latching records the alert time; re-arming keeps the previous alert time
// so the row still shows when the last excursion fired.
func (r *SQLiteRepository) SetLatched(ctx context.Context, sensorID int, greenhouseID int64, latched bool, at time.Time) error {
	var query string
	args := []interface{}{sensorID, greenhouseID}

	if latched {
		query = `
			INSERT INTO alert_states (sensor_id, greenhouse_id, latched, last_alert_at)
			VALUES (?, ?, 1, ?)
			ON CONFLICT(sensor_id, greenhouse_id) DO UPDATE
				SET latched = 1, last_alert_at = excluded.last_alert_at`
		args = append(args, at.UTC().Format(time.RFC3339))
	} else {
		query = `
			INSERT INTO alert_states (sensor_id, greenhouse_id, latched)
			VALUES (?, ?, 0)
			ON CONFLICT(sensor_id, greenhouse_id) DO UPDATE
				SET latched = 0`
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: storing alert state: %w", ErrPersistenceFailure, err)
	}
	return nil
}
