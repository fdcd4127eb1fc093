package telemetry

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the telemetry tables.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE sensor_readings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sensor_id INTEGER NOT NULL,
			greenhouse_id INTEGER NOT NULL,
			value REAL NOT NULL,
			recorded_at TEXT NOT NULL
		);
		CREATE TABLE device_states (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			device_id INTEGER NOT NULL,
			greenhouse_id INTEGER NOT NULL,
			state INTEGER NOT NULL,
			recorded_at TEXT NOT NULL
		);
		CREATE TABLE setting_values (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			parameter_id INTEGER NOT NULL,
			greenhouse_id INTEGER NOT NULL,
			value REAL NOT NULL,
			recorded_at TEXT NOT NULL
		);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// insertInTx runs fn inside a committed transaction.
func insertInTx(t *testing.T, db *sql.DB, fn func(tx *sql.Tx) error) {
	t.Helper()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("beginning transaction: %v", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		t.Fatalf("transaction body: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("committing transaction: %v", err)
	}
}

func TestInsertReading(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	reading := &SensorReading{
		SensorID:     1,
		GreenhouseID: 42,
		Value:        24.5,
		RecordedAt:   time.Now(),
	}

	insertInTx(t, db, func(tx *sql.Tx) error {
		return repo.InsertReading(ctx, tx, reading)
	})

	if reading.ID == 0 {
		t.Error("InsertReading() did not set ID")
	}

	latest, err := repo.LatestReadings(ctx, 42)
	if err != nil {
		t.Fatalf("LatestReadings() error = %v", err)
	}
	if len(latest) != 1 {
		t.Fatalf("LatestReadings() returned %d rows, want 1", len(latest))
	}
	if latest[0].Value != 24.5 {
		t.Errorf("Value = %v, want 24.5", latest[0].Value)
	}
}

func TestInsertReading_RollbackDiscardsRow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("beginning transaction: %v", err)
	}

	reading := &SensorReading{SensorID: 1, GreenhouseID: 42, Value: 10, RecordedAt: time.Now()}
	if err := repo.InsertReading(ctx, tx, reading); err != nil {
		t.Fatalf("InsertReading() error = %v", err)
	}

	if err := tx.Rollback(); err != nil {
		t.Fatalf("rolling back: %v", err)
	}

	latest, err := repo.LatestReadings(ctx, 42)
	if err != nil {
		t.Fatalf("LatestReadings() error = %v", err)
	}
	if len(latest) != 0 {
		t.Errorf("LatestReadings() returned %d rows after rollback, want 0", len(latest))
	}
}

func TestLatestReadings_NewestPerSensor(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	readings := []SensorReading{
		{SensorID: 1, GreenhouseID: 42, Value: 20.0, RecordedAt: base},
		{SensorID: 1, GreenhouseID: 42, Value: 25.0, RecordedAt: base.Add(time.Minute)},
		{SensorID: 2, GreenhouseID: 42, Value: 70.0, RecordedAt: base},
		{SensorID: 2, GreenhouseID: 7, Value: 99.0, RecordedAt: base}, // other greenhouse
	}

	for i := range readings {
		r := readings[i]
		insertInTx(t, db, func(tx *sql.Tx) error {
			return repo.InsertReading(ctx, tx, &r)
		})
	}

	latest, err := repo.LatestReadings(ctx, 42)
	if err != nil {
		t.Fatalf("LatestReadings() error = %v", err)
	}
	if len(latest) != 2 {
		t.Fatalf("LatestReadings() returned %d rows, want 2", len(latest))
	}
	if latest[0].SensorID != 1 || latest[0].Value != 25.0 {
		t.Errorf("sensor 1 latest = %v, want 25.0", latest[0].Value)
	}
	if latest[1].SensorID != 2 || latest[1].Value != 70.0 {
		t.Errorf("sensor 2 latest = %v, want 70.0", latest[1].Value)
	}
}

func TestInsertState_AndLatest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	states := []DeviceState{
		{DeviceID: 1, GreenhouseID: 42, On: true, RecordedAt: time.Now()},
		{DeviceID: 1, GreenhouseID: 42, On: false, RecordedAt: time.Now()},
		{DeviceID: 2, GreenhouseID: 42, On: true, RecordedAt: time.Now()},
	}

	for i := range states {
		s := states[i]
		insertInTx(t, db, func(tx *sql.Tx) error {
			return repo.InsertState(ctx, tx, &s)
		})
	}

	latest, err := repo.LatestStates(ctx, 42)
	if err != nil {
		t.Fatalf("LatestStates() error = %v", err)
	}
	if len(latest) != 2 {
		t.Fatalf("LatestStates() returned %d rows, want 2", len(latest))
	}
	if latest[0].DeviceID != 1 || latest[0].On {
		t.Errorf("device 1 latest On = %v, want false", latest[0].On)
	}
	if latest[1].DeviceID != 2 || !latest[1].On {
		t.Errorf("device 2 latest On = %v, want true", latest[1].On)
	}
}

func TestInsertSetting_AndLatest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	values := []SettingValue{
		{ParameterID: 4, GreenhouseID: 42, Value: 50, RecordedAt: time.Now()},
		{ParameterID: 4, GreenhouseID: 42, Value: 55, RecordedAt: time.Now()},
		{ParameterID: 9, GreenhouseID: 42, Value: 30, RecordedAt: time.Now()},
	}

	for i := range values {
		v := values[i]
		insertInTx(t, db, func(tx *sql.Tx) error {
			return repo.InsertSetting(ctx, tx, &v)
		})
	}

	latest, err := repo.LatestSettings(ctx, 42)
	if err != nil {
		t.Fatalf("LatestSettings() error = %v", err)
	}
	if len(latest) != 2 {
		t.Fatalf("LatestSettings() returned %d rows, want 2", len(latest))
	}
	if latest[0].ParameterID != 4 || latest[0].Value != 55 {
		t.Errorf("parameter 4 latest = %v, want 55", latest[0].Value)
	}
	if latest[1].ParameterID != 9 || latest[1].Value != 30 {
		t.Errorf("parameter 9 latest = %v, want 30", latest[1].Value)
	}
}
