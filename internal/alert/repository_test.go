package alert

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the alert_states table.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE alert_states (
			sensor_id INTEGER NOT NULL,
			greenhouse_id INTEGER NOT NULL,
			latched INTEGER NOT NULL DEFAULT 0,
			last_alert_at TEXT,
			PRIMARY KEY (sensor_id, greenhouse_id)
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

func TestGet_UnknownPairIsUnlatched(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)

	state, err := repo.Get(context.Background(), 1, 42)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if state.Latched {
		t.Error("unknown pair should be unlatched")
	}
	if state.LastAlertAt != nil {
		t.Error("unknown pair should have no last alert time")
	}
}

func TestSetLatched_CreatesAndUpdates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	if err := repo.SetLatched(ctx, 1, 42, true, at); err != nil {
		t.Fatalf("SetLatched(true) error = %v", err)
	}

	state, err := repo.Get(ctx, 1, 42)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !state.Latched {
		t.Error("state should be latched")
	}
	if state.LastAlertAt == nil || !state.LastAlertAt.Equal(at) {
		t.Errorf("LastAlertAt = %v, want %v", state.LastAlertAt, at)
	}

	// Re-arm keeps the last alert time.
	if err := repo.SetLatched(ctx, 1, 42, false, time.Time{}); err != nil {
		t.Fatalf("SetLatched(false) error = %v", err)
	}

	state, err = repo.Get(ctx, 1, 42)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if state.Latched {
		t.Error("state should be re-armed")
	}
	if state.LastAlertAt == nil || !state.LastAlertAt.Equal(at) {
		t.Errorf("LastAlertAt = %v, want preserved %v", state.LastAlertAt, at)
	}
}

func TestSetLatched_ReArmBeforeAnyAlert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	// Re-arming a pair that never latched must not fail.
	if err := repo.SetLatched(ctx, 2, 7, false, time.Time{}); err != nil {
		t.Fatalf("SetLatched(false) error = %v", err)
	}

	state, err := repo.Get(ctx, 2, 7)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if state.Latched {
		t.Error("state should be unlatched")
	}
}

func TestEngineWithSQLiteRepository(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(NewSQLiteRepository(db), DefaultPolicy())
	ctx := context.Background()

	// The transition table holds end to end against the real store.
	steps := []struct {
		value     float64
		wantAlert bool
	}{
		{82.0, true},
		{83.0, false},
		{75.0, false},
		{81.0, true},
	}

	for i, step := range steps {
		alert, err := engine.Evaluate(ctx, 42, 2, step.value)
		if err != nil {
			t.Fatalf("step %d: Evaluate() error = %v", i, err)
		}
		if (alert != nil) != step.wantAlert {
			t.Errorf("step %d (value %v): alert = %v, want %v", i, step.value, alert != nil, step.wantAlert)
		}
	}
}
