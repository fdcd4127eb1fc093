package alert

import (
	"context"
	"sync"
	"testing"
	"time"
)

// mockRepository is an in-memory latch store for engine tests.
type mockRepository struct {
	mu     sync.Mutex
	states map[[2]int64]*State

	getErr error
	setErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{states: make(map[[2]int64]*State)}
}

func (m *mockRepository) key(sensorID int, greenhouseID int64) [2]int64 {
	return [2]int64{int64(sensorID), greenhouseID}
}

func (m *mockRepository) Get(_ context.Context, sensorID int, greenhouseID int64) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getErr != nil {
		return nil, m.getErr
	}
	if s, ok := m.states[m.key(sensorID, greenhouseID)]; ok {
		cpy := *s
		return &cpy, nil
	}
	return &State{SensorID: sensorID, GreenhouseID: greenhouseID}, nil
}

func (m *mockRepository) SetLatched(_ context.Context, sensorID int, greenhouseID int64, latched bool, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.setErr != nil {
		return m.setErr
	}
	s := &State{SensorID: sensorID, GreenhouseID: greenhouseID, Latched: latched}
	if latched {
		s.LastAlertAt = &at
	}
	m.states[m.key(sensorID, greenhouseID)] = s
	return nil
}

// =============================================================================
// Transition Table Tests
// =============================================================================

func TestEvaluate_FirstCrossingFires(t *testing.T) {
	engine := NewEngine(newMockRepository(), DefaultPolicy())

	alert, err := engine.Evaluate(context.Background(), 42, 1, 65.0)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if alert == nil {
		t.Fatal("Evaluate() = nil, want alert for first crossing")
	}
	if alert.Message != "air temperature is 65.0 (limit 60)" {
		t.Errorf("Message = %q", alert.Message)
	}
}

func TestEvaluate_RepeatSuppressed(t *testing.T) {
	engine := NewEngine(newMockRepository(), DefaultPolicy())
	ctx := context.Background()

	if alert, err := engine.Evaluate(ctx, 42, 1, 65.0); err != nil || alert == nil {
		t.Fatalf("first Evaluate() = %v, %v; want alert", alert, err)
	}

	alert, err := engine.Evaluate(ctx, 42, 1, 70.0)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if alert != nil {
		t.Errorf("Evaluate() = %+v, want nil while latched", alert)
	}
}

func TestEvaluate_InRangeReArmsSilently(t *testing.T) {
	engine := NewEngine(newMockRepository(), DefaultPolicy())
	ctx := context.Background()

	if _, err := engine.Evaluate(ctx, 42, 1, 65.0); err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	alert, err := engine.Evaluate(ctx, 42, 1, 55.0)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if alert != nil {
		t.Errorf("Evaluate() = %+v, want silent re-arm", alert)
	}
}

func TestEvaluate_ReCrossingFiresAgain(t *testing.T) {
	engine := NewEngine(newMockRepository(), DefaultPolicy())
	ctx := context.Background()

	// Full excursion lifecycle: fire, suppress, re-arm, fire again.
	steps := []struct {
		value     float64
		wantAlert bool
	}{
		{65.0, true},
		{70.0, false},
		{55.0, false},
		{61.0, true},
	}

	for i, step := range steps {
		alert, err := engine.Evaluate(ctx, 42, 1, step.value)
		if err != nil {
			t.Fatalf("step %d: Evaluate() error = %v", i, err)
		}
		if (alert != nil) != step.wantAlert {
			t.Errorf("step %d (value %v): alert = %v, want %v", i, step.value, alert != nil, step.wantAlert)
		}
	}
}

func TestEvaluate_InRangeUnlatchedDoesNothing(t *testing.T) {
	repo := newMockRepository()
	engine := NewEngine(repo, DefaultPolicy())

	alert, err := engine.Evaluate(context.Background(), 42, 1, 20.0)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if alert != nil {
		t.Errorf("Evaluate() = %+v, want nil", alert)
	}
	if len(repo.states) != 0 {
		t.Errorf("state rows = %d, want 0 writes for in-range unlatched", len(repo.states))
	}
}

func TestEvaluate_UnmonitoredSensorIgnored(t *testing.T) {
	engine := NewEngine(newMockRepository(), DefaultPolicy())

	// Sensor 5 (water temperature) has no threshold rule.
	alert, err := engine.Evaluate(context.Background(), 42, 5, 999.0)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if alert != nil {
		t.Errorf("Evaluate() = %+v, want nil for unmonitored sensor", alert)
	}
}

func TestEvaluate_IndependentKeys(t *testing.T) {
	engine := NewEngine(newMockRepository(), DefaultPolicy())
	ctx := context.Background()

	// Latching sensor 1 of greenhouse 42 must not suppress sensor 2 of 42
	// or sensor 1 of greenhouse 7.
	if alert, _ := engine.Evaluate(ctx, 42, 1, 65.0); alert == nil {
		t.Fatal("sensor 1 / gh 42 should fire")
	}
	if alert, _ := engine.Evaluate(ctx, 42, 2, 85.0); alert == nil {
		t.Error("sensor 2 / gh 42 should fire independently")
	}
	if alert, _ := engine.Evaluate(ctx, 7, 1, 65.0); alert == nil {
		t.Error("sensor 1 / gh 7 should fire independently")
	}
}

func TestEvaluate_BoundaryValueInRange(t *testing.T) {
	engine := NewEngine(newMockRepository(), DefaultPolicy())

	// The limit is exclusive: exactly 60 is in range.
	alert, err := engine.Evaluate(context.Background(), 42, 1, 60.0)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if alert != nil {
		t.Errorf("Evaluate(60.0) = %+v, want nil at boundary", alert)
	}
}

// =============================================================================
// Concurrency Tests
// =============================================================================

func TestEvaluate_ConcurrentSameKeyFiresOnce(t *testing.T) {
	engine := NewEngine(newMockRepository(), DefaultPolicy())
	ctx := context.Background()

	const workers = 32

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		fired int
	)
	start := make(chan struct{})

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			alert, err := engine.Evaluate(ctx, 42, 1, 75.0)
			if err != nil {
				t.Errorf("Evaluate() error = %v", err)
				return
			}
			if alert != nil {
				mu.Lock()
				fired++
				mu.Unlock()
			}
		}()
	}

	close(start)
	wg.Wait()

	if fired != 1 {
		t.Errorf("concurrent evaluations fired %d alerts, want exactly 1", fired)
	}
}

// =============================================================================
// Failure Handling Tests
// =============================================================================

func TestEvaluate_PersistenceErrorPropagates(t *testing.T) {
	repo := newMockRepository()
	repo.setErr = ErrPersistenceFailure
	engine := NewEngine(repo, DefaultPolicy())

	_, err := engine.Evaluate(context.Background(), 42, 1, 65.0)
	if err == nil {
		t.Fatal("Evaluate() expected error when latch write fails")
	}
}

// =============================================================================
// Policy Tests
// =============================================================================

func TestDefaultPolicy(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name       string
		sensorID   int
		value      float64
		outOfRange bool
	}{
		{"airTemp above limit", 1, 60.1, true},
		{"airTemp at limit", 1, 60.0, false},
		{"airHum above limit", 2, 80.5, true},
		{"airHum below limit", 2, 79.9, false},
		{"soilMoist1 above limit", 3, 86.0, true},
		{"soilMoist2 above limit", 4, 90.0, true},
		{"soilMoist2 at limit", 4, 85.0, false},
		{"unmonitored sensor", 7, 1000.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.OutOfRange(tt.sensorID, tt.value)
			if got != tt.outOfRange {
				t.Errorf("OutOfRange(%d, %v) = %v, want %v", tt.sensorID, tt.value, got, tt.outOfRange)
			}
		})
	}
}

func TestPolicyMessage_UnknownSensor(t *testing.T) {
	policy := DefaultPolicy()
	if msg := policy.Message(99, 10); msg != "" {
		t.Errorf("Message(99) = %q, want empty", msg)
	}
}
