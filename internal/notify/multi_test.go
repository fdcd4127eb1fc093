package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/agrolab/greenhouse-core/internal/infrastructure/logging"
)

// mockTargetRepo serves a fixed target list.
type mockTargetRepo struct {
	targets []Target
	err     error
}

func (m *mockTargetRepo) ListByUser(_ context.Context, userID int64) ([]Target, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []Target
	for _, t := range m.targets {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTargetRepo) Add(_ context.Context, target *Target) error {
	m.targets = append(m.targets, *target)
	return nil
}

func (m *mockTargetRepo) Remove(_ context.Context, id int64) error {
	return nil
}

// mockLogRepo records entries in memory.
type mockLogRepo struct {
	mu      sync.Mutex
	entries []LogEntry
	err     error
}

func (m *mockLogRepo) Record(_ context.Context, entry *LogEntry) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	m.entries = append(m.entries, *entry)
	m.mu.Unlock()
	return nil
}

func (m *mockLogRepo) ListByGreenhouse(_ context.Context, greenhouseID int64, limit int) ([]LogEntry, error) {
	return nil, nil
}

// mockDispatcher records deliveries and optionally fails.
type mockDispatcher struct {
	mu        sync.Mutex
	delivered []Target
	err       error
}

func (m *mockDispatcher) Deliver(_ context.Context, target Target, title, body string) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	m.delivered = append(m.delivered, target)
	m.mu.Unlock()
	return nil
}

func newTestMulti(targets *mockTargetRepo, log *mockLogRepo, push, email *mockDispatcher) *Multi {
	return NewMulti(targets, log, map[TargetKind]Dispatcher{
		KindPush:  push,
		KindEmail: email,
	}, logging.Default())
}

func TestNotify_FansOutToAllTargets(t *testing.T) {
	targets := &mockTargetRepo{targets: []Target{
		{ID: 1, UserID: 1, Kind: KindPush, Address: "token-a"},
		{ID: 2, UserID: 1, Kind: KindPush, Address: "token-b"},
		{ID: 3, UserID: 1, Kind: KindEmail, Address: "grower@example.com"},
		{ID: 4, UserID: 2, Kind: KindPush, Address: "other-user"},
	}}
	log := &mockLogRepo{}
	push := &mockDispatcher{}
	email := &mockDispatcher{}

	multi := newTestMulti(targets, log, push, email)

	if err := multi.Notify(context.Background(), 42, 1, "Greenhouse alert", "air temperature is 65.0 (limit 60)"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	if len(push.delivered) != 2 {
		t.Errorf("push deliveries = %d, want 2", len(push.delivered))
	}
	if len(email.delivered) != 1 {
		t.Errorf("email deliveries = %d, want 1", len(email.delivered))
	}

	if len(log.entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(log.entries))
	}
	entry := log.entries[0]
	if !entry.Delivered {
		t.Error("log entry should be marked delivered")
	}
	if entry.ID == "" {
		t.Error("log entry should carry a generated id")
	}
	if entry.GreenhouseID != 42 {
		t.Errorf("log entry greenhouse = %d, want 42", entry.GreenhouseID)
	}
}

func TestNotify_PartialFailureSucceeds(t *testing.T) {
	targets := &mockTargetRepo{targets: []Target{
		{ID: 1, UserID: 1, Kind: KindPush, Address: "token-a"},
		{ID: 2, UserID: 1, Kind: KindEmail, Address: "grower@example.com"},
	}}
	log := &mockLogRepo{}
	push := &mockDispatcher{err: ErrDeliveryFailure}
	email := &mockDispatcher{}

	multi := newTestMulti(targets, log, push, email)

	if err := multi.Notify(context.Background(), 42, 1, "t", "b"); err != nil {
		t.Fatalf("Notify() error = %v, want nil on partial success", err)
	}

	if len(log.entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(log.entries))
	}
	entry := log.entries[0]
	if !entry.Delivered {
		t.Error("log entry should be marked delivered")
	}
	if entry.Error == "" {
		t.Error("log entry should carry the push failure text")
	}
}

func TestNotify_AllTargetsFail(t *testing.T) {
	targets := &mockTargetRepo{targets: []Target{
		{ID: 1, UserID: 1, Kind: KindPush, Address: "token-a"},
	}}
	log := &mockLogRepo{}
	push := &mockDispatcher{err: errors.New("gateway down")}

	multi := newTestMulti(targets, log, push, &mockDispatcher{})

	err := multi.Notify(context.Background(), 42, 1, "t", "b")
	if !errors.Is(err, ErrDeliveryFailure) {
		t.Errorf("Notify() error = %v, want ErrDeliveryFailure", err)
	}

	if len(log.entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(log.entries))
	}
	if log.entries[0].Delivered {
		t.Error("log entry should not be marked delivered")
	}
}

func TestNotify_NoTargets(t *testing.T) {
	log := &mockLogRepo{}
	multi := newTestMulti(&mockTargetRepo{}, log, &mockDispatcher{}, &mockDispatcher{})

	err := multi.Notify(context.Background(), 42, 1, "t", "b")
	if !errors.Is(err, ErrNoTargets) {
		t.Errorf("Notify() error = %v, want ErrNoTargets", err)
	}

	// The attempt still lands in the log.
	if len(log.entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(log.entries))
	}
	if log.entries[0].Delivered {
		t.Error("log entry should not be marked delivered")
	}
}

func TestNotify_UnknownKindSkipped(t *testing.T) {
	targets := &mockTargetRepo{targets: []Target{
		{ID: 1, UserID: 1, Kind: TargetKind("carrier-pigeon"), Address: "coop-3"},
		{ID: 2, UserID: 1, Kind: KindPush, Address: "token-a"},
	}}
	log := &mockLogRepo{}
	push := &mockDispatcher{}

	multi := newTestMulti(targets, log, push, &mockDispatcher{})

	if err := multi.Notify(context.Background(), 42, 1, "t", "b"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if len(push.delivered) != 1 {
		t.Errorf("push deliveries = %d, want 1", len(push.delivered))
	}
}

func TestNotify_LogFailureDoesNotUnwindDelivery(t *testing.T) {
	targets := &mockTargetRepo{targets: []Target{
		{ID: 1, UserID: 1, Kind: KindPush, Address: "token-a"},
	}}
	log := &mockLogRepo{err: errors.New("disk full")}
	push := &mockDispatcher{}

	multi := newTestMulti(targets, log, push, &mockDispatcher{})

	if err := multi.Notify(context.Background(), 42, 1, "t", "b"); err != nil {
		t.Errorf("Notify() error = %v, want nil despite log failure", err)
	}
	if len(push.delivered) != 1 {
		t.Errorf("push deliveries = %d, want 1", len(push.delivered))
	}
}
