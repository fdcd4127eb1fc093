package alert

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"
)

// lockStripes is the size of the striped mutex set. Keys hash onto stripes,
// so unrelated sensors rarely contend while same-key evaluations always
// serialise.
const lockStripes = 64

// Engine evaluates sensor readings against the threshold policy and drives
// the per-key hysteresis latch.
type Engine struct {
	repo   Repository
	policy Policy

	locks [lockStripes]sync.Mutex
}

// NewEngine creates an alert engine over the given latch repository and policy.
func NewEngine(repo Repository, policy Policy) *Engine {
	return &Engine{
		repo:   repo,
		policy: policy,
	}
}

// Evaluate runs one reading through the latch state machine.
//
// Transition table:
//   - out of range, unlatched: latch and return an Alert
//   - out of range, latched:   suppress (nil)
//   - in range, latched:       silently re-arm (nil)
//   - in range, unlatched:     nothing (nil)
//
// The latch write is persisted before Evaluate returns, so a caller whose
// notification delivery later fails still leaves the state machine correct:
// the excursion has been alerted once and will not fire again.
func (e *Engine) Evaluate(ctx context.Context, greenhouseID int64, sensorID int, value float64) (*Alert, error) {
	mu := e.lockFor(sensorID, greenhouseID)
	mu.Lock()
	defer mu.Unlock()

	state, err := e.repo.Get(ctx, sensorID, greenhouseID)
	if err != nil {
		return nil, fmt.Errorf("loading alert state: %w", err)
	}

	outOfRange := e.policy.OutOfRange(sensorID, value)

	switch {
	case outOfRange && !state.Latched:
		now := time.Now().UTC()
		if err := e.repo.SetLatched(ctx, sensorID, greenhouseID, true, now); err != nil {
			return nil, fmt.Errorf("latching alert state: %w", err)
		}
		return &Alert{
			SensorID:     sensorID,
			GreenhouseID: greenhouseID,
			Value:        value,
			Message:      e.policy.Message(sensorID, value),
		}, nil

	case !outOfRange && state.Latched:
		if err := e.repo.SetLatched(ctx, sensorID, greenhouseID, false, time.Time{}); err != nil {
			return nil, fmt.Errorf("re-arming alert state: %w", err)
		}
		return nil, nil

	default:
		// Latched and still out of range, or unlatched and in range.
		return nil, nil
	}
}

// lockFor returns the stripe mutex for one (sensor, greenhouse) key.
func (e *Engine) lockFor(sensorID int, greenhouseID int64) *sync.Mutex {
	h := fnv.New64a()
	var buf [16]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(uint64(sensorID) >> (8 * i))
		buf[8+i] = byte(uint64(greenhouseID) >> (8 * i))
	}
	h.Write(buf[:])
	return &e.locks[h.Sum64()%lockStripes]
}
