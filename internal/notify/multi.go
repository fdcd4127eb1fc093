package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/agrolab/greenhouse-core/internal/infrastructure/logging"
)

// Notifier sends one aggregated notification to a greenhouse's owner.
type Notifier interface {
	Notify(ctx context.Context, greenhouseID, userID int64, title, body string) error
}

// Multi fans one notification out to every delivery target of the owning
// user, routing each target to the dispatcher for its kind.
//
// Partial failure is tolerated: as long as at least one target receives the
// notification, Notify succeeds. Every attempt lands in the delivery log
// either way.
type Multi struct {
	targets     TargetRepository
	log         LogRepository
	dispatchers map[TargetKind]Dispatcher
	logger      *logging.Logger
}

// NewMulti creates a fan-out notifier. The dispatchers map routes target
// kinds to their transports; kinds without a dispatcher are skipped with
// a warning.
func NewMulti(targets TargetRepository, log LogRepository, dispatchers map[TargetKind]Dispatcher, logger *logging.Logger) *Multi {
	return &Multi{
		targets:     targets,
		log:         log,
		dispatchers: dispatchers,
		logger:      logger,
	}
}

// Notify delivers title/body to every target of userID and records the
// aggregate outcome for greenhouseID.
func (m *Multi) Notify(ctx context.Context, greenhouseID, userID int64, title, body string) error {
	targets, err := m.targets.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("listing delivery targets: %w", err)
	}

	entry := &LogEntry{
		ID:           uuid.NewString(),
		GreenhouseID: greenhouseID,
		Title:        title,
		Body:         body,
	}

	if len(targets) == 0 {
		entry.Error = ErrNoTargets.Error()
		m.record(ctx, entry)
		return ErrNoTargets
	}

	var (
		delivered int
		failures  []string
	)

	for _, target := range targets {
		dispatcher, ok := m.dispatchers[target.Kind]
		if !ok {
			m.logger.Warn("no dispatcher for target kind",
				"kind", string(target.Kind),
				"user_id", userID,
			)
			failures = append(failures, fmt.Sprintf("%s: %v", target.Kind, ErrUnknownKind))
			continue
		}

		if err := dispatcher.Deliver(ctx, target, title, body); err != nil {
			m.logger.Warn("notification delivery failed",
				"kind", string(target.Kind),
				"greenhouse_id", greenhouseID,
				"error", err,
			)
			failures = append(failures, err.Error())
			continue
		}
		delivered++
	}

	entry.Delivered = delivered > 0
	if len(failures) > 0 {
		entry.Error = strings.Join(failures, "; ")
	}
	m.record(ctx, entry)

	if delivered == 0 {
		return fmt.Errorf("%w: all %d targets failed", ErrDeliveryFailure, len(targets))
	}
	return nil
}

// record appends the log entry, logging rather than failing on error.
// The delivery outcome already happened; a broken log must not undo it.
func (m *Multi) record(ctx context.Context, entry *LogEntry) {
	if err := m.log.Record(ctx, entry); err != nil {
		m.logger.Error("recording notification log entry failed",
			"greenhouse_id", entry.GreenhouseID,
			"error", err,
		)
	}
}

// Ensure Multi satisfies Notifier.
var _ Notifier = (*Multi)(nil)
