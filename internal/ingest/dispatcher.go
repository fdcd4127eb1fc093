package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/agrolab/greenhouse-core/internal/alert"
	"github.com/agrolab/greenhouse-core/internal/greenhouse"
	"github.com/agrolab/greenhouse-core/internal/infrastructure/logging"
	"github.com/agrolab/greenhouse-core/internal/telemetry"
)

// notificationTitle heads every aggregated alert notification.
const notificationTitle = "Greenhouse alert"

// Mirror receives a secondary copy of committed telemetry. Implemented by
// the influxdb client; nil-safe at the Dispatcher level so the mirror can
// be switched off.
type Mirror interface {
	WriteSensorReading(guid string, sensorID int, value float64, at time.Time)
	WriteDeviceState(guid string, deviceID int, on bool, at time.Time)
	WriteSettingValue(guid string, parameterID int, value float64, at time.Time)
}

// Dispatcher executes one inbound controller message end to end.
//
// Each data message runs in its own SQLite transaction: either every entry
// of the payload is persisted or none are. Alert evaluation and notification
// happen after commit, so a failed delivery never rolls back telemetry.
type Dispatcher struct {
	db          *sql.DB
	greenhouses greenhouse.Repository
	telemetry   telemetry.Repository
	alerts      *alert.Engine
	notifier    Notifier
	mirror      Mirror
	logger      *logging.Logger
}

// Notifier sends one aggregated notification to a greenhouse's owner.
// Mirrors notify.Notifier without importing it, keeping the dependency
// direction inward.
type Notifier interface {
	Notify(ctx context.Context, greenhouseID, userID int64, title, body string) error
}

// NewDispatcher wires the ingestion pipeline. mirror may be nil when the
// time-series mirror is disabled.
func NewDispatcher(
	db *sql.DB,
	greenhouses greenhouse.Repository,
	telemetryRepo telemetry.Repository,
	alerts *alert.Engine,
	notifier Notifier,
	mirror Mirror,
	logger *logging.Logger,
) *Dispatcher {
	return &Dispatcher{
		db:          db,
		greenhouses: greenhouses,
		telemetry:   telemetryRepo,
		alerts:      alerts,
		notifier:    notifier,
		mirror:      mirror,
		logger:      logger.With("component", "ingest"),
	}
}

// HandleMessage routes one inbound MQTT message to its handler.
//
// Every failure is classified and logged here, and the error is returned
// for the transport's own warning log. Nothing is retried: a dropped
// message is dropped for good.
func (d *Dispatcher) HandleMessage(ctx context.Context, topic string, payload []byte) error {
	guid, kind, err := ParseTopic(topic)
	if err != nil {
		d.logger.Warn("dropping message with malformed topic", "topic", topic)
		return err
	}

	switch kind {
	case KindRegistration:
		err = d.HandleRegistration(ctx, guid, payload)
	case KindSensorData:
		err = d.HandleSensorData(ctx, guid, payload)
	case KindDeviceState:
		err = d.HandleDeviceState(ctx, guid, payload)
	case KindSettings:
		err = d.HandleSettings(ctx, guid, payload)
	}

	if err != nil {
		d.logger.Warn("dropping message",
			"topic", topic,
			"kind", kind.String(),
			"error", err,
		)
		return err
	}
	return nil
}

// HandleRegistration processes a pairing-code announcement.
func (d *Dispatcher) HandleRegistration(ctx context.Context, guid string, payload []byte) error {
	pin := strings.TrimSpace(string(payload))
	if pin == "" {
		return greenhouse.ErrEmptyPayload
	}

	if err := d.greenhouses.Register(ctx, guid, pin); err != nil {
		return fmt.Errorf("registering controller: %w", err)
	}

	d.logger.Info("controller registered", "guid", guid)
	return nil
}

// HandleSensorData persists a batch of sensor readings and evaluates alerts.
//
// The whole payload commits in one transaction before any alert evaluation
// runs. At most one aggregated notification fires per message, carrying the
// messages of every sensor that crossed its threshold in this batch.
func (d *Dispatcher) HandleSensorData(ctx context.Context, guid string, payload []byte) error {
	gh, err := d.resolve(ctx, guid)
	if err != nil {
		return err
	}

	values, err := decodeNumericMap(payload)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}

	now := time.Now().UTC()

	err = d.inTx(ctx, func(tx *sql.Tx) error {
		for _, sensorID := range sortedKeys(values) {
			reading := &telemetry.SensorReading{
				SensorID:     sensorID,
				GreenhouseID: gh.ID,
				Value:        values[sensorID],
				RecordedAt:   now,
			}
			if err := d.telemetry.InsertReading(ctx, tx, reading); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if d.mirror != nil {
		for sensorID, value := range values {
			d.mirror.WriteSensorReading(guid, sensorID, value, now)
		}
	}

	d.evaluateAlerts(ctx, gh, values)
	return nil
}

// HandleDeviceState persists a batch of device on/off states.
func (d *Dispatcher) HandleDeviceState(ctx context.Context, guid string, payload []byte) error {
	gh, err := d.resolve(ctx, guid)
	if err != nil {
		return err
	}

	states, err := decodeBoolMap(payload)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return nil
	}

	now := time.Now().UTC()

	err = d.inTx(ctx, func(tx *sql.Tx) error {
		for deviceID, on := range states {
			state := &telemetry.DeviceState{
				DeviceID:     deviceID,
				GreenhouseID: gh.ID,
				On:           on,
				RecordedAt:   now,
			}
			if err := d.telemetry.InsertState(ctx, tx, state); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if d.mirror != nil {
		for deviceID, on := range states {
			d.mirror.WriteDeviceState(guid, deviceID, on, now)
		}
	}
	return nil
}

// HandleSettings persists a batch of setting value snapshots.
func (d *Dispatcher) HandleSettings(ctx context.Context, guid string, payload []byte) error {
	gh, err := d.resolve(ctx, guid)
	if err != nil {
		return err
	}

	values, err := decodeNumericMap(payload)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}

	now := time.Now().UTC()

	err = d.inTx(ctx, func(tx *sql.Tx) error {
		for parameterID, value := range values {
			setting := &telemetry.SettingValue{
				ParameterID:  parameterID,
				GreenhouseID: gh.ID,
				Value:        value,
				RecordedAt:   now,
			}
			if err := d.telemetry.InsertSetting(ctx, tx, setting); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if d.mirror != nil {
		for parameterID, value := range values {
			d.mirror.WriteSettingValue(guid, parameterID, value, now)
		}
	}
	return nil
}

// resolve maps a guid to its greenhouse, classifying unknown controllers.
func (d *Dispatcher) resolve(ctx context.Context, guid string) (*greenhouse.Greenhouse, error) {
	gh, err := d.greenhouses.FindByGUID(ctx, guid)
	if err != nil {
		if errors.Is(err, greenhouse.ErrNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDeviceGroup, guid)
		}
		return nil, fmt.Errorf("resolving greenhouse: %w", err)
	}
	return gh, nil
}

// inTx runs fn in one transaction, rolling back on any error.
func (d *Dispatcher) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			d.logger.Error("rollback failed", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// evaluateAlerts runs every reading of a committed batch through the alert
// engine and fires at most one aggregated notification.
//
// Failures in here never propagate: the telemetry is already committed, and
// the latch state machine is consistent regardless of delivery outcome.
func (d *Dispatcher) evaluateAlerts(ctx context.Context, gh *greenhouse.Greenhouse, values map[int]float64) {
	var messages []string

	for _, sensorID := range sortedKeys(values) {
		a, err := d.alerts.Evaluate(ctx, gh.ID, sensorID, values[sensorID])
		if err != nil {
			d.logger.Error("alert evaluation failed",
				"guid", gh.GUID,
				"sensor_id", sensorID,
				"error", err,
			)
			continue
		}
		if a != nil {
			messages = append(messages, a.Message)
		}
	}

	if len(messages) == 0 {
		return
	}

	if !gh.Owned() {
		d.logger.Info("suppressing notification for unowned greenhouse",
			"guid", gh.GUID,
			"alerts", len(messages),
		)
		return
	}

	body := strings.Join(messages, "\n")
	if err := d.notifier.Notify(ctx, gh.ID, *gh.UserID, notificationTitle, body); err != nil {
		d.logger.Warn("notification delivery failed",
			"guid", gh.GUID,
			"error", err,
		)
	}
}

// sortedKeys returns the map's keys in ascending order so batch processing
// and notification text are deterministic.
func sortedKeys(m map[int]float64) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
