// Greenhouse Core - Telemetry Ingestion and Alerting
//
// This is the main entry point for the greenhouse telemetry service. It
// consumes controller traffic from an MQTT broker, persists telemetry to
// SQLite (optionally mirroring to InfluxDB), and notifies greenhouse owners
// when sensor readings cross their thresholds.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/agrolab/greenhouse-core/migrations"

	"github.com/agrolab/greenhouse-core/internal/alert"
	"github.com/agrolab/greenhouse-core/internal/greenhouse"
	"github.com/agrolab/greenhouse-core/internal/infrastructure/config"
	"github.com/agrolab/greenhouse-core/internal/infrastructure/database"
	"github.com/agrolab/greenhouse-core/internal/infrastructure/influxdb"
	"github.com/agrolab/greenhouse-core/internal/infrastructure/logging"
	"github.com/agrolab/greenhouse-core/internal/infrastructure/mqtt"
	"github.com/agrolab/greenhouse-core/internal/ingest"
	"github.com/agrolab/greenhouse-core/internal/notify"
	"github.com/agrolab/greenhouse-core/internal/telemetry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Greenhouse Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Connect to InfluxDB (optional telemetry mirror)
	var influxClient *influxdb.Client
	var mirror ingest.Mirror
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		mirror = influxClient
	} else {
		log.Info("InfluxDB disabled")
	}

	// Build the notification stack from enabled channels
	notifier, err := buildNotifier(cfg, db, log)
	if err != nil {
		return fmt.Errorf("building notifier: %w", err)
	}

	// Wire the ingestion pipeline
	greenhouseRepo := greenhouse.NewSQLiteRepository(db.DB)
	telemetryRepo := telemetry.NewSQLiteRepository(db.DB)
	alertEngine := alert.NewEngine(alert.NewSQLiteRepository(db.DB), alert.DefaultPolicy())

	dispatcher := ingest.NewDispatcher(
		db.DB,
		greenhouseRepo,
		telemetryRepo,
		alertEngine,
		notifier,
		mirror,
		log,
	)

	consumer := ingest.NewConsumer(mqttClient, dispatcher, byte(cfg.MQTT.QoS), log)
	if err := consumer.Start(ctx); err != nil {
		return fmt.Errorf("starting consumer: %w", err)
	}
	log.Info("ingestion pipeline started")

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. InfluxDB (if enabled)
	// 2. MQTT
	// 3. Database

	log.Info("Greenhouse Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GREENHOUSE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GREENHOUSE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// buildNotifier assembles the multi-channel notifier from every enabled
// delivery channel. With no channels enabled the notifier still records
// attempts in the notification log.
func buildNotifier(cfg *config.Config, db *database.DB, log *logging.Logger) (*notify.Multi, error) {
	dispatchers := make(map[notify.TargetKind]notify.Dispatcher)

	push, err := notify.NewPushDispatcher(cfg.Notifications.Push)
	switch {
	case err == nil:
		dispatchers[notify.KindPush] = push
		log.Info("push notifications enabled", "gateway", cfg.Notifications.Push.GatewayURL)
	case errors.Is(err, notify.ErrDisabled):
		log.Info("push notifications disabled")
	default:
		return nil, fmt.Errorf("push dispatcher: %w", err)
	}

	email, err := notify.NewEmailDispatcher(cfg.Notifications.SMTP)
	switch {
	case err == nil:
		dispatchers[notify.KindEmail] = email
		log.Info("email notifications enabled", "host", cfg.Notifications.SMTP.Host)
	case errors.Is(err, notify.ErrDisabled):
		log.Info("email notifications disabled")
	default:
		return nil, fmt.Errorf("email dispatcher: %w", err)
	}

	return notify.NewMulti(
		notify.NewSQLiteTargetRepository(db.DB),
		notify.NewSQLiteLogRepository(db.DB),
		dispatchers,
		log,
	), nil
}

// healthCheck verifies all infrastructure connections are healthy.
// influxClient may be nil when the mirror is disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
