// Hookbot - Webhook Companion for IRC
//
// This is the main entry point for the hookbot daemon. Hookbot bridges
// HTTP webhooks and IRC: external systems POST to its routes and the
// resulting messages land in chat, while operators drive the webhook
// service from chat with the "webhooks" command.
//
// The IRC connection itself lives in a separate gateway process;
// hookbot talks to it over MQTT.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/ashwyne/hookbot/migrations"

	"github.com/ashwyne/hookbot/internal/chat"
	"github.com/ashwyne/hookbot/internal/extension"
	"github.com/ashwyne/hookbot/internal/hooks"
	"github.com/ashwyne/hookbot/internal/infrastructure/config"
	"github.com/ashwyne/hookbot/internal/infrastructure/database"
	"github.com/ashwyne/hookbot/internal/infrastructure/influxdb"
	"github.com/ashwyne/hookbot/internal/infrastructure/logging"
	"github.com/ashwyne/hookbot/internal/infrastructure/mqtt"
	"github.com/ashwyne/hookbot/internal/metrics"
	"github.com/ashwyne/hookbot/internal/msglog"
	"github.com/ashwyne/hookbot/internal/webhook"
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
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting hookbot",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
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

	// Open the message log database
	db, err := database.Open(database.Config{
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

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Connect to the MQTT chat bus
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

	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
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
	} else {
		log.Info("InfluxDB disabled, request metrics off")
	}

	// Shared collaborators
	store := msglog.NewSQLiteStore(db.DB)
	recorder := metrics.NewRecorder(influxClient)

	registry := webhook.NewRegistry()
	registry.SetLogger(log)

	// Chat client on the MQTT bus
	chatClient, err := chat.New(chat.Deps{
		Bus:      mqttClient,
		Config:   cfg.Chat,
		QoS:      byte(cfg.MQTT.QoS),
		Messages: store,
		Metrics:  recorder,
		Logger:   log,
	})
	if err != nil {
		return fmt.Errorf("creating chat client: %w", err)
	}

	// Webhook service
	svc, err := webhook.New(webhook.Deps{
		Config:   cfg.Webhooks,
		Registry: registry,
		Chat:     chatClient,
		Logger:   log,
		Observer: recorder,
	})
	if err != nil {
		return fmt.Errorf("creating webhook service: %w", err)
	}
	defer func() {
		if closeErr := svc.Close(); closeErr != nil {
			log.Error("error closing webhook service", "error", closeErr)
		}
	}()

	// Load webhook extensions against the allow-list
	provider := extension.NewStaticProvider()
	hooks.Register(provider)

	loader, err := extension.NewLoader(provider, cfg.Webhooks.Enabled)
	if err != nil {
		return fmt.Errorf("creating extension loader: %w", err)
	}
	loader.SetLogger(log)

	loaded, err := loader.Load(extension.Host{
		Registry:    registry,
		Credentials: credentials(cfg.Webhooks.Credentials),
		Channels:    chatClient,
		Messages:    store,
		Metrics:     recorder,
		Logger:      log,
	})
	if err != nil {
		// A broken extension must not take the bot down.
		log.Warn("some extensions failed to load", "error", err)
	}
	log.Info("extensions loaded", "count", loaded, "routes", registry.Len())

	// Wire the "webhooks" chat command
	control, err := chat.NewControl(chat.ControlDeps{
		Service:   svc,
		Registry:  registry,
		Sender:    chatClient,
		Operators: cfg.Chat.Operators,
		Metrics:   recorder,
		Logger:    log,
	})
	if err != nil {
		return fmt.Errorf("creating webhooks control: %w", err)
	}
	chatClient.OnCommand("webhooks", control.Handle)

	if startErr := chatClient.Start(); startErr != nil {
		return fmt.Errorf("starting chat client: %w", startErr)
	}

	// Bring the webhook listener up unless configured to wait for the
	// start command
	if cfg.Webhooks.Autostart {
		if startErr := svc.Start(); startErr != nil {
			return fmt.Errorf("starting webhook service: %w", startErr)
		}
		recorder.ServiceStarted(svc.Port())
		log.Info("webhook service autostarted", "port", svc.Port())
	} else {
		log.Info("webhook service waiting for start command")
	}

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient, svc); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. Webhook service
	// 2. InfluxDB (if enabled)
	// 3. MQTT
	// 4. Database

	log.Info("hookbot stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses HOOKBOT_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HOOKBOT_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// credentials converts configured credential pairs into the webhook
// package's type.
func credentials(cfgs []config.CredentialConfig) []webhook.Credential {
	out := make([]webhook.Credential, 0, len(cfgs))
	for _, c := range cfgs {
		out = append(out, webhook.Credential{User: c.User, Password: c.Password})
	}
	return out
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//   - svc: Webhook service to check (only when running)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client, svc *webhook.Service) error {
	// Check database
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	// Check MQTT
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	// Check InfluxDB (if enabled)
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	// Check the webhook listener. A stopped service is a legitimate
	// state: operators stop and start it from chat.
	if svc.IsRunning() {
		if err := svc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("webhooks: %w", err)
		}
	}

	return nil
}
