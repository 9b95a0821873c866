// Gray Logic Telemetry - sensor reading service
//
// This is the main entry point for the telemetry service. It records
// readings from house sensors (via REST or MQTT), answers interval and
// nearest-to-now queries, and correlates indoor against outdoor streams.
//
// Usage:
//
//	telemetry                               run the service
//	telemetry -issue-token gw -role sensor  print a signed access token and exit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/gray-logic-telemetry/migrations"

	"github.com/nerrad567/gray-logic-telemetry/internal/api"
	"github.com/nerrad567/gray-logic-telemetry/internal/auth"
	"github.com/nerrad567/gray-logic-telemetry/internal/device"
	"github.com/nerrad567/gray-logic-telemetry/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-telemetry/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-telemetry/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-telemetry/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-telemetry/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-telemetry/internal/ingest"
	"github.com/nerrad567/gray-logic-telemetry/internal/location"
	"github.com/nerrad567/gray-logic-telemetry/internal/reading"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	issueSubject := flag.String("issue-token", "", "print a signed access token for `subject` and exit")
	issueRole := flag.String("role", string(auth.RoleViewer), "role for -issue-token (viewer, sensor, admin)")
	flag.Parse()

	if *issueSubject != "" {
		if err := issueToken(os.Stdout, getConfigPath(), *issueSubject, auth.Role(*issueRole)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Cancel on Ctrl+C or SIGTERM for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
// It returns nil on clean shutdown.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting Gray Logic Telemetry",
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

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)
	if cfg.Security.JWT.Secret != "" {
		log.Info("authentication enabled", "token_ttl", cfg.AccessTokenTTL())
	}

	// Reading store
	store, db, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
	}

	// Inventory
	locations := location.NewRegistry()
	locations.SetLogger(log.Component("location"))
	devices := device.NewRegistry(locations)
	devices.SetLogger(log.Component("device"))
	if err := loadInventory(ctx, cfg.Inventory.Path, locations, devices, log); err != nil {
		return err
	}
	stats := devices.Stats()
	log.Info("inventory loaded", "devices", stats.TotalDevices, "sensors", stats.TotalSensors)

	coordinator := reading.NewCoordinator(store, devices)
	coordinator.SetLogger(log.Component("reading"))

	// InfluxDB mirror (optional)
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
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		coordinator.AddObserver(ingest.NewMirror(influxClient))
		log.Info("InfluxDB mirror enabled",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB mirror disabled")
	}

	// MQTT ingest (optional)
	var mqttClient *mqtt.Client
	var listener *ingest.Listener
	if cfg.MQTT.Enabled {
		mqttClient, listener, err = startMQTTIngest(ctx, cfg, coordinator, log)
		if err != nil {
			return err
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
	} else {
		log.Info("MQTT ingest disabled")
	}

	// REST API + WebSocket feed
	deps := api.Deps{
		Config:      cfg.API,
		WS:          cfg.WebSocket,
		Security:    cfg.Security,
		Correlation: cfg.Correlation,
		Logger:      log.Component("api"),
		Store:       store,
		Coordinator: coordinator,
		Devices:     devices,
		Locations:   locations,
		Version:     version,
	}
	if listener != nil {
		deps.Ingest = listener
	}
	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	coordinator.AddObserver(server.Feed())
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if err := healthCheck(ctx, server, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order: API, MQTT, InfluxDB, database.
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GRAYLOGIC_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRAYLOGIC_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// openStore creates the configured reading store. db is nil for the
// memory backend.
func openStore(ctx context.Context, cfg *config.Config, log *logging.Logger) (reading.Store, *database.DB, error) {
	if cfg.Store.Backend != config.StoreBackendSQLite {
		log.Info("using in-memory reading store")
		return reading.NewMemoryStore(), nil, nil
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close() //nolint:errcheck // already failing
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}
	log.Info("using SQLite reading store", "path", cfg.Database.Path)
	return reading.NewSQLiteStore(db.DB), db, nil
}

// loadInventory applies the inventory file. A missing file leaves the
// registries empty so the service can start before commissioning.
func loadInventory(ctx context.Context, path string, locations *location.Registry, devices *device.Registry, log *logging.Logger) error {
	if path == "" {
		log.Warn("no inventory configured; all readings will be rejected")
		return nil
	}
	inv, err := device.LoadInventory(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn("inventory file not found; all readings will be rejected", "path", path)
			return nil
		}
		return fmt.Errorf("loading inventory: %w", err)
	}
	if err := inv.Apply(ctx, locations, devices); err != nil {
		return fmt.Errorf("applying inventory: %w", err)
	}
	return nil
}

// startMQTTIngest connects to the broker and subscribes the reading listener.
func startMQTTIngest(ctx context.Context, cfg *config.Config, coordinator *reading.Coordinator, log *logging.Logger) (*mqtt.Client, *ingest.Listener, error) {
	client, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to MQTT: %w", err)
	}
	client.SetLogger(log.Component("mqtt"))
	client.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	client.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	listener := ingest.NewListener(coordinator)
	listener.SetLogger(log.Component("ingest"))
	if err := listener.Start(ctx, client, byte(cfg.MQTT.QoS)); err != nil {
		client.Close() //nolint:errcheck // already failing
		return nil, nil, err
	}
	return client, listener, nil
}

// healthCheck verifies the enabled infrastructure connections. Nil
// clients are skipped.
func healthCheck(ctx context.Context, srv *api.Server, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if srv != nil {
		if err := srv.HealthCheck(ctx); err != nil {
			return err
		}
	}
	if db != nil {
		if err := db.HealthCheck(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	return nil
}

// issueToken prints a signed access token for subject using the configured
// JWT secret and TTL.
func issueToken(w io.Writer, configPath, subject string, role auth.Role) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Security.JWT.Secret == "" {
		return errors.New("security.jwt.secret is not set; authentication is disabled")
	}

	token, err := auth.GenerateAccessToken(subject, role, cfg.Security.JWT.Secret, cfg.Security.JWT.AccessTokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, token)
	return nil
}
