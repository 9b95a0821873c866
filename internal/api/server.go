package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/gray-logic-telemetry/internal/device"
	"github.com/nerrad567/gray-logic-telemetry/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-telemetry/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-telemetry/internal/ingest"
	"github.com/nerrad567/gray-logic-telemetry/internal/location"
	"github.com/nerrad567/gray-logic-telemetry/internal/reading"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// IngestStats reports MQTT ingest counters for the health endpoint.
// Satisfied by *ingest.Listener.
type IngestStats interface {
	Stats() ingest.Stats
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config      config.APIConfig
	WS          config.WebSocketConfig
	Security    config.SecurityConfig
	Correlation config.CorrelationConfig
	Logger      *logging.Logger
	Store       reading.Store
	Coordinator *reading.Coordinator
	Devices     *device.Registry
	Locations   *location.Registry
	Ingest      IngestStats // optional; nil when MQTT is disabled
	Version     string
}

// Server is the HTTP API server.
//
// It is created with New() and started with Start(). The reading feed is
// available from New() so it can be registered as a coordinator observer
// before the listener starts.
type Server struct {
	cfg         config.APIConfig
	wsCfg       config.WebSocketConfig
	secCfg      config.SecurityConfig
	corrCfg     config.CorrelationConfig
	logger      *logging.Logger
	store       reading.Store
	coordinator *reading.Coordinator
	devices     *device.Registry
	locations   *location.Registry
	ingest      IngestStats
	version     string
	server      *http.Server
	feed        *Feed
	cancel      context.CancelFunc
	now         func() time.Time
}

// New creates a new API server with the given dependencies.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("reading store is required")
	}
	if deps.Coordinator == nil {
		return nil, fmt.Errorf("reading coordinator is required")
	}
	if deps.Devices == nil || deps.Locations == nil {
		return nil, fmt.Errorf("device and location registries are required")
	}

	return &Server{
		cfg:         deps.Config,
		wsCfg:       deps.WS,
		secCfg:      deps.Security,
		corrCfg:     deps.Correlation,
		logger:      deps.Logger,
		store:       deps.Store,
		coordinator: deps.Coordinator,
		devices:     deps.Devices,
		locations:   deps.Locations,
		ingest:      deps.Ingest,
		version:     deps.Version,
		feed:        NewFeed(deps.Logger.Component("feed")),
		now:         time.Now,
	}, nil
}

// Feed returns the WebSocket reading feed. Register it with
// Coordinator.AddObserver to stream stored readings to clients.
func (s *Server) Feed() *Feed {
	return s.feed
}

// Start begins listening for HTTP connections in a background goroutine.
// The server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)
	go s.feed.Run(srvCtx)

	if s.secCfg.JWT.Secret == "" {
		s.logger.Warn("API authentication disabled: security.jwt.secret is empty")
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server, waiting up to 10 seconds for
// in-flight requests.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server has been started.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
