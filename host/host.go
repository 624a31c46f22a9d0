// Package host drives application startup for registered persistence contexts:
// it migrates every context, then serves metrics and health endpoints until shut down.
package host

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/getpup/pupsourcing/es"
	grpchealth "google.golang.org/grpc/health"

	"github.com/getpup/pupsourcing-dbcontext/container"
	"github.com/getpup/pupsourcing-dbcontext/health"
	"github.com/getpup/pupsourcing-dbcontext/metrics"
	"github.com/getpup/pupsourcing-dbcontext/persistence"
)

const (
	// ReadyPath serves readiness-tagged checks.
	ReadyPath = "/health/ready"

	// LivePath serves liveness-tagged checks.
	LivePath = "/health/live"

	// LivenessCheckName is the liveness check every host registers.
	LivenessCheckName = "host"
)

// Config holds configuration for the Host.
type Config struct {
	// Services holds the application's registrations (required).
	Services *container.Collection

	// HealthChecks holds the application's health checks (optional).
	HealthChecks *health.Builder

	// App labels metrics (default: "pupsourcing-dbcontext").
	App string

	// Addr is the listen address for /metrics and the health endpoints.
	// Empty disables the HTTP server.
	Addr string

	// GRPCHealth receives the readiness status while the host runs (optional).
	GRPCHealth *grpchealth.Server

	// GRPCService is the service name readiness is published under (default: "", server-wide).
	GRPCService string

	// HealthInterval is how often readiness is published to GRPCHealth (default: 10s).
	HealthInterval time.Duration

	// HealthTimeout bounds each health check (default: 5s).
	HealthTimeout time.Duration

	// ShutdownTimeout bounds Shutdown when Run stops (default: 10s).
	ShutdownTimeout time.Duration

	// Logger is for observability (optional).
	// It is also registered into Services so MigrateContexts can log.
	Logger es.Logger

	// MetricsEnabled enables Prometheus metrics collection (default: true).
	// Set to false explicitly to disable metrics.
	MetricsEnabled *bool
}

// Host owns the provider built from Config.Services and the servers around it.
type Host struct {
	config    Config
	provider  *container.Provider
	health    *health.Service
	collector *metrics.Collector

	mu        sync.Mutex
	started   bool
	stopped   bool
	server    *metrics.Server
	stopWatch context.CancelFunc
	watchDone chan struct{}
}

// New creates a Host with the given configuration.
// Applies default values for all duration fields that are not positive, registers the logger, the
// metrics collector and the liveness check, then builds the provider.
// New adds to cfg.Services and cfg.HealthChecks, so each pair can back only one Host.
func New(cfg Config) (*Host, error) {
	if cfg.Services == nil {
		return nil, errors.New("services are required")
	}
	if cfg.App == "" {
		cfg.App = "pupsourcing-dbcontext"
	}
	if cfg.HealthInterval <= 0 {
		cfg.HealthInterval = health.DefaultWatchInterval
	}
	if cfg.HealthTimeout <= 0 {
		cfg.HealthTimeout = health.DefaultTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.HealthChecks == nil {
		cfg.HealthChecks = health.NewBuilder()
	}

	var collector *metrics.Collector
	metricsEnabled := true
	if cfg.MetricsEnabled != nil {
		metricsEnabled = *cfg.MetricsEnabled
	}
	if metricsEnabled {
		collector = metrics.NewCollector(cfg.App)
		if err := container.AddInstance(cfg.Services, collector); err != nil {
			return nil, fmt.Errorf("failed to register metrics collector: %w", err)
		}
	}
	if cfg.Logger != nil {
		if err := container.AddInstance(cfg.Services, cfg.Logger); err != nil {
			return nil, fmt.Errorf("failed to register logger: %w", err)
		}
	}

	err := cfg.HealthChecks.AddCheck(LivenessCheckName, health.CheckerFunc(func(context.Context) error {
		return nil
	}), health.TagLiveness)
	if err != nil {
		return nil, fmt.Errorf("failed to register liveness check: %w", err)
	}

	provider := cfg.Services.Build()
	return &Host{
		config:    cfg,
		provider:  provider,
		collector: collector,
		health: health.NewService(cfg.HealthChecks, provider,
			health.WithTimeout(cfg.HealthTimeout),
			health.WithCollector(collector),
			health.WithLogger(cfg.Logger),
		),
	}, nil
}

// Provider returns the host's service provider.
func (h *Host) Provider() *container.Provider {
	return h.provider
}

// Health returns the host's health service.
func (h *Host) Health() *health.Service {
	return h.health
}

// Collector returns the metrics collector, or nil when metrics are disabled.
func (h *Host) Collector() *metrics.Collector {
	return h.collector
}

// Start migrates every registered context, then starts the HTTP server and the gRPC
// health publisher if configured. A migration failure aborts startup before anything
// is served. Start returns once the servers are started.
func (h *Host) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		return errors.New("host is shut down")
	}
	if h.started {
		return errors.New("host already started")
	}

	if h.config.Logger != nil {
		h.config.Logger.Info(ctx, "migrating contexts", "app", h.config.App)
	}
	if err := persistence.MigrateContexts(ctx, h.provider); err != nil {
		if h.config.Logger != nil {
			h.config.Logger.Error(ctx, "startup aborted", "app", h.config.App, "error", err)
		}
		return fmt.Errorf("failed to migrate contexts: %w", err)
	}

	if h.config.Addr != "" {
		h.server = metrics.NewServer(h.config.Addr,
			metrics.WithHandler(ReadyPath, health.Handler(h.health, health.WithTag(health.TagReadiness))),
			metrics.WithHandler(LivePath, health.Handler(h.health, health.WithTag(health.TagLiveness))),
		)
		h.server.Start()
	}

	if h.config.GRPCHealth != nil {
		watchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		h.stopWatch = cancel
		h.watchDone = make(chan struct{})
		go func() {
			defer close(h.watchDone)
			health.WatchGRPC(watchCtx, h.health, h.config.GRPCHealth, h.config.GRPCService,
				health.WithTag(health.TagReadiness), h.config.HealthInterval)
		}()
	}

	h.started = true
	if h.config.Logger != nil {
		h.config.Logger.Info(ctx, "host started", "app", h.config.App, "addr", h.config.Addr)
	}
	return nil
}

// Run starts the host and blocks until ctx is cancelled or the HTTP server fails,
// then shuts down within ShutdownTimeout. Cancellation is a clean stop and returns nil.
func (h *Host) Run(ctx context.Context) error {
	if err := h.Start(ctx); err != nil {
		_ = h.Shutdown(context.Background())
		return err
	}

	var serverErr <-chan error
	if h.server != nil {
		serverErr = h.server.Done()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		runErr = fmt.Errorf("server failed: %w", err)
		if h.config.Logger != nil {
			h.config.Logger.Error(ctx, "server failed", "addr", h.config.Addr, "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.config.ShutdownTimeout)
	defer cancel()

	return errors.Join(runErr, h.Shutdown(shutdownCtx))
}

// Shutdown stops the servers and closes the provider, which closes singleton
// contexts and options. Calling Shutdown more than once is a no-op.
func (h *Host) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		return nil
	}
	h.stopped = true

	var errs []error
	if h.stopWatch != nil {
		h.stopWatch()
		<-h.watchDone
	}
	if h.server != nil {
		if err := h.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shut down server: %w", err))
		}
	}
	if err := h.provider.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close provider: %w", err))
	}

	if h.config.Logger != nil {
		h.config.Logger.Info(ctx, "host stopped", "app", h.config.App)
	}
	return errors.Join(errs...)
}
