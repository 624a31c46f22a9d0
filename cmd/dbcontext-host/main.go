// Command dbcontext-host runs the catalog persistence context behind a host:
// it migrates the schema at startup, then serves /metrics, /health/ready and
// /health/live, and optionally the gRPC health protocol.
//
// Configuration is read from DBCONTEXT_* environment variables:
//
//	DBCONTEXT_DIALECT=postgres DBCONTEXT_DSN=postgres://localhost/catalog?sslmode=disable \
//	DBCONTEXT_GRPC_ADDR=:9091 go run github.com/getpup/pupsourcing-dbcontext/cmd/dbcontext-host
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/getpup/pupsourcing-dbcontext/container"
	"github.com/getpup/pupsourcing-dbcontext/health"
	"github.com/getpup/pupsourcing-dbcontext/host"
	"github.com/getpup/pupsourcing-dbcontext/internal/catalog"
	"github.com/getpup/pupsourcing-dbcontext/internal/config"
	"github.com/getpup/pupsourcing-dbcontext/internal/logging"
	"github.com/getpup/pupsourcing-dbcontext/persistence"
	"github.com/getpup/pupsourcing-dbcontext/pkg/version"
	"github.com/getpup/pupsourcing-dbcontext/sqlcontext"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "dbcontext-host: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return err
	}
	logger.Info(ctx, "starting dbcontext-host", "version", version.Version, "dialect", cfg.Dialect)

	services := container.NewCollection()
	configure := catalog.Configure(cfg.Dialect, cfg.DSN)
	err = persistence.AddContext(services, catalog.New, func(b *sqlcontext.OptionsBuilder) {
		configure(b)
		b.WithMigrationsTable(cfg.MigrationsTable).
			WithMaxOpenConns(cfg.MaxOpenConns).
			WithConnMaxLifetime(cfg.ConnMaxLifetime)
	}, persistence.As[catalog.Reader](), persistence.As[catalog.Writer]())
	if err != nil {
		return fmt.Errorf("failed to register catalog context: %w", err)
	}

	checks := health.NewBuilder()
	if err := persistence.AddContextCheck[*catalog.Context](checks); err != nil {
		return fmt.Errorf("failed to register catalog health check: %w", err)
	}

	hostCfg := host.Config{
		Services:        services,
		HealthChecks:    checks,
		App:             cfg.App,
		Addr:            cfg.HTTPAddr,
		HealthInterval:  cfg.HealthInterval,
		ShutdownTimeout: cfg.ShutdownTimeout,
		Logger:          logger,
	}

	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.GRPCAddr, err)
		}

		healthServer := grpchealth.NewServer()
		healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
		grpcServer := grpc.NewServer()
		healthpb.RegisterHealthServer(grpcServer, healthServer)

		go func() {
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error(ctx, "grpc server stopped", "error", err)
			}
		}()
		defer func() {
			healthServer.Shutdown()
			grpcServer.GracefulStop()
		}()

		hostCfg.GRPCHealth = healthServer
	}

	h, err := host.New(hostCfg)
	if err != nil {
		return err
	}
	return h.Run(ctx)
}
