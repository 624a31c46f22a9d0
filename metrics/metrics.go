package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MigrationsTotal tracks context migrations by outcome.
var MigrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pupsourcing_dbcontext_migrations_total",
		Help: "Total context migrations by result",
	},
	[]string{"app", "context", "result"},
)

// MigrationDuration tracks time spent migrating a context.
var MigrationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "pupsourcing_dbcontext_migration_duration_seconds",
		Help:    "Time spent migrating a context",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"app", "context"},
)

// MigratedContexts tracks how many contexts the last migration run resolved.
var MigratedContexts = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "pupsourcing_dbcontext_migrated_contexts",
		Help: "Contexts resolved by the last migration run",
	},
	[]string{"app"},
)

// HealthCheckStatus tracks the last result of each health check (1 healthy, 0 unhealthy).
var HealthCheckStatus = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "pupsourcing_dbcontext_health_check_status",
		Help: "Last health check result (1 healthy, 0 unhealthy)",
	},
	[]string{"app", "check"},
)

// HealthChecksTotal tracks health check executions by status.
var HealthChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pupsourcing_dbcontext_health_checks_total",
		Help: "Total health check executions by status",
	},
	[]string{"app", "check", "status"},
)

// HealthCheckDuration tracks health check latency.
var HealthCheckDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "pupsourcing_dbcontext_health_check_duration_seconds",
		Help:    "Health check latency",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"app", "check"},
)
