package metrics

// Collector wraps metrics and provides helper methods with pre-filled labels.
type Collector struct {
	app string
}

// NewCollector creates a new Collector for the given application name.
func NewCollector(app string) *Collector {
	return &Collector{app: app}
}

// App returns the application label value.
func (c *Collector) App() string {
	return c.app
}

// IncMigrations increments the migrations counter for a context with result "success" or "failure".
func (c *Collector) IncMigrations(context string, success bool) {
	MigrationsTotal.WithLabelValues(c.app, context, result(success)).Inc()
}

// ObserveMigrationDuration records a migration duration observation.
func (c *Collector) ObserveMigrationDuration(context string, seconds float64) {
	MigrationDuration.WithLabelValues(c.app, context).Observe(seconds)
}

// SetMigratedContexts sets the migrated contexts gauge.
func (c *Collector) SetMigratedContexts(count int) {
	MigratedContexts.WithLabelValues(c.app).Set(float64(count))
}

// RecordHealthCheck records one health check execution.
func (c *Collector) RecordHealthCheck(check string, healthy bool, seconds float64) {
	value := 0.0
	status := "unhealthy"
	if healthy {
		value = 1
		status = "healthy"
	}
	HealthCheckStatus.WithLabelValues(c.app, check).Set(value)
	HealthChecksTotal.WithLabelValues(c.app, check, status).Inc()
	HealthCheckDuration.WithLabelValues(c.app, check).Observe(seconds)
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
