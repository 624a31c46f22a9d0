package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMigrationsTotal_Increment(t *testing.T) {
	before := testutil.ToFloat64(MigrationsTotal.WithLabelValues("test-app", "CatalogContext", "success"))
	MigrationsTotal.WithLabelValues("test-app", "CatalogContext", "success").Inc()
	after := testutil.ToFloat64(MigrationsTotal.WithLabelValues("test-app", "CatalogContext", "success"))

	assert.Equal(t, before+1, after)
}

func TestMigratedContexts_SetValue(t *testing.T) {
	MigratedContexts.WithLabelValues("test-app-2").Set(3)
	value := testutil.ToFloat64(MigratedContexts.WithLabelValues("test-app-2"))

	assert.Equal(t, float64(3), value)
}

func TestMigrationDuration_Observe(t *testing.T) {
	MigrationDuration.WithLabelValues("test-app-3", "CatalogContext").Observe(0.25)
	count := testutil.CollectAndCount(MigrationDuration)

	assert.Greater(t, count, 0)
}

func TestHealthCheckStatus_SetValue(t *testing.T) {
	HealthCheckStatus.WithLabelValues("test-app-4", "CatalogContext").Set(1)
	value := testutil.ToFloat64(HealthCheckStatus.WithLabelValues("test-app-4", "CatalogContext"))

	assert.Equal(t, float64(1), value)
}

func TestHealthCheckDuration_Observe(t *testing.T) {
	HealthCheckDuration.WithLabelValues("test-app-5", "CatalogContext").Observe(0.01)
	count := testutil.CollectAndCount(HealthCheckDuration)

	assert.Greater(t, count, 0)
}

func TestMetrics_LabelsAppliedCorrectly(t *testing.T) {
	app := "test-app-labels"

	MigrationsTotal.WithLabelValues(app, "OrdersContext", "failure").Inc()

	metricValue := testutil.ToFloat64(MigrationsTotal.WithLabelValues(app, "OrdersContext", "failure"))
	assert.Greater(t, metricValue, float64(0))

	// Different result label is a different series
	otherValue := testutil.ToFloat64(MigrationsTotal.WithLabelValues(app, "OrdersContext", "success"))
	assert.Equal(t, float64(0), otherValue)
}

func TestMetrics_AreRegisteredToDefaultRegistry(t *testing.T) {
	metrics := []prometheus.Collector{
		MigrationsTotal,
		MigrationDuration,
		MigratedContexts,
		HealthCheckStatus,
		HealthChecksTotal,
		HealthCheckDuration,
	}

	for _, metric := range metrics {
		count := testutil.CollectAndCount(metric)
		assert.GreaterOrEqual(t, count, 0)
	}
}
