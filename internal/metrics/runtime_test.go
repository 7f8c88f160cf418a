package metrics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ovsidee/UniversityApp/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func dependencyUp(t *testing.T, collected map[string]metricdata.Metrics, name string) int64 {
	t.Helper()

	gauge, ok := collected["dependency.up"].Data.(metricdata.Gauge[int64])
	require.True(t, ok, "dependency.up is an int64 gauge")
	for _, dp := range gauge.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key("dependency")); ok && v.AsString() == name {
			return dp.Value
		}
	}
	t.Fatalf("no data point for dependency %q", name)
	return -1
}

func TestRuntimeMetrics(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	m, err := metrics.New(provider.Meter("test"))
	require.NoError(t, err)
	m.Runtime, err = metrics.NewRuntimeMetrics(provider.Meter("test"), "university-app", "dev", "test", "database")
	require.NoError(t, err)

	t.Run("ProcessGauges", func(t *testing.T) {
		collected := collect(t, reader)
		for _, name := range []string{"runtime.go.goroutines", "runtime.go.mem.heap_alloc", "service.uptime", "service.info"} {
			assert.Contains(t, collected, name)
		}
	})

	t.Run("DependencyStartsDown", func(t *testing.T) {
		assert.Equal(t, int64(0), dependencyUp(t, collect(t, reader), "database"))
	})

	t.Run("DependencyFollowsChecks", func(t *testing.T) {
		m.RecordDependencyCheck(ctx, "database", 3*time.Millisecond, nil)
		assert.Equal(t, int64(1), dependencyUp(t, collect(t, reader), "database"))

		m.RecordDependencyCheck(ctx, "database", 2*time.Second, errors.New("timeout"))
		collected := collect(t, reader)
		assert.Equal(t, int64(0), dependencyUp(t, collected, "database"))
		assert.Contains(t, collected, "dependency.response_time")
	})
}

func TestRecordingWithoutRuntime(t *testing.T) {
	var nilMetrics *metrics.Metrics
	assert.NotPanics(t, func() {
		nilMetrics.RecordDependencyCheck(context.Background(), "database", time.Millisecond, nil)
		metrics.NewMock().RecordDependencyCheck(context.Background(), "database", time.Millisecond, nil)
	})
}
