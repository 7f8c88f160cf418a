package metrics

import (
	"context"
	"runtime"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RuntimeMetrics reports process gauges and the last known state of each
// external dependency probed by the readiness check.
type RuntimeMetrics struct {
	goroutines   metric.Int64ObservableGauge
	heapAlloc    metric.Int64ObservableGauge
	heapObjects  metric.Int64ObservableGauge
	gcCount      metric.Int64ObservableCounter
	uptime       metric.Float64ObservableCounter
	info         metric.Int64ObservableGauge
	dependencyUp metric.Int64ObservableGauge
	checkTime    metric.Float64Histogram

	startTime time.Time

	mu   sync.RWMutex
	deps map[string]bool
}

func NewRuntimeMetrics(meter metric.Meter, serviceName, version, env string, dependencies ...string) (*RuntimeMetrics, error) {
	rm := &RuntimeMetrics{
		startTime: time.Now(),
		deps:      make(map[string]bool, len(dependencies)),
	}
	for _, dep := range dependencies {
		rm.deps[dep] = false
	}

	var err error
	gauges := []struct {
		target *metric.Int64ObservableGauge
		name   string
		desc   string
		unit   string
	}{
		{&rm.goroutines, "runtime.go.goroutines", "Number of goroutines", "{goroutine}"},
		{&rm.heapAlloc, "runtime.go.mem.heap_alloc", "Bytes of allocated heap objects", "By"},
		{&rm.heapObjects, "runtime.go.mem.heap_objects", "Number of allocated heap objects", "{object}"},
		{&rm.info, "service.info", "Service metadata information", "{info}"},
		{&rm.dependencyUp, "dependency.up", "Dependency availability status (1=up, 0=down)", "{status}"},
	}
	for _, g := range gauges {
		*g.target, err = meter.Int64ObservableGauge(g.name, metric.WithDescription(g.desc), metric.WithUnit(g.unit))
		if err != nil {
			return nil, err
		}
	}

	rm.gcCount, err = meter.Int64ObservableCounter(
		"runtime.go.gc.count",
		metric.WithDescription("Number of completed GC cycles"),
		metric.WithUnit("{gc}"),
	)
	if err != nil {
		return nil, err
	}

	rm.uptime, err = meter.Float64ObservableCounter(
		"service.uptime",
		metric.WithDescription("Service uptime in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	// Buckets: 1ms .. 2.5s, the readiness probe gives up after 2s
	rm.checkTime, err = meter.Float64Histogram(
		"dependency.response_time",
		metric.WithDescription("Dependency health check response time"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5),
	)
	if err != nil {
		return nil, err
	}

	infoAttrs := metric.WithAttributes(
		attribute.String("service_name", serviceName),
		attribute.String("version", version),
		attribute.String("environment", env),
	)

	_, err = meter.RegisterCallback(
		func(ctx context.Context, observer metric.Observer) error {
			var mem runtime.MemStats
			runtime.ReadMemStats(&mem)

			observer.ObserveInt64(rm.goroutines, int64(runtime.NumGoroutine()))
			observer.ObserveInt64(rm.heapAlloc, int64(mem.HeapAlloc))
			observer.ObserveInt64(rm.heapObjects, int64(mem.HeapObjects))
			observer.ObserveInt64(rm.gcCount, int64(mem.NumGC))
			observer.ObserveFloat64(rm.uptime, time.Since(rm.startTime).Seconds())
			observer.ObserveInt64(rm.info, 1, infoAttrs)

			rm.mu.RLock()
			defer rm.mu.RUnlock()
			for name, up := range rm.deps {
				value := int64(0)
				if up {
					value = 1
				}
				observer.ObserveInt64(rm.dependencyUp, value, metric.WithAttributes(attribute.String("dependency", name)))
			}
			return nil
		},
		rm.goroutines,
		rm.heapAlloc,
		rm.heapObjects,
		rm.gcCount,
		rm.uptime,
		rm.info,
		rm.dependencyUp,
	)
	if err != nil {
		return nil, err
	}

	return rm, nil
}

// RecordDependencyCheck stores the outcome of a probe; err == nil marks the dependency up.
func (rm *RuntimeMetrics) RecordDependencyCheck(ctx context.Context, dependency string, duration time.Duration, err error) {
	if rm == nil {
		return
	}

	rm.mu.Lock()
	rm.deps[dependency] = err == nil
	rm.mu.Unlock()

	if rm.checkTime != nil {
		rm.checkTime.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("dependency", dependency)))
	}
}
