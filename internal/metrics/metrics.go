package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	Database *DatabaseMetrics
	// Runtime is optional and set once the service identity is known.
	Runtime *RuntimeMetrics

	registrations    metric.Int64Counter
	logins           metric.Int64Counter
	enrollments      metric.Int64Counter
	unenrollments    metric.Int64Counter
	gradesUpdated    metric.Int64Counter
	accessDenied     metric.Int64Counter
	eventsPublished  metric.Int64Counter
	eventPublishFail metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	database, err := NewDatabaseMetrics(meter)
	if err != nil {
		return nil, err
	}

	m := &Metrics{Database: database}

	counters := []struct {
		target *metric.Int64Counter
		name   string
		desc   string
		unit   string
	}{
		{&m.registrations, "university.users.registered", "Total number of user registrations", "{user}"},
		{&m.logins, "university.users.logins", "Total number of successful logins", "{login}"},
		{&m.enrollments, "university.enrollments.created", "Total number of enrollments created", "{enrollment}"},
		{&m.unenrollments, "university.enrollments.removed", "Total number of enrollments removed", "{enrollment}"},
		{&m.gradesUpdated, "university.grades.updated", "Total number of grade updates", "{grade}"},
		{&m.accessDenied, "university.access.denied", "Requests rejected by the authorization policy", "{request}"},
		{&m.eventsPublished, "messaging.messages.published", "Total number of events published", "{message}"},
		{&m.eventPublishFail, "messaging.messages.errors", "Events that failed to publish", "{error}"},
	}

	for _, c := range counters {
		*c.target, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return nil, err
		}
	}

	return m, nil
}

func add(ctx context.Context, c metric.Int64Counter, attrs ...attribute.KeyValue) {
	if c == nil {
		return
	}
	c.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordRegistration(ctx context.Context, linked bool) {
	if m != nil {
		add(ctx, m.registrations, attribute.Bool("linked_existing_student", linked))
	}
}

func (m *Metrics) RecordLogin(ctx context.Context, role string) {
	if m != nil {
		add(ctx, m.logins, attribute.String("role", role))
	}
}

func (m *Metrics) RecordEnrollment(ctx context.Context) {
	if m != nil {
		add(ctx, m.enrollments)
	}
}

func (m *Metrics) RecordUnenrollment(ctx context.Context) {
	if m != nil {
		add(ctx, m.unenrollments)
	}
}

func (m *Metrics) RecordGradeUpdate(ctx context.Context) {
	if m != nil {
		add(ctx, m.gradesUpdated)
	}
}

func (m *Metrics) RecordAccessDenied(ctx context.Context, action, reason string) {
	if m != nil {
		add(ctx, m.accessDenied, attribute.String("action", action), attribute.String("reason", reason))
	}
}

func (m *Metrics) RecordEventPublished(ctx context.Context, eventType string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		add(ctx, m.eventPublishFail, attribute.String("type", eventType))
		return
	}
	add(ctx, m.eventsPublished, attribute.String("type", eventType))
}

func (m *Metrics) RecordDependencyCheck(ctx context.Context, dependency string, duration time.Duration, err error) {
	if m != nil {
		m.Runtime.RecordDependencyCheck(ctx, dependency, duration, err)
	}
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{Database: &DatabaseMetrics{}}
}
