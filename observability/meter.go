package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/Bigdaddy1990/pawkit/logger"
	"github.com/Bigdaddy1990/pawkit/resilience"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// BreakerMetrics holds OpenTelemetry instruments for resilience telemetry.
// It implements resilience.StateChangeListener, so it can be registered on
// a manager to count every breaker transition.
type BreakerMetrics struct {
	transitions   metric.Int64Counter
	calls         metric.Int64Counter
	rejections    metric.Int64Counter
	retryAttempts metric.Int64Histogram
}

// NewBreakerMetrics creates resilience metric instruments on the given meter.
func NewBreakerMetrics(meter metric.Meter) (*BreakerMetrics, error) {
	transitions, err := meter.Int64Counter("breaker.transitions",
		metric.WithDescription("Circuit breaker state transitions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating breaker.transitions counter: %w", err)
	}

	calls, err := meter.Int64Counter("breaker.calls",
		metric.WithDescription("Protected calls by breaker and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating breaker.calls counter: %w", err)
	}

	rejections, err := meter.Int64Counter("breaker.rejections",
		metric.WithDescription("Calls rejected without invoking the operation"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating breaker.rejections counter: %w", err)
	}

	retryAttempts, err := meter.Int64Histogram("retry.attempts",
		metric.WithDescription("Attempts used per retried operation"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating retry.attempts histogram: %w", err)
	}

	return &BreakerMetrics{
		transitions:   transitions,
		calls:         calls,
		rejections:    rejections,
		retryAttempts: retryAttempts,
	}, nil
}

// OnStateChange implements resilience.StateChangeListener.
func (m *BreakerMetrics) OnStateChange(name string, from, to resilience.State) {
	m.transitions.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("breaker", name),
		attribute.String("from", from.String()),
		attribute.String("to", to.String()),
	))
}

// RecordCall records the outcome of an invoked protected call.
func (m *BreakerMetrics) RecordCall(ctx context.Context, breaker, outcome string) {
	m.calls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("breaker", breaker),
		attribute.String("outcome", outcome),
	))
}

// RecordRejection records a fail-fast rejection.
func (m *BreakerMetrics) RecordRejection(ctx context.Context, breaker, reason string) {
	m.rejections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("breaker", breaker),
		attribute.String("reason", reason),
	))
}

// RecordRetryAttempts records how many attempts a retried operation used.
func (m *BreakerMetrics) RecordRetryAttempts(ctx context.Context, operation string, attempts int) {
	m.retryAttempts.Record(ctx, int64(attempts), metric.WithAttributes(
		attribute.String("operation", operation),
	))
}
