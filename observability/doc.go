// Package observability provides OpenTelemetry tracing and metrics for
// pawkit, plus health reporting derived from circuit breaker state.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("pet-hub"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanProtectedCall)
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("pet-hub"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewBreakerMetrics(observability.Meter("pet-hub"))
//	mgr := resilience.NewManager(resilience.WithStateChangeListener(metrics))
//
// Health:
//
//	health := observability.BreakerHealth("pet-hub", version.Version, mgr)
package observability
