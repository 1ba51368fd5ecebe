package observability

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Bigdaddy1990/pawkit/resilience"
)

// Call outcomes recorded on spans and metrics.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeRejected = "rejected"
)

// CallObserver traces and measures protected calls. Metrics may be nil, in
// which case only spans are produced.
type CallObserver struct {
	Service string
	Metrics *BreakerMetrics
}

// Observe runs fn inside a span named resilience.call, records its outcome,
// and passes the error through unchanged.
func (o *CallObserver) Observe(ctx context.Context, breaker string, fn func(context.Context) error) error {
	ctx, span := StartSpan(ctx, SpanProtectedCall, trace.WithAttributes(
		attribute.String(AttrBreaker, breaker),
	))
	defer span.End()

	start := time.Now()
	err := fn(ctx)

	outcome := outcomeFor(err)
	span.SetAttributes(
		attribute.String(AttrStatus, outcome),
		attribute.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}

	if o.Metrics != nil {
		if outcome == OutcomeRejected {
			o.Metrics.RecordRejection(ctx, breaker, rejectionReason(err))
		} else {
			o.Metrics.RecordCall(ctx, breaker, outcome)
		}
	}

	return err
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, resilience.ErrCircuitOpen),
		errors.Is(err, resilience.ErrTooManyCalls),
		errors.Is(err, resilience.ErrBulkheadFull),
		errors.Is(err, resilience.ErrRateLimited):
		return OutcomeRejected
	default:
		return OutcomeFailure
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, resilience.ErrTooManyCalls):
		return "probe_limit"
	case errors.Is(err, resilience.ErrBulkheadFull):
		return "bulkhead_full"
	case errors.Is(err, resilience.ErrRateLimited):
		return "rate_limited"
	default:
		return "circuit_open"
	}
}
