// Package resilience protects callers from cascading failures when invoking
// flaky, latency-variable dependencies such as device or network APIs.
//
// This package includes:
//   - CircuitBreaker: fails fast while a dependency is unhealthy
//   - Retry: retries failed operations with exponential backoff and jitter
//   - Bulkhead: limits concurrent access to isolate failures
//   - RateLimiter: controls call rate with a token bucket
//   - Manager: a registry of named breakers that composes all of the above
//     behind one call wrapper
//
// The Manager is the intended entry point. It creates one breaker per named
// dependency on first use and wraps a single logical call:
//
//	mgr := resilience.NewManager()
//
//	err := mgr.Execute(ctx, func(ctx context.Context) error {
//	    return device.Fetch(ctx)
//	},
//	    resilience.WithBreaker("device-api"),
//	    resilience.WithRetry(resilience.RetryConfig{
//	        MaxAttempts:    3,
//	        InitialBackoff: 500 * time.Millisecond,
//	        BackoffFactor:  2.0,
//	        Jitter:         true,
//	    }),
//	)
//
// Callers distinguish outcomes with errors.Is and errors.As:
// ErrCircuitOpen and ErrTooManyCalls mean the breaker refused admission,
// *RetryExhaustedError means every attempt failed (it wraps the last error),
// and anything else is the operation's own error passed through unchanged.
// Context cancellation always propagates as cancellation.
package resilience
