// Package resilience guards calls to flaky, latency-variable dependencies.
// It includes circuit breaker, retry, bulkhead, and rate limiting patterns,
// plus a manager that composes them per named dependency.
package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed allows calls to pass through.
	StateClosed State = iota
	// StateOpen rejects all calls until the cooldown elapses.
	StateOpen
	// StateHalfOpen admits a limited number of probe calls to test recovery.
	StateHalfOpen
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name so Stats serialize readably.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Fail-fast errors returned without invoking the protected operation.
var (
	// ErrCircuitOpen is returned while the breaker is open and the cooldown
	// has not elapsed.
	ErrCircuitOpen = errors.New("circuit breaker is open")
	// ErrTooManyCalls is returned while the breaker is half-open and the
	// concurrent probe limit has been reached.
	ErrTooManyCalls = errors.New("circuit breaker half-open: too many concurrent probe calls")
)

// CircuitBreakerConfig configures a circuit breaker.
type CircuitBreakerConfig struct {
	// Name identifies this circuit breaker for metrics/logging.
	Name string
	// FailureThreshold is the number of consecutive failures in the closed
	// state before the circuit opens.
	FailureThreshold int
	// SuccessThreshold is the number of consecutive probe successes in the
	// half-open state before the circuit closes.
	SuccessThreshold int
	// Timeout is the cooldown after opening before probe calls are admitted.
	Timeout time.Duration
	// HalfOpenMaxCalls caps concurrent probe calls in the half-open state.
	HalfOpenMaxCalls int
	// OnStateChange is called after a state change commits, outside the
	// breaker's lock, so it may safely call back into the breaker.
	OnStateChange func(name string, from, to State)
}

// DefaultCircuitBreakerConfig returns sensible defaults.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Timeout:          60 * time.Second,
		HalfOpenMaxCalls: 1,
	}
}

// Stats is a point-in-time snapshot of a circuit breaker's counters.
// TotalCalls counts invoked operations only: fail-fast rejections are not
// included, and Reset does not zero it.
type Stats struct {
	State           State     `json:"state"`
	FailureCount    int       `json:"failure_count"`
	SuccessCount    int       `json:"success_count"`
	TotalCalls      int64     `json:"total_calls"`
	LastFailureTime time.Time `json:"last_failure_time"`
}

// CircuitBreaker implements the circuit breaker pattern.
// It prevents cascading failures by failing fast when a dependency is
// unhealthy.
//
// States:
//   - Closed: normal operation, calls pass through
//   - Open: dependency is unhealthy, calls fail immediately
//   - Half-Open: testing recovery, limited probe calls allowed
type CircuitBreaker struct {
	config CircuitBreakerConfig

	mu              sync.Mutex
	state           State
	failures        int
	successes       int
	totalCalls      int64
	lastFailureTime time.Time
	halfOpenCalls   int

	// pending holds transitions made under mu; they are drained and
	// announced via OnStateChange once the lock is released.
	pending []stateTransition
}

type stateTransition struct {
	from, to State
}

// NewCircuitBreaker creates a new circuit breaker. Non-positive config
// values fall back to the defaults.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = 2
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	if config.HalfOpenMaxCalls <= 0 {
		config.HalfOpenMaxCalls = 1
	}

	return &CircuitBreaker{
		config: config,
		state:  StateClosed,
	}
}

// Execute runs the given function through the circuit breaker.
// Returns ErrCircuitOpen or ErrTooManyCalls without invoking fn when the
// call is not admitted. Context cancellation errors returned by fn
// propagate unchanged and are not recorded as breaker failures.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	probe, err := cb.allow()
	if err != nil {
		return err
	}

	opErr := fn()
	cb.record(opErr, probe)
	return opErr
}

// Call runs a function returning a value through the circuit breaker.
func Call[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	var result T
	err := cb.Execute(func() error {
		var fnErr error
		result, fnErr = fn()
		return fnErr
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// State returns the current circuit breaker state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	state := cb.currentState()
	pending := cb.drainTransitions()
	cb.mu.Unlock()

	cb.announce(pending)
	return state
}

// Stats returns a consistent snapshot of the breaker's counters.
func (cb *CircuitBreaker) Stats() Stats {
	cb.mu.Lock()
	snapshot := Stats{
		State:           cb.currentState(),
		FailureCount:    cb.failures,
		SuccessCount:    cb.successes,
		TotalCalls:      cb.totalCalls,
		LastFailureTime: cb.lastFailureTime,
	}
	pending := cb.drainTransitions()
	cb.mu.Unlock()

	cb.announce(pending)
	return snapshot
}

// Name returns the configured breaker name.
func (cb *CircuitBreaker) Name() string {
	return cb.config.Name
}

// Reset forces the breaker to the closed state and zeroes the failure and
// success counters. TotalCalls is left intact so diagnostics stay monotonic.
// Reset is for administrative use, not the normal call path.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	cb.toState(StateClosed)
	cb.failures = 0
	cb.successes = 0
	cb.halfOpenCalls = 0
	pending := cb.drainTransitions()
	cb.mu.Unlock()

	cb.announce(pending)
}

// allow decides admission for a single call. It reports whether the call
// was admitted as a half-open probe; the caller hands that back to record
// so the probe slot is released.
func (cb *CircuitBreaker) allow() (probe bool, err error) {
	cb.mu.Lock()

	switch cb.currentState() {
	case StateClosed:
	case StateOpen:
		err = ErrCircuitOpen
	case StateHalfOpen:
		if cb.halfOpenCalls >= cb.config.HalfOpenMaxCalls {
			err = ErrTooManyCalls
		} else {
			cb.halfOpenCalls++
			probe = true
		}
	default:
		err = ErrCircuitOpen
	}

	pending := cb.drainTransitions()
	cb.mu.Unlock()

	cb.announce(pending)
	return probe, err
}

// record applies the outcome of an invoked call.
func (cb *CircuitBreaker) record(opErr error, probe bool) {
	cb.mu.Lock()

	// A Reset while the probe was in flight already zeroed the counter.
	if probe && cb.halfOpenCalls > 0 {
		cb.halfOpenCalls--
	}

	cb.totalCalls++

	// Cancellation is the caller's verdict, not the dependency's.
	cancelled := opErr != nil &&
		(errors.Is(opErr, context.Canceled) || errors.Is(opErr, context.DeadlineExceeded))

	switch {
	case cancelled:
	case opErr != nil:
		cb.onFailure()
	default:
		cb.onSuccess()
	}

	pending := cb.drainTransitions()
	cb.mu.Unlock()

	cb.announce(pending)
}

// onSuccess handles a successful call.
func (cb *CircuitBreaker) onSuccess() {
	switch cb.currentState() {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		cb.successes++
		if cb.successes >= cb.config.SuccessThreshold {
			cb.toState(StateClosed)
		}
	}
}

// onFailure handles a failed call.
func (cb *CircuitBreaker) onFailure() {
	cb.failures++
	cb.lastFailureTime = time.Now()

	switch cb.currentState() {
	case StateClosed:
		if cb.failures >= cb.config.FailureThreshold {
			cb.toState(StateOpen)
		}
	case StateHalfOpen:
		// A single probe failure reopens the circuit regardless of
		// accumulated probe successes.
		cb.toState(StateOpen)
	}
}

// currentState returns the current state, transitioning open to half-open
// lazily once the cooldown has elapsed. Callers must hold cb.mu.
func (cb *CircuitBreaker) currentState() State {
	if cb.state == StateOpen {
		if time.Since(cb.lastFailureTime) >= cb.config.Timeout {
			cb.toState(StateHalfOpen)
		}
	}
	return cb.state
}

// toState transitions to a new state and queues the change for
// announcement. Callers must hold cb.mu.
func (cb *CircuitBreaker) toState(to State) {
	if cb.state == to {
		return
	}

	from := cb.state
	cb.state = to

	switch to {
	case StateClosed:
		cb.failures = 0
		cb.successes = 0
		cb.halfOpenCalls = 0
	case StateHalfOpen:
		cb.successes = 0
		cb.halfOpenCalls = 0
	case StateOpen:
		cb.successes = 0
		cb.halfOpenCalls = 0
	}

	cb.pending = append(cb.pending, stateTransition{from: from, to: to})
}

// drainTransitions takes the queued transitions. Callers must hold cb.mu.
func (cb *CircuitBreaker) drainTransitions() []stateTransition {
	pending := cb.pending
	cb.pending = nil
	return pending
}

// announce fires OnStateChange for each drained transition. Must be called
// without cb.mu held so the callback may use the breaker freely.
func (cb *CircuitBreaker) announce(pending []stateTransition) {
	if cb.config.OnStateChange == nil {
		return
	}
	for _, tr := range pending {
		cb.config.OnStateChange(cb.config.Name, tr.from, tr.to)
	}
}
