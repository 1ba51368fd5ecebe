package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Bigdaddy1990/pawkit/logger"
)

// StateChangeListener receives circuit breaker state change notifications.
// Listeners are notified asynchronously and must tolerate being called from
// multiple goroutines.
type StateChangeListener interface {
	OnStateChange(name string, from, to State)
}

// Manager owns a registry of named circuit breakers and composes breaker
// admission, retry, bulkhead, and rate limiting into a single call wrapper.
// Breakers are created lazily, exactly once per name, and live as long as
// the manager.
type Manager struct {
	mu        sync.RWMutex
	breakers  map[string]*CircuitBreaker
	listeners []StateChangeListener

	defaults CircuitBreakerConfig
	log      *logger.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger used for breaker lifecycle and call events.
func WithLogger(l *logger.Logger) ManagerOption {
	return func(m *Manager) { m.log = l }
}

// WithBreakerDefaults sets the config applied to lazily created breakers.
// The Name and OnStateChange fields are filled in per breaker.
func WithBreakerDefaults(cfg CircuitBreakerConfig) ManagerOption {
	return func(m *Manager) { m.defaults = cfg }
}

// WithStateChangeListener registers a listener for breaker state changes.
func WithStateChangeListener(l StateChangeListener) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.listeners = append(m.listeners, l)
		}
	}
}

// NewManager creates a new resilience manager.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		breakers: make(map[string]*CircuitBreaker),
		defaults: DefaultCircuitBreakerConfig(""),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = logger.WithComponent("resilience")
	}
	return m
}

// RegisterStateChangeListener registers a listener after construction.
func (m *Manager) RegisterStateChangeListener(l StateChangeListener) {
	if l == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// GetCircuitBreaker returns the breaker registered under name, creating it
// with the manager defaults on first use. Repeated calls with the same name
// return the same instance, even under concurrent first access.
func (m *Manager) GetCircuitBreaker(name string) *CircuitBreaker {
	m.mu.RLock()
	cb, ok := m.breakers[name]
	m.mu.RUnlock()
	if ok {
		return cb
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring the write lock
	if cb, ok = m.breakers[name]; ok {
		return cb
	}

	cb = m.newBreaker(name, m.defaults)
	m.breakers[name] = cb

	m.log.Info("created circuit breaker", logger.Fields(logger.FieldBreaker, name))
	return cb
}

// RegisterCircuitBreaker creates a breaker under name with an explicit
// config, or returns the existing one if the name is already registered.
func (m *Manager) RegisterCircuitBreaker(name string, cfg CircuitBreakerConfig) *CircuitBreaker {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cb, ok := m.breakers[name]; ok {
		return cb
	}

	cb := m.newBreaker(name, cfg)
	m.breakers[name] = cb

	m.log.Info("created circuit breaker", logger.Fields(logger.FieldBreaker, name))
	return cb
}

func (m *Manager) newBreaker(name string, cfg CircuitBreakerConfig) *CircuitBreaker {
	cfg.Name = name
	cfg.OnStateChange = m.handleStateChange
	return NewCircuitBreaker(cfg)
}

// AllStats returns a name to stats snapshot for every registered breaker,
// for health checks and telemetry exporters. Snapshots are taken after the
// registry lock is released so breaker bookkeeping never waits on it.
func (m *Manager) AllStats() map[string]Stats {
	m.mu.RLock()
	breakers := make(map[string]*CircuitBreaker, len(m.breakers))
	for name, cb := range m.breakers {
		breakers[name] = cb
	}
	m.mu.RUnlock()

	out := make(map[string]Stats, len(breakers))
	for name, cb := range breakers {
		out[name] = cb.Stats()
	}
	return out
}

// ResetCircuitBreaker resets the named breaker to closed and reports whether
// it existed. It never creates a breaker.
func (m *Manager) ResetCircuitBreaker(name string) bool {
	m.mu.RLock()
	cb, ok := m.breakers[name]
	m.mu.RUnlock()
	if !ok {
		return false
	}

	cb.Reset()
	m.log.Info("circuit breaker reset", logger.Fields(logger.FieldBreaker, name))
	return true
}

// ResetAll resets every registered breaker and returns the count reset.
func (m *Manager) ResetAll() int {
	m.mu.RLock()
	breakers := make([]*CircuitBreaker, 0, len(m.breakers))
	for _, cb := range m.breakers {
		breakers = append(breakers, cb)
	}
	m.mu.RUnlock()

	for _, cb := range breakers {
		cb.Reset()
	}

	m.log.Info("all circuit breakers reset", logger.Fields("count", len(breakers)))
	return len(breakers)
}

// executeOptions collects the per-call resilience policies.
type executeOptions struct {
	breakerName string
	retry       *RetryConfig
	bulkhead    *Bulkhead
	limiter     *RateLimiter
}

// ExecuteOption configures a single Execute call.
type ExecuteOption func(*executeOptions)

// WithBreaker routes the call through the named circuit breaker.
func WithBreaker(name string) ExecuteOption {
	return func(eo *executeOptions) { eo.breakerName = name }
}

// WithRetry retries the call according to cfg.
func WithRetry(cfg RetryConfig) ExecuteOption {
	return func(eo *executeOptions) { eo.retry = &cfg }
}

// WithBulkhead limits the call's concurrency through b.
func WithBulkhead(b *Bulkhead) ExecuteOption {
	return func(eo *executeOptions) { eo.bulkhead = b }
}

// WithRateLimiter throttles the call through rl.
func WithRateLimiter(rl *RateLimiter) ExecuteOption {
	return func(eo *executeOptions) { eo.limiter = rl }
}

// Execute invokes op under the configured resilience policies. The wrapping
// order is breaker outermost, then bulkhead, then rate limiter, so a tripped
// breaker fails fast before any slot or token is consumed. With WithRetry
// each attempt goes through the full chain; without it op runs exactly once.
//
// The terminal error is whichever policy stopped the call: ErrCircuitOpen or
// ErrTooManyCalls from the breaker, ErrBulkheadFull from the bulkhead,
// *RetryExhaustedError once retries run out, or the operation's own error
// when no policy intervened. Context cancellation propagates unchanged.
func (m *Manager) Execute(ctx context.Context, op func(context.Context) error, opts ...ExecuteOption) error {
	var eo executeOptions
	for _, opt := range opts {
		opt(&eo)
	}

	log := m.log.WithFields(map[string]interface{}{
		logger.FieldCallID: uuid.NewString(),
	})

	invoke := func() error { return op(ctx) }

	if eo.limiter != nil {
		inner := invoke
		invoke = func() error { return eo.limiter.ExecuteWait(ctx, inner) }
	}
	if eo.bulkhead != nil {
		inner := invoke
		invoke = func() error { return eo.bulkhead.Execute(ctx, inner) }
	}
	if eo.breakerName != "" {
		cb := m.GetCircuitBreaker(eo.breakerName)
		log = log.WithFields(map[string]interface{}{logger.FieldBreaker: eo.breakerName})
		inner := invoke
		invoke = func() error { return cb.Execute(inner) }
	}

	if eo.retry == nil {
		err := invoke()
		if err != nil {
			log.Debug("protected call failed", logger.Fields(logger.FieldError, err.Error()))
		}
		return err
	}

	retryCfg := *eo.retry
	if retryCfg.OnRetry == nil {
		retryCfg.OnRetry = func(attempt int, err error, backoff time.Duration) {
			log.Warn("attempt failed, backing off", logger.Fields(
				logger.FieldAttempt, attempt,
				logger.FieldDelay, backoff.String(),
				logger.FieldError, err.Error(),
			))
		}
	}

	err := RetryFunc(ctx, retryCfg, invoke)
	if err != nil {
		log.Error("protected call exhausted", logger.Fields(logger.FieldError, err.Error()))
	}
	return err
}

// Do invokes an operation returning a value through the manager's
// resilience policies.
func Do[T any](ctx context.Context, m *Manager, op func(context.Context) (T, error), opts ...ExecuteOption) (T, error) {
	var result T
	err := m.Execute(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = op(ctx)
		return opErr
	}, opts...)
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// handleStateChange logs breaker transitions and fans them out to the
// registered listeners. The breaker announces transitions outside its own
// lock; listeners are still notified in goroutines so a slow listener never
// delays the protected call path.
func (m *Manager) handleStateChange(name string, from, to State) {
	fields := logger.Fields(
		logger.FieldBreaker, name,
		"from", from.String(),
		"to", to.String(),
	)

	switch to {
	case StateOpen:
		m.log.Error("circuit breaker opened, calls will fail fast", fields)
	case StateHalfOpen:
		m.log.Info("circuit breaker half-open, probing recovery", fields)
	case StateClosed:
		m.log.Info("circuit breaker closed, dependency healthy", fields)
	}

	m.mu.RLock()
	listeners := make([]StateChangeListener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.RUnlock()

	for _, l := range listeners {
		go func(l StateChangeListener) {
			defer func() {
				if r := recover(); r != nil {
					m.log.Error("state change listener panicked", logger.Fields(
						logger.FieldBreaker, name, "panic", r,
					))
				}
			}()
			l.OnStateChange(name, from, to)
		}(l)
	}
}
