package config

import (
	"fmt"
	"time"

	"github.com/Bigdaddy1990/pawkit/logger"
	"github.com/Bigdaddy1990/pawkit/resilience"
	"github.com/Bigdaddy1990/pawkit/validation"
)

// BreakerSettings configures one circuit breaker profile.
type BreakerSettings struct {
	FailureThreshold int           `yaml:"failure_threshold" mapstructure:"failure_threshold" validate:"omitempty,gte=1"`
	SuccessThreshold int           `yaml:"success_threshold" mapstructure:"success_threshold" validate:"omitempty,gte=1"`
	Timeout          time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"omitempty,gte=0"`
	HalfOpenMaxCalls int           `yaml:"half_open_max_calls" mapstructure:"half_open_max_calls" validate:"omitempty,gte=1"`
}

// ToConfig converts the settings into a breaker config for name.
// Zero values fall back to the resilience defaults.
func (s BreakerSettings) ToConfig(name string) resilience.CircuitBreakerConfig {
	cfg := resilience.DefaultCircuitBreakerConfig(name)
	if s.FailureThreshold > 0 {
		cfg.FailureThreshold = s.FailureThreshold
	}
	if s.SuccessThreshold > 0 {
		cfg.SuccessThreshold = s.SuccessThreshold
	}
	if s.Timeout > 0 {
		cfg.Timeout = s.Timeout
	}
	if s.HalfOpenMaxCalls > 0 {
		cfg.HalfOpenMaxCalls = s.HalfOpenMaxCalls
	}
	return cfg
}

// RetrySettings configures the default retry policy.
type RetrySettings struct {
	MaxAttempts    int           `yaml:"max_attempts" mapstructure:"max_attempts" validate:"omitempty,gte=1"`
	InitialBackoff time.Duration `yaml:"initial_backoff" mapstructure:"initial_backoff" validate:"omitempty,gte=0"`
	MaxBackoff     time.Duration `yaml:"max_backoff" mapstructure:"max_backoff" validate:"omitempty,gte=0"`
	BackoffFactor  float64       `yaml:"backoff_factor" mapstructure:"backoff_factor" validate:"omitempty,gt=1"`
	Jitter         bool          `yaml:"jitter" mapstructure:"jitter"`
}

// ToConfig converts the settings into a retry config.
// Zero values fall back to the resilience defaults.
func (s RetrySettings) ToConfig() resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	if s.MaxAttempts > 0 {
		cfg.MaxAttempts = s.MaxAttempts
	}
	if s.InitialBackoff > 0 {
		cfg.InitialBackoff = s.InitialBackoff
	}
	if s.MaxBackoff > 0 {
		cfg.MaxBackoff = s.MaxBackoff
	}
	if s.BackoffFactor > 1 {
		cfg.BackoffFactor = s.BackoffFactor
	}
	cfg.Jitter = s.Jitter
	return cfg
}

// Settings is the root configuration for a pawkit-based subsystem.
type Settings struct {
	Name        string                     `yaml:"name" mapstructure:"name"`
	Environment string                     `yaml:"environment" mapstructure:"environment" validate:"omitempty,oneof=development staging production"`
	Logging     logger.Config              `yaml:"logging" mapstructure:"logging"`
	Defaults    BreakerSettings            `yaml:"defaults" mapstructure:"defaults"`
	Breakers    map[string]BreakerSettings `yaml:"breakers" mapstructure:"breakers"`
	Retry       RetrySettings              `yaml:"retry" mapstructure:"retry"`
}

// ApplyDefaults applies default values to the settings.
func (s *Settings) ApplyDefaults() {
	if s.Environment == "" {
		s.Environment = "development"
	}
	s.Logging.ApplyDefaults()
}

// Validate validates the settings.
func (s *Settings) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	if err := validation.Validate(s); err != nil {
		return err
	}
	for name, b := range s.Breakers {
		if err := validation.Validate(b); err != nil {
			return fmt.Errorf("config.breakers[%s]: %w", name, err)
		}
	}
	if err := s.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}

// LoadSettings loads, defaults, and validates settings for serviceName.
func LoadSettings(serviceName string, opts ...LoaderOption) (*Settings, error) {
	var s Settings
	if err := LoadConfig(serviceName, &s, opts...); err != nil {
		return nil, err
	}
	if s.Name == "" {
		s.Name = serviceName
	}
	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// NewManagerFromSettings builds a resilience manager from settings. Named
// breaker profiles are registered eagerly with their configured thresholds;
// unnamed breakers created later use the default profile.
func NewManagerFromSettings(s *Settings, opts ...resilience.ManagerOption) *resilience.Manager {
	opts = append([]resilience.ManagerOption{
		resilience.WithBreakerDefaults(s.Defaults.ToConfig("")),
	}, opts...)

	mgr := resilience.NewManager(opts...)
	for name, b := range s.Breakers {
		mgr.RegisterCircuitBreaker(name, b.ToConfig(name))
	}
	return mgr
}
