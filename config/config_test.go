package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Bigdaddy1990/pawkit/resilience"
)

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool  { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }

func TestEnvKeyVariants(t *testing.T) {
	variants := envKeyVariants("RETRY_MAX_ATTEMPTS")

	want := map[string]bool{
		"retry_max_attempts": true,
		"retry.max.attempts": true,
		"retry.max_attempts": true,
	}
	for v := range want {
		found := false
		for _, got := range variants {
			if got == v {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected variant %q in %v", v, variants)
		}
	}
}

func TestEnvKeyVariantsSingleWord(t *testing.T) {
	variants := envKeyVariants("NAME")
	if len(variants) != 1 || variants[0] != "name" {
		t.Errorf("expected [name], got %v", variants)
	}
}

func TestFindFirst(t *testing.T) {
	fs := &mockFS{files: map[string]bool{"./config.yml": true}}

	got := findFirst(fs, []string{"./config/app.yml", "./config.yml"})
	if got != "./config.yml" {
		t.Errorf("expected ./config.yml, got %q", got)
	}

	if got := findFirst(fs, []string{"./missing.yml"}); got != "" {
		t.Errorf("expected empty path, got %q", got)
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	yaml := `
name: tracker
environment: production
defaults:
  failure_threshold: 4
  timeout: 30s
breakers:
  device-api:
    failure_threshold: 2
    success_threshold: 3
retry:
  max_attempts: 5
  initial_backoff: 250ms
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	var s Settings
	if err := LoadConfig("tracker", &s, WithConfigFile(path)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if s.Name != "tracker" {
		t.Errorf("expected name tracker, got %q", s.Name)
	}
	if s.Defaults.FailureThreshold != 4 {
		t.Errorf("expected default threshold 4, got %d", s.Defaults.FailureThreshold)
	}
	if s.Defaults.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", s.Defaults.Timeout)
	}
	if s.Breakers["device-api"].SuccessThreshold != 3 {
		t.Errorf("expected success threshold 3, got %d", s.Breakers["device-api"].SuccessThreshold)
	}
	if s.Retry.MaxAttempts != 5 {
		t.Errorf("expected 5 attempts, got %d", s.Retry.MaxAttempts)
	}
	if s.Retry.InitialBackoff != 250*time.Millisecond {
		t.Errorf("expected 250ms backoff, got %v", s.Retry.InitialBackoff)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	os.Setenv("RETRY_MAX_ATTEMPTS", "7")
	defer os.Unsetenv("RETRY_MAX_ATTEMPTS")

	var s Settings
	if err := LoadConfig("svc", &s, WithFileSystem(&mockFS{})); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if s.Retry.MaxAttempts != 7 {
		t.Errorf("expected env override of 7, got %d", s.Retry.MaxAttempts)
	}
}

func TestLoadSettingsAppliesDefaultsAndValidates(t *testing.T) {
	s, err := LoadSettings("walker", WithFileSystem(&mockFS{}))
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if s.Name != "walker" {
		t.Errorf("expected service name fallback, got %q", s.Name)
	}
	if s.Environment != "development" {
		t.Errorf("expected development default, got %q", s.Environment)
	}
	if s.Logging.Level != "info" {
		t.Errorf("expected info default, got %q", s.Logging.Level)
	}
}

func TestSettingsValidateRejectsBadEnvironment(t *testing.T) {
	s := Settings{Name: "svc", Environment: "qa"}
	s.Logging.ApplyDefaults()

	if err := s.Validate(); err == nil {
		t.Error("expected an error for unknown environment")
	}
}

func TestSettingsValidateRejectsBadBreaker(t *testing.T) {
	s := Settings{
		Name:        "svc",
		Environment: "development",
		Breakers: map[string]BreakerSettings{
			"bad": {FailureThreshold: -1},
		},
	}
	s.Logging.ApplyDefaults()

	if err := s.Validate(); err == nil {
		t.Error("expected an error for negative threshold")
	}
}

func TestBreakerSettingsToConfig(t *testing.T) {
	cfg := BreakerSettings{
		FailureThreshold: 2,
		Timeout:          5 * time.Second,
	}.ToConfig("api")

	if cfg.Name != "api" {
		t.Errorf("expected name api, got %q", cfg.Name)
	}
	if cfg.FailureThreshold != 2 {
		t.Errorf("expected threshold 2, got %d", cfg.FailureThreshold)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("expected 5s, got %v", cfg.Timeout)
	}
	// Unset values fall back to the defaults.
	if cfg.SuccessThreshold != 2 {
		t.Errorf("expected default success threshold, got %d", cfg.SuccessThreshold)
	}
	if cfg.HalfOpenMaxCalls != 1 {
		t.Errorf("expected default probe cap, got %d", cfg.HalfOpenMaxCalls)
	}
}

func TestRetrySettingsToConfig(t *testing.T) {
	cfg := RetrySettings{
		MaxAttempts:   6,
		BackoffFactor: 3,
		Jitter:        true,
	}.ToConfig()

	if cfg.MaxAttempts != 6 {
		t.Errorf("expected 6 attempts, got %d", cfg.MaxAttempts)
	}
	if cfg.BackoffFactor != 3 {
		t.Errorf("expected factor 3, got %f", cfg.BackoffFactor)
	}
	if cfg.InitialBackoff != 100*time.Millisecond {
		t.Errorf("expected default initial backoff, got %v", cfg.InitialBackoff)
	}
	if !cfg.Jitter {
		t.Error("expected jitter enabled")
	}
}

func TestNewManagerFromSettings(t *testing.T) {
	s := &Settings{
		Name: "svc",
		Defaults: BreakerSettings{
			FailureThreshold: 1,
			Timeout:          time.Minute,
		},
		Breakers: map[string]BreakerSettings{
			"device-api": {FailureThreshold: 2},
		},
	}

	mgr := NewManagerFromSettings(s)

	stats := mgr.AllStats()
	if _, ok := stats["device-api"]; !ok {
		t.Fatal("expected device-api registered eagerly")
	}

	// The named profile carries its own threshold.
	cb := mgr.GetCircuitBreaker("device-api")
	_ = cb.Execute(func() error { return errTest })
	if cb.State() != resilience.StateClosed {
		t.Errorf("expected StateClosed after one failure with threshold 2, got %s", cb.State())
	}

	// Lazily created breakers use the defaults.
	lazy := mgr.GetCircuitBreaker("other")
	_ = lazy.Execute(func() error { return errTest })
	if lazy.State() != resilience.StateOpen {
		t.Errorf("expected StateOpen after one failure with threshold 1, got %s", lazy.State())
	}
}

var errTest = errors.New("test failure")
