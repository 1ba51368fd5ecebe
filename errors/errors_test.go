package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	err := New(ErrCodeTimeout, "call timed out", http.StatusGatewayTimeout)
	if got := err.Error(); got != "TIMEOUT: call timed out" {
		t.Errorf("unexpected error string %q", got)
	}
}

func TestAppError_ErrorIncludesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := New(ErrCodeServiceUnavailable, "upstream down", http.StatusServiceUnavailable).WithCause(cause)

	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("expected cause in error string, got %q", err.Error())
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := stderrors.New("root cause")
	err := Internal(cause)

	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to reach the cause")
	}
}

func TestAppError_WithDetail(t *testing.T) {
	err := Validation("bad value").WithDetail("field", "timeout").WithDetail("max", 60)

	if err.Details["field"] != "timeout" {
		t.Errorf("expected field detail, got %v", err.Details["field"])
	}
	if err.Details["max"] != 60 {
		t.Errorf("expected max detail, got %v", err.Details["max"])
	}
}

func TestNew_SetsRetryableFromCode(t *testing.T) {
	if !New(ErrCodeCircuitOpen, "open", http.StatusServiceUnavailable).Retryable {
		t.Error("circuit open should be retryable")
	}
	if New(ErrCodeNotFound, "missing", http.StatusNotFound).Retryable {
		t.Error("not found should not be retryable")
	}
}

func TestConstructors(t *testing.T) {
	cases := []struct {
		name      string
		err       *AppError
		code      ErrorCode
		status    int
		retryable bool
	}{
		{"CircuitOpen", CircuitOpen("api"), ErrCodeCircuitOpen, http.StatusServiceUnavailable, true},
		{"ProbeLimit", ProbeLimit("api"), ErrCodeProbeLimit, http.StatusServiceUnavailable, true},
		{"RetryExhausted", RetryExhausted(3, stderrors.New("x")), ErrCodeRetryExhausted, http.StatusBadGateway, false},
		{"BulkheadFull", BulkheadFull("db"), ErrCodeBulkheadFull, http.StatusTooManyRequests, true},
		{"RateLimited", RateLimited(), ErrCodeRateLimited, http.StatusTooManyRequests, true},
		{"ServiceUnavailable", ServiceUnavailable("db"), ErrCodeServiceUnavailable, http.StatusServiceUnavailable, true},
		{"Timeout", Timeout("fetch"), ErrCodeTimeout, http.StatusGatewayTimeout, true},
		{"NotFound", NotFound("walk", "w-1"), ErrCodeNotFound, http.StatusNotFound, false},
		{"InvalidInput", InvalidInput("name", "empty"), ErrCodeInvalidInput, http.StatusBadRequest, false},
		{"MissingField", MissingField("name"), ErrCodeMissingField, http.StatusBadRequest, false},
		{"Internal", Internal(stderrors.New("x")), ErrCodeInternal, http.StatusInternalServerError, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if c.err.Code != c.code {
				t.Errorf("expected code %s, got %s", c.code, c.err.Code)
			}
			if c.err.HTTPStatus != c.status {
				t.Errorf("expected status %d, got %d", c.status, c.err.HTTPStatus)
			}
			if c.err.Retryable != c.retryable {
				t.Errorf("expected retryable=%v", c.retryable)
			}
			if c.err.Message == "" {
				t.Error("expected a message")
			}
		})
	}
}

func TestCircuitOpen_CarriesBreakerDetail(t *testing.T) {
	err := CircuitOpen("gps-tracker")
	if err.Details["breaker"] != "gps-tracker" {
		t.Errorf("expected breaker detail, got %v", err.Details["breaker"])
	}
}

func TestRetryExhausted_CarriesAttemptsAndCause(t *testing.T) {
	cause := stderrors.New("still down")
	err := RetryExhausted(5, cause)

	if err.Details["attempts"] != 5 {
		t.Errorf("expected attempts detail, got %v", err.Details["attempts"])
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected cause to be reachable via errors.Is")
	}
}

func TestIsRetryableCode(t *testing.T) {
	if !IsRetryableCode(ErrCodeRateLimited) {
		t.Error("rate limited should be retryable")
	}
	if IsRetryableCode(ErrCodeRetryExhausted) {
		t.Error("retry exhausted should not be retryable")
	}
	if IsRetryableCode(ErrorCode("UNKNOWN")) {
		t.Error("unknown codes should not be retryable")
	}
}

func TestToResponse(t *testing.T) {
	resp := NotFound("dog", "rex").ToResponse()

	if resp.Error.Code != ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", resp.Error.Code)
	}
	if resp.Error.Retryable {
		t.Error("expected retryable=false")
	}
	if resp.Error.Details["resource"] != "dog" {
		t.Errorf("expected resource detail, got %v", resp.Error.Details["resource"])
	}
}

func TestResponseFor(t *testing.T) {
	status, resp := ResponseFor(CircuitOpen("api"))
	if status != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", status)
	}
	if resp.Error.Code != ErrCodeCircuitOpen {
		t.Errorf("expected CIRCUIT_OPEN, got %s", resp.Error.Code)
	}
	if !resp.Error.Retryable {
		t.Error("expected a retryable body for an open breaker")
	}

	status, resp = ResponseFor(fmt.Errorf("wrap: %w", RateLimited()))
	if status != http.StatusTooManyRequests {
		t.Errorf("expected wrapped AppError status, got %d", status)
	}
	if resp.Error.Code != ErrCodeRateLimited {
		t.Errorf("expected RATE_LIMITED, got %s", resp.Error.Code)
	}
}

func TestResponseFor_UnclassifiedError(t *testing.T) {
	status, resp := ResponseFor(stderrors.New("disk exploded"))
	if status != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", status)
	}
	if resp.Error.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", resp.Error.Code)
	}
	if strings.Contains(resp.Error.Message, "disk exploded") {
		t.Error("unclassified error text must not reach the client")
	}
}

func TestIsAppError(t *testing.T) {
	if !IsAppError(RateLimited()) {
		t.Error("expected AppError to be recognized")
	}
	if IsAppError(stderrors.New("plain")) {
		t.Error("plain error must not be recognized")
	}

	wrapped := fmt.Errorf("context: %w", Timeout("op"))
	if !IsAppError(wrapped) {
		t.Error("expected wrapped AppError to be recognized")
	}
}

func TestAsAppError(t *testing.T) {
	appErr, ok := AsAppError(fmt.Errorf("wrap: %w", BulkheadFull("db")))
	if !ok {
		t.Fatal("expected AppError")
	}
	if appErr.Code != ErrCodeBulkheadFull {
		t.Errorf("expected BULKHEAD_FULL, got %s", appErr.Code)
	}

	if _, ok := AsAppError(stderrors.New("plain")); ok {
		t.Error("plain error must not convert")
	}
}
