package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Resilience errors
const (
	// ErrCodeCircuitOpen indicates a circuit breaker refused admission.
	ErrCodeCircuitOpen ErrorCode = "CIRCUIT_OPEN"
	// ErrCodeProbeLimit indicates a half-open breaker is at its concurrent
	// probe limit.
	ErrCodeProbeLimit ErrorCode = "PROBE_LIMIT"
	// ErrCodeRetryExhausted indicates every retry attempt failed.
	ErrCodeRetryExhausted ErrorCode = "RETRY_EXHAUSTED"
	// ErrCodeBulkheadFull indicates the concurrency limit was reached.
	ErrCodeBulkheadFull ErrorCode = "BULKHEAD_FULL"
	// ErrCodeRateLimited indicates the caller is rate limited.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
)

// Connection/Availability errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates the dependency is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates the call timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Resource and internal errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeCircuitOpen:        true,
	ErrCodeProbeLimit:         true,
	ErrCodeRetryExhausted:     false,
	ErrCodeBulkheadFull:       true,
	ErrCodeRateLimited:        true,
	ErrCodeServiceUnavailable: true,
	ErrCodeTimeout:            true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
