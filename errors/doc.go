// Package errors provides unified structured errors for pawkit with
// machine-readable codes, HTTP status mapping, and retryable detection.
package errors
