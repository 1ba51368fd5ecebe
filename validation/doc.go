// Package validation provides input validation utilities for pawkit.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Struct tag validation is
// used for configuration types.
//
// # Struct Tag Validation
//
//	type RetrySettings struct {
//	    MaxAttempts int `validate:"gte=1"`
//	}
//	err := validation.Validate(settings)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Required("name", name).Min("max_attempts", attempts, 1)
//	err := v.Validate()
package validation
