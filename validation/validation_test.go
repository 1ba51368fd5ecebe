package validation

import (
	"strings"
	"testing"

	"github.com/Bigdaddy1990/pawkit/errors"
)

func TestValidator_NoErrors(t *testing.T) {
	v := New().
		Required("name", "api").
		Min("threshold", 5, 1).
		Range("attempts", 3, 1, 10)

	if v.HasErrors() {
		t.Errorf("expected no errors, got %v", v.Errors())
	}
	if err := v.Validate(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestValidator_Required(t *testing.T) {
	v := New().Required("name", "  ")
	if !v.HasErrors() {
		t.Error("expected an error for blank value")
	}
}

func TestValidator_MinMaxRange(t *testing.T) {
	v := New().
		Min("a", 0, 1).
		Max("b", 11, 10).
		Range("c", 15, 1, 10)

	if len(v.Errors()) != 3 {
		t.Errorf("expected 3 errors, got %v", v.Errors())
	}
}

func TestValidator_OneOf(t *testing.T) {
	v := New().OneOf("format", "xml", []string{"json", "console"})
	if !v.HasErrors() {
		t.Error("expected an error for disallowed value")
	}

	// Empty values are left to Required.
	v = New().OneOf("format", "", []string{"json", "console"})
	if v.HasErrors() {
		t.Errorf("expected empty value to pass, got %v", v.Errors())
	}
}

func TestValidator_Custom(t *testing.T) {
	v := New().Custom(false, "timeout", "must be shorter than the deadline")
	if !v.HasErrors() {
		t.Error("expected an error from failed condition")
	}
	if v.Errors()[0].Message != "must be shorter than the deadline" {
		t.Errorf("unexpected message %q", v.Errors()[0].Message)
	}
}

func TestValidator_RequiredUUID(t *testing.T) {
	cases := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"valid", "3b8a5f64-5717-4562-b3fc-2c963f66afa6", false},
		{"blank", "", true},
		{"malformed", "not-a-uuid", true},
		{"nil uuid", "00000000-0000-0000-0000-000000000000", true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v := New().RequiredUUID("id", c.value)
			if v.HasErrors() != c.wantErr {
				t.Errorf("value %q: expected error=%v, got %v", c.value, c.wantErr, v.Errors())
			}
		})
	}
}

func TestValidator_ValidateProducesAppError(t *testing.T) {
	err := New().
		Required("name", "").
		Min("threshold", 0, 1).
		Validate()

	if err == nil {
		t.Fatal("expected an error")
	}
	if err.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", err.Code)
	}
	if !strings.Contains(err.Message, "name: is required") {
		t.Errorf("expected joined messages, got %q", err.Message)
	}

	fields, ok := err.Details["fields"].([]FieldError)
	if !ok || len(fields) != 2 {
		t.Errorf("expected 2 field errors in details, got %v", err.Details["fields"])
	}
}

func TestRequired(t *testing.T) {
	if err := Required("name", "ok"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := Required("name", ""); err == nil {
		t.Error("expected an error for empty value")
	}
}

type breakerSettings struct {
	FailureThreshold int    `mapstructure:"failure_threshold" validate:"required,gte=1"`
	Timeout          int    `mapstructure:"timeout_seconds" validate:"omitempty,gte=1"`
	Mode             string `mapstructure:"mode" validate:"omitempty,oneof=strict lenient"`
}

func TestValidate_Struct(t *testing.T) {
	ok := breakerSettings{FailureThreshold: 5, Timeout: 30, Mode: "strict"}
	if err := Validate(ok); err != nil {
		t.Errorf("expected valid struct, got %v", err)
	}
}

func TestValidate_StructErrorsUseTagNames(t *testing.T) {
	err := Validate(breakerSettings{Mode: "fancy"})
	if err == nil {
		t.Fatal("expected an error")
	}

	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	if !strings.Contains(appErr.Message, "failure_threshold: is required") {
		t.Errorf("expected mapstructure names in the message, got %q", appErr.Message)
	}
	if !strings.Contains(appErr.Message, "mode: must be one of: strict lenient") {
		t.Errorf("expected oneof message, got %q", appErr.Message)
	}
}

func TestToSnakeCase(t *testing.T) {
	cases := map[string]string{
		"FailureThreshold": "failure_threshold",
		"Timeout":          "timeout",
		"name":             "name",
	}
	for in, want := range cases {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
