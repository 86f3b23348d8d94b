package domain

import (
	"errors"
	"fmt"
)

// Error codes for configuration loading failures. All of these are fatal to
// the config they occur in: the load aborts and no rules from that document
// are applied. Unmet rule obligations are not errors; they surface as a
// CheckFailure verdict instead.
const (
	ErrParse                 = "PARSE_ERROR"
	ErrNoChecksDefined       = "NO_CHECKS_DEFINED"
	ErrMissingName           = "MISSING_NAME"
	ErrMissingTrigger        = "MISSING_TRIGGER"
	ErrMissingObligation     = "MISSING_OBLIGATION"
	ErrConflictingObligation = "CONFLICTING_OBLIGATION"
	ErrPresetNotFound        = "PRESET_NOT_FOUND"
)

// PolicyError is a configuration error with a machine-readable code and
// optional structured details.
type PolicyError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

// Error implements the error interface.
func (e *PolicyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error wrapping.
func (e *PolicyError) Unwrap() error {
	return e.Cause
}

// NewPolicyError creates a PolicyError with the given code and message.
func NewPolicyError(code, message string, details map[string]any) *PolicyError {
	return &PolicyError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewPolicyErrorWithCause creates a PolicyError wrapping an underlying error.
func NewPolicyErrorWithCause(code, message string, cause error, details map[string]any) *PolicyError {
	return &PolicyError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// NewPresetNotFound reports a preset name that resolved neither to a
// document in the override directory nor to a built-in. The expected
// override path is carried in the message and details for diagnosability.
func NewPresetNotFound(name, expectedPath string) *PolicyError {
	return &PolicyError{
		Code:    ErrPresetNotFound,
		Message: fmt.Sprintf("preset %q not found: expected a document at %s or a built-in of that name", name, expectedPath),
		Details: map[string]any{
			"preset":        name,
			"expected_path": expectedPath,
		},
	}
}

// HasCode reports whether err is (or wraps) a PolicyError with the code.
func HasCode(err error, code string) bool {
	var pe *PolicyError
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}
