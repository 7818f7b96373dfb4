package operations

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of operation error
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeExecution    ErrorType = "execution"
	ErrorTypeCancellation ErrorType = "cancellation"
	ErrorTypeFatal        ErrorType = "fatal"
)

// OperationError represents a pipeline failure attributed to one stage
type OperationError struct {
	Type      ErrorType              `json:"type"`
	Step      string                 `json:"step,omitempty"`
	Message   string                 `json:"message"`
	Cause     error                  `json:"-"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Retryable bool                   `json:"retryable"`
}

// Error implements the error interface
func (e *OperationError) Error() string {
	if e == nil {
		return "unknown operation error"
	}
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Step != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Type, e.Step, msg)
	}
	return fmt.Sprintf("[%s] %s", e.Type, msg)
}

// Unwrap returns the underlying error
func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewValidationError creates a new validation error
func NewValidationError(step, message string) *OperationError {
	return &OperationError{
		Type:    ErrorTypeValidation,
		Step:    step,
		Message: message,
	}
}

// NewExecutionError creates a new execution error. Data-quality failures are
// deterministic, so callers pass retryable=false for them.
func NewExecutionError(step string, cause error, retryable bool) *OperationError {
	return &OperationError{
		Type:      ErrorTypeExecution,
		Step:      step,
		Message:   "stage execution failed",
		Cause:     cause,
		Retryable: retryable,
	}
}

// NewCancellationError creates a new cancellation error
func NewCancellationError(step string, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeCancellation,
		Step:    step,
		Message: "run was cancelled",
		Cause:   cause,
	}
}

// NewFatalError creates a new fatal error
func NewFatalError(message string, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeFatal,
		Message: message,
		Cause:   cause,
	}
}

// WithContext adds a context entry and returns the error
func (e *OperationError) WithContext(key string, value interface{}) *OperationError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Retryable
	}
	return false
}

// GetErrorType returns the type of the error
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ""
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Type
	}
	return ErrorTypeExecution
}

// FailedStep returns the stage an error is attributed to, or "".
func FailedStep(err error) string {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Step
	}
	return ""
}
