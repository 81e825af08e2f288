// Package errors provides centralized error definitions and error handling
// utilities for the maestro pipeline. It defines domain-specific errors,
// semantic error types, error constructors with context wrapping, and error
// classification helpers.
//
// # Error Types
//
// The package provides two categories of errors:
//
// Domain-specific errors represent failures in specific pipeline stages:
//   - AnalyzerError: an analyzer could not produce suggestions
//   - SynthesisError: the oracle produced an absent, malformed, or invalid plan
//   - ExecutionError: the executor could not produce a candidate artifact
//   - ScoringError: the scorer could not evaluate a candidate artifact
//
// Semantic errors represent common error conditions:
//   - ValidationError: invalid input at a component boundary
//   - NotFoundError: resource not found
//   - TimeoutError: operation timed out
//
// # Usage
//
// Creating errors:
//
//	err := errors.NewSynthesisError("oracle returned no plan", errors.ErrOracleEmptyResponse)
//	err = err.WithAttempt(1)
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrStructuralDefect) { ... }
//
//	var synthErr *errors.SynthesisError
//	if errors.As(err, &synthErr) { ... }
//
// # Error Classification
//
// Errors can be classified by severity and behavior:
//   - Retryable: transient errors that may succeed on retry
//   - UserFacing: errors safe to display to users (vs internal errors)
//   - Severity: Debug, Info, Warning, Error, Critical
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Input-related sentinel errors
var (
	// ErrInvalidInput indicates a malformed Suggestion or Plan at a component
	// boundary. It is a precondition violation from an upstream collaborator
	// and must never be silently absorbed.
	ErrInvalidInput = New("invalid input")
	// ErrDuplicateSuggestionID indicates two suggestions in one set share an ID.
	ErrDuplicateSuggestionID = New("duplicate suggestion id")
	// ErrUnknownSeverity indicates a suggestion carries an unrecognized severity.
	ErrUnknownSeverity = New("unknown severity")
)

// Oracle-related sentinel errors
var (
	// ErrOracleEmptyResponse indicates the oracle returned no usable content.
	ErrOracleEmptyResponse = New("oracle returned empty response")
	// ErrOracleMalformedResponse indicates the oracle response could not be parsed.
	ErrOracleMalformedResponse = New("oracle response is malformed")
	// ErrPlanInvalid indicates an oracle plan failed structural validation.
	ErrPlanInvalid = New("plan failed structural validation")
)

// Scoring-related sentinel errors
var (
	// ErrStructuralDefect indicates the candidate artifact failed the basic
	// structural-validity precondition inside scoring. This is distinguished
	// from an ordinary low-score failure so the control loop can construct
	// defect-specific retry feedback.
	ErrStructuralDefect = New("candidate artifact has a structural defect")
	// ErrMetricUnavailable indicates a metric collector could not measure.
	ErrMetricUnavailable = New("metric unavailable")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// MaestroError is the base interface for all maestro errors.
// It extends the standard error interface with additional methods for
// error handling and classification.
type MaestroError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and the operation
	// may succeed on retry.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Unwrap() error {
	return e.cause
}

func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

func (e *baseError) Severity() Severity {
	return e.severity
}

func (e *baseError) IsRetryable() bool {
	return e.retryable
}

func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// AnalyzerError represents a hard failure of an analyzer. It is distinguished
// from a confirmed-empty analyzer result, which is not an error at all.
//
// Example:
//
//	err := errors.NewAnalyzerError("analysis request failed", cause).WithDimension("security")
type AnalyzerError struct {
	baseError
	Dimension string
}

// NewAnalyzerError creates a new AnalyzerError.
func NewAnalyzerError(message string, cause error) *AnalyzerError {
	return &AnalyzerError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityWarning,
			retryable:  true,
			userFacing: true,
		},
	}
}

// WithDimension adds the analyzer's dimension tag to the error context.
func (e *AnalyzerError) WithDimension(dim string) *AnalyzerError {
	e.Dimension = dim
	return e
}

// Error returns the formatted error message.
func (e *AnalyzerError) Error() string {
	prefix := "analyzer error"
	if e.Dimension != "" {
		prefix = fmt.Sprintf("analyzer error [dimension=%s]", e.Dimension)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *AnalyzerError) Is(target error) bool {
	if _, ok := target.(*AnalyzerError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// SynthesisError represents a failed synthesis attempt: the oracle response
// was absent, malformed, or failed structural validation against the plan
// model. It terminates the current attempt without consuming the retry budget.
//
// Example:
//
//	err := errors.NewSynthesisError("plan rejected", errors.ErrPlanInvalid).WithAttempt(0)
type SynthesisError struct {
	baseError
	Attempt int
	PlanID  string
}

// NewSynthesisError creates a new SynthesisError.
func NewSynthesisError(message string, cause error) *SynthesisError {
	return &SynthesisError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
		Attempt: -1, // -1 indicates not set
	}
}

// WithAttempt adds the attempt number to the error context.
func (e *SynthesisError) WithAttempt(attempt int) *SynthesisError {
	e.Attempt = attempt
	return e
}

// WithPlanID adds the rejected plan's ID to the error context.
func (e *SynthesisError) WithPlanID(id string) *SynthesisError {
	e.PlanID = id
	return e
}

// Error returns the formatted error message.
func (e *SynthesisError) Error() string {
	var parts []string
	if e.Attempt >= 0 {
		parts = append(parts, fmt.Sprintf("attempt=%d", e.Attempt))
	}
	if e.PlanID != "" {
		parts = append(parts, fmt.Sprintf("plan=%s", e.PlanID))
	}

	prefix := "synthesis error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("synthesis error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *SynthesisError) Is(target error) bool {
	if _, ok := target.(*SynthesisError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ExecutionError represents an executor failure: no candidate artifact could
// be produced from the plan. It terminates the current attempt without
// consuming the retry budget.
type ExecutionError struct {
	baseError
	PlanID string
}

// NewExecutionError creates a new ExecutionError.
func NewExecutionError(message string, cause error) *ExecutionError {
	return &ExecutionError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithPlanID adds the plan's ID to the error context.
func (e *ExecutionError) WithPlanID(id string) *ExecutionError {
	e.PlanID = id
	return e
}

// Error returns the formatted error message.
func (e *ExecutionError) Error() string {
	prefix := "execution error"
	if e.PlanID != "" {
		prefix = fmt.Sprintf("execution error [plan=%s]", e.PlanID)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ExecutionError) Is(target error) bool {
	if _, ok := target.(*ExecutionError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ScoringError represents a failure inside the quality scorer, such as a
// metric collector that could not measure the candidate artifact.
type ScoringError struct {
	baseError
	Dimension string
}

// NewScoringError creates a new ScoringError.
func NewScoringError(message string, cause error) *ScoringError {
	return &ScoringError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithDimension adds the metric dimension to the error context.
func (e *ScoringError) WithDimension(dim string) *ScoringError {
	e.Dimension = dim
	return e
}

// Error returns the formatted error message.
func (e *ScoringError) Error() string {
	prefix := "scoring error"
	if e.Dimension != "" {
		prefix = fmt.Sprintf("scoring error [dimension=%s]", e.Dimension)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ScoringError) Is(target error) bool {
	if _, ok := target.(*ScoringError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// ValidationError represents invalid input or state at a component boundary.
//
// Example:
//
//	err := errors.NewValidationError("suggestion id cannot be empty")
//	err = err.WithField("id").WithValue("")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// NotFoundError represents a resource that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("artifact", "pkg/util.go")
//	fmt.Println(err) // "artifact 'pkg/util.go' not found"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' not found", resourceType, resourceID),
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds a cause to the error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s '%s' not found: %v", e.ResourceType, e.ResourceID, e.cause)
	}
	return fmt.Sprintf("%s '%s' not found", e.ResourceType, e.ResourceID)
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// TimeoutError represents an operation that timed out.
//
// Example:
//
//	err := errors.NewTimeoutError("waiting for oracle response", 180*time.Second)
type TimeoutError struct {
	baseError
	Operation string
	Duration  time.Duration
}

// NewTimeoutError creates a new TimeoutError.
func NewTimeoutError(operation string, duration time.Duration) *TimeoutError {
	return &TimeoutError{
		baseError: baseError{
			message:    operation,
			severity:   SeverityWarning,
			retryable:  true, // Timeouts are generally retryable
			userFacing: true,
		},
		Operation: operation,
		Duration:  duration,
	}
}

// WithCause adds a cause to the error.
func (e *TimeoutError) WithCause(cause error) *TimeoutError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *TimeoutError) Error() string {
	base := fmt.Sprintf("timeout error: %s (timeout: %s)", e.Operation, e.Duration)
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", base, e.cause)
	}
	return base
}

// Is checks if this error matches the target.
func (e *TimeoutError) Is(target error) bool {
	if _, ok := target.(*TimeoutError); ok {
		return true
	}
	if errors.Is(target, ErrTimeout) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry. Note that the control loop's retry budget is
// reserved for scoring failures; this classification exists for callers
// that wrap the pipeline in their own retry policies.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var merr MaestroError
	if As(err, &merr) {
		return merr.IsRetryable()
	}

	if Is(err, ErrTimeout) {
		return true
	}

	return false
}

// IsUserFacing returns true if the error message is safe to display to end users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var merr MaestroError
	if As(err, &merr) {
		return merr.IsUserFacing()
	}

	var notFound *NotFoundError
	var validation *ValidationError
	var timeout *TimeoutError

	return As(err, &notFound) || As(err, &validation) || As(err, &timeout)
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement MaestroError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var merr MaestroError
	if As(err, &merr) {
		return merr.Severity()
	}

	return SeverityError
}

// IsDomainError returns true if the error is a domain-specific error
// (AnalyzerError, SynthesisError, ExecutionError, or ScoringError).
func IsDomainError(err error) bool {
	if err == nil {
		return false
	}

	var analyzerErr *AnalyzerError
	var synthErr *SynthesisError
	var execErr *ExecutionError
	var scoreErr *ScoringError

	return As(err, &analyzerErr) || As(err, &synthErr) ||
		As(err, &execErr) || As(err, &scoreErr)
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
