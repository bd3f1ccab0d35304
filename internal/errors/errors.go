package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCategory represents different categories of errors for better handling
type ErrorCategory string

const (
	ErrorCategoryBuild         ErrorCategory = "build"
	ErrorCategoryRegistry      ErrorCategory = "registry"
	ErrorCategoryAuth          ErrorCategory = "auth"
	ErrorCategoryFilesystem    ErrorCategory = "filesystem"
	ErrorCategoryValidation    ErrorCategory = "validation"
	ErrorCategoryPermission    ErrorCategory = "permission"
	ErrorCategoryConfiguration ErrorCategory = "configuration"
	ErrorCategoryLayer         ErrorCategory = "layer"
	ErrorCategoryExecutor      ErrorCategory = "executor"
	ErrorCategoryUnknown       ErrorCategory = "unknown"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	ErrorSeverityLow      ErrorSeverity = "low"
	ErrorSeverityMedium   ErrorSeverity = "medium"
	ErrorSeverityHigh     ErrorSeverity = "high"
	ErrorSeverityCritical ErrorSeverity = "critical"
)

// Sentinel error kinds. BuildErrors created by the domain constructors below
// carry one of these as their cause, so callers can match with errors.Is.
var (
	ErrInvalidRuntime          = stderrors.New("invalid runtime")
	ErrNoRuntimesRequested     = stderrors.New("no runtimes requested")
	ErrMissingPermissionTarget = stderrors.New("missing permission target")
	ErrNoRegion                = stderrors.New("no region")
)

// BuildError represents a categorised error with a user-facing suggestion
type BuildError struct {
	Category   ErrorCategory          `json:"category"`
	Severity   ErrorSeverity          `json:"severity"`
	Code       string                 `json:"code,omitempty"`
	Message    string                 `json:"message"`
	Cause      error                  `json:"-"`
	Operation  string                 `json:"operation,omitempty"`
	Runtime    string                 `json:"runtime,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
	Suggestion string                 `json:"suggestion,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// Error implements the error interface
func (e *BuildError) Error() string {
	if e.Operation != "" && e.Runtime != "" {
		return fmt.Sprintf("[%s:%s] %s (runtime %s): %s",
			e.Category, e.Severity, e.Operation, e.Runtime, e.Message)
	} else if e.Operation != "" {
		return fmt.Sprintf("[%s:%s] %s operation: %s",
			e.Category, e.Severity, e.Operation, e.Message)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Severity, e.Message)
}

// Unwrap returns the underlying error
func (e *BuildError) Unwrap() error {
	return e.Cause
}

// GetUserFriendlyMessage returns a user-friendly error message with suggestions
func (e *BuildError) GetUserFriendlyMessage() string {
	msg := e.Message
	if e.Suggestion != "" {
		msg += "\n\nSuggestion: " + e.Suggestion
	}
	return msg
}

// ErrorBuilder helps construct BuildError instances with proper categorization
type ErrorBuilder struct {
	category   ErrorCategory
	severity   ErrorSeverity
	code       string
	message    string
	cause      error
	operation  string
	runtime    string
	suggestion string
	metadata   map[string]interface{}
}

// NewErrorBuilder creates a new error builder
func NewErrorBuilder() *ErrorBuilder {
	return &ErrorBuilder{
		metadata: make(map[string]interface{}),
	}
}

// Category sets the error category
func (b *ErrorBuilder) Category(category ErrorCategory) *ErrorBuilder {
	b.category = category
	return b
}

// Severity sets the error severity
func (b *ErrorBuilder) Severity(severity ErrorSeverity) *ErrorBuilder {
	b.severity = severity
	return b
}

// Code sets the error code
func (b *ErrorBuilder) Code(code string) *ErrorBuilder {
	b.code = code
	return b
}

// Message sets the error message
func (b *ErrorBuilder) Message(message string) *ErrorBuilder {
	b.message = message
	return b
}

// Messagef sets the error message with formatting
func (b *ErrorBuilder) Messagef(format string, args ...interface{}) *ErrorBuilder {
	b.message = fmt.Sprintf(format, args...)
	return b
}

// Cause sets the underlying error
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.cause = err
	return b
}

// Operation sets the operation context
func (b *ErrorBuilder) Operation(operation string) *ErrorBuilder {
	b.operation = operation
	return b
}

// Runtime sets the runtime context
func (b *ErrorBuilder) Runtime(runtime string) *ErrorBuilder {
	b.runtime = runtime
	return b
}

// Suggestion sets a user-friendly suggestion
func (b *ErrorBuilder) Suggestion(suggestion string) *ErrorBuilder {
	b.suggestion = suggestion
	return b
}

// Metadata adds metadata to the error
func (b *ErrorBuilder) Metadata(key string, value interface{}) *ErrorBuilder {
	b.metadata[key] = value
	return b
}

// Build creates the BuildError instance
func (b *ErrorBuilder) Build() *BuildError {
	if b.category == "" {
		b.category = categorizeError(b.message, b.operation)
	}

	if b.severity == "" {
		b.severity = determineSeverity(b.category, b.message)
	}

	return &BuildError{
		Category:   b.category,
		Severity:   b.severity,
		Code:       b.code,
		Message:    b.message,
		Cause:      b.cause,
		Operation:  b.operation,
		Runtime:    b.runtime,
		Timestamp:  time.Now(),
		Suggestion: b.suggestion,
		Metadata:   b.metadata,
	}
}

// categorizeError automatically categorizes an error based on its content
func categorizeError(message, operation string) ErrorCategory {
	msgLower := strings.ToLower(message)
	opLower := strings.ToLower(operation)

	if strings.Contains(msgLower, "credential") || strings.Contains(msgLower, "unauthorized") ||
		strings.Contains(msgLower, "access denied") {
		return ErrorCategoryAuth
	}

	switch {
	case strings.Contains(opLower, "publish") || strings.Contains(opLower, "list") ||
		strings.Contains(opLower, "versions") || strings.Contains(opLower, "grant"):
		return ErrorCategoryRegistry
	case strings.Contains(opLower, "merge") || strings.Contains(opLower, "archive") || strings.Contains(opLower, "extract"):
		return ErrorCategoryLayer
	case strings.Contains(opLower, "pip") || strings.Contains(opLower, "package"):
		return ErrorCategoryExecutor
	case strings.Contains(opLower, "config"):
		return ErrorCategoryConfiguration
	}

	switch {
	case strings.Contains(msgLower, "permission") || strings.Contains(msgLower, "denied"):
		return ErrorCategoryPermission
	case strings.Contains(msgLower, "invalid") || strings.Contains(msgLower, "must"):
		return ErrorCategoryValidation
	case strings.Contains(msgLower, "file") || strings.Contains(msgLower, "directory") || strings.Contains(msgLower, "no such"):
		return ErrorCategoryFilesystem
	case strings.Contains(msgLower, "zip") || strings.Contains(msgLower, "layer"):
		return ErrorCategoryLayer
	default:
		return ErrorCategoryUnknown
	}
}

// determineSeverity determines the severity of an error based on category and message
func determineSeverity(category ErrorCategory, message string) ErrorSeverity {
	msgLower := strings.ToLower(message)

	switch category {
	case ErrorCategoryAuth:
		return ErrorSeverityCritical
	case ErrorCategoryValidation, ErrorCategoryConfiguration, ErrorCategoryPermission:
		return ErrorSeverityHigh
	}

	if strings.Contains(msgLower, "fatal") || strings.Contains(msgLower, "abort") {
		return ErrorSeverityCritical
	}

	switch category {
	case ErrorCategoryRegistry, ErrorCategoryExecutor:
		return ErrorSeverityMedium
	case ErrorCategoryFilesystem, ErrorCategoryLayer:
		return ErrorSeverityMedium
	default:
		return ErrorSeverityLow
	}
}

// NewRegistryError creates an error for a failed remote layer API call
func NewRegistryError(operation, message string, cause error) *BuildError {
	return NewErrorBuilder().
		Category(ErrorCategoryRegistry).
		Severity(ErrorSeverityMedium).
		Operation(operation).
		Message(message).
		Cause(cause).
		Suggestion("Check AWS credentials, region and network connectivity").
		Build()
}

// NewValidationError creates a validation-related error
func NewValidationError(operation, message string, cause error) *BuildError {
	return NewErrorBuilder().
		Category(ErrorCategoryValidation).
		Severity(ErrorSeverityHigh).
		Operation(operation).
		Message(message).
		Cause(cause).
		Suggestion("Check input syntax and format").
		Build()
}

// NewFilesystemError creates a filesystem-related error
func NewFilesystemError(operation, message string, cause error) *BuildError {
	return NewErrorBuilder().
		Category(ErrorCategoryFilesystem).
		Severity(ErrorSeverityMedium).
		Operation(operation).
		Message(message).
		Cause(cause).
		Suggestion("Check file paths and permissions").
		Build()
}

// NewLayerError creates an error for a failed archive operation
func NewLayerError(operation, message string, cause error) *BuildError {
	return NewErrorBuilder().
		Category(ErrorCategoryLayer).
		Severity(ErrorSeverityMedium).
		Operation(operation).
		Message(message).
		Cause(cause).
		Build()
}

// NewExecutorError creates an error for a failed package build
func NewExecutorError(operation, runtime, message string, cause error) *BuildError {
	return NewErrorBuilder().
		Category(ErrorCategoryExecutor).
		Severity(ErrorSeverityHigh).
		Operation(operation).
		Runtime(runtime).
		Message(message).
		Cause(cause).
		Suggestion("Check the requirements file resolves for the requested Python version").
		Build()
}

// InvalidRuntime reports a runtime identifier that does not match pattern
func InvalidRuntime(runtime, pattern string) *BuildError {
	return NewErrorBuilder().
		Category(ErrorCategoryValidation).
		Severity(ErrorSeverityHigh).
		Code("InvalidRuntime").
		Operation("parse_runtime").
		Messagef("Runtime '%s' invalid; must match `%s`", runtime, pattern).
		Cause(ErrInvalidRuntime).
		Suggestion("Use identifiers such as python3.8 or python3.12").
		Build()
}

// NoRuntimesRequested reports a build call without any runtime
func NoRuntimesRequested() *BuildError {
	return NewErrorBuilder().
		Category(ErrorCategoryValidation).
		Severity(ErrorSeverityHigh).
		Code("NoRuntimesRequested").
		Operation("build_layer").
		Message("Must build for at least one Lambda runtime").
		Cause(ErrNoRuntimesRequested).
		Build()
}

// MissingPermissionTarget reports that no grant principal could be resolved
func MissingPermissionTarget() *BuildError {
	return NewErrorBuilder().
		Category(ErrorCategoryPermission).
		Severity(ErrorSeverityHigh).
		Code("MissingPermissionTarget").
		Operation("resolve_permission").
		Message("`account` or `organization` must be specified").
		Cause(ErrMissingPermissionTarget).
		Suggestion("Pass one of --account, --organization, --my-account or --my-organization").
		Build()
}

// NoRegion reports that the AWS configuration did not yield a region
func NoRegion(profile string) *BuildError {
	b := NewErrorBuilder().
		Category(ErrorCategoryConfiguration).
		Severity(ErrorSeverityCritical).
		Code("NoRegion").
		Operation("load_aws_config").
		Message("No default region exists for your AWS profile. " +
			"Please specify one manually by passing `--region REGION_NAME`.").
		Cause(ErrNoRegion)
	if profile != "" {
		b.Metadata("profile", profile)
	}
	return b.Build()
}

// WrapError wraps an existing error with BuildError categorization
func WrapError(err error, operation string) *BuildError {
	if err == nil {
		return nil
	}

	var buildErr *BuildError
	if stderrors.As(err, &buildErr) {
		return buildErr
	}

	return NewErrorBuilder().
		Message(err.Error()).
		Cause(err).
		Operation(operation).
		Build()
}
