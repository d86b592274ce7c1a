// Package errors provides the error vocabulary shared by buildview packages:
// sentinel errors, domain error types carrying build context, semantic
// errors for common conditions, and classification helpers.
//
// # Error Types
//
// Domain errors:
//   - BuildError: a build could not be started, finished or controlled
//   - PatternError: a user-supplied error-match pattern failed to compile
//   - ProcessError: the process backend failed to spawn or signal a command
//   - ConfigError: configuration could not be read or applied
//
// Semantic errors:
//   - NotFoundError: a resource (link, panel, build) does not exist
//   - ValidationError: invalid input or state
//   - TimeoutError: an operation timed out
//
// # Usage
//
//	err := errors.NewPatternError("invalid error pattern", cause).WithPattern(2, src)
//	if errors.Is(err, errors.ErrInvalidPattern) { ... }
//
//	var perr *errors.PatternError
//	if errors.As(err, &perr) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Re-export standard library functions so callers need only this package.
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
	// SeverityDebug is for errors only useful while debugging.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors.
	SeverityInfo
	// SeverityWarning is for degraded but working states.
	SeverityWarning
	// SeverityError is for real failures.
	SeverityError
	// SeverityCritical is for failures that stop the program.
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

// Build-related sentinel errors
var (
	// ErrBuildNotRunning indicates an operation that needs a running build.
	ErrBuildNotRunning = New("build not running")
	// ErrNoCommand indicates that no build command was configured.
	ErrNoCommand = New("no build command configured")
)

// Annotation sentinel errors
var (
	// ErrInvalidPattern indicates an error-match pattern that does not compile.
	ErrInvalidPattern = New("invalid error-match pattern")
	// ErrUnknownLink indicates activation of a link ID that was never rendered.
	ErrUnknownLink = New("unknown link")
)

// Process sentinel errors
var (
	// ErrProcessStart indicates the backend could not spawn the command.
	ErrProcessStart = New("process failed to start")
	// ErrProcessKill indicates the backend could not signal the command.
	ErrProcessKill = New("process could not be killed")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
	// ErrNotFound indicates that a resource does not exist.
	ErrNotFound = New("not found")
)

// -----------------------------------------------------------------------------
// Base Error
// -----------------------------------------------------------------------------

// BuildviewError is implemented by every error type in this package.
type BuildviewError interface {
	error
	Unwrap() error
	Is(target error) bool
	Severity() Severity
	IsRetryable() bool
	IsUserFacing() bool
}

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

func (e *baseError) Unwrap() error { return e.cause }

func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

func (e *baseError) Severity() Severity { return e.severity }
func (e *baseError) IsRetryable() bool  { return e.retryable }
func (e *baseError) IsUserFacing() bool { return e.userFacing }

// format renders "<kind> error [k=v, ...]: message: cause".
func (e *baseError) format(kind string, parts []string) string {
	prefix := kind + " error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", prefix, strings.Join(parts, ", "))
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// BuildError represents a failure to drive a build.
//
// Example:
//
//	err := errors.NewBuildError("stop rejected", errors.ErrBuildNotRunning).WithBuildID("b1")
//	fmt.Println(err) // "build error [build=b1]: stop rejected: build not running"
type BuildError struct {
	baseError
	BuildID string
	Command string
}

// NewBuildError creates a new BuildError.
func NewBuildError(message string, cause error) *BuildError {
	return &BuildError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			userFacing: true,
		},
	}
}

// WithBuildID adds the build ID to the error context.
func (e *BuildError) WithBuildID(id string) *BuildError {
	e.BuildID = id
	return e
}

// WithCommand adds the build command to the error context.
func (e *BuildError) WithCommand(cmd string) *BuildError {
	e.Command = cmd
	return e
}

// Error returns the formatted error message.
func (e *BuildError) Error() string {
	var parts []string
	if e.BuildID != "" {
		parts = append(parts, "build="+e.BuildID)
	}
	if e.Command != "" {
		parts = append(parts, fmt.Sprintf("cmd=%q", e.Command))
	}
	return e.format("build", parts)
}

// Is checks if this error matches the target.
func (e *BuildError) Is(target error) bool {
	if _, ok := target.(*BuildError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// PatternError reports an error-match pattern that could not be compiled.
// It is raised once when patterns are loaded, never per output line.
type PatternError struct {
	baseError
	Index   int
	Pattern string
}

// NewPatternError creates a new PatternError.
func NewPatternError(message string, cause error) *PatternError {
	return &PatternError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityWarning,
			userFacing: true,
		},
		Index: -1,
	}
}

// WithPattern records which pattern failed.
func (e *PatternError) WithPattern(index int, pattern string) *PatternError {
	e.Index = index
	e.Pattern = pattern
	return e
}

// Error returns the formatted error message.
func (e *PatternError) Error() string {
	var parts []string
	if e.Index >= 0 {
		parts = append(parts, fmt.Sprintf("index=%d", e.Index))
	}
	if e.Pattern != "" {
		parts = append(parts, fmt.Sprintf("pattern=%q", e.Pattern))
	}
	return e.format("pattern", parts)
}

// Is checks if this error matches the target.
func (e *PatternError) Is(target error) bool {
	if _, ok := target.(*PatternError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidPattern) {
		return true
	}
	return e.baseError.Is(target)
}

// ProcessError represents a failure in a process backend.
type ProcessError struct {
	baseError
	Command string
	PID     int
}

// NewProcessError creates a new ProcessError.
func NewProcessError(message string, cause error) *ProcessError {
	return &ProcessError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			userFacing: true,
		},
	}
}

// WithCommand adds the command line to the error context.
func (e *ProcessError) WithCommand(cmd string) *ProcessError {
	e.Command = cmd
	return e
}

// WithPID adds the process ID to the error context.
func (e *ProcessError) WithPID(pid int) *ProcessError {
	e.PID = pid
	return e
}

// Error returns the formatted error message.
func (e *ProcessError) Error() string {
	var parts []string
	if e.Command != "" {
		parts = append(parts, fmt.Sprintf("cmd=%q", e.Command))
	}
	if e.PID > 0 {
		parts = append(parts, fmt.Sprintf("pid=%d", e.PID))
	}
	return e.format("process", parts)
}

// Is checks if this error matches the target.
func (e *ProcessError) Is(target error) bool {
	if _, ok := target.(*ProcessError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ConfigError represents a configuration problem.
type ConfigError struct {
	baseError
	File string
}

// NewConfigError creates a new ConfigError.
func NewConfigError(message string, cause error) *ConfigError {
	return &ConfigError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			userFacing: true,
		},
	}
}

// WithFile adds the config file path.
func (e *ConfigError) WithFile(path string) *ConfigError {
	e.File = path
	return e
}

// Error returns the formatted error message.
func (e *ConfigError) Error() string {
	var parts []string
	if e.File != "" {
		parts = append(parts, "file="+e.File)
	}
	return e.format("config", parts)
}

// Is checks if this error matches the target.
func (e *ConfigError) Is(target error) bool {
	if _, ok := target.(*ConfigError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError represents a missing resource.
//
// Example:
//
//	err := errors.NewNotFoundError("link", "error-match-0-3")
//	fmt.Println(err) // "link not found: error-match-0-3"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s not found", resourceType),
			severity:   SeverityWarning,
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
	if e.ResourceID != "" {
		return fmt.Sprintf("%s not found: %s", e.ResourceType, e.ResourceID)
	}
	return fmt.Sprintf("%s not found", e.ResourceType)
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	if errors.Is(target, ErrNotFound) {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError represents invalid input or state.
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
			userFacing: true,
		},
	}
}

// WithField records the invalid field.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue records the invalid value.
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
		parts = append(parts, "field="+e.Field)
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}
	return e.format("validation", parts)
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

// TimeoutError represents an operation that timed out.
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
			retryable:  true,
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
// Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable reports whether err is transient.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var bvErr BuildviewError
	if As(err, &bvErr) {
		return bvErr.IsRetryable()
	}
	return Is(err, ErrTimeout)
}

// IsUserFacing reports whether err's message is safe to show in the UI.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	var bvErr BuildviewError
	if As(err, &bvErr) {
		return bvErr.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity of err, SeverityError for foreign errors.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}
	var bvErr BuildviewError
	if As(err, &bvErr) {
		return bvErr.Severity()
	}
	return SeverityError
}

// Wrap wraps err with a context message. It returns nil for a nil err.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

