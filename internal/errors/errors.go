// Package errors provides the error definitions shared by the recents panel:
// sentinel errors, typed errors carrying load/registry context, and
// classification helpers.
//
// # Error Taxonomy
//
// Nothing in the loading path is fatal. Errors fall into:
//   - resolution failures ([ErrUnresolvable]): the record is dropped
//   - asset failures ([ErrAssetUnavailable]): the card shows no image
//   - start rejections ([ErrLoadInProgress], [ErrPanelVisible]): reported as false
//   - cancellation ([ErrCanceled]): a normal terminal state
//
// Errors from host collaborators are wrapped in [LoaderError] or
// [RegistryError] and logged; they are never returned from the loader.
//
// # Usage
//
//	err := errors.NewLoaderError(errors.StageIcon, cause).WithIdentifier(id)
//	if errors.IsRecoverable(err) { ... }
//
//	var loadErr *errors.LoaderError
//	if errors.As(err, &loadErr) { log.Warn("asset failed", "stage", loadErr.Stage) }
package errors

import (
	"errors"
	"fmt"
	"strings"
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
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
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

// Loading sentinel errors
var (
	// ErrUnresolvable indicates a task record has no launchable component or title.
	ErrUnresolvable = New("task record cannot be resolved")
	// ErrAssetUnavailable indicates an icon or thumbnail could not be produced.
	ErrAssetUnavailable = New("asset unavailable")
	// ErrLoadInProgress indicates a start request while a load is running.
	ErrLoadInProgress = New("load already in progress")
	// ErrPanelVisible indicates a start request while the panel is shown.
	ErrPanelVisible = New("panel is visible")
	// ErrCanceled indicates a load stopped at the caller's request.
	ErrCanceled = New("load canceled")
)

// Registry and configuration sentinel errors
var (
	// ErrTaskNotFound indicates that no task matches an identifier.
	ErrTaskNotFound = New("task not found")
	// ErrInvalidConfig indicates that configuration validation failed.
	ErrInvalidConfig = New("invalid configuration")
	// ErrRegistryCorrupted indicates that the registry file cannot be parsed.
	ErrRegistryCorrupted = New("registry data corrupted")
)

// -----------------------------------------------------------------------------
// Base Error
// -----------------------------------------------------------------------------

// RecentsError is implemented by every typed error in this package.
type RecentsError interface {
	error
	Unwrap() error
	Severity() Severity
	// IsRecoverable reports whether the caller can continue with a
	// degraded result instead of failing.
	IsRecoverable() bool
}

type baseError struct {
	message     string
	cause       error
	severity    Severity
	recoverable bool
}

func (e *baseError) Unwrap() error       { return e.cause }
func (e *baseError) Severity() Severity  { return e.severity }
func (e *baseError) IsRecoverable() bool { return e.recoverable }

func (e *baseError) format(prefix string, parts []string) string {
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", prefix, strings.Join(parts, ", "))
	}
	msg := prefix
	if e.message != "" {
		msg += ": " + e.message
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

// -----------------------------------------------------------------------------
// LoaderError
// -----------------------------------------------------------------------------

// Stage names the loader step that failed.
type Stage string

const (
	StageResolve   Stage = "resolve"
	StageIcon      Stage = "icon"
	StageThumbnail Stage = "thumbnail"
	StageRegistry  Stage = "registry"
	StageMedia     Stage = "media"
)

// LoaderError is a per-task failure inside a load. It is always recoverable:
// the task is skipped or shown without the asset.
//
// Example:
//
//	err := errors.NewLoaderError(errors.StageIcon, io.EOF).WithIdentifier("#ident:com.a")
//	fmt.Println(err) // "load error [stage=icon, identifier=#ident:com.a]: EOF"
type LoaderError struct {
	baseError
	Stage      Stage
	Identifier string
	RunID      string
}

// NewLoaderError creates a LoaderError for stage.
func NewLoaderError(stage Stage, cause error) *LoaderError {
	return &LoaderError{
		baseError: baseError{
			cause:       cause,
			severity:    SeverityWarning,
			recoverable: true,
		},
		Stage: stage,
	}
}

// WithIdentifier adds the task identifier.
func (e *LoaderError) WithIdentifier(id string) *LoaderError {
	e.Identifier = id
	return e
}

// WithRun adds the load run ID.
func (e *LoaderError) WithRun(runID string) *LoaderError {
	e.RunID = runID
	return e
}

// WithMessage sets a human readable context message.
func (e *LoaderError) WithMessage(msg string) *LoaderError {
	e.message = msg
	return e
}

// Error returns the formatted error message.
func (e *LoaderError) Error() string {
	parts := []string{"stage=" + string(e.Stage)}
	if e.Identifier != "" {
		parts = append(parts, "identifier="+e.Identifier)
	}
	if e.RunID != "" {
		parts = append(parts, "run="+e.RunID)
	}
	return e.format("load error", parts)
}

// Is matches any *LoaderError, then falls back to the cause chain.
func (e *LoaderError) Is(target error) bool {
	if _, ok := target.(*LoaderError); ok {
		return true
	}
	if e.Stage == StageIcon || e.Stage == StageThumbnail {
		if target == ErrAssetUnavailable {
			return true
		}
	}
	if e.Stage == StageResolve && target == ErrUnresolvable {
		return true
	}
	return e.cause != nil && errors.Is(e.cause, target)
}

// -----------------------------------------------------------------------------
// RegistryError
// -----------------------------------------------------------------------------

// RegistryError is a failure reading or writing the task registry.
type RegistryError struct {
	baseError
	Path         string
	PersistentID int
}

// NewRegistryError creates a RegistryError.
func NewRegistryError(message string, cause error) *RegistryError {
	return &RegistryError{
		baseError: baseError{
			message:  message,
			cause:    cause,
			severity: SeverityError,
		},
		PersistentID: -1,
	}
}

// WithPath adds the registry file path.
func (e *RegistryError) WithPath(path string) *RegistryError {
	e.Path = path
	return e
}

// WithTask adds the persistent task ID involved.
func (e *RegistryError) WithTask(persistentID int) *RegistryError {
	e.PersistentID = persistentID
	return e
}

// WithRecoverable marks whether the caller may continue with a stale list.
func (e *RegistryError) WithRecoverable(r bool) *RegistryError {
	e.recoverable = r
	return e
}

// Error returns the formatted error message.
func (e *RegistryError) Error() string {
	var parts []string
	if e.Path != "" {
		parts = append(parts, "path="+e.Path)
	}
	if e.PersistentID >= 0 {
		parts = append(parts, fmt.Sprintf("task=%d", e.PersistentID))
	}
	return e.format("registry error", parts)
}

// Is matches any *RegistryError, then falls back to the cause chain.
func (e *RegistryError) Is(target error) bool {
	if _, ok := target.(*RegistryError); ok {
		return true
	}
	return e.cause != nil && errors.Is(e.cause, target)
}

// -----------------------------------------------------------------------------
// ValidationError
// -----------------------------------------------------------------------------

// ValidationError represents an invalid configuration value.
//
// Example:
//
//	err := errors.NewValidationError("must be >= 0").WithField("panel.max_tasks").WithValue(-1)
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:  message,
			severity: SeverityWarning,
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

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.message
	}
	if e.Value != nil {
		return fmt.Sprintf("validation error: %s: %s (got %v)", e.Field, e.message, e.Value)
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.message)
}

// Is matches *ValidationError and ErrInvalidConfig.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	return target == ErrInvalidConfig
}

// -----------------------------------------------------------------------------
// NotFoundError
// -----------------------------------------------------------------------------

// NotFoundError reports a task missing from the panel or the registry.
type NotFoundError struct {
	baseError
	Identifier string
}

// NewNotFoundError creates a NotFoundError for identifier.
func NewNotFoundError(identifier string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			severity:    SeverityInfo,
			recoverable: true,
		},
		Identifier: identifier,
	}
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task not found: %s", e.Identifier)
}

// Is matches *NotFoundError and ErrTaskNotFound.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	return target == ErrTaskNotFound
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// IsRecoverable reports whether err leaves the panel usable: typed errors
// answer for themselves, and the loading sentinels are all recoverable.
func IsRecoverable(err error) bool {
	if err == nil {
		return true
	}
	var re RecentsError
	if As(err, &re) {
		return re.IsRecoverable()
	}
	return Is(err, ErrUnresolvable) || Is(err, ErrAssetUnavailable) ||
		Is(err, ErrLoadInProgress) || Is(err, ErrPanelVisible) ||
		Is(err, ErrCanceled)
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement RecentsError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}
	var re RecentsError
	if As(err, &re) {
		return re.Severity()
	}
	if Is(err, ErrCanceled) {
		return SeverityInfo
	}
	return SeverityError
}
