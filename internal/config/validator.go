package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Iron-Ham/recents/internal/errors"
	"github.com/Iron-Ham/recents/internal/task"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "panel.max_tasks")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Is lets callers match any validation failure with errors.ErrInvalidConfig.
func (e ValidationErrors) Is(target error) bool {
	return target == errors.ErrInvalidConfig
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidThemes returns the list of valid TUI themes
func ValidThemes() []string {
	return []string{"default", "mono"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError
	errs = append(errs, c.validatePanel()...)
	errs = append(errs, c.validateCache()...)
	errs = append(errs, c.validateRegistry()...)
	errs = append(errs, c.validateLogging()...)
	errs = append(errs, c.validateTUI()...)
	return errs
}

func (c *Config) validatePanel() []ValidationError {
	var errs []ValidationError
	p := c.Panel

	// max_tasks of 0 is allowed and shows an empty panel
	if p.MaxTasks < 0 {
		errs = append(errs, ValidationError{
			Field:   "panel.max_tasks",
			Value:   p.MaxTasks,
			Message: "must be non-negative",
		})
	}
	if p.FirstExpanded < 0 {
		errs = append(errs, ValidationError{
			Field:   "panel.first_expanded",
			Value:   p.FirstExpanded,
			Message: "must be non-negative",
		})
	}
	if _, err := task.ParseExpandMode(p.ExpandMode); err != nil {
		errs = append(errs, ValidationError{
			Field:   "panel.expand_mode",
			Value:   p.ExpandMode,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(task.ValidExpandModes(), ", ")),
		})
	}
	if _, err := task.ParseColor(p.CardColor); err != nil {
		errs = append(errs, ValidationError{
			Field:   "panel.card_color",
			Value:   p.CardColor,
			Message: "must be a hex color like #1E88E5",
		})
	}
	if p.CornerRadius < 0 {
		errs = append(errs, ValidationError{
			Field:   "panel.corner_radius",
			Value:   p.CornerRadius,
			Message: "must be non-negative",
		})
	}
	if p.ThumbnailQuota < 0 {
		errs = append(errs, ValidationError{
			Field:   "panel.thumbnail_quota",
			Value:   p.ThumbnailQuota,
			Message: "must be non-negative",
		})
	}
	if p.ScaleFactor <= 0 || p.ScaleFactor > 4 {
		errs = append(errs, ValidationError{
			Field:   "panel.scale_factor",
			Value:   p.ScaleFactor,
			Message: "must be in (0, 4]",
		})
	}
	return errs
}

func (c *Config) validateCache() []ValidationError {
	var errs []ValidationError
	if c.Cache.IconBytes <= 0 {
		errs = append(errs, ValidationError{
			Field:   "cache.icon_bytes",
			Value:   c.Cache.IconBytes,
			Message: "must be positive",
		})
	}
	if c.Cache.ThumbnailBytes <= 0 {
		errs = append(errs, ValidationError{
			Field:   "cache.thumbnail_bytes",
			Value:   c.Cache.ThumbnailBytes,
			Message: "must be positive",
		})
	}
	// The moderate trim level shrinks the info cache to 20 entries.
	if c.Cache.InfoEntries < 20 {
		errs = append(errs, ValidationError{
			Field:   "cache.info_entries",
			Value:   c.Cache.InfoEntries,
			Message: "must be at least 20",
		})
	}
	return errs
}

func (c *Config) validateRegistry() []ValidationError {
	if c.Registry.DebounceMs < 0 {
		return []ValidationError{{
			Field:   "registry.debounce_ms",
			Value:   c.Registry.DebounceMs,
			Message: "must be non-negative",
		}}
	}
	return nil
}

func (c *Config) validateLogging() []ValidationError {
	var errs []ValidationError
	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}
	if c.Logging.MaxSizeMB < 0 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be 0 (no rotation) or positive",
		})
	}
	if c.Logging.MaxBackups < 0 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}
	return errs
}

func (c *Config) validateTUI() []ValidationError {
	var errs []ValidationError
	if c.TUI.Theme != "" && !slices.Contains(ValidThemes(), c.TUI.Theme) {
		errs = append(errs, ValidationError{
			Field:   "tui.theme",
			Value:   c.TUI.Theme,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidThemes(), ", ")),
		})
	}
	if c.TUI.Width != 0 && (c.TUI.Width < 20 || c.TUI.Width > 400) {
		errs = append(errs, ValidationError{
			Field:   "tui.width",
			Value:   c.TUI.Width,
			Message: "must be 0 (auto) or between 20 and 400",
		})
	}
	return errs
}
