package config

import (
	"strings"
	"testing"

	"github.com/Iron-Ham/recents/internal/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"negative max tasks", func(c *Config) { c.Panel.MaxTasks = -1 }, "panel.max_tasks"},
		{"negative first expanded", func(c *Config) { c.Panel.FirstExpanded = -1 }, "panel.first_expanded"},
		{"unknown expand mode", func(c *Config) { c.Panel.ExpandMode = "sometimes" }, "panel.expand_mode"},
		{"bad card color", func(c *Config) { c.Panel.CardColor = "#12" + "zz" }, "panel.card_color"},
		{"negative radius", func(c *Config) { c.Panel.CornerRadius = -0.5 }, "panel.corner_radius"},
		{"negative quota", func(c *Config) { c.Panel.ThumbnailQuota = -2 }, "panel.thumbnail_quota"},
		{"zero scale", func(c *Config) { c.Panel.ScaleFactor = 0 }, "panel.scale_factor"},
		{"zero icon budget", func(c *Config) { c.Cache.IconBytes = 0 }, "cache.icon_bytes"},
		{"zero thumbnail budget", func(c *Config) { c.Cache.ThumbnailBytes = 0 }, "cache.thumbnail_bytes"},
		{"tiny info cache", func(c *Config) { c.Cache.InfoEntries = 5 }, "cache.info_entries"},
		{"negative debounce", func(c *Config) { c.Registry.DebounceMs = -1 }, "registry.debounce_ms"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"negative log size", func(c *Config) { c.Logging.MaxSizeMB = -1 }, "logging.max_size_mb"},
		{"negative log backups", func(c *Config) { c.Logging.MaxBackups = -3 }, "logging.max_backups"},
		{"bad theme", func(c *Config) { c.TUI.Theme = "neon" }, "tui.theme"},
		{"narrow width", func(c *Config) { c.TUI.Width = 5 }, "tui.width"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			errs := cfg.Validate()
			if len(errs) != 1 {
				t.Fatalf("Validate() returned %d errors, want 1: %v", len(errs), errs)
			}
			if errs[0].Field != tt.field {
				t.Errorf("Field = %q, want %q", errs[0].Field, tt.field)
			}
		})
	}
}

func TestValidate_AcceptsEdgeValues(t *testing.T) {
	cfg := Default()
	cfg.Panel.MaxTasks = 0
	cfg.Panel.FirstExpanded = 0
	cfg.Panel.ThumbnailQuota = 0
	cfg.Panel.ExpandMode = "Always"
	cfg.Logging.Level = "DEBUG"
	cfg.TUI.Width = 20

	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("Validate() = %v, want none", errs)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	single := ValidationErrors{{Field: "a", Value: 1, Message: "bad"}}
	if single.Error() != "a: bad (got: 1)" {
		t.Errorf("Error() = %q", single.Error())
	}

	multi := ValidationErrors{
		{Field: "a", Value: 1, Message: "bad"},
		{Field: "b", Value: "x", Message: "worse"},
	}
	msg := multi.Error()
	if !strings.HasPrefix(msg, "2 validation errors:") || !strings.Contains(msg, "2. b: worse") {
		t.Errorf("Error() = %q", msg)
	}

	if ValidationErrors(nil).Error() != "" {
		t.Error("empty ValidationErrors should render empty")
	}

	var err error = multi
	if !errors.Is(err, errors.ErrInvalidConfig) {
		t.Error("ValidationErrors should match ErrInvalidConfig")
	}
}
