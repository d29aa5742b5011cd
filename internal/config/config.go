package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Iron-Ham/recents/internal/task"
)

// EnvPrefix is the prefix of environment overrides, e.g. RECENTS_PANEL_MAX_TASKS.
const EnvPrefix = "RECENTS"

// Config represents the complete recents configuration
type Config struct {
	Panel    PanelConfig    `mapstructure:"panel"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Registry RegistryConfig `mapstructure:"registry"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	TUI      TUIConfig      `mapstructure:"tui"`
}

// PanelConfig is applied to the panel before the next load starts.
type PanelConfig struct {
	// Blacklist hides tasks whose identifier is listed. The top task is exempt.
	Blacklist []string `mapstructure:"blacklist"`
	// Favorites are pinned: they jump ahead of other late tasks and survive
	// "clear all".
	Favorites []string `mapstructure:"favorites"`
	// MaxTasks caps the number of cards per load (default: 15)
	MaxTasks int `mapstructure:"max_tasks"`
	// FirstExpanded is how many non-top tasks are expanded by default (default: 2)
	FirstExpanded int `mapstructure:"first_expanded"`
	// ExpandMode is one of "auto", "always", "never", "disabled"
	ExpandMode string `mapstructure:"expand_mode"`
	// CardColor overrides every card background when set ("#RRGGBB")
	CardColor string `mapstructure:"card_color"`
	// CornerRadius of the cards (default: 2)
	CornerRadius float64 `mapstructure:"corner_radius"`
	// ThumbnailQuota is how many thumbnails load eagerly per run (default: 5)
	ThumbnailQuota int `mapstructure:"thumbnail_quota"`
	// ScaleFactor scales icon and thumbnail dimensions (default: 1.0)
	ScaleFactor float64 `mapstructure:"scale_factor"`
}

// Mode returns the parsed expand mode, falling back to auto.
func (p PanelConfig) Mode() task.ExpandMode {
	m, err := task.ParseExpandMode(p.ExpandMode)
	if err != nil {
		return task.ModeAuto
	}
	return m
}

// Color returns the parsed card color override, or task.NoColor.
func (p PanelConfig) Color() task.Color {
	c, err := task.ParseColor(p.CardColor)
	if err != nil {
		return task.NoColor
	}
	return c
}

// Normalize expands "a|b|c" entries in the list settings and drops blanks.
func (p *PanelConfig) Normalize() {
	p.Blacklist = normalizeList(p.Blacklist)
	p.Favorites = normalizeList(p.Favorites)
}

// CacheConfig sizes the three caches.
type CacheConfig struct {
	// IconBytes is the byte budget of the icon cache (default: 4MB)
	IconBytes int64 `mapstructure:"icon_bytes"`
	// ThumbnailBytes is the byte budget of the thumbnail cache (default: 16MB)
	ThumbnailBytes int64 `mapstructure:"thumbnail_bytes"`
	// InfoEntries is the entry budget of the component info cache (default: 100)
	InfoEntries int64 `mapstructure:"info_entries"`
}

// RegistryConfig points at the task registry file used by the CLI.
type RegistryConfig struct {
	// Path of the YAML registry. Empty means {ConfigDir}/tasks.yaml.
	Path string `mapstructure:"path"`
	// Watch reloads the panel when the file changes (default: true)
	Watch bool `mapstructure:"watch"`
	// DebounceMs collapses bursts of file events (default: 200)
	DebounceMs int `mapstructure:"debounce_ms"`
}

// Debounce returns the debounce interval as a time.Duration.
func (r RegistryConfig) Debounce() time.Duration {
	return time.Duration(r.DebounceMs) * time.Millisecond
}

// ResolvedPath returns Path, or the default registry location.
func (r RegistryConfig) ResolvedPath() string {
	if r.Path == "" {
		return filepath.Join(ConfigDir(), "tasks.yaml")
	}
	if strings.HasPrefix(r.Path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, r.Path[2:])
		}
	}
	return r.Path
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether logging is written to the state dir (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
	// Compress gzips rotated log files (default: false)
	Compress bool `mapstructure:"compress"`
}

// TUIConfig controls the terminal UI
type TUIConfig struct {
	// Theme is "default" or "mono"
	Theme string `mapstructure:"theme"`
	// Width of the card column; 0 uses the terminal width
	Width int `mapstructure:"width"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Panel: PanelConfig{
			Blacklist:      []string{},
			Favorites:      []string{},
			MaxTasks:       15,
			FirstExpanded:  2,
			ExpandMode:     "auto",
			CardColor:      "",
			CornerRadius:   2,
			ThumbnailQuota: 5,
			ScaleFactor:    1.0,
		},
		Cache: CacheConfig{
			IconBytes:      4 << 20,
			ThumbnailBytes: 16 << 20,
			InfoEntries:    100,
		},
		Registry: RegistryConfig{
			Path:       "",
			Watch:      true,
			DebounceMs: 200,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			Compress:   false,
		},
		TUI: TUIConfig{
			Theme: "default",
			Width: 0,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("panel.blacklist", defaults.Panel.Blacklist)
	viper.SetDefault("panel.favorites", defaults.Panel.Favorites)
	viper.SetDefault("panel.max_tasks", defaults.Panel.MaxTasks)
	viper.SetDefault("panel.first_expanded", defaults.Panel.FirstExpanded)
	viper.SetDefault("panel.expand_mode", defaults.Panel.ExpandMode)
	viper.SetDefault("panel.card_color", defaults.Panel.CardColor)
	viper.SetDefault("panel.corner_radius", defaults.Panel.CornerRadius)
	viper.SetDefault("panel.thumbnail_quota", defaults.Panel.ThumbnailQuota)
	viper.SetDefault("panel.scale_factor", defaults.Panel.ScaleFactor)

	viper.SetDefault("cache.icon_bytes", defaults.Cache.IconBytes)
	viper.SetDefault("cache.thumbnail_bytes", defaults.Cache.ThumbnailBytes)
	viper.SetDefault("cache.info_entries", defaults.Cache.InfoEntries)

	viper.SetDefault("registry.path", defaults.Registry.Path)
	viper.SetDefault("registry.watch", defaults.Registry.Watch)
	viper.SetDefault("registry.debounce_ms", defaults.Registry.DebounceMs)

	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)

	viper.SetDefault("tui.theme", defaults.TUI.Theme)
	viper.SetDefault("tui.width", defaults.TUI.Width)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Panel.Normalize()

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration, falling back to defaults when the
// loaded configuration is invalid.
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "recents")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".recents"
	}
	return filepath.Join(home, ".config", "recents")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// StateDir is where the log file is written.
func StateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "recents")
	}
	return ConfigDir()
}

// SplitList splits the "a|b|c" form used by older settings. Blank entries
// are dropped.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, "|") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, entry := range in {
		for _, item := range SplitList(entry) {
			if !seen[item] {
				seen[item] = true
				out = append(out, item)
			}
		}
	}
	return out
}
