// Package config provides CLI commands for managing the recents configuration.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	appconfig "github.com/Iron-Ham/recents/internal/config"
	"github.com/Iron-Ham/recents/internal/host"
	"github.com/Iron-Ham/recents/internal/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify recents configuration",
	Long: `View or modify recents configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  recents config set panel.max_tasks 10
  recents config set panel.favorites "#ident:com.example.mail|#ident:com.example.notes"
  recents config set tui.theme mono

Valid keys:
  panel.blacklist         - Hidden task identifiers, "a|b|c"
  panel.favorites         - Pinned task identifiers, "a|b|c"
  panel.max_tasks         - Maximum cards per load
  panel.first_expanded    - Non-top cards expanded by default
  panel.expand_mode       - auto, always, never, disabled
  panel.card_color        - Card color override, "#RRGGBB" or ""
  panel.corner_radius     - Card corner radius
  panel.thumbnail_quota   - Thumbnails loaded eagerly per load
  panel.scale_factor      - Icon and thumbnail scale
  cache.icon_bytes        - Icon cache budget in bytes
  cache.thumbnail_bytes   - Thumbnail cache budget in bytes
  cache.info_entries      - Component info cache entries
  registry.path           - Task registry file
  registry.watch          - Reload the panel on registry changes (true/false)
  registry.debounce_ms    - Registry watch debounce
  logging.enabled         - Write recents.log (true/false)
  logging.level           - debug, info, warn, error
  logging.max_size_mb     - Log size before rotation
  logging.max_backups     - Rotated logs kept
  logging.compress        - Gzip rotated logs (true/false)
  tui.theme               - default, mono
  tui.width               - Card column width, 0 for the terminal width`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file and a sample task registry",
	Long: `Create a default config file at ~/.config/recents/config.yaml and, unless
one exists, a sample task registry next to it.`,
	RunE: runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config and registry file paths",
	RunE:  runConfigPath,
}

var initForce bool

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)

	configInitCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
}

// Register adds the config command to parent.
func Register(parent *cobra.Command) {
	parent.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := appconfig.Load()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintln(out)

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Config file: (none - using defaults)\n")
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "panel:")
	fmt.Fprintf(out, "  blacklist: %s\n", formatList(cfg.Panel.Blacklist))
	fmt.Fprintf(out, "  favorites: %s\n", formatList(cfg.Panel.Favorites))
	fmt.Fprintf(out, "  max_tasks: %d\n", cfg.Panel.MaxTasks)
	fmt.Fprintf(out, "  first_expanded: %d\n", cfg.Panel.FirstExpanded)
	fmt.Fprintf(out, "  expand_mode: %s\n", cfg.Panel.ExpandMode)
	fmt.Fprintf(out, "  card_color: %q\n", cfg.Panel.CardColor)
	fmt.Fprintf(out, "  corner_radius: %g\n", cfg.Panel.CornerRadius)
	fmt.Fprintf(out, "  thumbnail_quota: %d\n", cfg.Panel.ThumbnailQuota)
	fmt.Fprintf(out, "  scale_factor: %g\n", cfg.Panel.ScaleFactor)

	fmt.Fprintln(out, "cache:")
	fmt.Fprintf(out, "  icon_bytes: %d\n", cfg.Cache.IconBytes)
	fmt.Fprintf(out, "  thumbnail_bytes: %d\n", cfg.Cache.ThumbnailBytes)
	fmt.Fprintf(out, "  info_entries: %d\n", cfg.Cache.InfoEntries)

	fmt.Fprintln(out, "registry:")
	fmt.Fprintf(out, "  path: %s\n", cfg.Registry.ResolvedPath())
	fmt.Fprintf(out, "  watch: %v\n", cfg.Registry.Watch)
	fmt.Fprintf(out, "  debounce_ms: %d\n", cfg.Registry.DebounceMs)

	fmt.Fprintln(out, "logging:")
	fmt.Fprintf(out, "  enabled: %v\n", cfg.Logging.Enabled)
	fmt.Fprintf(out, "  level: %s\n", cfg.Logging.Level)
	fmt.Fprintf(out, "  max_size_mb: %d\n", cfg.Logging.MaxSizeMB)
	fmt.Fprintf(out, "  max_backups: %d\n", cfg.Logging.MaxBackups)
	fmt.Fprintf(out, "  compress: %v\n", cfg.Logging.Compress)

	fmt.Fprintln(out, "tui:")
	fmt.Fprintf(out, "  theme: %s\n", cfg.TUI.Theme)
	fmt.Fprintf(out, "  width: %d\n", cfg.TUI.Width)

	return nil
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	return "[" + strings.Join(items, ", ") + "]"
}

// validKeys maps every settable key to the kind of value it takes.
var validKeys = map[string]string{
	"panel.blacklist":       "list",
	"panel.favorites":       "list",
	"panel.max_tasks":       "int",
	"panel.first_expanded":  "int",
	"panel.expand_mode":     "string",
	"panel.card_color":      "string",
	"panel.corner_radius":   "float",
	"panel.thumbnail_quota": "int",
	"panel.scale_factor":    "float",
	"cache.icon_bytes":      "int",
	"cache.thumbnail_bytes": "int",
	"cache.info_entries":    "int",
	"registry.path":         "string",
	"registry.watch":        "bool",
	"registry.debounce_ms":  "int",
	"logging.enabled":       "bool",
	"logging.level":         "string",
	"logging.max_size_mb":   "int",
	"logging.max_backups":   "int",
	"logging.compress":      "bool",
	"tui.theme":             "string",
	"tui.width":             "int",
}

// parseValue converts a command line value for key.
func parseValue(key, value string) (any, error) {
	keyType, ok := validKeys[key]
	if !ok {
		return nil, fmt.Errorf("unknown configuration key: %s\nRun 'recents config set --help' to see valid keys", key)
	}

	switch keyType {
	case "list":
		return appconfig.SplitList(value), nil
	case "bool":
		if value != "true" && value != "false" {
			return nil, fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		return value == "true", nil
	case "int":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected integer", key)
		}
		return n, nil
	case "float":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected number", key)
		}
		return f, nil
	default:
		return value, nil
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	typedValue, err := parseValue(key, value)
	if err != nil {
		return err
	}

	previous := viper.Get(key)
	viper.Set(key, typedValue)
	if _, err := appconfig.Load(); err != nil {
		viper.Set(key, previous)
		return err
	}

	configDir := appconfig.ConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := configFileInUse()
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Set %s = %v\n", key, typedValue)
	fmt.Fprintf(out, "Config saved to %s\n", configFile)
	return nil
}

func configFileInUse() string {
	if f := viper.ConfigFileUsed(); f != "" {
		return f
	}
	return appconfig.ConfigFile()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configFile := configFileInUse()
	out := cmd.OutOrStdout()

	if _, err := os.Stat(configFile); err == nil && !initForce {
		return fmt.Errorf("config file already exists at %s\nUse 'recents config set' to modify values", configFile)
	}
	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configFile, []byte(defaultConfigContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	fmt.Fprintf(out, "Created config file: %s\n", configFile)

	registryPath := appconfig.Get().Registry.ResolvedPath()
	if _, err := os.Stat(registryPath); err == nil {
		fmt.Fprintf(out, "Task registry already exists: %s\n", registryPath)
		return nil
	}
	if err := host.WriteFile(registryPath, host.Sample()); err != nil {
		return err
	}
	fmt.Fprintf(out, "Created sample task registry: %s\n", registryPath)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	writePaths(cmd.OutOrStdout(), configFileInUse(), appconfig.Get().Registry.ResolvedPath())
	return nil
}

func writePaths(w io.Writer, configFile, registryPath string) {
	fmt.Fprintf(w, "config:   %s\n", configFile)
	fmt.Fprintf(w, "registry: %s\n", registryPath)
	fmt.Fprintf(w, "log:      %s\n", filepath.Join(appconfig.StateDir(), logging.LogFileName))
}

const defaultConfigContent = `# Recents Configuration

# Card list settings, applied before each load
panel:
  # Task identifiers hidden from the list (the top task is never hidden)
  blacklist: []
  # Task identifiers pinned ahead of the other late tasks
  favorites: []
  # Maximum number of cards per load
  max_tasks: 15
  # How many non-top cards start expanded
  first_expanded: 2
  # auto, always, never or disabled
  expand_mode: auto
  # "#RRGGBB" to paint every card the same color
  card_color: ""
  corner_radius: 2
  # Thumbnails loaded eagerly per load; the rest load on demand
  thumbnail_quota: 5
  scale_factor: 1.0

# Cache budgets
cache:
  icon_bytes: 4194304
  thumbnail_bytes: 16777216
  info_entries: 100

# Task registry (YAML file listing the recent tasks)
registry:
  # Empty means tasks.yaml in the config directory
  path: ""
  # Reload the panel when the file changes
  watch: true
  debounce_ms: 200

# Debug logging
logging:
  enabled: true
  # debug, info, warn or error
  level: info
  max_size_mb: 10
  max_backups: 3
  compress: false

# Terminal UI
tui:
  # default or mono
  theme: default
  # Card column width, 0 for the terminal width
  width: 0
`
