package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/recents/internal/cache"
	"github.com/Iron-Ham/recents/internal/config"
	"github.com/Iron-Ham/recents/internal/host"
	"github.com/Iron-Ham/recents/internal/tui"
)

var panelCmd = &cobra.Command{
	Use:   "panel",
	Short: "Open the interactive recents panel",
	Long: `Open the recents panel in the terminal.

The panel reloads whenever the task registry file changes, unless
registry.watch is false or --no-watch is given.`,
	Args: cobra.NoArgs,
	RunE: runPanel,
}

var panelNoWatch bool

func init() {
	rootCmd.AddCommand(panelCmd)
	panelCmd.Flags().BoolVar(&panelNoWatch, "no-watch", false, "do not reload when the registry file changes")
}

func runPanel(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	app := tui.NewApp()
	rt, err := newRuntime(cfg, app.Sink())
	if err != nil {
		return err
	}
	defer rt.Close()

	if cfg.Registry.Watch && !panelNoWatch {
		w, err := host.NewWatcher(rt.registry.Path(), cfg.Registry.Debounce(), rt.bus, rt.logger)
		if err != nil {
			rt.logger.Warn("registry watch unavailable", "path", rt.registry.Path(), "error", err.Error())
		} else {
			defer tui.Follow(rt.bus, app.Send)()
			w.Start()
			defer w.Stop()
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	model := tui.NewModel(ctx, rt.panel, tui.ThemeByName(cfg.TUI.Theme), cfg.TUI.Width)
	err = app.Run(model)

	// A load still running after exit is cancelled.
	rt.panel.OnTrim(cache.TrimUIHidden)
	return err
}
