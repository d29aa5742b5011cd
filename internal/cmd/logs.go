package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/recents/internal/config"
	"github.com/Iron-Ham/recents/internal/logging"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View the recents log",
	Long: `View and filter the structured log written by the panel and the list
command.

Examples:
  # Last 50 entries
  recents logs

  # Everything from one load
  recents logs --run 0b7e6a52-93f1-4c55-a4fb-5bd1d6b1a3a1 -n 0

  # Warnings and errors of the last hour as CSV
  recents logs --level warn --since 1h --format csv`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

var (
	logsTail       int
	logsLevel      string
	logsSince      string
	logsRun        string
	logsComponent  string
	logsIdentifier string
	logsGrep       string
	logsFormat     string
	logsSummary    bool
)

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "number of entries to show (0 for all)")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "minimum level: debug, info, warn, error")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "only entries newer than this duration, e.g. 30m")
	logsCmd.Flags().StringVar(&logsRun, "run", "", "only entries of this load run")
	logsCmd.Flags().StringVar(&logsComponent, "component", "", "only entries of this component (loader, cache, panel, ...)")
	logsCmd.Flags().StringVar(&logsIdentifier, "identifier", "", "only entries about this task identifier")
	logsCmd.Flags().StringVar(&logsGrep, "grep", "", "only entries whose message contains this text")
	logsCmd.Flags().StringVar(&logsFormat, "format", logging.FormatText, "output format: text, json or csv")
	logsCmd.Flags().BoolVar(&logsSummary, "summary", false, "print entry counts per level instead of entries")
}

func runLogs(cmd *cobra.Command, args []string) error {
	filter := logging.LogFilter{
		MinLevel:   logsLevel,
		RunID:      logsRun,
		Component:  logsComponent,
		Identifier: logsIdentifier,
		Contains:   logsGrep,
	}
	if logsLevel != "" && logging.ParseLevel(logsLevel) != strings.ToUpper(logsLevel) {
		return fmt.Errorf("invalid level %q: expected one of %s", logsLevel, strings.Join(logging.ValidLevels(), ", "))
	}
	if logsSince != "" {
		d, err := time.ParseDuration(logsSince)
		if err != nil {
			return fmt.Errorf("invalid --since: %w", err)
		}
		filter.Since = time.Now().Add(-d)
	}

	cfg := config.Get()
	entries, err := logging.ReadLogs(config.StateDir(), cfg.Logging.MaxBackups)
	if err != nil {
		return err
	}
	entries = logging.FilterLogs(entries, filter)

	out := cmd.OutOrStdout()
	if logsSummary {
		fmt.Fprintf(out, "%d entries: %s\n", len(entries), logging.FormatCounts(logging.CountByLevel(entries)))
		return nil
	}
	if logsTail > 0 && len(entries) > logsTail {
		entries = entries[len(entries)-logsTail:]
	}
	return logging.WriteLogs(out, entries, logsFormat)
}
