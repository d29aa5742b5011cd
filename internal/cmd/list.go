package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Iron-Ham/recents/internal/cache"
	"github.com/Iron-Ham/recents/internal/config"
	"github.com/Iron-Ham/recents/internal/host"
	"github.com/Iron-Ham/recents/internal/lru"
	"github.com/Iron-Ham/recents/internal/task"
	"github.com/Iron-Ham/recents/internal/util"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Load the recent tasks once and print the cards",
	Long: `Run a single load against the task registry and print the resulting
cards in display order.

Examples:
  # Print the cards
  recents list

  # Machine readable output
  recents list --format json

  # Include cache statistics
  recents list --stats`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var (
	listFormat string
	listWidth  int
	listStats  bool
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listFormat, "format", "f", "text", "output format: text or json")
	listCmd.Flags().IntVarP(&listWidth, "width", "w", 0, "line width (default: terminal width)")
	listCmd.Flags().BoolVar(&listStats, "stats", false, "print cache statistics after the cards")
}

// listResult is the outcome of one load.
type listResult struct {
	Completed bool
	Cards     []task.Card
	Stats     map[string]lru.Stats
}

func runList(cmd *cobra.Command, args []string) error {
	if listFormat != "text" && listFormat != "json" {
		return fmt.Errorf("invalid format %q: expected text or json", listFormat)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	res, err := loadOnce(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if listFormat == "json" {
		return writeCardsJSON(out, res, listStats)
	}

	width := listWidth
	if width <= 0 {
		width = cfg.TUI.Width
	}
	if width <= 0 {
		width = 80
		if termWidth, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && termWidth > 0 {
			width = termWidth
		}
	}
	writeCards(out, res, width)
	if listStats {
		writeStats(out, res.Stats)
	}
	return nil
}

// loadOnce runs one complete load and returns the cards after every pending
// icon and thumbnail update has been applied.
func loadOnce(ctx context.Context, cfg *config.Config) (listResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	completed := make(chan bool, 1)
	rt, err := newRuntime(cfg, finishedSink(completed))
	if err != nil {
		return listResult{}, err
	}
	defer rt.logger.Close()

	if !rt.panel.StartLoad(ctx) {
		rt.panel.Close()
		return listResult{}, fmt.Errorf("load refused")
	}
	rt.panel.Wait()
	rt.panel.Close()

	res := listResult{
		Cards: rt.panel.Cards(),
		Stats: rt.panel.CacheStats(),
	}
	select {
	case res.Completed = <-completed:
	default:
	}
	return res, nil
}

func writeCards(w io.Writer, res listResult, width int) {
	state := "complete"
	if !res.Completed {
		state = "interrupted"
	}
	fmt.Fprintf(w, "Recent tasks: %d (%s)\n", len(res.Cards), state)
	if len(res.Cards) == 0 {
		return
	}
	fmt.Fprintln(w)

	const (
		posWidth   = 3
		glyphWidth = 4
		colorWidth = 8
	)
	flagsWidth := 24
	titleWidth := max(width-posWidth-glyphWidth-colorWidth-flagsWidth-4, 10)

	for i, c := range res.Cards {
		line := fmt.Sprintf("%*d %s %s %s %s",
			posWidth-1, i+1,
			util.Fit("["+glyph(c.Icon)+"]", glyphWidth),
			util.Fit(c.Title, titleWidth),
			util.Fit(colorLabel(c.Color), colorWidth),
			strings.Join(cardFlags(c), " "),
		)
		fmt.Fprintln(w, util.Truncate(strings.TrimRight(line, " "), width))
	}
}

func glyph(img *task.Image) string {
	if g := host.Caption(img); g != "" {
		return g
	}
	return " "
}

func colorLabel(c task.Color) string {
	if !c.Valid() {
		return "-"
	}
	return c.Hex()
}

func cardFlags(c task.Card) []string {
	var flags []string
	if c.Top {
		flags = append(flags, "top")
	}
	if c.Favorite {
		flags = append(flags, "fav")
	}
	if c.Expanded {
		flags = append(flags, "expanded")
	}
	switch {
	case c.Thumbnail != nil:
		flags = append(flags, fmt.Sprintf("thumb:%dx%d", c.Thumbnail.Width, c.Thumbnail.Height))
	case c.NeedsThumbnail:
		flags = append(flags, "thumb:deferred")
	}
	return flags
}

func writeStats(w io.Writer, stats map[string]lru.Stats) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Caches:")
	for _, name := range []string{cache.NameIcons, cache.NameThumbnails, cache.NameInfos} {
		s, ok := stats[name]
		if !ok {
			continue
		}
		usage := fmt.Sprintf("%d/%d entries", s.Len, s.MaxSize)
		if name != cache.NameInfos {
			usage = fmt.Sprintf("%s / %s, %d entries", util.FormatBytes(s.Size), util.FormatBytes(s.MaxSize), s.Len)
		}
		fmt.Fprintf(w, "  %-10s %s  hits=%d misses=%d evictions=%d\n", name, usage, s.Hits, s.Misses, s.Evictions)
	}
}

type jsonCard struct {
	Identifier     string `json:"identifier"`
	PersistentID   int    `json:"persistent_id"`
	Package        string `json:"package"`
	Title          string `json:"title"`
	Color          string `json:"color,omitempty"`
	Icon           string `json:"icon,omitempty"`
	Thumbnail      string `json:"thumbnail,omitempty"`
	Top            bool   `json:"top,omitempty"`
	Favorite       bool   `json:"favorite,omitempty"`
	Expandable     bool   `json:"expandable,omitempty"`
	Expanded       bool   `json:"expanded,omitempty"`
	NeedsThumbnail bool   `json:"needs_thumbnail,omitempty"`
}

func writeCardsJSON(w io.Writer, res listResult, withStats bool) error {
	cards := make([]jsonCard, 0, len(res.Cards))
	for _, c := range res.Cards {
		jc := jsonCard{
			Identifier:     c.Identifier,
			PersistentID:   c.PersistentID,
			Package:        c.Package,
			Title:          c.Title,
			Color:          c.Color.Hex(),
			Icon:           host.Caption(c.Icon),
			Top:            c.Top,
			Favorite:       c.Favorite,
			Expandable:     c.Expandable,
			Expanded:       c.Expanded,
			NeedsThumbnail: c.NeedsThumbnail,
		}
		if c.Thumbnail != nil {
			jc.Thumbnail = fmt.Sprintf("%dx%d", c.Thumbnail.Width, c.Thumbnail.Height)
		}
		cards = append(cards, jc)
	}

	var caches map[string]lru.Stats
	if withStats {
		caches = res.Stats
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Completed bool                 `json:"completed"`
		Cards     []jsonCard           `json:"cards"`
		Caches    map[string]lru.Stats `json:"caches,omitempty"`
	}{res.Completed, cards, caches})
}

// finishedSink reports how the load ended.
type finishedSink chan<- bool

func (finishedSink) FirstCardAvailable()                 {}
func (finishedSink) CardReady(task.Card)                 {}
func (finishedSink) CardUpdated(string, task.Field, any) {}

func (s finishedSink) LoadFinished(completed bool) {
	select {
	case s <- completed:
	default:
	}
}
