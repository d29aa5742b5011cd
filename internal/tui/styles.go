package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/recents/internal/task"
)

// Theme holds the styles of the panel.
type Theme struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Card     lipgloss.Style
	Selected lipgloss.Style
	Tag      lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Status   lipgloss.Style

	// Colored paints card backgrounds with the card color.
	Colored bool
}

var (
	primaryColor = lipgloss.Color("#A78BFA")
	warningColor = lipgloss.Color("#F59E0B")
	errorColor   = lipgloss.Color("#F87171")
	mutedColor   = lipgloss.Color("#9CA3AF")
	surfaceColor = lipgloss.Color("#1F2937")
	textColor    = lipgloss.Color("#F9FAFB")
	borderColor  = lipgloss.Color("#6B7280")
)

// ThemeByName returns the named theme, falling back to "default".
func ThemeByName(name string) Theme {
	if name == "mono" {
		return monoTheme()
	}
	return defaultTheme()
}

func defaultTheme() Theme {
	return Theme{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor),
		Subtitle: lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Foreground(textColor).
			Padding(0, 1),
		Selected: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(primaryColor).
			Foreground(textColor).
			Padding(0, 1),
		Tag: lipgloss.NewStyle().
			Bold(true).
			Foreground(warningColor),
		Muted: lipgloss.NewStyle().Foreground(mutedColor),
		Error: lipgloss.NewStyle().Foreground(errorColor),
		Status: lipgloss.NewStyle().
			Foreground(textColor).
			Background(surfaceColor).
			Padding(0, 1),
		Colored: true,
	}
}

func monoTheme() Theme {
	plain := lipgloss.NewStyle()
	return Theme{
		Title:    plain.Bold(true),
		Subtitle: plain.Italic(true),
		Card:     plain.Border(lipgloss.NormalBorder()).Padding(0, 1),
		Selected: plain.Border(lipgloss.DoubleBorder()).Padding(0, 1),
		Tag:      plain.Bold(true),
		Muted:    plain.Faint(true),
		Error:    plain.Bold(true),
		Status:   plain.Reverse(true).Padding(0, 1),
	}
}

// cardStyle returns the box style of a card.
func (t Theme) cardStyle(c task.Card, selected bool) lipgloss.Style {
	s := t.Card
	if selected {
		s = t.Selected
	}
	if t.Colored && c.Color.Valid() {
		s = s.BorderBackground(lipgloss.Color(c.Color.Hex())).
			Background(lipgloss.Color(c.Color.Hex())).
			Foreground(contrast(c.Color))
	}
	return s
}

// contrast picks black or white text for a background color.
func contrast(c task.Color) lipgloss.Color {
	r := (int64(c) >> 16) & 0xFF
	g := (int64(c) >> 8) & 0xFF
	b := int64(c) & 0xFF
	if r*299+g*587+b*114 > 128_000 {
		return lipgloss.Color("#000000")
	}
	return lipgloss.Color("#FFFFFF")
}
