package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/recents/internal/host"
	"github.com/Iron-Ham/recents/internal/task"
	"github.com/Iron-Ham/recents/internal/util"
)

const (
	defaultWidth = 60
	minCardWidth = 20
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n\n")

	if len(m.cards) == 0 {
		switch {
		case m.loading:
			b.WriteString(m.theme.Muted.Render("Loading recent tasks…"))
		default:
			b.WriteString(m.theme.Muted.Render("No recent tasks"))
		}
		b.WriteString("\n")
	}
	for i, c := range m.cards {
		b.WriteString(m.renderCard(c, i == m.cursor))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if line := m.statusLine(); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) header() string {
	title := m.theme.Title.Render("Recents")
	var sub string
	switch {
	case m.loading:
		sub = m.spinner.View() + " " + m.theme.Subtitle.Render(fmt.Sprintf("loading %d", len(m.cards)))
	case m.completed:
		sub = m.theme.Subtitle.Render(fmt.Sprintf("%d tasks", len(m.cards)))
	default:
		sub = m.theme.Subtitle.Render("load interrupted")
	}
	return title + "  " + sub
}

func (m Model) statusLine() string {
	if m.err != nil {
		return m.theme.Error.Render(util.Truncate("Error: "+m.err.Error(), m.innerWidth()))
	}
	if m.status != "" {
		return m.theme.Status.Render(util.Truncate(m.status, m.innerWidth()))
	}
	return ""
}

func (m Model) innerWidth() int {
	w := m.width
	if w <= 0 {
		w = defaultWidth
	}
	return max(w-4, minCardWidth)
}

func (m Model) renderCard(c task.Card, selected bool) string {
	width := m.innerWidth()
	style := m.theme.cardStyle(c, selected).Width(width)

	lines := []string{util.Fit(cardTitle(c), width-2)}
	if c.Expanded || c.Thumbnail != nil || c.NeedsThumbnail {
		lines = append(lines, util.Fit(thumbnailLine(c), width-2))
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// cardTitle is the first line of a card: icon glyph, title and markers.
func cardTitle(c task.Card) string {
	glyph := host.Caption(c.Icon)
	if glyph == "" {
		glyph = "·"
	}
	var tags []string
	if c.Top {
		tags = append(tags, "top")
	}
	if c.Favorite {
		tags = append(tags, "★")
	}
	if c.Expandable {
		if c.Expanded {
			tags = append(tags, "▾")
		} else {
			tags = append(tags, "▸")
		}
	}
	title := fmt.Sprintf("[%s] %s", glyph, c.Title)
	if len(tags) > 0 {
		title += "  " + strings.Join(tags, " ")
	}
	return title
}

func thumbnailLine(c task.Card) string {
	switch {
	case c.Thumbnail != nil:
		return fmt.Sprintf("  ▣ %s %dx%d", host.Caption(c.Thumbnail), c.Thumbnail.Width, c.Thumbnail.Height)
	case c.NeedsThumbnail:
		return "  ▢ thumbnail deferred"
	default:
		return "  ▢ no thumbnail"
	}
}
