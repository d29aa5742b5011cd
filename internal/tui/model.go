package tui

import (
	"context"
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/recents/internal/task"
)

// Panel is the part of recents.Panel the TUI drives.
type Panel interface {
	StartLoad(ctx context.Context) bool
	CancelLoad()
	SetVisible(visible bool)
	SetExpanded(identifier string, expanded bool) error
	ToggleFavorite(identifier string) bool
	RemoveTask(ctx context.Context, identifier string) error
	RemoveAllExceptFavorites(ctx context.Context) bool
	OpenLastApp() (task.Descriptor, bool)
}

// Model is the Bubble Tea model of the recents panel. Panel calls run in
// commands so Update never waits on the loader.
type Model struct {
	ctx   context.Context
	panel Panel

	keys    KeyMap
	theme   Theme
	help    help.Model
	spinner spinner.Model

	cards     []task.Card
	cursor    int
	loading   bool
	completed bool
	pending   bool // reload requested while loading

	width    int
	status   string
	err      error
	quitting bool
}

// NewModel creates a Model. A width of 0 follows the terminal.
func NewModel(ctx context.Context, panel Panel, theme Theme, width int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Tag
	return Model{
		ctx:     ctx,
		panel:   panel,
		keys:    DefaultKeyMap(),
		theme:   theme,
		help:    help.New(),
		spinner: sp,
		width:   width,
	}
}

// Init starts the first load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.reload())
}

// reload hides the panel for the duration of the load.
func (m Model) reload() tea.Cmd {
	return func() tea.Msg {
		m.panel.SetVisible(false)
		return loadRequestedMsg{accepted: m.panel.StartLoad(m.ctx)}
	}
}

func (m Model) show() tea.Cmd {
	return func() tea.Msg {
		m.panel.SetVisible(true)
		return nil
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case LoadStartedMsg:
		m.cards = nil
		m.cursor = 0
		m.loading = true
		m.completed = false
		return m, nil

	case FirstCardMsg:
		m.status = ""
		return m, nil

	case CardReadyMsg:
		m.cards = append(m.cards, msg.Card)
		return m, nil

	case CardUpdatedMsg:
		if i := m.index(msg.Identifier); i >= 0 {
			m.cards[i].Apply(msg.Field, msg.Value)
		}
		return m, nil

	case LoadFinishedMsg:
		m.loading = false
		m.completed = msg.Completed
		if m.pending {
			m.pending = false
			return m, m.reload()
		}
		return m, m.show()

	case RegistryChangedMsg:
		if m.loading {
			m.pending = true
			return m, nil
		}
		return m, m.reload()

	case loadRequestedMsg:
		if !msg.accepted {
			m.status = "a load is already running"
		}
		return m, nil

	case expandedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if i := m.index(msg.identifier); i >= 0 {
			m.cards[i].Expanded = msg.expanded
		}
		return m, nil

	case favoriteMsg:
		if i := m.index(msg.identifier); i >= 0 {
			m.cards[i].Favorite = msg.favorite
		}
		return m, nil

	case removedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.cards = slices.DeleteFunc(m.cards, func(c task.Card) bool { return c.Identifier == msg.identifier })
		m.cursor = min(m.cursor, max(len(m.cards)-1, 0))
		return m, nil

	case clearedMsg:
		if msg.favoritesLeft {
			m.status = "cleared, favorites kept"
		} else {
			m.status = "cleared"
		}
		return m, m.reload()

	case switchedMsg:
		if !msg.ok {
			m.status = "no app to switch to"
		} else {
			m.status = fmt.Sprintf("switch to %s", label(msg.desc))
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.panel.CancelLoad()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.cards)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		if m.loading {
			m.pending = true
			return m, nil
		}
		return m, m.reload()

	case key.Matches(msg, m.keys.Switch):
		return m, func() tea.Msg {
			desc, ok := m.panel.OpenLastApp()
			return switchedMsg{desc: desc, ok: ok}
		}

	case key.Matches(msg, m.keys.ClearAll):
		return m, func() tea.Msg {
			return clearedMsg{favoritesLeft: m.panel.RemoveAllExceptFavorites(m.ctx)}
		}
	}

	card, ok := m.selected()
	if !ok {
		return m, nil
	}
	id := card.Identifier
	switch {
	case key.Matches(msg, m.keys.Expand):
		if !card.Expandable {
			m.status = "this card cannot expand"
			return m, nil
		}
		want := !card.Expanded
		return m, func() tea.Msg {
			return expandedMsg{identifier: id, expanded: want, err: m.panel.SetExpanded(id, want)}
		}

	case key.Matches(msg, m.keys.Favorite):
		return m, func() tea.Msg {
			return favoriteMsg{identifier: id, favorite: m.panel.ToggleFavorite(id)}
		}

	case key.Matches(msg, m.keys.Remove):
		return m, func() tea.Msg {
			return removedMsg{identifier: id, err: m.panel.RemoveTask(m.ctx, id)}
		}
	}
	return m, nil
}

func (m Model) selected() (task.Card, bool) {
	if m.cursor < 0 || m.cursor >= len(m.cards) {
		return task.Card{}, false
	}
	return m.cards[m.cursor], true
}

func (m Model) index(identifier string) int {
	return slices.IndexFunc(m.cards, func(c task.Card) bool { return c.Identifier == identifier })
}

// Cards returns the cards the model currently shows.
func (m Model) Cards() []task.Card {
	return slices.Clone(m.cards)
}

func label(d task.Descriptor) string {
	if d.Label != "" {
		return d.Label
	}
	return d.Package
}
