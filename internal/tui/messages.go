package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/recents/internal/loader"
	"github.com/Iron-Ham/recents/internal/task"
)

// Messages delivered by the panel sink.
type (
	LoadStartedMsg struct{}
	FirstCardMsg   struct{}
	CardReadyMsg   struct{ Card task.Card }
	CardUpdatedMsg struct {
		Identifier string
		Field      task.Field
		Value      any
	}
	LoadFinishedMsg struct{ Completed bool }
)

// RegistryChangedMsg asks the model to reload after the registry changed.
type RegistryChangedMsg struct{}

// Results of panel actions run as commands.
type (
	loadRequestedMsg struct{ accepted bool }
	expandedMsg      struct {
		identifier string
		expanded   bool
		err        error
	}
	favoriteMsg struct {
		identifier string
		favorite   bool
	}
	removedMsg struct {
		identifier string
		err        error
	}
	clearedMsg  struct{ favoritesLeft bool }
	switchedMsg struct {
		desc task.Descriptor
		ok   bool
	}
)

// Sink turns loader callbacks into program messages. Send is usually
// (*tea.Program).Send; it runs on the loader's delivery goroutine.
type Sink struct {
	Send func(tea.Msg)
}

var (
	_ loader.Sink    = Sink{}
	_ loader.Starter = Sink{}
)

// LoadStarted implements loader.Starter.
func (s Sink) LoadStarted() { s.Send(LoadStartedMsg{}) }

// FirstCardAvailable implements loader.Sink.
func (s Sink) FirstCardAvailable() { s.Send(FirstCardMsg{}) }

// CardReady implements loader.Sink.
func (s Sink) CardReady(card task.Card) { s.Send(CardReadyMsg{Card: card}) }

// CardUpdated implements loader.Sink.
func (s Sink) CardUpdated(identifier string, field task.Field, value any) {
	s.Send(CardUpdatedMsg{Identifier: identifier, Field: field, Value: value})
}

// LoadFinished implements loader.Sink.
func (s Sink) LoadFinished(completed bool) { s.Send(LoadFinishedMsg{Completed: completed}) }
