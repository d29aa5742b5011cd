package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/recents/internal/event"
)

// Follow forwards bus events the panel reacts to as program messages and
// returns a function that removes the subscriptions.
func Follow(bus *event.Bus, send func(tea.Msg)) (unsubscribe func()) {
	if bus == nil {
		return func() {}
	}
	id := bus.Subscribe(event.TypeRegistryChanged, func(event.Event) {
		send(RegistryChangedMsg{})
	})
	return func() { bus.Unsubscribe(id) }
}
