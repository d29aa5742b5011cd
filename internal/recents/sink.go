package recents

import (
	"context"

	"github.com/Iron-Ham/recents/internal/loader"
	"github.com/Iron-Ham/recents/internal/task"
)

// panelSink keeps the panel's card list in step with the loader and
// forwards every call to the host sink.
type panelSink struct {
	p *Panel
}

var (
	_ loader.Sink    = panelSink{}
	_ loader.Starter = panelSink{}
)

func (s panelSink) LoadStarted() {
	s.p.mu.Lock()
	s.p.cards = nil
	s.p.mu.Unlock()

	if st, ok := s.p.host.(loader.Starter); ok {
		st.LoadStarted()
	}
}

func (s panelSink) FirstCardAvailable() {
	if s.p.host != nil {
		s.p.host.FirstCardAvailable()
	}
}

func (s panelSink) CardReady(card task.Card) {
	s.p.mu.Lock()
	s.p.cards = append(s.p.cards, card)
	s.p.mu.Unlock()

	if s.p.host != nil {
		s.p.host.CardReady(card)
	}
}

func (s panelSink) CardUpdated(identifier string, field task.Field, value any) {
	s.p.mu.Lock()
	if i := s.p.cardIndex(identifier); i >= 0 {
		s.p.cards[i].Apply(field, value)
	}
	s.p.mu.Unlock()

	if s.p.host != nil {
		s.p.host.CardUpdated(identifier, field, value)
	}
}

func (s panelSink) LoadFinished(completed bool) {
	if s.p.host != nil {
		s.p.host.LoadFinished(completed)
	}
}

// mediaSource prefers the track set with SetMedia over the host provider.
type mediaSource struct {
	p *Panel
}

func (m mediaSource) NowPlaying(ctx context.Context) (task.Media, bool) {
	m.p.mu.Lock()
	override := m.p.override
	m.p.mu.Unlock()
	if override.Active() {
		return override, true
	}
	if m.p.media == nil {
		return task.Media{}, false
	}
	return m.p.media.NowPlaying(ctx)
}
