package loader

import (
	"fmt"

	"github.com/Iron-Ham/recents/internal/event"
	"github.com/Iron-Ham/recents/internal/task"
)

type deliveryKind int

const (
	deliverStarted deliveryKind = iota
	deliverCardReady
	deliverFirstCard
	deliverCardUpdated
	deliverFinished
)

// delivery is one sink call queued for the dispatcher.
type delivery struct {
	kind       deliveryKind
	runID      string
	card       task.Card
	position   int
	identifier string
	field      task.Field
	value      any
	completed  bool
	cards      int
	// ack is closed once the sink call has returned.
	ack chan struct{}
}

// post queues d for the dispatcher. It blocks while the delivery buffer is
// full and reports false once the loader is closed.
func (l *Loader) post(d delivery) bool {
	l.sendMu.RLock()
	defer l.sendMu.RUnlock()
	if l.eventsClosed {
		return false
	}
	l.events <- d
	return true
}

// dispatch is the delivery goroutine: the only caller of the sink.
func (l *Loader) dispatch() {
	defer close(l.dispatched)
	for d := range l.events {
		l.deliver(d)
	}
}

func (l *Loader) deliver(d delivery) {
	if d.ack != nil {
		defer close(d.ack)
	}
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("sink panicked", "run_id", d.runID, "panic", fmt.Sprint(r))
		}
	}()

	sink := l.cfg.Sink
	switch d.kind {
	case deliverStarted:
		if st, ok := sink.(Starter); ok {
			st.LoadStarted()
		}
		l.bus.Publish(event.NewLoadStartedEvent(d.runID))
	case deliverCardReady:
		sink.CardReady(d.card)
		l.bus.Publish(event.NewCardReadyEvent(d.runID, d.card.Identifier, d.position))
	case deliverFirstCard:
		sink.FirstCardAvailable()
	case deliverCardUpdated:
		sink.CardUpdated(d.identifier, d.field, d.value)
		l.bus.Publish(event.NewCardUpdatedEvent(d.identifier, string(d.field)))
	case deliverFinished:
		sink.LoadFinished(d.completed)
		l.bus.Publish(event.NewLoadFinishedEvent(d.runID, d.completed, d.cards))
	}
}
