// Package event provides a pub-sub event bus used to observe the recents
// loading pipeline and its caches.
//
// The bus is an observation channel, not the delivery path of cards: cards
// reach the panel through the loader's ordered sink. Subscribers here are
// loggers, counters, and the TUI status line.
//
// # Event Categories
//
// Load lifecycle:
//   - [LoadStartedEvent]: a run was accepted
//   - [LoadFinishedEvent]: a run ended (completed, cancelled, or refused)
//
// Cards:
//   - [CardReadyEvent]: a card shell was published
//   - [CardUpdatedEvent]: an icon, thumbnail, or attribute changed
//
// Caches:
//   - [CacheEvictedEvent]: an entry was dropped to stay within budget
//   - [CacheTrimmedEvent]: a memory-pressure trim ran
//
// Tasks:
//   - [TaskRemovedEvent]: the user dismissed a task
//   - [RegistryChangedEvent]: the registry file changed on disk
//
// # Thread Safety
//
// [Bus] is safe for concurrent use. Handlers run synchronously on the
// publishing goroutine and a panicking handler does not stop delivery to the
// remaining handlers.
//
// # Basic Usage
//
//	bus := event.NewBus(logger)
//	bus.Subscribe(event.TypeLoadFinished, func(e event.Event) {
//	    done := e.(event.LoadFinishedEvent)
//	    fmt.Println(done.Cards, "cards")
//	})
//	bus.Publish(event.NewLoadFinishedEvent("run-1", true, 4))
package event
