package event

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/Iron-Ham/recents/internal/logging"
)

func TestBus_Subscribe(t *testing.T) {
	bus := NewBus(nil)

	called := false
	id := bus.Subscribe("test.event", func(e Event) {
		called = true
	})

	if id == "" {
		t.Error("Subscribe should return a non-empty ID")
	}
	if bus.SubscriptionCount() != 1 {
		t.Errorf("Expected 1 subscription, got %d", bus.SubscriptionCount())
	}
	if called {
		t.Error("Handler should not be called until an event is published")
	}
}

func TestBus_Publish(t *testing.T) {
	bus := NewBus(nil)

	var received Event
	bus.Subscribe(TypeCardReady, func(e Event) {
		received = e
	})

	bus.Publish(NewCardReadyEvent("run-1", "#ident:com.a", 0))

	if received == nil {
		t.Fatal("Handler should have received the event")
	}
	ready, ok := received.(CardReadyEvent)
	if !ok {
		t.Fatalf("received %T, want CardReadyEvent", received)
	}
	if ready.Identifier != "#ident:com.a" || ready.RunID != "run-1" {
		t.Errorf("unexpected payload: %+v", ready)
	}
	if ready.Timestamp().IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestBus_SpecificBeforeWildcard(t *testing.T) {
	bus := NewBus(nil)

	var order []string
	bus.SubscribeAll(func(Event) { order = append(order, "all") })
	bus.Subscribe(TypeLoadStarted, func(Event) { order = append(order, "specific") })

	bus.Publish(NewLoadStartedEvent("run"))

	if strings.Join(order, ",") != "specific,all" {
		t.Errorf("order = %v, want [specific all]", order)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil)

	calls := 0
	id := bus.Subscribe(TypeTaskRemoved, func(Event) { calls++ })
	keep := bus.Subscribe(TypeTaskRemoved, func(Event) { calls += 10 })

	if !bus.Unsubscribe(id) {
		t.Fatal("Unsubscribe returned false for a known ID")
	}
	if bus.Unsubscribe(id) {
		t.Error("second Unsubscribe should return false")
	}

	bus.Publish(NewTaskRemovedEvent("#ident:x", 7))
	if calls != 10 {
		t.Errorf("calls = %d, want only the remaining handler", calls)
	}
	if keep == id {
		t.Error("subscription IDs must be unique")
	}
}

func TestBus_PanicRecovery(t *testing.T) {
	var buf bytes.Buffer
	bus := NewBus(logging.NewWriterLogger(&buf, logging.LevelError))

	secondCalled := false
	bus.Subscribe(TypeCacheTrimmed, func(Event) { panic("boom") })
	bus.Subscribe(TypeCacheTrimmed, func(Event) { secondCalled = true })

	bus.Publish(NewCacheTrimmedEvent("critical"))

	if !secondCalled {
		t.Error("a panicking handler must not block the next one")
	}
	if !strings.Contains(buf.String(), "event handler panicked") {
		t.Errorf("panic not logged: %s", buf.String())
	}
}

func TestBus_ClearAndNil(t *testing.T) {
	bus := NewBus(nil)
	bus.Subscribe("a", func(Event) {})
	bus.SubscribeAll(func(Event) {})
	bus.Clear()
	if bus.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d after Clear", bus.SubscriptionCount())
	}

	var nilBus *Bus
	nilBus.Publish(NewLoadStartedEvent("x")) // must not panic
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus(nil)

	var mu sync.Mutex
	count := 0
	bus.SubscribeAll(func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for range 100 {
				bus.Publish(NewCardUpdatedEvent("#ident:x", "icon"))
			}
			if i%2 == 0 {
				bus.Subscribe("noise", func(Event) {})
			}
		}(i)
	}
	wg.Wait()

	if count != 1000 {
		t.Errorf("count = %d, want 1000", count)
	}
}
