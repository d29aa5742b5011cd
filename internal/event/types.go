package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a "category.action" identifier, e.g. "card.ready".
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// Event type names.
const (
	TypeLoadStarted     = "load.started"
	TypeLoadFinished    = "load.finished"
	TypeCardReady       = "card.ready"
	TypeCardUpdated     = "card.updated"
	TypeCacheEvicted    = "cache.evicted"
	TypeCacheTrimmed    = "cache.trimmed"
	TypeTaskRemoved     = "task.removed"
	TypeRegistryChanged = "registry.changed"
)

// -----------------------------------------------------------------------------
// Load Events
// -----------------------------------------------------------------------------

// LoadStartedEvent is emitted when a card load run is accepted.
type LoadStartedEvent struct {
	baseEvent
	RunID string
}

// NewLoadStartedEvent creates a LoadStartedEvent.
func NewLoadStartedEvent(runID string) LoadStartedEvent {
	return LoadStartedEvent{
		baseEvent: newBaseEvent(TypeLoadStarted),
		RunID:     runID,
	}
}

// LoadFinishedEvent is emitted once per run, after its last card.
type LoadFinishedEvent struct {
	baseEvent
	RunID     string
	Completed bool // false when the run was cancelled or refused
	Cards     int  // cards published by the run
}

// NewLoadFinishedEvent creates a LoadFinishedEvent.
func NewLoadFinishedEvent(runID string, completed bool, cards int) LoadFinishedEvent {
	return LoadFinishedEvent{
		baseEvent: newBaseEvent(TypeLoadFinished),
		RunID:     runID,
		Completed: completed,
		Cards:     cards,
	}
}

// -----------------------------------------------------------------------------
// Card Events
// -----------------------------------------------------------------------------

// CardReadyEvent is emitted when a card shell has been published.
type CardReadyEvent struct {
	baseEvent
	RunID      string
	Identifier string
	Position   int
}

// NewCardReadyEvent creates a CardReadyEvent.
func NewCardReadyEvent(runID, identifier string, position int) CardReadyEvent {
	return CardReadyEvent{
		baseEvent:  newBaseEvent(TypeCardReady),
		RunID:      runID,
		Identifier: identifier,
		Position:   position,
	}
}

// CardUpdatedEvent is emitted when an asset or attribute of a published
// card changes.
type CardUpdatedEvent struct {
	baseEvent
	Identifier string
	Field      string
}

// NewCardUpdatedEvent creates a CardUpdatedEvent.
func NewCardUpdatedEvent(identifier, field string) CardUpdatedEvent {
	return CardUpdatedEvent{
		baseEvent:  newBaseEvent(TypeCardUpdated),
		Identifier: identifier,
		Field:      field,
	}
}

// -----------------------------------------------------------------------------
// Cache Events
// -----------------------------------------------------------------------------

// CacheEvictedEvent is emitted for each entry a cache drops to stay in budget.
type CacheEvictedEvent struct {
	baseEvent
	Cache string // "icons", "thumbnails" or "infos"
	Key   string
}

// NewCacheEvictedEvent creates a CacheEvictedEvent.
func NewCacheEvictedEvent(cache, key string) CacheEvictedEvent {
	return CacheEvictedEvent{
		baseEvent: newBaseEvent(TypeCacheEvicted),
		Cache:     cache,
		Key:       key,
	}
}

// CacheTrimmedEvent is emitted after a memory-pressure trim.
type CacheTrimmedEvent struct {
	baseEvent
	Level string
}

// NewCacheTrimmedEvent creates a CacheTrimmedEvent.
func NewCacheTrimmedEvent(level string) CacheTrimmedEvent {
	return CacheTrimmedEvent{
		baseEvent: newBaseEvent(TypeCacheTrimmed),
		Level:     level,
	}
}

// -----------------------------------------------------------------------------
// Task Events
// -----------------------------------------------------------------------------

// TaskRemovedEvent is emitted when the user dismisses a task.
type TaskRemovedEvent struct {
	baseEvent
	Identifier   string
	PersistentID int
}

// NewTaskRemovedEvent creates a TaskRemovedEvent.
func NewTaskRemovedEvent(identifier string, persistentID int) TaskRemovedEvent {
	return TaskRemovedEvent{
		baseEvent:    newBaseEvent(TypeTaskRemoved),
		Identifier:   identifier,
		PersistentID: persistentID,
	}
}

// RegistryChangedEvent is emitted when the backing task registry changed
// on disk.
type RegistryChangedEvent struct {
	baseEvent
	Path string
}

// NewRegistryChangedEvent creates a RegistryChangedEvent.
func NewRegistryChangedEvent(path string) RegistryChangedEvent {
	return RegistryChangedEvent{
		baseEvent: newBaseEvent(TypeRegistryChanged),
		Path:      path,
	}
}
