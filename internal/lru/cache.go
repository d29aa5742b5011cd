// Package lru provides a generic, cost-bounded least-recently-used cache
// with eviction listeners.
//
// Recency bookkeeping is delegated to groupcache's lru.Cache; this package
// adds typed access, a cost budget, and listener delivery outside the lock so
// a listener may safely call back into any cache, including the one that
// evicted the entry.
package lru

import (
	"sync"
	"sync/atomic"

	glru "github.com/golang/groupcache/lru"
)

// Listener is notified once for every entry dropped to satisfy the cost
// budget, by TrimToSize, or by Clear. Explicit Remove calls are silent.
type Listener[K comparable, V any] func(key K, value V)

// CostFunc returns the cost an entry charges against the budget.
type CostFunc[K comparable, V any] func(key K, value V) int64

// Options configures a Cache.
type Options[K comparable, V any] struct {
	// MaxSize is the total cost budget. Values <= 0 make every Put evict
	// the inserted entry immediately.
	MaxSize int64
	// Cost defaults to 1 per entry, turning MaxSize into an entry count.
	Cost CostFunc[K, V]
	// OnEvict is registered as the first listener when non-nil.
	OnEvict Listener[K, V]
}

// Stats is a point-in-time view of cache counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Len       int
	Size      int64
	MaxSize   int64
}

type evicted[K comparable, V any] struct {
	key   K
	value V
}

// Cache is safe for concurrent use.
type Cache[K comparable, V any] struct {
	mu        sync.Mutex
	ll        *glru.Cache
	costs     map[K]int64
	size      int64
	maxSize   int64
	cost      CostFunc[K, V]
	listeners []Listener[K, V]

	// pending collects entries dropped during the current locked section.
	pending []evicted[K, V]
	// quiet suppresses collection while an explicit Remove runs.
	quiet bool

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates a Cache from opts.
func New[K comparable, V any](opts Options[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{
		ll:      glru.New(0),
		costs:   make(map[K]int64),
		maxSize: opts.MaxSize,
		cost:    opts.Cost,
	}
	if c.cost == nil {
		c.cost = func(K, V) int64 { return 1 }
	}
	if opts.OnEvict != nil {
		c.listeners = append(c.listeners, opts.OnEvict)
	}
	c.ll.OnEvicted = c.dropped
	return c
}

// OnEvict registers an additional eviction listener.
func (c *Cache[K, V]) OnEvict(fn Listener[K, V]) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// dropped is groupcache's OnEvicted hook. Must be called while c.mu is held.
func (c *Cache[K, V]) dropped(key glru.Key, value any) {
	k := key.(K)
	v, _ := value.(V)
	c.size -= c.costs[k]
	delete(c.costs, k)
	if c.quiet {
		return
	}
	c.pending = append(c.pending, evicted[K, V]{key: k, value: v})
}

// Get returns the value for key and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	value, ok := c.ll.Get(key)
	c.mu.Unlock()

	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	c.hits.Add(1)
	v, _ := value.(V)
	return v, true
}

// Contains reports whether key is cached without touching its recency.
func (c *Cache[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.costs[key]
	return ok
}

// Put inserts or replaces key and then evicts least recently used entries
// until the total cost fits the budget. Listeners run before Put returns.
func (c *Cache[K, V]) Put(key K, value V) {
	cost := c.cost(key, value)
	if cost < 0 {
		cost = 0
	}

	c.mu.Lock()
	if old, ok := c.costs[key]; ok {
		c.size -= old
	}
	c.costs[key] = cost
	c.size += cost
	c.ll.Add(key, value)
	c.trimLocked(c.maxSize)
	dropped, listeners := c.drainLocked()
	c.mu.Unlock()

	c.notify(dropped, listeners)
}

// Remove deletes key without notifying listeners. It reports whether the key
// was present.
func (c *Cache[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.costs[key]; !ok {
		return false
	}
	c.quiet = true
	c.ll.Remove(key)
	c.quiet = false
	return true
}

// TrimToSize evicts least recently used entries until the total cost is at
// most target.
func (c *Cache[K, V]) TrimToSize(target int64) {
	c.mu.Lock()
	c.trimLocked(target)
	dropped, listeners := c.drainLocked()
	c.mu.Unlock()

	c.notify(dropped, listeners)
}

// Clear evicts every entry, notifying listeners for each.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	c.ll.Clear()
	c.size = 0
	dropped, listeners := c.drainLocked()
	c.mu.Unlock()

	c.notify(dropped, listeners)
}

// MaxSize returns the cost budget.
func (c *Cache[K, V]) MaxSize() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxSize
}

// Size returns the total cost of the cached entries.
func (c *Cache[K, V]) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.costs)
}

// Keys returns the cached keys in no particular order.
func (c *Cache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, len(c.costs))
	for k := range c.costs {
		keys = append(keys, k)
	}
	return keys
}

// Stats returns the current counters.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	n, size, maxSize := len(c.costs), c.size, c.maxSize
	c.mu.Unlock()

	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Len:       n,
		Size:      size,
		MaxSize:   maxSize,
	}
}

// trimLocked must be called while c.mu is held.
func (c *Cache[K, V]) trimLocked(target int64) {
	for c.size > target && c.ll.Len() > 0 {
		c.ll.RemoveOldest()
	}
}

// drainLocked hands over the collected evictions together with a snapshot of
// the listeners. Must be called while c.mu is held.
func (c *Cache[K, V]) drainLocked() ([]evicted[K, V], []Listener[K, V]) {
	if len(c.pending) == 0 {
		return nil, nil
	}
	dropped := c.pending
	c.pending = nil
	listeners := make([]Listener[K, V], len(c.listeners))
	copy(listeners, c.listeners)
	return dropped, listeners
}

func (c *Cache[K, V]) notify(dropped []evicted[K, V], listeners []Listener[K, V]) {
	if len(dropped) == 0 {
		return
	}
	c.evictions.Add(uint64(len(dropped)))
	for _, e := range dropped {
		for _, fn := range listeners {
			fn(e.key, e.value)
		}
	}
}
