package cache

import (
	"sync"
)

// Observer receives cache events, typically to feed metrics
type Observer interface {
	Hit()
	Miss()
	Stale()
	Invalidated()
}

type noopObserver struct{}

func (noopObserver) Hit()         {}
func (noopObserver) Miss()        {}
func (noopObserver) Stale()       {}
func (noopObserver) Invalidated() {}

type entry[V any] struct {
	value      V
	generation uint64
}

// VersionedCache memoizes derived values under a global generation counter.
// Values are only served for the current generation; InvalidateAll retires
// every entry at once.
type VersionedCache[K comparable, V any] struct {
	mu         sync.RWMutex
	generation uint64
	entries    map[K]entry[V]
	observer   Observer
}

// Option configures a VersionedCache
type Option func(*options)

type options struct {
	observer Observer
}

// WithObserver registers an observer for cache events
func WithObserver(o Observer) Option {
	return func(opts *options) {
		if o != nil {
			opts.observer = o
		}
	}
}

// NewVersionedCache creates an empty cache at generation 0
func NewVersionedCache[K comparable, V any](opts ...Option) *VersionedCache[K, V] {
	o := options{observer: noopObserver{}}
	for _, opt := range opts {
		opt(&o)
	}
	return &VersionedCache[K, V]{
		entries:  make(map[K]entry[V]),
		observer: o.observer,
	}
}

// Generation returns the current generation
func (c *VersionedCache[K, V]) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// Len returns the number of stored entries
func (c *VersionedCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Get returns the value stored for key under generation, if it is still current
func (c *VersionedCache[K, V]) Get(key K, generation uint64) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	current := c.generation
	c.mu.RUnlock()

	if ok && e.generation == generation && generation == current {
		return e.value, true
	}
	if ok && e.generation != current {
		c.evict(key, e.generation)
	}
	var zero V
	return zero, false
}

// GetOrCompute returns the cached value for key, or runs compute and stores
// its result. compute runs without holding the lock; a result computed under
// a generation that has since been invalidated is returned but not stored.
// Errors from compute are returned and never cached.
func (c *VersionedCache[K, V]) GetOrCompute(key K, generation uint64, compute func() (V, error)) (V, error) {
	if value, ok := c.Get(key, generation); ok {
		c.observer.Hit()
		return value, nil
	}
	c.observer.Miss()

	value, err := compute()
	if err != nil {
		var zero V
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		c.observer.Stale()
		return value, nil
	}
	c.entries[key] = entry[V]{value: value, generation: generation}
	return value, nil
}

// InvalidateAll bumps the generation and drops every entry atomically.
// It returns the new generation.
func (c *VersionedCache[K, V]) InvalidateAll() uint64 {
	c.mu.Lock()
	c.generation++
	c.entries = make(map[K]entry[V])
	generation := c.generation
	c.mu.Unlock()

	c.observer.Invalidated()
	return generation
}

func (c *VersionedCache[K, V]) evict(key K, generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok && e.generation == generation {
		delete(c.entries, key)
	}
}
