package notes

import "sync"

// Cache holds optimistic values keyed by id. A pending value shadows the
// committed one until it is committed or rolled back.
type Cache[T any] struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry[T]
}

type cacheEntry[T any] struct {
	committed T
	pending   *T
}

// NewCache returns an empty cache.
func NewCache[T any]() *Cache[T] {
	return &Cache[T]{entries: make(map[string]*cacheEntry[T])}
}

// Load replaces the committed value for key and drops any pending one.
func (c *Cache[T]) Load(key string, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &cacheEntry[T]{committed: v}
}

// Apply records v as the pending value for key.
func (c *Cache[T]) Apply(key string, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		var zero T
		e = &cacheEntry[T]{committed: zero}
		c.entries[key] = e
	}
	e.pending = &v
}

// Commit promotes the pending value for key.
func (c *Cache[T]) Commit(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok && e.pending != nil {
		e.committed = *e.pending
		e.pending = nil
	}
}

// Rollback discards the pending value for key and returns the committed one.
func (c *Cache[T]) Rollback(key string) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		var zero T
		return zero
	}
	e.pending = nil
	return e.committed
}

// Value returns the pending value for key if any, else the committed one.
func (c *Cache[T]) Value(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	if e.pending != nil {
		return *e.pending, true
	}
	return e.committed, true
}

// Pending reports whether key has an uncommitted value.
func (c *Cache[T]) Pending(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return ok && e.pending != nil
}
