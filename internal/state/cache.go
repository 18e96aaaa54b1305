// Package state holds the in-memory read side of the ledger: a read-through
// cache per collection, invalidated after every successful write. It is an
// injected dependency, never ambient global state.
package state

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Loader fetches one collection for one namespace from the store.
type Loader[T any] func(ctx context.Context, ns string) ([]T, error)

// Cache is a read-through cache over one collection, keyed by namespace.
// Concurrent cache misses for the same namespace collapse into a single
// store read. Values handed out are shared slices; callers must not mutate
// them.
type Cache[T any] struct {
	load Loader[T]

	mu    sync.RWMutex
	data  map[string][]T
	group singleflight.Group
}

// NewCache builds a cache around a collection loader.
func NewCache[T any](load Loader[T]) *Cache[T] {
	return &Cache[T]{load: load, data: make(map[string][]T)}
}

// Get returns the cached collection for ns, loading it on first use.
func (c *Cache[T]) Get(ctx context.Context, ns string) ([]T, error) {
	c.mu.RLock()
	cached, ok := c.data[ns]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := c.group.Do(ns, func() (any, error) {
		loaded, err := c.load(ctx, ns)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.data[ns] = loaded
		c.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]T), nil
}

// Invalidate drops the cached collection for ns. Call after every
// successful write that touches the collection.
func (c *Cache[T]) Invalidate(ns string) {
	c.mu.Lock()
	delete(c.data, ns)
	c.mu.Unlock()
}

// FirstNonEmpty reads the collection from each candidate namespace in order
// and returns the first non-empty result along with the namespace that
// provided it. The candidate order is the caller's explicit fallback
// policy. All candidates empty yields the last namespace and an empty
// slice.
func (c *Cache[T]) FirstNonEmpty(ctx context.Context, namespaces []string) ([]T, string, error) {
	var (
		last  []T
		lastN string
	)
	for _, ns := range namespaces {
		got, err := c.Get(ctx, ns)
		if err != nil {
			return nil, ns, err
		}
		last, lastN = got, ns
		if len(got) > 0 {
			return got, ns, nil
		}
	}
	return last, lastN, nil
}
