// Package snapshot caches a derived value keyed on a monotonically bumped source version.
package snapshot

import (
	"context"
	"sync"
	"sync/atomic"
)

// Entry is a built value and the source version it was built from.
type Entry[T any] struct {
	Version int64
	Value   T
}

// BuildFunc derives a fresh value from the source at the given version.
type BuildFunc[T any] func(ctx context.Context, version int64) (T, error)

// Holder serves the current value lock-free and serializes rebuilds.
// Readers holding an old Entry keep using it after a swap.
type Holder[T any] struct {
	current atomic.Pointer[Entry[T]]
	mu      sync.Mutex
	build   BuildFunc[T]
}

// New creates an empty holder. The first Get always builds.
func New[T any](build BuildFunc[T]) *Holder[T] {
	return &Holder[T]{build: build}
}

// Get returns the value for version, rebuilding when the cached entry is older or missing.
// Concurrent callers waiting on the same version share one rebuild.
func (h *Holder[T]) Get(ctx context.Context, version int64) (*Entry[T], bool, error) {
	if e := h.current.Load(); e != nil && e.Version == version {
		return e, false, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if e := h.current.Load(); e != nil && e.Version == version {
		return e, false, nil
	}

	v, err := h.build(ctx, version)
	if err != nil {
		return nil, false, err
	}
	e := &Entry[T]{Version: version, Value: v}
	h.current.Store(e)
	return e, true, nil
}
