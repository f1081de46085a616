// Package roomlock serializes load-mutate-save sequences against the shared
// room store. The store has no compare-and-swap, so every mutating use case
// must hold the room's lock for the whole span or concurrent calls lose
// updates.
package roomlock

import (
	"context"
	"sync"
)

type entry struct {
	sem  chan struct{}
	refs int
}

// Locker hands out one mutual-exclusion slot per key. Idle keys hold no
// memory: entries are dropped once the last interested caller is gone.
type Locker struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func New() *Locker {
	return &Locker{
		entries: make(map[string]*entry),
	}
}

// Acquire blocks until the key's slot is free or ctx is done. On success it
// returns the release func; the caller must invoke it exactly once.
func (l *Locker) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
		return func() {
			<-e.sem
			l.unref(key, e)
		}, nil
	case <-ctx.Done():
		l.unref(key, e)
		return nil, ctx.Err()
	}
}

func (l *Locker) unref(key string, e *entry) {
	l.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
	l.mu.Unlock()
}
