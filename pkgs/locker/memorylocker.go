package locker

import (
	"context"
	"fmt"
	"sync"
)

type memoryEntry struct {
	sem  chan struct{}
	refs int
}

// MemoryLocker is a keyed mutex for a single process. Entries are dropped
// once nobody holds or waits on them.
type MemoryLocker struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{entries: make(map[string]*memoryEntry)}
}

func (m *MemoryLocker) Obtain(ctx context.Context, key string) (Lock, error) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		e = &memoryEntry{sem: make(chan struct{}, 1)}
		m.entries[key] = e
	}
	e.refs++
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		m.unref(key, e)
		return nil, fmt.Errorf("%w: %s: %w", ErrNotObtained, key, err)
	}

	select {
	case e.sem <- struct{}{}:
		return &memoryLock{owner: m, key: key, entry: e}, nil
	case <-ctx.Done():
		m.unref(key, e)
		return nil, fmt.Errorf("%w: %s: %w", ErrNotObtained, key, ctx.Err())
	}
}

// Len returns the number of keys currently held or waited on.
func (m *MemoryLocker) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *MemoryLocker) unref(key string, e *memoryEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(m.entries, key)
	}
}

type memoryLock struct {
	once  sync.Once
	owner *MemoryLocker
	key   string
	entry *memoryEntry
}

// Release frees the lock. Releasing more than once is a no-op.
func (l *memoryLock) Release(ctx context.Context) error {
	l.once.Do(func() {
		<-l.entry.sem
		l.owner.unref(l.key, l.entry)
	})
	return nil
}
