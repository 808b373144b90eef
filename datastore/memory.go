package datastore

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// Memory is an in-process Store. Expired entries are dropped lazily on
// read and swept by a janitor goroutine.
type Memory struct {
	mu        sync.RWMutex
	items     map[string]memoryEntry
	stopClean chan struct{}
	stopOnce  sync.Once
}

// NewMemory creates a memory store and starts its sweep loop.
func NewMemory() *Memory {
	m := &Memory{
		items:     make(map[string]memoryEntry),
		stopClean: make(chan struct{}),
	}
	go m.cleanupLoop()
	return m
}

func (m *Memory) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopClean:
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

func (m *Memory) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for k, v := range m.items {
		if !v.expiresAt.IsZero() && now.After(v.expiresAt) {
			delete(m.items, k)
		}
	}
}

// Close stops the sweep loop.
func (m *Memory) Close() error {
	m.stopOnce.Do(func() { close(m.stopClean) })
	return nil
}

func (m *Memory) Exists(ctx context.Context, key string) bool {
	_, err := m.Read(ctx, key)
	return err == nil
}

func (m *Memory) Read(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	entry, ok := m.items[key]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.items, key)
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	out := make([]byte, len(entry.data))
	copy(out, entry.data)
	return out, nil
}

func (m *Memory) Write(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{data: make([]byte, len(value))}
	copy(entry.data, value)
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	m.mu.Lock()
	m.items[key] = entry
	m.mu.Unlock()
	return nil
}
