package store

import (
	"context"
	"sync"
	"time"

	"portal_dashboard/backend/internal/dashboard"
)

type memoryEntry struct {
	payload []byte
	savedAt time.Time
}

// MemoryStore keeps bundles in process memory. It is used when no MongoDB
// URI is configured, and in tests.
type MemoryStore struct {
	now func() time.Time

	mu      sync.RWMutex
	entries map[dashboard.SlotKey]memoryEntry
}

// NewMemoryStore returns an empty MemoryStore. now defaults to time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{now: now, entries: make(map[dashboard.SlotKey]memoryEntry)}
}

func (m *MemoryStore) Load(_ context.Context, key dashboard.SlotKey) (dashboard.Bundle, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return dashboard.Bundle{}, false, nil
	}

	b, err := decodeBundle(entry.payload)
	if err != nil {
		return dashboard.Bundle{}, false, err
	}
	return b, true, nil
}

func (m *MemoryStore) Save(_ context.Context, key dashboard.SlotKey, b dashboard.Bundle) error {
	payload, err := encodeBundle(b)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.entries[key] = memoryEntry{payload: payload, savedAt: m.now()}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Forget(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if key.UserID == userID {
			delete(m.entries, key)
		}
	}
	return nil
}

func (m *MemoryStore) Purge(_ context.Context, olderThan time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for key, entry := range m.entries {
		if entry.savedAt.Before(olderThan) {
			delete(m.entries, key)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored bundles.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
