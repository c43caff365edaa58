package store

import (
	"context"
	"sync"

	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/pkg/types"
)

// MemoryStore is an in-process Store for tests and single-run CLI use.
type MemoryStore struct {
	mu      sync.RWMutex
	latest  map[string]types.CheckRecord
	history map[string][]types.HistoryEntry
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		latest:  make(map[string]types.CheckRecord),
		history: make(map[string][]types.HistoryEntry),
	}
}

func (m *MemoryStore) SaveCheck(_ context.Context, rec types.CheckRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest[rec.Site] = rec
	return nil
}

func (m *MemoryStore) AppendHistory(_ context.Context, entry types.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history[entry.Site] = append(m.history[entry.Site], entry)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, site string) (types.CheckRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.latest[site]
	if !ok {
		return types.CheckRecord{}, ErrNotFound
	}
	return rec, nil
}

func (m *MemoryStore) History(_ context.Context, site string, limit int) ([]types.HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := m.history[site]
	out := make([]types.HistoryEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, entries[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
