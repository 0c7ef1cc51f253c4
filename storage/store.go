package storage

import (
	"context"
	"maps"
	"sync"
)

// KeyValueStore is the asynchronous store an [Adapter] persists through. Fetch of a
// missing key returns an empty map and a nil error. Store replaces the whole value;
// an empty map removes it.
type KeyValueStore interface {
	Fetch(ctx context.Context, key string) (map[string]string, error)
	Store(ctx context.Context, key string, value map[string]string) error
}

// MemoryStore is a process-local [KeyValueStore]. Values are copied on every read and
// write.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

// NewMemoryStore returns an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]string)}
}

func (m *MemoryStore) Fetch(ctx context.Context, key string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.data[key]))
	maps.Copy(out, m.data[key])
	return out, nil
}

func (m *MemoryStore) Store(ctx context.Context, key string, value map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(value) == 0 {
		delete(m.data, key)
		return nil
	}
	m.data[key] = maps.Clone(value)
	return nil
}
