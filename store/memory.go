package store

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Memory keeps documents in process memory.
type Memory struct {
	docs map[string][]byte
	mux  sync.RWMutex
}

// NewMemory returns an empty in memory store.
func NewMemory() *Memory {
	return &Memory{
		docs: make(map[string][]byte),
	}
}

func (m *Memory) Exists(ctx context.Context, key string) (bool, error) {
	m.mux.RLock()
	defer m.mux.RUnlock()

	_, ok := m.docs[key]
	return ok, nil
}

func (m *Memory) Read(ctx context.Context, key string) ([]byte, error) {
	m.mux.RLock()
	defer m.mux.RUnlock()

	data, ok := m.docs[key]
	if !ok {
		return nil, ErrNotFound
	}

	return append([]byte(nil), data...), nil
}

func (m *Memory) Write(ctx context.Context, key string, data []byte) error {
	m.mux.Lock()
	defer m.mux.Unlock()

	m.docs[key] = append([]byte(nil), data...)
	return nil
}

func (m *Memory) List(ctx context.Context, prefix string) ([]string, error) {
	m.mux.RLock()
	defer m.mux.RUnlock()

	keys := make([]string, 0)
	for key := range m.docs {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	return keys, nil
}
