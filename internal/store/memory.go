package store

import (
	"context"
	"sync"
)

// MemoryKV is a process-local KeyValue used for throwaway sessions and tests
type MemoryKV struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewMemoryKV creates an empty in-memory store
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{entries: make(map[string]string)}
}

func (m *MemoryKV) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *MemoryKV) Put(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *MemoryKV) Update(ctx context.Context, key string, fn func(string, bool) (string, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	current, found := m.entries[key]
	next, err := fn(current, found)
	if err != nil {
		return err
	}
	m.entries[key] = next
	return nil
}

func (m *MemoryKV) Close() error {
	return nil
}
