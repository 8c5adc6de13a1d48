// Package storage provides snapshot persistence behind a pluggable
// key-value capability. Collections are written whole under a fixed key
// and read back on startup; a store that loses writes only costs
// durability, never correctness of the in-memory state.
package storage

import (
	"context"
	"sync"
)

// Store reads and writes opaque snapshot blobs by key.
type Store interface {
	// Read returns the blob stored under key. The second return value
	// reports whether a snapshot was present.
	Read(ctx context.Context, key string) ([]byte, bool, error)
	// Write replaces the blob stored under key.
	Write(ctx context.Context, key string, blob []byte) error
}

// Memory is a process-local Store. It backs tests and sessions that run
// without a durable medium.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

// Read implements Store.
func (m *Memory) Read(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	blob, ok := m.blobs[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, true, nil
}

// Write implements Store.
func (m *Memory) Write(_ context.Context, key string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(blob))
	copy(stored, blob)
	m.blobs[key] = stored
	return nil
}
