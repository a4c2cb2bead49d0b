// internal/store/memory.go
//
// In-memory implementation of the KV interface.
// Used by tests and when BINGO_STORAGE=memory.
//
// Characteristics:
//   - Stores values as strings keyed by name in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"fmt"
	"strconv"
	"sync"
)

// memory is an in-memory map-based KV implementation.
type memory struct {
	mu   sync.RWMutex      // guards vals
	vals map[string]string // keyed by persisted field name
}

// NewMemory constructs a new in-memory KV.
func NewMemory() KV {
	return &memory{vals: make(map[string]string)}
}

func (m *memory) GetString(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vals[key]
	return v, ok, nil
}

func (m *memory) GetInt(ctx context.Context, key string) (int, bool, error) {
	s, ok, err := m.GetString(ctx, key)
	if err != nil || !ok {
		return 0, ok, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, true, fmt.Errorf("key %s: %w", key, err)
	}
	return n, true, nil
}

func (m *memory) Edit() Editor {
	return &memoryEditor{m: m, p: newPending()}
}

type memoryEditor struct {
	m *memory
	p pending
}

func (e *memoryEditor) PutInt(key string, v int) Editor {
	e.p.putInt(key, v)
	return e
}

func (e *memoryEditor) PutString(key, v string) Editor {
	e.p.put(key, v)
	return e
}

// Apply copies the batch into the map under the write lock.
func (e *memoryEditor) Apply(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	for _, k := range e.p.keys {
		e.m.vals[k] = e.p.vals[k]
	}
	return nil
}
