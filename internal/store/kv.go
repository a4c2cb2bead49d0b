// internal/store/kv.go
//
// Key-value persistence port used by the session manager.
// Reads are typed lookups; writes are batched through an Editor and only
// land when Apply is called, all keys of one batch together.
//
// Implementations:
//   - memory (NewMemory): map-backed, lost on restart. Tests and dev.
//   - sqlite (NewSQLite): one row per key in the kv table.

package store

import (
	"context"
	"strconv"
)

// KV is the storage provider consumed by the session manager.
type KV interface {
	// GetInt returns the value stored under key. ok is false when the key
	// has never been written.
	GetInt(ctx context.Context, key string) (v int, ok bool, err error)

	// GetString returns the value stored under key. ok is false when the
	// key has never been written.
	GetString(ctx context.Context, key string) (v string, ok bool, err error)

	// Edit starts a batch of writes.
	Edit() Editor
}

// Editor accumulates writes until Apply.
type Editor interface {
	PutInt(key string, v int) Editor
	PutString(key string, v string) Editor

	// Apply commits every pending write atomically.
	Apply(ctx context.Context) error
}

// pending is the write buffer shared by both implementations.
// Values are kept as strings; ints are formatted on put.
type pending struct {
	keys []string
	vals map[string]string
}

func newPending() pending { return pending{vals: make(map[string]string)} }

func (p *pending) put(key, v string) {
	if _, ok := p.vals[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.vals[key] = v
}

func (p *pending) putInt(key string, v int) { p.put(key, strconv.Itoa(v)) }
