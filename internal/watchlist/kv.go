// Package watchlist persists the set of starred symbols across sessions.
// Storage sits behind a small key-value capability so the store can run on
// an in-memory map in tests and degrade to one when persistence fails.
package watchlist

import "sync"

// KV is the minimal storage capability the watchlist needs.
type KV interface {
	// Get returns the value for key, and whether it exists.
	Get(key string) (string, bool, error)

	// Set stores the value for key, overwriting any previous value.
	Set(key, value string) error
}

// MemoryKV is a KV backed by a map. It is the test double and the degraded
// mode when durable storage is unavailable.
type MemoryKV struct {
	mu sync.Mutex
	m  map[string]string
}

// NewMemoryKV creates an empty in-memory KV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{m: make(map[string]string)}
}

func (kv *MemoryKV) Get(key string) (string, bool, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	v, ok := kv.m[key]
	return v, ok, nil
}

func (kv *MemoryKV) Set(key, value string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.m[key] = value
	return nil
}
