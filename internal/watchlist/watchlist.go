package watchlist

import (
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
)

// storageKey is the single key holding the JSON-encoded symbol list.
const storageKey = "watchlist"

// Store holds the watched symbols in memory and mirrors them to a KV.
// A persistence failure degrades the store to session-only: toggles keep
// working against memory and a warning is logged.
type Store struct {
	mu       sync.Mutex
	kv       KV
	symbols  map[string]bool
	degraded bool
	log      *slog.Logger
}

// NewStore creates a Store and loads the persisted symbol set once. A KV
// read failure starts the session with an empty, memory-only watchlist.
func NewStore(kv KV, log *slog.Logger) *Store {
	s := &Store{kv: kv, symbols: make(map[string]bool), log: log}

	value, ok, err := kv.Get(storageKey)
	if err != nil {
		s.degraded = true
		log.Warn("watchlist storage unavailable, session-only", "error", err)
		return s
	}
	if !ok {
		return s
	}

	var list []string
	if err := json.Unmarshal([]byte(value), &list); err != nil {
		log.Warn("corrupt watchlist entry ignored", "error", err)
		return s
	}
	for _, sym := range list {
		s.symbols[sym] = true
	}
	log.Info("watchlist loaded", "symbols", len(s.symbols))
	return s
}

// Load returns a copy of the current symbol set.
func (s *Store) Load() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// Toggle flips membership for one symbol, persists the new set, and
// returns a copy of it. No other symbol is touched, and the toggle
// succeeds even when persistence fails.
func (s *Store) Toggle(symbol string) map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.symbols[symbol] {
		delete(s.symbols, symbol)
	} else {
		s.symbols[symbol] = true
	}
	s.flushLocked()
	return s.copyLocked()
}

// Symbols returns the watched symbols sorted for stable display.
func (s *Store) Symbols() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.symbols))
	for sym := range s.symbols {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// flushLocked writes the symbol list to the KV. Must be called with mu held.
func (s *Store) flushLocked() {
	list := make([]string, 0, len(s.symbols))
	for sym := range s.symbols {
		list = append(list, sym)
	}
	sort.Strings(list)

	data, err := json.Marshal(list)
	if err != nil {
		s.log.Error("marshalling watchlist", "error", err)
		return
	}
	if err := s.kv.Set(storageKey, string(data)); err != nil {
		if !s.degraded {
			s.degraded = true
			s.log.Warn("watchlist persistence failed, session-only", "error", err)
		}
	}
}

func (s *Store) copyLocked() map[string]bool {
	out := make(map[string]bool, len(s.symbols))
	for sym := range s.symbols {
		out[sym] = true
	}
	return out
}
