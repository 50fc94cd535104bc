package watchlist

import (
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"reflect"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestToggleSymmetry(t *testing.T) {
	s := NewStore(NewMemoryKV(), testLogger())

	after := s.Toggle("BTC-USD")
	if !after["BTC-USD"] {
		t.Fatal("first toggle did not add the symbol")
	}
	after = s.Toggle("BTC-USD")
	if after["BTC-USD"] {
		t.Fatal("second toggle did not remove the symbol")
	}
	if len(after) != 0 {
		t.Errorf("set not empty after symmetric toggles: %v", after)
	}
}

func TestToggleTouchesOnlyItsSymbol(t *testing.T) {
	s := NewStore(NewMemoryKV(), testLogger())
	s.Toggle("AAPL")
	s.Toggle("ETH-USD")

	before := s.Load()
	delete(before, "AAPL")

	after := s.Toggle("AAPL")
	delete(after, "AAPL")
	if !reflect.DeepEqual(before, after) {
		t.Errorf("other symbols changed: before=%v after=%v", before, after)
	}
}

func TestPersistenceAcrossStores(t *testing.T) {
	kv := NewMemoryKV()

	first := NewStore(kv, testLogger())
	first.Toggle("SPY")
	first.Toggle("BTC-USD")
	first.Toggle("SPY")

	second := NewStore(kv, testLogger())
	got := second.Load()
	want := map[string]bool{"BTC-USD": true}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("reloaded set = %v, want %v", got, want)
	}
}

func TestSymbolsSorted(t *testing.T) {
	s := NewStore(NewMemoryKV(), testLogger())
	s.Toggle("SPY")
	s.Toggle("AAPL")
	s.Toggle("ETH-USD")

	want := []string{"AAPL", "ETH-USD", "SPY"}
	if got := s.Symbols(); !reflect.DeepEqual(got, want) {
		t.Errorf("Symbols() = %v, want %v", got, want)
	}
}

// failingKV errors on every operation, simulating unavailable storage.
type failingKV struct{}

func (failingKV) Get(string) (string, bool, error) { return "", false, errors.New("storage down") }
func (failingKV) Set(string, string) error         { return errors.New("storage down") }

func TestDegradedStoreStillToggles(t *testing.T) {
	s := NewStore(failingKV{}, testLogger())

	after := s.Toggle("BTC-USD")
	if !after["BTC-USD"] {
		t.Fatal("toggle must succeed in memory when persistence fails")
	}
	after = s.Toggle("BTC-USD")
	if after["BTC-USD"] {
		t.Fatal("removal must also succeed in memory")
	}
}

func TestCorruptEntryIgnored(t *testing.T) {
	kv := NewMemoryKV()
	kv.Set(storageKey, `{not json`)

	s := NewStore(kv, testLogger())
	if got := s.Load(); len(got) != 0 {
		t.Errorf("corrupt entry should yield empty watchlist, got %v", got)
	}

	// The store remains writable afterwards.
	if after := s.Toggle("AAPL"); !after["AAPL"] {
		t.Error("toggle failed after corrupt load")
	}
}

func TestSQLiteKVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.db")

	kv, err := OpenSQLiteKV(path)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}

	if _, ok, err := kv.Get("watchlist"); err != nil || ok {
		t.Fatalf("fresh database: ok=%v err=%v, want absent", ok, err)
	}
	if err := kv.Set("watchlist", `["SPY"]`); err != nil {
		t.Fatalf("first set: %v", err)
	}
	if err := kv.Set("watchlist", `["SPY","BTC-USD"]`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	kv.Close()

	// Reopen to prove the value survived on disk.
	kv, err = OpenSQLiteKV(path)
	if err != nil {
		t.Fatalf("reopening database: %v", err)
	}
	defer kv.Close()

	value, ok, err := kv.Get("watchlist")
	if err != nil || !ok {
		t.Fatalf("get after reopen: ok=%v err=%v", ok, err)
	}
	if value != `["SPY","BTC-USD"]` {
		t.Errorf("value = %q, want overwritten list", value)
	}
}

func TestStoreOverSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.db")
	kv, err := OpenSQLiteKV(path)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer kv.Close()

	NewStore(kv, testLogger()).Toggle("ETH-USD")

	got := NewStore(kv, testLogger()).Load()
	if !got["ETH-USD"] {
		t.Errorf("watchlist not persisted through sqlite: %v", got)
	}
}
