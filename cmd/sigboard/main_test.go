package main

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"sigboard/internal/config"
	"sigboard/internal/feed"
	"sigboard/internal/watchlist"
)

func testModel(t *testing.T) model {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{}
	cfg.Feeds.BaseURL = "http://127.0.0.1:1"
	cfg.Feeds.FetchTimeout = time.Second
	cfg.Feeds.RefreshInterval = time.Minute
	cfg.View.PageSize = 12
	loader := feed.NewLoader(cfg.Feeds.BaseURL, cfg.Feeds.FetchTimeout, logger)
	wl := watchlist.NewStore(watchlist.NewMemoryKV(), logger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return initialModel(cfg, loader, wl, nil, logger, ctx, cancel)
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestCurrentTickRefreshesAndRearms(t *testing.T) {
	m := testModel(t)

	next, cmd := m.Update(tickMsg{gen: m.tickGen, t: time.Now()})
	m = next.(model)
	if cmd == nil {
		t.Fatal("current-generation tick must refresh and re-arm")
	}
	if m.pending != len(feed.Tabs) {
		t.Errorf("pending = %d, want %d", m.pending, len(feed.Tabs))
	}
}

func TestTickWhileDisabledIsDropped(t *testing.T) {
	m := testModel(t)

	next, _ := m.Update(keyMsg("a"))
	m = next.(model)
	if m.autoRefresh {
		t.Fatal("first press should disable auto-refresh")
	}

	next, cmd := m.Update(tickMsg{gen: m.tickGen, t: time.Now()})
	m = next.(model)
	if cmd != nil {
		t.Error("tick re-armed while auto-refresh is off")
	}
	if m.pending != 0 {
		t.Error("tick started a refresh while auto-refresh is off")
	}
}

// An off/on toggle inside one refresh interval must not leave two tick
// chains running: the tick scheduled before the toggle arrives late, sees
// auto-refresh enabled again, and has to be dropped rather than re-armed.
func TestStaleTickAfterToggleCycleIsDropped(t *testing.T) {
	m := testModel(t)
	startGen := m.tickGen

	next, _ := m.Update(keyMsg("a")) // off
	m = next.(model)
	next, cmd := m.Update(keyMsg("a")) // on, arms a fresh chain
	m = next.(model)
	if !m.autoRefresh {
		t.Fatal("second press should re-enable auto-refresh")
	}
	if cmd == nil {
		t.Fatal("re-enabling auto-refresh should arm a tick")
	}
	if m.tickGen == startGen {
		t.Fatal("toggle cycle did not advance the tick generation")
	}

	next, cmd = m.Update(tickMsg{gen: startGen, t: time.Now()})
	m = next.(model)
	if cmd != nil {
		t.Error("stale tick re-armed a second chain")
	}
	if m.pending != 0 {
		t.Error("stale tick started a refresh")
	}

	// The fresh chain still works.
	_, cmd = m.Update(tickMsg{gen: m.tickGen, t: time.Now()})
	if cmd == nil {
		t.Error("current chain stopped refreshing after the toggle cycle")
	}
}
