package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"sigboard/internal/util"
)

// Loader fetches feeds from the engine's published URLs. Every failure
// mode (network error, non-2xx status, malformed body) degrades that one
// feed to an empty row list; no error ever reaches the caller, and sibling
// feeds are unaffected.
type Loader struct {
	baseURL  string
	client   *http.Client
	log      *slog.Logger
	inflight atomic.Int64
}

// NewLoader creates a Loader for feeds under baseURL.
func NewLoader(baseURL string, timeout time.Duration, log *slog.Logger) *Loader {
	return &Loader{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

// InFlight reports whether any fetch is currently running. Advisory only:
// refreshes are idempotent reads and are never coalesced; this exists so a
// UI can grey out duplicate manual triggers.
func (l *Loader) InFlight() bool {
	return l.inflight.Load() > 0
}

// LoadFeed fetches and normalizes a single feed. The result is empty when
// the feed is down, malformed, or legitimately has nothing to say; those
// cases are indistinguishable by design and resolved by the demo fallback
// at the presentation layer.
func (l *Loader) LoadFeed(ctx context.Context, tab string) []Row {
	path, ok := Paths[tab]
	if !ok {
		l.log.Warn("unknown feed tab", "tab", tab)
		return nil
	}

	l.inflight.Add(1)
	defer l.inflight.Add(-1)

	var body []byte
	err := util.RetryFetch(ctx, func() error {
		var ferr error
		body, ferr = l.fetch(ctx, path)
		return ferr
	})
	if err != nil {
		l.log.Warn("feed fetch failed", "tab", tab, "error", err)
		return nil
	}

	rows := NormalizeJSON(body)
	l.log.Info("feed loaded", "tab", tab, "rows", len(rows))
	return rows
}

// LoadAll fetches the given feeds concurrently and joins the results.
// Callers wanting per-feed commit (the dashboard) call LoadFeed from one
// goroutine per tab instead.
func (l *Loader) LoadAll(ctx context.Context, tabs []string) map[string][]Row {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result = make(map[string][]Row, len(tabs))
	)
	for _, tab := range tabs {
		wg.Add(1)
		go func(tab string) {
			defer wg.Done()
			rows := l.LoadFeed(ctx, tab)
			mu.Lock()
			result[tab] = rows
			mu.Unlock()
		}(tab)
	}
	wg.Wait()
	return result
}

// fetch issues one cache-defeating GET. Stale signals are worse than no
// signals, so caching is disabled at both the header and URL level.
func (l *Loader) fetch(ctx context.Context, path string) ([]byte, error) {
	url := fmt.Sprintf("%s%s?t=%d", l.baseURL, path, time.Now().UnixMilli())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
