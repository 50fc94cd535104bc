// Package archive keeps local Parquet snapshots of normalized feed rows,
// one file per feed per day, so past refreshes can be inspected offline.
package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"sigboard/internal/feed"
)

// Record is the on-disk Parquet schema for one snapshot row.
type Record struct {
	Feed      string  `parquet:"feed"`
	Symbol    string  `parquet:"symbol"`
	Note      string  `parquet:"note"`
	HasNote   bool    `parquet:"has_note"`
	Score     float64 `parquet:"score"`
	HasScore  bool    `parquet:"has_score"`
	Raw       string  `parquet:"raw"` // original record, JSON-encoded
	FetchedAt int64   `parquet:"fetched_at,timestamp(millisecond)"`
}

// Archive reads and writes feed snapshots rooted at DataDir.
// Layout: <DataDir>/feeds/<tab>/<YYYY-MM-DD>.parquet
type Archive struct {
	DataDir string
}

// New creates an Archive rooted at dataDir.
func New(dataDir string) *Archive {
	return &Archive{DataDir: dataDir}
}

// Write appends a refresh's rows to the day's snapshot file, deduplicating
// by (symbol, fetched_at) with new records winning.
func (a *Archive) Write(tab string, rows []feed.Row, fetchedAt time.Time) error {
	if len(rows) == 0 {
		return nil
	}

	records := make([]Record, 0, len(rows))
	ts := fetchedAt.UnixMilli()
	for _, r := range rows {
		raw, err := json.Marshal(r.Raw)
		if err != nil {
			raw = []byte("{}")
		}
		records = append(records, Record{
			Feed:      tab,
			Symbol:    r.Symbol,
			Note:      r.Note,
			HasNote:   r.HasNote,
			Score:     r.Score,
			HasScore:  r.HasScore,
			Raw:       string(raw),
			FetchedAt: ts,
		})
	}

	path := a.snapshotPath(tab, fetchedAt.Format("2006-01-02"))
	existing, _ := parquet.ReadFile[Record](path)
	merged := mergeRecords(existing, records)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := parquet.WriteFile(path, merged); err != nil {
		return fmt.Errorf("writing snapshot for %s/%s: %w", tab, fetchedAt.Format("2006-01-02"), err)
	}
	return nil
}

// Read loads a day's snapshot back into rows, in on-disk order.
func (a *Archive) Read(tab, date string) ([]feed.Row, error) {
	path := a.snapshotPath(tab, date)
	records, err := parquet.ReadFile[Record](path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	rows := make([]feed.Row, 0, len(records))
	for _, rec := range records {
		var raw map[string]any
		if err := json.Unmarshal([]byte(rec.Raw), &raw); err != nil {
			raw = map[string]any{}
		}
		rows = append(rows, feed.Row{
			Symbol:   rec.Symbol,
			Note:     rec.Note,
			HasNote:  rec.HasNote,
			Score:    rec.Score,
			HasScore: rec.HasScore,
			Raw:      raw,
		})
	}
	return rows, nil
}

// ListDates returns the sorted snapshot dates available for a tab.
func (a *Archive) ListDates(tab string) ([]string, error) {
	dir := filepath.Join(a.DataDir, "feeds", tab)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var dates []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".parquet") {
			continue
		}
		dates = append(dates, strings.TrimSuffix(e.Name(), ".parquet"))
	}
	sort.Strings(dates)
	return dates, nil
}

func (a *Archive) snapshotPath(tab, date string) string {
	return filepath.Join(a.DataDir, "feeds", tab, date+".parquet")
}

// mergeRecords deduplicates by (symbol, fetched_at), preferring incoming
// records, and sorts by fetch time then symbol.
func mergeRecords(existing, incoming []Record) []Record {
	type key struct {
		symbol string
		ts     int64
	}
	seen := make(map[key]Record, len(existing)+len(incoming))
	for _, r := range existing {
		seen[key{r.Symbol, r.FetchedAt}] = r
	}
	for _, r := range incoming {
		seen[key{r.Symbol, r.FetchedAt}] = r
	}

	merged := make([]Record, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].FetchedAt != merged[j].FetchedAt {
			return merged[i].FetchedAt < merged[j].FetchedAt
		}
		return merged[i].Symbol < merged[j].Symbol
	})
	return merged
}
