// Package view derives the visible page of rows from raw feed rows plus
// the user's filters. Compute is a pure function: identical inputs always
// yield identical output, and the input slice is never mutated.
package view

import (
	"sort"
	"strings"

	"sigboard/internal/feed"
)

// DefaultPageSize matches the reference card grid.
const DefaultPageSize = 12

// Query holds the user-controlled view inputs.
type Query struct {
	Search    string
	WatchOnly bool
	Page      int // 1-based; out-of-range values clamp
	PageSize  int // <= 0 means DefaultPageSize
}

// Result is one computed page.
type Result struct {
	Rows       []feed.Row // the visible page
	Page       int        // clamped page actually shown
	TotalPages int        // always >= 1
	Total      int        // filtered row count across all pages
}

// Compute filters, sorts, and paginates rows.
//
// Filter: a row survives iff its symbol contains the search term
// (case-insensitive; empty term matches all) and, when WatchOnly is set,
// its symbol is in the watchlist. Sort: descending by score, stable, with
// unscored rows sinking to the bottom. Paginate: fixed page size with the
// page clamped to [1, TotalPages].
func Compute(rows []feed.Row, q Query, watchlist map[string]bool) Result {
	size := q.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}

	search := strings.ToLower(strings.TrimSpace(q.Search))
	filtered := make([]feed.Row, 0, len(rows))
	for _, r := range rows {
		if search != "" && !strings.Contains(strings.ToLower(r.Symbol), search) {
			continue
		}
		if q.WatchOnly && !watchlist[r.Symbol] {
			continue
		}
		filtered = append(filtered, r)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return scoreKey(filtered[i]) > scoreKey(filtered[j])
	})

	totalPages := (len(filtered) + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * size
	end := start + size
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return Result{
		Rows:       filtered[start:end],
		Page:       page,
		TotalPages: totalPages,
		Total:      len(filtered),
	}
}

// scoreKey orders rows for the score-descending sort. Unscored rows rank
// below any scored row, never above.
func scoreKey(r feed.Row) float64 {
	if !r.HasScore {
		return -1e18
	}
	return r.Score
}
