package feed

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Wrapper keys probed, in priority order, when a payload is an object
// rather than a bare array. "signals" is the engine's oldest wrapped form.
var wrapperKeys = []string{"records", "data", "values", "signals"}

// Field aliases, in priority order. Different engine versions used
// different names for the same concept.
var (
	symbolKeys = []string{"ticker", "symbol", "SYMBOL", "underlying", "root"}
	noteKeys   = []string{"note", "strategy", "action", "timeframe"}
)

// NormalizeJSON decodes a raw feed body and normalizes it. A body that is
// not valid JSON yields an empty list.
func NormalizeJSON(body []byte) []Row {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil
	}
	return Normalize(payload)
}

// Normalize converts an arbitrary decoded JSON payload into a fixed-shape
// row list. It never panics; unrecognized shapes produce an empty list.
func Normalize(payload any) []Row {
	records := candidateRecords(payload)
	if len(records) == 0 {
		return nil
	}

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, normalizeRecord(rec))
	}
	return rows
}

// candidateRecords extracts the record list: a bare array is used directly,
// an object is probed for the first wrapper key holding an array.
func candidateRecords(payload any) []any {
	switch v := payload.(type) {
	case []any:
		return v
	case map[string]any:
		for _, key := range wrapperKeys {
			if list, ok := v[key].([]any); ok {
				return list
			}
		}
	}
	return nil
}

func normalizeRecord(rec any) Row {
	obj, ok := rec.(map[string]any)
	if !ok {
		// Non-object element: keep it for detail display, nothing to map.
		return Row{Raw: map[string]any{"value": rec}}
	}

	row := Row{Raw: obj}

	for _, key := range symbolKeys {
		if v, ok := obj[key]; ok {
			row.Symbol = coerceString(v)
			break
		}
	}

	for _, key := range noteKeys {
		if s, ok := obj[key].(string); ok {
			row.Note = s
			row.HasNote = true
			break
		}
	}

	// Score precedence: prob, then score, then weekly_change. Later fields
	// override earlier ones; the more specific producer wins when a record
	// carries several.
	if p, ok := numeric(obj["prob"]); ok {
		if p <= 1 {
			p *= 100
		}
		row.Score = p
		row.HasScore = true
	}
	if s, ok := numeric(obj["score"]); ok {
		row.Score = s
		row.HasScore = true
	}
	if w, ok := numeric(obj["weekly_change"]); ok {
		row.Score = w * 100
		row.HasScore = true
	}

	return row
}

// numeric reports whether v is a JSON number.
func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// coerceString renders a scalar identity value as a string.
func coerceString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}
