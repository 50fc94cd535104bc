// Package export serializes visible rows to delimited text for download.
package export

import (
	"fmt"
	"strconv"
	"strings"

	"sigboard/internal/feed"
)

// Per-tab column sets, matching the fields each engine feed carries.
var tabColumns = map[string][]string{
	feed.TabIntraday: {"symbol", "timeframe", "strategy", "side", "score", "entry", "stop", "targets", "asof"},
	feed.TabSwing:    {"symbol", "timeframe", "strategy", "score", "entry", "stop", "targets", "asof"},
	feed.TabCrypto:   {"symbol", "score", "weekly_change"},
	feed.TabOptions:  {"symbol", "type", "strike", "expiry", "delta", "spread", "score", "note"},
	feed.TabCombined: {"symbol", "timeframe", "score", "entry", "stop", "targets", "opt_type", "opt_strike", "opt_exp", "opt_delta", "opt_note"},
}

// Columns returns the fixed column set for a tab.
func Columns(tab string) []string {
	if cols, ok := tabColumns[tab]; ok {
		return cols
	}
	return []string{"symbol", "score", "note"}
}

// FileName returns the download file name for a tab.
func FileName(tab string) string {
	return tab + ".csv"
}

// Encode renders rows as delimited text with a header line. The columns
// symbol, note, and score resolve from the normalized row; anything else
// is looked up in the row's raw record. Missing values render as empty
// fields. Escaping is minimal CSV: a field containing a comma, quote, CR,
// or LF is wrapped in quotes with internal quotes doubled, so the output
// round-trips through any standard CSV parser.
func Encode(rows []feed.Row, columns []string) string {
	var b strings.Builder
	writeLine(&b, columns)

	fields := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			fields[i] = fieldValue(row, col)
		}
		writeLine(&b, fields)
	}
	return b.String()
}

func writeLine(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escape(f))
	}
	b.WriteByte('\n')
}

func escape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func fieldValue(row feed.Row, col string) string {
	switch col {
	case "symbol":
		return row.Symbol
	case "note":
		if !row.HasNote {
			return ""
		}
		return row.Note
	case "score":
		if !row.HasScore {
			return ""
		}
		return formatValue(row.Score)
	}
	if v, ok := row.Raw[col]; ok {
		return formatValue(v)
	}
	return ""
}

// formatValue renders a raw JSON value as its string form. Absent and null
// values are empty fields, never the literal "null".
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = formatValue(e)
		}
		return strings.Join(parts, ";")
	default:
		return fmt.Sprint(t)
	}
}
