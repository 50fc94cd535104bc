// Package feed fetches and normalizes the signal feeds published by the
// batch engine. Each feed is a fixed JSON URL whose payload shape has
// drifted across engine versions; Normalize is the single seam that absorbs
// that drift, so nothing outside this package inspects raw payloads.
package feed

// Row is the normalized, display-ready form of one signal record.
type Row struct {
	// Symbol is the record's identity. It is empty only when the source
	// record had no recognizable identity field (a data-quality defect in
	// the feed, not an error here).
	Symbol string

	// Note is a free-text rationale or strategy label. HasNote
	// distinguishes a genuinely absent note from an empty one.
	Note    string
	HasNote bool

	// Score is a unitless rank on a 0-100 percent scale, derived from
	// whichever percent-like field the producing engine emitted.
	Score    float64
	HasScore bool

	// Raw is the original source object, kept for the detail panel and
	// CSV export. It is never interpreted beyond simple key lookup.
	Raw map[string]any
}

// Tab keys, in display order.
const (
	TabIntraday = "intraday"
	TabSwing    = "swing"
	TabCrypto   = "crypto"
	TabOptions  = "options"
	TabCombined = "combined"
)

// Tabs lists all feed tabs in display order.
var Tabs = []string{TabIntraday, TabSwing, TabCrypto, TabOptions, TabCombined}

// Paths maps each tab to its feed path relative to the engine's base URL.
var Paths = map[string]string{
	TabIntraday: "/signals.json",
	TabSwing:    "/signals_swing.json",
	TabCrypto:   "/crypto_movers.json",
	TabOptions:  "/options.json",
	TabCombined: "/swing_plus_options.json",
}
