package feed

// Demo rows shown when a feed normalizes to empty, so the dashboard is
// never blank on first load, offline, or outside market hours. They are
// structurally identical to real rows on purpose; callers that need to
// tell them apart compare against DemoRows.

var demoRows = map[string][]Row{
	TabIntraday: {
		demoRow("BTC-USD", "ORB+EMA retest", 72, map[string]any{
			"ticker": "BTC-USD", "timeframe": "15m", "strategy": "ORB+EMA retest",
			"side": "LONG", "prob": 0.72, "entry": 64123.0, "stop": 63600.0,
		}),
		demoRow("ETH-USD", "ORB+EMA retest", 66, map[string]any{
			"ticker": "ETH-USD", "timeframe": "15m", "strategy": "ORB+EMA retest",
			"side": "SHORT", "prob": 0.66, "entry": 2710.0, "stop": 2780.0,
		}),
	},
	TabSwing: {
		demoRow("AAPL", "EMA20 retest + trend", 63, map[string]any{
			"ticker": "AAPL", "timeframe": "1d-swing", "strategy": "EMA20 retest + trend",
			"prob": 0.63, "entry": 224.1, "stop": 218.7,
		}),
		demoRow("ETH-USD", "EMA20 retest + trend", 66, map[string]any{
			"ticker": "ETH-USD", "timeframe": "1d-swing", "strategy": "EMA20 retest + trend",
			"prob": 0.66, "entry": 2710.0, "stop": 2580.0,
		}),
	},
	TabCrypto: {
		demoRow("SOL-USD", "", 18.4, map[string]any{
			"ticker": "SOL-USD", "weekly_change": 0.184,
		}),
		demoRow("LINK-USD", "", 9.1, map[string]any{
			"ticker": "LINK-USD", "weekly_change": 0.091,
		}),
	},
	TabOptions: {
		demoRow("SPY", "ATM call 2w — trend up", 0.72, map[string]any{
			"symbol": "SPY", "type": "CALL", "strike": 515.0, "expiry": "2025-10-18",
			"delta": 0.62, "spread": 0.03, "note": "ATM call 2w — trend up", "score": 0.72,
		}),
		demoRow("AAPL", "EMA20 loss risk hedge", 0.64, map[string]any{
			"symbol": "AAPL", "type": "PUT", "strike": 220.0, "expiry": "2025-10-18",
			"delta": 0.55, "spread": 0.02, "note": "EMA20 loss risk hedge", "score": 0.64,
		}),
	},
	TabCombined: {
		demoRow("AAPL", "1d-swing", 63, map[string]any{
			"ticker": "AAPL", "timeframe": "1d-swing", "prob": 0.63,
			"entry": 224.1, "stop": 218.7, "opt_type": "PUT", "opt_strike": 220.0,
			"opt_exp": "2025-10-18", "opt_delta": 0.55, "opt_note": "EMA20 loss risk hedge",
		}),
	},
}

func demoRow(symbol, note string, score float64, raw map[string]any) Row {
	return Row{
		Symbol:   symbol,
		Note:     note,
		HasNote:  note != "",
		Score:    score,
		HasScore: true,
		Raw:      raw,
	}
}

// DemoRows returns the fixed sample rows for a tab.
func DemoRows(tab string) []Row {
	return demoRows[tab]
}

// WithFallback substitutes the tab's demo rows when rows is empty.
func WithFallback(tab string, rows []Row) []Row {
	if len(rows) > 0 {
		return rows
	}
	return DemoRows(tab)
}
