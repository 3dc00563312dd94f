package model

// Signal values emitted by strategies.
const (
	SignalBuy  = 1
	SignalHold = 0
	SignalSell = -1
)

// SignalLabel renders a signal value for logs and dashboards.
func SignalLabel(signal int) string {
	switch signal {
	case SignalBuy:
		return "BUY"
	case SignalSell:
		return "SELL"
	default:
		return "HOLD"
	}
}

// SymbolSnapshot is one watchlist row produced by the market-data/strategy
// pair each cycle. OK is false when no data could be fetched; the symbol is
// then treated as no-signal for the cycle.
type SymbolSnapshot struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
	Signal    int     `json:"signal"`
	OK        bool    `json:"ok"`
}

// SymbolControls are the externally owned per-symbol enable flags read from
// the dashboard control document each cycle.
type SymbolControls struct {
	Buy  bool `json:"buy"`
	Sell bool `json:"sell"`
}

// SignalTrigger records a non-neutral signal and what the console did with it.
type SignalTrigger struct {
	Timestamp  string  `json:"timestamp"`
	Symbol     string  `json:"symbol"`
	SignalText string  `json:"signal_text"`
	Price      float64 `json:"price"`
	Action     string  `json:"action"`
}
