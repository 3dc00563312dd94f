package dashboard

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	logger "github.com/sirupsen/logrus"

	"tradeconsole/src/model"
)

// WatchlistRow is one symbol line in the state document: the latest snapshot
// plus the externally owned enable flags.
type WatchlistRow struct {
	Symbol      string  `json:"symbol"`
	Price       float64 `json:"price"`
	ChangePct   float64 `json:"change_pct"`
	Signal      string  `json:"signal"`
	BuyEnabled  bool    `json:"buy_enabled"`
	SellEnabled bool    `json:"sell_enabled"`
}

// PositionRow is an open position with its mark-to-market P&L.
type PositionRow struct {
	Symbol        string  `json:"symbol"`
	Side          string  `json:"side"`
	Quantity      int     `json:"quantity"`
	EntryPrice    float64 `json:"entry_price"`
	CurrentPrice  float64 `json:"current_price"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
}

// State is the document the console exports every cycle for external
// presentation layers. Readers must tolerate a missing file.
type State struct {
	Strategy       string                `json:"strategy"`
	Mode           string                `json:"mode"`
	Cash           float64               `json:"cash"`
	Equity         float64               `json:"equity"`
	RealizedPnL    float64               `json:"realized_pnl"`
	Positions      []PositionRow         `json:"positions"`
	Watchlist      []WatchlistRow        `json:"watchlist"`
	SignalTriggers []model.SignalTrigger `json:"signal_triggers"`
	OpenOrders     []model.OrderSample   `json:"open_orders"`
	ClosedOrders   []model.OrderSample   `json:"closed_orders"`
	OrdersToday    int                   `json:"orders_today"`
	CycleCount     int                   `json:"cycle_count"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// ReadControls loads the per-symbol enable flags. A missing or unreadable
// document yields an empty map so every symbol falls back to its defaults.
func ReadControls(path string) map[string]model.SymbolControls {
	controls := map[string]model.SymbolControls{}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.WithField("path", path).WithError(err).Warn("control document unreadable")
		}
		return controls
	}

	if err := json.Unmarshal(raw, &controls); err != nil {
		logger.WithField("path", path).WithError(err).Warn("control document corrupt")
		return map[string]model.SymbolControls{}
	}
	return controls
}

// WriteControls replaces the control document atomically.
func WriteControls(path string, controls map[string]model.SymbolControls) error {
	raw, err := json.MarshalIndent(controls, "", "  ")
	if err != nil {
		return err
	}
	return atomicWrite(path, raw)
}

// WriteState exports the state document atomically, stamping UpdatedAt.
func WriteState(path string, state *State) error {
	state.UpdatedAt = time.Now().UTC()

	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return atomicWrite(path, raw)
}

// ReadState loads the last exported state document. Missing or corrupt means
// "no session".
func ReadState(path string) *State {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		logger.WithField("path", path).WithError(err).Warn("state document corrupt")
		return nil
	}
	return &state
}

func atomicWrite(path string, raw []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "dashboard_*.json")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
