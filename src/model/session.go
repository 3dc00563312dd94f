package model

import "time"

// SessionStateVersion tags the snapshot schema for forward compatibility.
const SessionStateVersion = 1

// RiskConfigState is the serialized form of the runtime risk configuration.
type RiskConfigState struct {
	InitialCapital    float64 `json:"initial_capital"`
	MaxDailyLossPct   float64 `json:"max_daily_loss_pct"`
	MaxPositionPct    float64 `json:"max_position_pct"`
	RiskPerTradePct   float64 `json:"risk_per_trade_pct"`
	StopLossPct       float64 `json:"stop_loss_pct"`
	TakeProfitPct     float64 `json:"take_profit_pct"`
	BuyEnabled        bool    `json:"buy_enabled"`
	SellEnabled       bool    `json:"sell_enabled"`
	KillSwitchEnabled bool    `json:"kill_switch_enabled"`
	MarketHoursOnly   bool    `json:"market_hours_only"`
	MaxOrdersPerDay   int     `json:"max_orders_per_day"`
}

// SessionState is the whole-state snapshot persisted after every cycle and
// every accepted command. It is self-sufficient to rebuild a console.
type SessionState struct {
	Version       int             `json:"version"`
	Cash          float64         `json:"cash"`
	RealizedPnL   float64         `json:"realized_pnl"`
	Positions     []PositionState `json:"positions"`
	EventLog      []string        `json:"event_log"`
	EquityHistory []float64       `json:"equity_history"`
	Watchlist     []string        `json:"watchlist"`
	RouterMode    string          `json:"router_mode"`
	RiskConfig    RiskConfigState `json:"risk_config"`
	SavedAt       time.Time       `json:"saved_at"`
}
