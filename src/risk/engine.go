package risk

import (
	"time"

	"github.com/shopspring/decimal"

	"tradeconsole/src/model"
)

// Guard rejection reasons. These are machine readable and end up in the
// journal row as-is.
const (
	ReasonOK                  = "ok"
	ReasonNone                = "NONE"
	ReasonStopLoss            = "STOP_LOSS"
	ReasonTakeProfit          = "TAKE_PROFIT"
	ReasonKillSwitch          = "kill_switch_enabled"
	ReasonOutsideMarketHours  = "outside_market_hours"
	ReasonMaxOrdersPerDay     = "max_orders_per_day_reached"
	ReasonQuantityZero        = "quantity_zero"
	ReasonMaxPositionExceeded = "max_position_exceeded"
	ReasonInsufficientCash    = "insufficient_cash"
	ReasonExposureExceeded    = "exposure_exceeds_capital"
)

// Exchange trading window, local exchange time.
const exchangeZone = "Asia/Kolkata"

var (
	marketOpenMinute  = 9*60 + 15
	marketCloseMinute = 15*60 + 30
)

// Engine evaluates pre-trade and in-trade risk policy over a shared Config.
// It holds no state of its own; every check is a pure read of the config.
type Engine struct {
	config *Config
}

// NewEngine wires the engine to the session's single mutable config.
func NewEngine(config *Config) *Engine {
	return &Engine{config: config}
}

// Config exposes the shared config handle.
func (e *Engine) Config() *Config {
	return e.config
}

// IsSignalEnabled returns the buy/sell toggle matching the signal direction.
// Neutral signals always pass.
func (e *Engine) IsSignalEnabled(signal int) bool {
	switch signal {
	case model.SignalBuy:
		return e.config.BuyEnabled
	case model.SignalSell:
		return e.config.SellEnabled
	default:
		return true
	}
}

// CanOpenPosition checks a candidate entry against position, cash and
// exposure limits. Returns the first failing reason.
func (e *Engine) CanOpenPosition(cash, currentExposure, entryPrice float64, quantity int) (bool, string) {
	if quantity <= 0 {
		return false, ReasonQuantityZero
	}

	notional := decimal.NewFromFloat(entryPrice).Mul(decimal.NewFromInt(int64(quantity)))
	capital := decimal.NewFromFloat(e.config.InitialCapital)

	maxNotional := capital.Mul(decimal.NewFromFloat(e.config.MaxPositionPct))
	if notional.GreaterThan(maxNotional) {
		return false, ReasonMaxPositionExceeded
	}

	if notional.GreaterThan(decimal.NewFromFloat(cash)) {
		return false, ReasonInsufficientCash
	}

	projected := decimal.NewFromFloat(currentExposure).Add(notional)
	if projected.GreaterThan(capital) {
		return false, ReasonExposureExceeded
	}

	return true, ReasonOK
}

// DailyLossBreached reports whether realized losses have reached the daily
// loss cap.
func (e *Engine) DailyLossBreached(realizedPnL float64) bool {
	maxLoss := e.config.InitialCapital * e.config.MaxDailyLossPct
	if maxLoss < 0 {
		maxLoss = -maxLoss
	}
	return realizedPnL <= -maxLoss
}

// CheckExit evaluates stop-loss/take-profit for a long position using the
// single-point move from entry. Gaps can skip both thresholds in one cycle;
// that is a deliberate simplification, not a bug.
func (e *Engine) CheckExit(entryPrice, currentPrice float64) (bool, string) {
	if entryPrice <= 0 {
		return false, ReasonNone
	}
	move := (currentPrice - entryPrice) / entryPrice
	return e.classifyMove(move)
}

// CheckExitShort evaluates stop-loss/take-profit for a short position.
func (e *Engine) CheckExitShort(entryPrice, currentPrice float64) (bool, string) {
	if entryPrice <= 0 {
		return false, ReasonNone
	}
	move := (entryPrice - currentPrice) / entryPrice
	return e.classifyMove(move)
}

func (e *Engine) classifyMove(move float64) (bool, string) {
	stopLoss := abs(e.config.StopLossPct)
	takeProfit := abs(e.config.TakeProfitPct)
	if move <= -stopLoss {
		return true, ReasonStopLoss
	}
	if move >= takeProfit {
		return true, ReasonTakeProfit
	}
	return false, ReasonNone
}

// IsMarketOpen converts to exchange-local time, rejects weekends and checks
// the fixed open/close window.
func (e *Engine) IsMarketOpen(nowUTC time.Time) bool {
	loc, err := time.LoadLocation(exchangeZone)
	if err != nil {
		return false
	}
	local := nowUTC.In(loc)
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	minute := local.Hour()*60 + local.Minute()
	return minute >= marketOpenMinute && minute <= marketCloseMinute
}

// PreOrderGuard is the composite admission gate. The kill switch blocks only
// new entries regardless of mode; exits stay permitted so a stuck position
// can always be unwound. Paper mode passes every other check. Live mode adds
// the market-hours window (entries and exits) and the daily order cap
// (entries only).
func (e *Engine) PreOrderGuard(mode string, ordersToday int, isExit bool, nowUTC time.Time) (bool, string) {
	if e.config.KillSwitchEnabled && !isExit {
		return false, ReasonKillSwitch
	}

	if mode != model.ModeLive {
		return true, ReasonOK
	}

	if e.config.MarketHoursOnly && !e.IsMarketOpen(nowUTC) {
		return false, ReasonOutsideMarketHours
	}

	maxOrders := e.config.MaxOrdersPerDay
	if maxOrders < 1 {
		maxOrders = 1
	}
	if !isExit && ordersToday >= maxOrders {
		return false, ReasonMaxOrdersPerDay
	}

	return true, ReasonOK
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
