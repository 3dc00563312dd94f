package console

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"tradeconsole/src/connectors"
	"tradeconsole/src/dashboard"
	"tradeconsole/src/events"
	"tradeconsole/src/executors"
	"tradeconsole/src/marketdata"
	"tradeconsole/src/model"
	"tradeconsole/src/observability"
	"tradeconsole/src/repository"
	"tradeconsole/src/risk"
	"tradeconsole/src/statestore"
)

const (
	eventLogCap      = 30
	equityHistoryCap = 200
	signalTriggerCap = 200
	sessionSampleCap = 30
)

// Console is the live trading orchestrator. One instance owns all mutable
// session state; decisions for a cycle run on a single goroutine, so nothing
// here is locked.
type Console struct {
	strategyName string
	provider     marketdata.SnapshotProvider
	engine       *risk.Engine
	riskConfig   *risk.Config
	router       *executors.Router
	journal      *repository.OrderJournal
	stateStore   *statestore.Store
	bus          *events.Bus
	metrics      *observability.RuntimeMetrics
	config       *Config
	dashConfig   *dashboard.Config

	sessionID        string
	sessionStartedAt time.Time

	cash           float64
	realizedPnL    float64
	positions      map[string]model.PositionState
	eventLog       []string
	equityHistory  []float64
	watchlist      []string
	latestEquity   float64
	symbolControls map[string]model.SymbolControls
	signalTriggers []model.SignalTrigger
	cycleCount     int

	stopped bool
	now     func() time.Time
}

// New wires a console from its collaborators. The journal must already be
// initialized; broker may be nil for paper-only sessions.
func New(strategyName string, provider marketdata.SnapshotProvider, broker connectors.Broker, journal *repository.OrderJournal, config *Config, dashConfig *dashboard.Config) *Console {
	riskConfig := risk.DefaultConfig(config.InitialCapital)
	riskConfig.KillSwitchEnabled = config.KillSwitch
	riskConfig.MarketHoursOnly = config.MarketHoursOnly
	riskConfig.MaxOrdersPerDay = config.MaxOrdersPerDay

	engine := risk.NewEngine(riskConfig)

	c := &Console{
		strategyName:     strategyName,
		provider:         provider,
		engine:           engine,
		riskConfig:       riskConfig,
		router:           executors.NewRouter(engine, journal, broker, config.Mode),
		journal:          journal,
		stateStore:       statestore.New(config.SessionStateFile),
		bus:              events.NewBus(),
		metrics:          observability.New(config.MetricsFile),
		config:           config,
		dashConfig:       dashConfig,
		sessionID:        uuid.New().String(),
		sessionStartedAt: time.Now().UTC(),
		cash:             config.InitialCapital,
		positions:        map[string]model.PositionState{},
		symbolControls:   map[string]model.SymbolControls{},
		latestEquity:     config.InitialCapital,
		now:              time.Now,
	}

	c.bus.Subscribe(events.TopicAll, func(evt events.Event) {
		c.metrics.OnEvent(evt.Type)
	})

	return c
}

// WithClock swaps the time source, for tests.
func (c *Console) WithClock(now func() time.Time) *Console {
	c.now = now
	return c
}

// Router exposes the execution router, for command wiring and tests.
func (c *Console) Router() *executors.Router {
	return c.router
}

// RiskConfig exposes the single mutable risk configuration.
func (c *Console) RiskConfig() *risk.Config {
	return c.riskConfig
}

func (c *Console) logEvent(message string) {
	stamp := c.now().Format("15:04:05")
	c.eventLog = append(c.eventLog, fmt.Sprintf("[%s] %s", stamp, message))
	if len(c.eventLog) > eventLogCap {
		c.eventLog = c.eventLog[len(c.eventLog)-eventLogCap:]
	}
	c.bus.Publish(events.TopicLogEvent, map[string]interface{}{"message": message})
}

func (c *Console) appendTrigger(symbol string, signal int, price float64, action string) {
	if signal != model.SignalBuy && signal != model.SignalSell {
		return
	}
	trigger := model.SignalTrigger{
		Timestamp:  c.now().UTC().Format("15:04:05"),
		Symbol:     symbol,
		SignalText: model.SignalLabel(signal),
		Price:      price,
		Action:     action,
	}
	c.signalTriggers = append([]model.SignalTrigger{trigger}, c.signalTriggers...)
	if len(c.signalTriggers) > signalTriggerCap {
		c.signalTriggers = c.signalTriggers[:signalTriggerCap]
	}
}

func (c *Console) loadSymbolControls() {
	raw := dashboard.ReadControls(c.dashConfig.ControlsFile)
	resolved := make(map[string]model.SymbolControls, len(c.watchlist))
	for _, symbol := range c.watchlist {
		controls, ok := raw[symbol]
		if !ok {
			controls = model.SymbolControls{Buy: true, Sell: true}
		}
		resolved[symbol] = controls
	}
	c.symbolControls = resolved
}

func (c *Console) isSymbolSideEnabled(symbol, side string) bool {
	controls, ok := c.symbolControls[symbol]
	if !ok {
		return true
	}
	if strings.EqualFold(side, model.SideBuy) {
		return controls.Buy
	}
	return controls.Sell
}

// computeEquity marks every open position against the latest snapshot price,
// falling back to the entry price when a symbol had no data this cycle.
func (c *Console) computeEquity(snapshots []model.SymbolSnapshot) float64 {
	latest := make(map[string]float64, len(snapshots))
	for _, snapshot := range snapshots {
		if snapshot.OK {
			latest[snapshot.Symbol] = snapshot.Price
		}
	}

	equity := c.cash
	for symbol, position := range c.positions {
		mark, ok := latest[symbol]
		if !ok {
			mark = position.EntryPrice
		}
		equity += position.MarketValue(mark)
	}
	return equity
}

func (c *Console) serializeState() model.SessionState {
	positions := make([]model.PositionState, 0, len(c.positions))
	for _, position := range c.positions {
		positions = append(positions, position)
	}

	return model.SessionState{
		Cash:          c.cash,
		RealizedPnL:   c.realizedPnL,
		Positions:     positions,
		EventLog:      append([]string(nil), c.eventLog...),
		EquityHistory: append([]float64(nil), c.equityHistory...),
		Watchlist:     append([]string(nil), c.watchlist...),
		RouterMode:    c.router.Mode(),
		RiskConfig: model.RiskConfigState{
			InitialCapital:    c.riskConfig.InitialCapital,
			MaxDailyLossPct:   c.riskConfig.MaxDailyLossPct,
			MaxPositionPct:    c.riskConfig.MaxPositionPct,
			RiskPerTradePct:   c.riskConfig.RiskPerTradePct,
			StopLossPct:       c.riskConfig.StopLossPct,
			TakeProfitPct:     c.riskConfig.TakeProfitPct,
			BuyEnabled:        c.riskConfig.BuyEnabled,
			SellEnabled:       c.riskConfig.SellEnabled,
			KillSwitchEnabled: c.riskConfig.KillSwitchEnabled,
			MarketHoursOnly:   c.riskConfig.MarketHoursOnly,
			MaxOrdersPerDay:   c.riskConfig.MaxOrdersPerDay,
		},
	}
}

// SaveState persists the session snapshot. Failure is logged, not fatal;
// the next cycle will try again.
func (c *Console) SaveState() bool {
	if err := c.stateStore.Save(c.serializeState()); err != nil {
		logger.WithError(err).Warn("session state save failed")
		return false
	}
	return true
}

// TryRestoreState loads the last snapshot if one exists and merges its
// watchlist into the current one.
func (c *Console) TryRestoreState() bool {
	state := c.stateStore.Load()
	if state == nil {
		return false
	}
	c.restoreState(state)
	return true
}

func (c *Console) restoreState(state *model.SessionState) {
	c.cash = state.Cash
	c.realizedPnL = state.RealizedPnL

	c.positions = map[string]model.PositionState{}
	for _, position := range state.Positions {
		symbol := strings.ToUpper(position.Symbol)
		if symbol == "" {
			continue
		}
		position.Symbol = symbol
		c.positions[symbol] = position
	}

	c.eventLog = boundTail(state.EventLog, eventLogCap)
	c.equityHistory = boundTailFloats(state.EquityHistory, equityHistoryCap)

	rc := state.RiskConfig
	if rc.InitialCapital > 0 {
		c.riskConfig.InitialCapital = rc.InitialCapital
	}
	if rc.MaxDailyLossPct > 0 {
		c.riskConfig.MaxDailyLossPct = rc.MaxDailyLossPct
	}
	if rc.MaxPositionPct > 0 {
		c.riskConfig.MaxPositionPct = rc.MaxPositionPct
	}
	if rc.RiskPerTradePct > 0 {
		c.riskConfig.RiskPerTradePct = rc.RiskPerTradePct
	}
	if rc.StopLossPct > 0 {
		c.riskConfig.StopLossPct = rc.StopLossPct
	}
	if rc.TakeProfitPct > 0 {
		c.riskConfig.TakeProfitPct = rc.TakeProfitPct
	}
	c.riskConfig.BuyEnabled = rc.BuyEnabled
	c.riskConfig.SellEnabled = rc.SellEnabled
	c.riskConfig.KillSwitchEnabled = rc.KillSwitchEnabled
	c.riskConfig.MarketHoursOnly = rc.MarketHoursOnly
	if rc.MaxOrdersPerDay > 0 {
		c.riskConfig.MaxOrdersPerDay = rc.MaxOrdersPerDay
	}

	for _, symbol := range state.Watchlist {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol != "" && !contains(c.watchlist, symbol) {
			c.watchlist = append(c.watchlist, symbol)
		}
	}

	c.logEvent("Session restored from saved state.")
}

func boundTail(items []string, limit int) []string {
	if len(items) > limit {
		items = items[len(items)-limit:]
	}
	return append([]string(nil), items...)
}

func boundTailFloats(items []float64, limit int) []float64 {
	if len(items) > limit {
		items = items[len(items)-limit:]
	}
	return append([]float64(nil), items...)
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
