package console

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"tradeconsole/src/dashboard"
	"tradeconsole/src/events"
	"tradeconsole/src/executors"
	"tradeconsole/src/model"
	"tradeconsole/src/risk"
)

// RunCycle executes one full decision pass: controls, snapshots, signals,
// reconciliation, metrics, dashboard export and state persistence. It returns
// the snapshots so the caller can render them.
func (c *Console) RunCycle(ctx context.Context) []model.SymbolSnapshot {
	c.cycleCount++
	c.loadSymbolControls()

	snapshots := make([]model.SymbolSnapshot, 0, len(c.watchlist))
	for _, symbol := range c.watchlist {
		snapshot := c.provider.Snapshot(ctx, symbol)
		if !snapshot.OK {
			c.logEvent(fmt.Sprintf("%s: no data this cycle", symbol))
		}
		snapshots = append(snapshots, snapshot)
	}

	c.processSignals(ctx, snapshots)

	if c.router.Mode() == model.ModeLive {
		if updated := c.router.ReconcileOrderStatuses(ctx); updated > 0 {
			c.logEvent(fmt.Sprintf("Reconciled %d live orders.", updated))
		}
	}

	c.updateRuntimeMetrics(snapshots)
	c.exportDashboardState(ctx, snapshots)
	c.SaveState()

	return snapshots
}

// processSignals walks the snapshot list once. Exit checks run before
// entries; entries accrue into an exposure accumulator so one cycle cannot
// over-allocate across symbols.
func (c *Console) processSignals(ctx context.Context, snapshots []model.SymbolSnapshot) {
	if c.engine.DailyLossBreached(c.realizedPnL) {
		c.logEvent("Daily max-loss breached. New entries are disabled.")
		return
	}

	currentExposure := 0.0
	for _, snapshot := range snapshots {
		if position, ok := c.positions[snapshot.Symbol]; ok && snapshot.OK {
			currentExposure += float64(position.Quantity) * snapshot.Price
		}
	}

	for _, snapshot := range snapshots {
		if !snapshot.OK {
			continue
		}
		symbol := snapshot.Symbol
		signal := snapshot.Signal
		price := snapshot.Price

		if position, ok := c.positions[symbol]; ok {
			c.handleOpenPosition(ctx, position, signal, price)
			continue
		}

		switch {
		case signal == model.SignalBuy && c.engine.IsSignalEnabled(signal):
			if !c.isSymbolSideEnabled(symbol, model.SideBuy) {
				c.appendTrigger(symbol, signal, price, "BUY_DISABLED")
				continue
			}
			currentExposure += c.tryEnter(ctx, symbol, model.SideBuy, price, currentExposure, c.cash)
		case signal == model.SignalSell && c.engine.IsSignalEnabled(signal):
			if !c.isSymbolSideEnabled(symbol, model.SideSell) {
				c.appendTrigger(symbol, signal, price, "SELL_DISABLED")
				continue
			}
			// Shorts are admitted against capital, not depleted cash,
			// since the sale itself raises cash.
			admissionCash := c.cash
			if c.riskConfig.InitialCapital > admissionCash {
				admissionCash = c.riskConfig.InitialCapital
			}
			currentExposure += c.tryEnter(ctx, symbol, model.SideSell, price, currentExposure, admissionCash)
		}
	}
}

func (c *Console) handleOpenPosition(ctx context.Context, position model.PositionState, signal int, price float64) {
	symbol := position.Symbol

	if position.Side == model.PositionSideLong {
		if shouldExit, reason := c.engine.CheckExit(position.EntryPrice, price); shouldExit && c.riskConfig.SellEnabled {
			c.appendTrigger(symbol, model.SignalSell, price, reason)
			c.exitPosition(ctx, symbol, price, reason)
			return
		}
		if signal == model.SignalSell && c.engine.IsSignalEnabled(signal) {
			if c.isSymbolSideEnabled(symbol, model.SideSell) {
				c.appendTrigger(symbol, signal, price, "STRATEGY_SELL")
				c.exitPosition(ctx, symbol, price, "STRATEGY_SELL")
			} else {
				c.appendTrigger(symbol, signal, price, "SELL_DISABLED")
			}
		}
		return
	}

	if shouldExit, reason := c.engine.CheckExitShort(position.EntryPrice, price); shouldExit && c.riskConfig.BuyEnabled {
		c.appendTrigger(symbol, model.SignalBuy, price, reason)
		c.exitPosition(ctx, symbol, price, reason)
		return
	}
	if signal == model.SignalBuy && c.engine.IsSignalEnabled(signal) {
		if c.isSymbolSideEnabled(symbol, model.SideBuy) {
			c.appendTrigger(symbol, signal, price, "STRATEGY_BUY")
			c.exitPosition(ctx, symbol, price, "STRATEGY_BUY")
		} else {
			c.appendTrigger(symbol, signal, price, "BUY_DISABLED")
		}
	}
}

// tryEnter sizes, admits and routes one entry. Returns the notional added to
// the exposure accumulator (zero when nothing was placed).
func (c *Console) tryEnter(ctx context.Context, symbol, side string, price, currentExposure, admissionCash float64) float64 {
	signal := model.SignalBuy
	if side == model.SideSell {
		signal = model.SignalSell
	}

	quantity := risk.CalculateQuantity(
		c.cash,
		price,
		c.riskConfig.RiskPerTradePct,
		c.riskConfig.StopLossPct,
		c.riskConfig.MaxPositionPct,
		c.riskConfig.InitialCapital,
	)

	allowed, reason := c.engine.CanOpenPosition(admissionCash, currentExposure, price, quantity)
	if !allowed {
		if quantity > 0 {
			c.logEvent(fmt.Sprintf("%s: %s blocked (%s)", symbol, side, reason))
			c.appendTrigger(symbol, signal, price, fmt.Sprintf("%s_BLOCKED:%s", side, reason))
		}
		return 0
	}

	c.appendTrigger(symbol, signal, price, side+"_EXECUTED")
	if c.enterPosition(ctx, symbol, side, quantity, price) {
		return float64(quantity) * price
	}
	return 0
}

// enterPosition routes an entry and, on fill/acceptance, books the position
// and cash movement. Reports whether a position was opened.
func (c *Console) enterPosition(ctx context.Context, symbol, side string, quantity int, price float64) bool {
	order, err := c.router.RouteOrder(ctx, executors.RouteRequest{
		Symbol:   symbol,
		Side:     side,
		Quantity: quantity,
		Price:    price,
	})
	if err != nil {
		logger.WithError(err).Error("entry order journal write failed")
		c.logEvent(fmt.Sprintf("%s: %s failed (journal unavailable)", symbol, side))
		return false
	}
	c.metrics.OnOrder(order.Status)

	switch order.Status {
	case model.OrderStatusFilled, model.OrderStatusSent:
		direction := model.PositionSideLong
		notional := float64(quantity) * price
		if side == model.SideBuy {
			c.cash -= notional
		} else {
			direction = model.PositionSideShort
			c.cash += notional
		}
		c.positions[symbol] = model.PositionState{
			Symbol:     symbol,
			Side:       direction,
			Quantity:   quantity,
			EntryPrice: price,
			OpenedAt:   c.now(),
		}
		c.logEvent(fmt.Sprintf("%s: %s %d @ %.2f [%s]", symbol, side, quantity, price, order.Status))
		c.bus.Publish(events.TopicOrderPlaced, map[string]interface{}{
			"symbol":   symbol,
			"side":     side,
			"quantity": quantity,
			"price":    price,
			"status":   order.Status,
		})
		return true
	case model.OrderStatusSkipped:
		return false
	default:
		c.logEvent(fmt.Sprintf("%s: %s rejected (%s)", symbol, side, order.Reason))
		c.bus.Publish(events.TopicOrderRejected, map[string]interface{}{
			"symbol": symbol,
			"side":   side,
			"reason": order.Reason,
		})
		return false
	}
}

// exitPosition routes an exit for the whole position and, on success, books
// realized P&L and removes it.
func (c *Console) exitPosition(ctx context.Context, symbol string, price float64, reason string) {
	position, ok := c.positions[symbol]
	if !ok {
		return
	}

	exitSide := model.SideSell
	if position.Side == model.PositionSideShort {
		exitSide = model.SideBuy
	}

	order, err := c.router.RouteOrder(ctx, executors.RouteRequest{
		Symbol:   symbol,
		Side:     exitSide,
		Quantity: position.Quantity,
		Price:    price,
		IsExit:   true,
	})
	if err != nil {
		logger.WithError(err).Error("exit order journal write failed")
		c.logEvent(fmt.Sprintf("%s: %s failed (journal unavailable)", symbol, exitSide))
		return
	}
	c.metrics.OnOrder(order.Status)

	switch order.Status {
	case model.OrderStatusFilled, model.OrderStatusSent:
		notional := float64(position.Quantity) * price
		var pnl float64
		if position.Side == model.PositionSideLong {
			pnl = (price - position.EntryPrice) * float64(position.Quantity)
			c.cash += notional
		} else {
			pnl = (position.EntryPrice - price) * float64(position.Quantity)
			c.cash -= notional
		}
		c.realizedPnL += pnl
		delete(c.positions, symbol)
		c.logEvent(fmt.Sprintf("%s: %s %d @ %.2f [%s] PnL=%.2f [%s]",
			symbol, exitSide, position.Quantity, price, reason, pnl, order.Status))
		c.bus.Publish(events.TopicPositionClosed, map[string]interface{}{
			"symbol": symbol,
			"side":   exitSide,
			"pnl":    pnl,
			"reason": reason,
		})
	case model.OrderStatusSkipped:
	default:
		c.logEvent(fmt.Sprintf("%s: %s rejected (%s)", symbol, exitSide, order.Reason))
	}
}

func (c *Console) updateRuntimeMetrics(snapshots []model.SymbolSnapshot) {
	equity := c.computeEquity(snapshots)
	c.latestEquity = equity
	c.equityHistory = append(c.equityHistory, equity)
	if len(c.equityHistory) > equityHistoryCap {
		c.equityHistory = c.equityHistory[len(c.equityHistory)-equityHistoryCap:]
	}

	snapshot := c.metrics.Snapshot(equity, c.cash, c.realizedPnL, len(c.positions), c.router.OrdersToday(), c.eventLog)
	c.metrics.Export(snapshot)
	c.bus.Publish(events.TopicRuntimeSnapshot, map[string]interface{}{
		"equity":       snapshot.Equity,
		"cash":         snapshot.Cash,
		"realized_pnl": snapshot.RealizedPnL,
		"drawdown_pct": snapshot.DrawdownPct,
	})
}

// exportDashboardState writes the state document for external readers.
// Failure is logged and swallowed; next cycle overwrites it anyway.
func (c *Console) exportDashboardState(ctx context.Context, snapshots []model.SymbolSnapshot) {
	latest := make(map[string]float64, len(snapshots))
	for _, snapshot := range snapshots {
		if snapshot.OK {
			latest[snapshot.Symbol] = snapshot.Price
		}
	}

	positions := make([]dashboard.PositionRow, 0, len(c.positions))
	for symbol, position := range c.positions {
		mark, ok := latest[symbol]
		if !ok {
			mark = position.EntryPrice
		}
		positions = append(positions, dashboard.PositionRow{
			Symbol:        symbol,
			Side:          position.Side,
			Quantity:      position.Quantity,
			EntryPrice:    position.EntryPrice,
			CurrentPrice:  mark,
			UnrealizedPnL: position.UnrealizedPnL(mark),
		})
	}

	watchlist := make([]dashboard.WatchlistRow, 0, len(snapshots))
	for _, snapshot := range snapshots {
		controls, ok := c.symbolControls[snapshot.Symbol]
		if !ok {
			controls = model.SymbolControls{Buy: true, Sell: true}
		}
		watchlist = append(watchlist, dashboard.WatchlistRow{
			Symbol:      snapshot.Symbol,
			Price:       snapshot.Price,
			ChangePct:   snapshot.ChangePct,
			Signal:      model.SignalLabel(snapshot.Signal),
			BuyEnabled:  controls.Buy,
			SellEnabled: controls.Sell,
		})
	}

	state := &dashboard.State{
		Strategy:       c.strategyName,
		Mode:           c.router.Mode(),
		Cash:           c.cash,
		Equity:         c.latestEquity,
		RealizedPnL:    c.realizedPnL,
		Positions:      positions,
		Watchlist:      watchlist,
		SignalTriggers: c.signalTriggers,
		OrdersToday:    c.router.OrdersToday(),
		CycleCount:     c.cycleCount,
	}

	if summary, err := c.journal.GetSessionSummary(ctx, c.sessionStartedAt, sessionSampleCap); err == nil {
		state.OpenOrders = summary.OpenRows
		state.ClosedOrders = summary.ClosedRows
	} else {
		logger.WithError(err).Warn("session summary query failed")
	}

	if err := dashboard.WriteState(c.dashConfig.StateFile, state); err != nil {
		logger.WithError(err).Warn("dashboard state export failed")
	}
}
