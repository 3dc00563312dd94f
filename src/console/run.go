package console

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"tradeconsole/src/model"
)

// Run drives the console until /quit, EOF on the command channel, or context
// cancellation. Commands are drained between cycles so a pending keystroke
// never stalls the refresh cadence; stop is cooperative and checked at the
// top of each cycle.
func (c *Console) Run(ctx context.Context, symbols []string, commands <-chan string) error {
	for _, symbol := range symbols {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol != "" && !contains(c.watchlist, symbol) {
			c.watchlist = append(c.watchlist, symbol)
		}
	}

	if c.config.AutoResume {
		if c.TryRestoreState() {
			c.logEvent("Auto-resume enabled: previous state loaded.")
		}
	}

	if len(c.watchlist) == 0 {
		return errors.New("at least one symbol is required to run the console")
	}

	c.router.SetMode(c.config.Mode)
	c.logEvent(fmt.Sprintf("Started console in %s mode.", strings.ToUpper(c.router.Mode())))

	refresh := time.Duration(c.config.RefreshSeconds) * time.Second
	if refresh < time.Second {
		refresh = time.Second
	}
	ticker := time.NewTicker(refresh)
	defer ticker.Stop()

	snapshots := c.RunCycle(ctx)
	c.render(snapshots)

	for !c.stopped {
		select {
		case <-ctx.Done():
			c.SaveState()
			return ctx.Err()

		case command, ok := <-commands:
			if !ok {
				c.SaveState()
				return nil
			}
			keepRunning := c.ApplyCommand(command)
			c.SaveState()
			if !keepRunning {
				return nil
			}
			c.render(snapshots)

		case <-ticker.C:
			snapshots = c.RunCycle(ctx)
			c.render(snapshots)
		}
	}

	c.SaveState()
	return nil
}

// render writes the plain-text status view through the standard logger.
func (c *Console) render(snapshots []model.SymbolSnapshot) {
	logger.Info(c.renderStatus(snapshots))
}

func (c *Console) renderStatus(snapshots []model.SymbolSnapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n=== %s [%s] cycle %d ===\n", c.strategyName, strings.ToUpper(c.router.Mode()), c.cycleCount)
	fmt.Fprintf(&b, "cash=%.2f equity=%.2f realized_pnl=%.2f positions=%d orders_today=%d/%d\n",
		c.cash, c.latestEquity, c.realizedPnL, len(c.positions), c.router.OrdersToday(), c.riskConfig.MaxOrdersPerDay)
	fmt.Fprintf(&b, "buy=%s sell=%s sl=%.2f%% tp=%.2f%% risk=%.2f%% maxpos=%.2f%% kill=%s hours=%s\n",
		onOff(c.riskConfig.BuyEnabled), onOff(c.riskConfig.SellEnabled),
		c.riskConfig.StopLossPct*100, c.riskConfig.TakeProfitPct*100,
		c.riskConfig.RiskPerTradePct*100, c.riskConfig.MaxPositionPct*100,
		onOff(c.riskConfig.KillSwitchEnabled), onOff(c.riskConfig.MarketHoursOnly))

	if spark := sparkline(c.equityHistory, 32); spark != "" {
		fmt.Fprintf(&b, "equity trend: %s\n", spark)
	}

	for _, snapshot := range snapshots {
		line := fmt.Sprintf("%-12s", snapshot.Symbol)
		if snapshot.OK {
			line += fmt.Sprintf(" %10.2f %+7.2f%% %s", snapshot.Price, snapshot.ChangePct, model.SignalLabel(snapshot.Signal))
		} else {
			line += " no data"
		}
		if position, ok := c.positions[snapshot.Symbol]; ok && snapshot.OK {
			line += fmt.Sprintf("  %s %d @ %.2f upnl=%.2f",
				position.Side, position.Quantity, position.EntryPrice, position.UnrealizedPnL(snapshot.Price))
		}
		b.WriteString(line + "\n")
	}

	start := len(c.eventLog) - 5
	if start < 0 {
		start = 0
	}
	for _, event := range c.eventLog[start:] {
		b.WriteString(event + "\n")
	}

	return b.String()
}

// sparkline renders the equity history as a fixed-width ASCII strip.
func sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return ""
	}
	const blocks = "._-:=+*#%@"
	if len(values) > width {
		values = values[len(values)-width:]
	}

	minValue, maxValue := values[0], values[0]
	for _, value := range values {
		if value < minValue {
			minValue = value
		}
		if value > maxValue {
			maxValue = value
		}
	}
	if maxValue == minValue {
		return strings.Repeat(string(blocks[0]), len(values))
	}

	var b strings.Builder
	for _, value := range values {
		idx := int((value - minValue) / (maxValue - minValue) * float64(len(blocks)-1))
		b.WriteByte(blocks[idx])
	}
	return b.String()
}
