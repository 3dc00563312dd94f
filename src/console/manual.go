package console

import (
	"context"
	"fmt"
	"strings"

	logger "github.com/sirupsen/logrus"

	"tradeconsole/src/executors"
	"tradeconsole/src/model"
)

// ExecuteManualOrder routes an operator-entered order through the router so
// every risk and journal guarantee still applies, then books the resulting
// position change: flat open, same-direction add (weighted average),
// partial or full close (realized P&L on the closed slice), or flip.
func (c *Console) ExecuteManualOrder(ctx context.Context, symbol, side string, quantity int, price float64, reason string) (*model.Order, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	side = strings.ToUpper(strings.TrimSpace(side))
	if reason == "" {
		reason = "MANUAL"
	}

	if side != model.SideBuy && side != model.SideSell {
		return &model.Order{Status: model.OrderStatusRejected, Reason: "invalid_side"}, nil
	}
	if quantity <= 0 || price <= 0 {
		return &model.Order{Status: model.OrderStatusRejected, Reason: "invalid_quantity_or_price"}, nil
	}

	position, hasPosition := c.positions[symbol]
	isExit := hasPosition &&
		((position.Side == model.PositionSideLong && side == model.SideSell) ||
			(position.Side == model.PositionSideShort && side == model.SideBuy))

	order, err := c.router.RouteOrder(ctx, executors.RouteRequest{
		Symbol:   symbol,
		Side:     side,
		Quantity: quantity,
		Price:    price,
		IsExit:   isExit,
	})
	if err != nil {
		logger.WithError(err).Error("manual order journal write failed")
		return nil, err
	}
	c.metrics.OnOrder(order.Status)

	if order.Status != model.OrderStatusFilled && order.Status != model.OrderStatusSent {
		if order.Status != model.OrderStatusSkipped {
			c.logEvent(fmt.Sprintf("%s: %s rejected (%s)", symbol, side, order.Reason))
		}
		return order, nil
	}

	if !hasPosition {
		c.openFlat(symbol, side, quantity, price)
		c.logEvent(fmt.Sprintf("%s: %s %s %d @ %.2f", symbol, reason, side, quantity, price))
		return order, nil
	}

	var realizedDelta float64
	if position.Side == model.PositionSideLong {
		if side == model.SideBuy {
			c.addToPosition(position, quantity, price, model.PositionSideLong)
		} else {
			realizedDelta = c.reducePosition(position, quantity, price)
		}
	} else {
		if side == model.SideSell {
			c.addToPosition(position, quantity, price, model.PositionSideShort)
		} else {
			realizedDelta = c.reducePosition(position, quantity, price)
		}
	}

	if realizedDelta != 0 {
		c.logEvent(fmt.Sprintf("%s: %s %s %d @ %.2f realized_pnl=%.2f", symbol, reason, side, quantity, price, realizedDelta))
	} else {
		c.logEvent(fmt.Sprintf("%s: %s %s %d @ %.2f", symbol, reason, side, quantity, price))
	}
	return order, nil
}

func (c *Console) openFlat(symbol, side string, quantity int, price float64) {
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
}

// addToPosition grows a same-direction position and recomputes the weighted
// average entry.
func (c *Console) addToPosition(position model.PositionState, quantity int, price float64, direction string) {
	newQuantity := position.Quantity + quantity
	weighted := (position.EntryPrice*float64(position.Quantity) + price*float64(quantity)) / float64(newQuantity)

	notional := float64(quantity) * price
	if direction == model.PositionSideLong {
		c.cash -= notional
	} else {
		c.cash += notional
	}

	position.Quantity = newQuantity
	position.EntryPrice = weighted
	c.positions[position.Symbol] = position
}

// reducePosition closes up to the held quantity, booking realized P&L on the
// closed slice; any excess flips into a fresh opposite-direction position at
// the traded price. Returns the realized delta.
func (c *Console) reducePosition(position model.PositionState, quantity int, price float64) float64 {
	closing := quantity
	if closing > position.Quantity {
		closing = position.Quantity
	}

	var realized float64
	closingNotional := float64(closing) * price
	if position.Side == model.PositionSideLong {
		realized = (price - position.EntryPrice) * float64(closing)
		c.cash += closingNotional
	} else {
		realized = (position.EntryPrice - price) * float64(closing)
		c.cash -= closingNotional
	}
	c.realizedPnL += realized

	remaining := position.Quantity - closing
	if remaining > 0 {
		position.Quantity = remaining
		c.positions[position.Symbol] = position
	} else {
		delete(c.positions, position.Symbol)
	}

	if extra := quantity - closing; extra > 0 {
		flipSide := model.SideSell
		if position.Side == model.PositionSideShort {
			flipSide = model.SideBuy
		}
		c.openFlat(position.Symbol, flipSide, extra, price)
	}

	return realized
}
