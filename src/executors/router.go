package executors

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tradeconsole/src/connectors"
	"tradeconsole/src/model"
	"tradeconsole/src/repository"
	"tradeconsole/src/risk"

	logger "github.com/sirupsen/logrus"
)

const (
	ReasonDuplicateWindow     = "duplicate_window"
	ReasonBrokerNotConfigured = "broker_not_configured"
)

// RouteRequest is one routing attempt. Exchange and segment are optional
// broker routing hints.
type RouteRequest struct {
	Symbol   string
	Side     string
	Quantity int
	Price    float64
	Exchange string
	Segment  string
	IsExit   bool
}

// Router is the single choke point every order passes through. It owns the
// dedup cache and the daily order counter; the journal row it writes is the
// authoritative record of the attempt.
type Router struct {
	mode        string
	engine      *risk.Engine
	journal     *repository.OrderJournal
	broker      connectors.Broker
	dedupWindow time.Duration
	dedup       map[string]time.Time
	ordersToday int
	counterDay  string
	now         func() time.Time
}

func NewRouter(engine *risk.Engine, journal *repository.OrderJournal, broker connectors.Broker, mode string) *Router {
	config := GetConfig()

	if mode == "" {
		mode = config.RouterMode
	}
	mode = strings.ToLower(mode)
	if mode != model.ModeLive {
		mode = model.ModePaper
	}

	return &Router{
		mode:        mode,
		engine:      engine,
		journal:     journal,
		broker:      broker,
		dedupWindow: config.DedupWindow,
		dedup:       map[string]time.Time{},
		now:         time.Now,
	}
}

// WithClock swaps the time source, for tests.
func (r *Router) WithClock(now func() time.Time) *Router {
	r.now = now
	return r
}

func (r *Router) Mode() string {
	return r.mode
}

// SetMode switches paper/live. Unknown values are ignored.
func (r *Router) SetMode(mode string) bool {
	mode = strings.ToLower(mode)
	if mode != model.ModePaper && mode != model.ModeLive {
		return false
	}
	r.mode = mode
	return true
}

// OrdersToday returns the counter for the current UTC day.
func (r *Router) OrdersToday() int {
	r.rolloverCounter()
	return r.ordersToday
}

func (r *Router) rolloverCounter() {
	day := r.now().UTC().Format("2006-01-02")
	if day != r.counterDay {
		r.counterDay = day
		r.ordersToday = 0
	}
}

func dedupKey(req RouteRequest) string {
	kind := "ENTRY"
	if req.IsExit {
		kind = "EXIT"
	}
	return fmt.Sprintf("%s:%s:%s", strings.ToUpper(req.Symbol), strings.ToUpper(req.Side), kind)
}

func (r *Router) isDuplicate(key string) bool {
	last, ok := r.dedup[key]
	if !ok {
		return false
	}
	// Inclusive: a retry at exactly the window boundary is still a duplicate.
	return r.now().Sub(last) <= r.dedupWindow
}

// RouteOrder runs the full pipeline: dedup, risk guard, then paper fill or
// live dispatch. Every call writes exactly one journal row; a failed journal
// write is returned as an error because the order's fate would otherwise be
// unrecorded.
func (r *Router) RouteOrder(ctx context.Context, req RouteRequest) (*model.Order, error) {
	r.rolloverCounter()

	order := &model.Order{
		Symbol:   strings.ToUpper(req.Symbol),
		Side:     strings.ToUpper(req.Side),
		Quantity: req.Quantity,
		Price:    req.Price,
		Mode:     r.mode,
		IsExit:   req.IsExit,
	}

	key := dedupKey(req)
	if r.isDuplicate(key) {
		order.Status = model.OrderStatusSkipped
		order.Reason = ReasonDuplicateWindow
		return r.journalAndReturn(ctx, order)
	}
	r.dedup[key] = r.now()

	if ok, reason := r.engine.PreOrderGuard(r.mode, r.ordersToday, req.IsExit, r.now().UTC()); !ok {
		order.Status = model.OrderStatusRejected
		order.Reason = reason
		return r.journalAndReturn(ctx, order)
	}

	if r.mode == model.ModePaper {
		order.Status = model.OrderStatusFilled
		order.Reason = risk.ReasonOK
		r.ordersToday++
		return r.journalAndReturn(ctx, order)
	}

	if r.broker == nil {
		order.Status = model.OrderStatusRejected
		order.Reason = ReasonBrokerNotConfigured
		return r.journalAndReturn(ctx, order)
	}

	response, err := r.broker.PlaceOrder(ctx, connectors.PlaceOrderRequest{
		Symbol:          order.Symbol,
		Quantity:        order.Quantity,
		Price:           order.Price,
		Exchange:        req.Exchange,
		Segment:         req.Segment,
		TransactionType: order.Side,
	})
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"symbol": order.Symbol,
			"side":   order.Side,
		}).WithError(err).Error("broker place order failed")
		order.Status = model.OrderStatusRejected
		order.Reason = fmt.Sprintf("broker_error: %v", err)
		return r.journalAndReturn(ctx, order)
	}

	order.BrokerOrderID = connectors.ExtractOrderID(response)
	order.BrokerPayload = marshalPayload(response)
	order.Status = model.OrderStatusSent
	if status := connectors.ExtractStatus(response); status != "" {
		order.Status = status
	}
	order.Reason = risk.ReasonOK
	r.ordersToday++
	return r.journalAndReturn(ctx, order)
}

func (r *Router) journalAndReturn(ctx context.Context, order *model.Order) (*model.Order, error) {
	id, err := r.journal.RecordOrder(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("journal write failed for %s %s: %w", order.Side, order.Symbol, err)
	}
	order.ID = id
	return order, nil
}

// ReconcileOrderStatuses polls the broker for every journal row still in an
// open live state and updates the journal. Per-row failures are logged and
// skipped so one bad lookup does not block the rest. No-op in paper mode or
// without a broker.
func (r *Router) ReconcileOrderStatuses(ctx context.Context) int {
	if r.mode != model.ModeLive || r.broker == nil {
		return 0
	}

	config := GetConfig()
	rows, err := r.journal.GetOpenLiveOrders(ctx, config.OpenOrderScan)
	if err != nil {
		logger.WithError(err).Error("reconcile: open live order query failed")
		return 0
	}

	updated := 0
	for _, row := range rows {
		if row.BrokerOrderID == "" {
			continue
		}

		response, err := r.broker.GetOrderStatus(ctx, row.BrokerOrderID)
		if err != nil {
			logger.WithFields(map[string]interface{}{
				"journal_id":      row.ID,
				"broker_order_id": row.BrokerOrderID,
			}).WithError(err).Warn("reconcile: status lookup failed")
			continue
		}

		status := connectors.ExtractStatus(response)
		if status == "" || status == row.Status {
			continue
		}

		payload := map[string]interface{}{"reconciled": response}
		if _, err := r.journal.UpdateOrder(ctx, row.ID, status, row.Reason, payload); err != nil {
			logger.WithField("journal_id", row.ID).WithError(err).Warn("reconcile: journal update failed")
			continue
		}
		updated++
	}
	return updated
}

func marshalPayload(response interface{}) string {
	raw, err := json.Marshal(response)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
