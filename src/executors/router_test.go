package executors

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"tradeconsole/src/connectors"
	"tradeconsole/src/model"
	"tradeconsole/src/repository"
	"tradeconsole/src/risk"
)

func newTestRouter(t *testing.T, mode string, broker connectors.Broker) (*Router, *repository.OrderJournal) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Order{}))

	journal := (&repository.OrderJournal{}).WithDB(db)
	engine := risk.NewEngine(risk.DefaultConfig(100000))
	return NewRouter(engine, journal, broker, mode), journal
}

func countRows(t *testing.T, journal *repository.OrderJournal) int {
	t.Helper()
	summary, err := journal.GetSessionSummary(context.Background(), time.Time{}, 100)
	require.NoError(t, err)
	return summary.TotalOrders
}

func TestRouteOrderPaperFill(t *testing.T) {
	router, journal := newTestRouter(t, model.ModePaper, nil)
	ctx := context.Background()

	order, err := router.RouteOrder(ctx, RouteRequest{Symbol: "reliance", Side: "buy", Quantity: 10, Price: 2500})
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusFilled, order.Status)
	assert.Equal(t, "RELIANCE", order.Symbol)
	assert.Equal(t, "BUY", order.Side)
	assert.NotZero(t, order.ID)
	assert.Equal(t, 1, router.OrdersToday())
	assert.Equal(t, 1, countRows(t, journal))
}

func TestRouteOrderDedupWindow(t *testing.T) {
	router, journal := newTestRouter(t, model.ModePaper, nil)
	ctx := context.Background()

	now := time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)
	router.WithClock(func() time.Time { return now })

	req := RouteRequest{Symbol: "TCS", Side: "BUY", Quantity: 5, Price: 4000}

	first, err := router.RouteOrder(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusFilled, first.Status)

	now = now.Add(5 * time.Second)
	dup, err := router.RouteOrder(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusSkipped, dup.Status)
	assert.Equal(t, ReasonDuplicateWindow, dup.Reason)
	assert.Equal(t, 1, router.OrdersToday(), "skipped calls must not count")

	// Exit for the same symbol+side is a different key.
	exit, err := router.RouteOrder(ctx, RouteRequest{Symbol: "TCS", Side: "BUY", Quantity: 5, Price: 4000, IsExit: true})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusFilled, exit.Status)

	now = now.Add(21 * time.Second)
	again, err := router.RouteOrder(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusFilled, again.Status)

	// Every call left exactly one row.
	assert.Equal(t, 4, countRows(t, journal))
}

func TestRouteOrderDedupWindowBoundaryInclusive(t *testing.T) {
	router, _ := newTestRouter(t, model.ModePaper, nil)
	ctx := context.Background()

	now := time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)
	router.WithClock(func() time.Time { return now })

	req := RouteRequest{Symbol: "TCS", Side: "BUY", Quantity: 5, Price: 4000}

	first, err := router.RouteOrder(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusFilled, first.Status)

	// A retry landing exactly on the window edge is still a duplicate.
	now = now.Add(router.dedupWindow)
	edge, err := router.RouteOrder(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusSkipped, edge.Status)

	now = now.Add(time.Nanosecond)
	past, err := router.RouteOrder(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusFilled, past.Status)
}

func TestRouteOrderGuardRejection(t *testing.T) {
	router, journal := newTestRouter(t, model.ModePaper, nil)
	router.engine.Config().KillSwitchEnabled = true

	order, err := router.RouteOrder(context.Background(), RouteRequest{Symbol: "INFY", Side: "BUY", Quantity: 1, Price: 1500})
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusRejected, order.Status)
	assert.Equal(t, risk.ReasonKillSwitch, order.Reason)
	assert.Equal(t, 0, router.OrdersToday())
	assert.Equal(t, 1, countRows(t, journal))
}

func TestRouteOrderLiveWithoutBroker(t *testing.T) {
	router, _ := newTestRouter(t, model.ModeLive, nil)
	router.engine.Config().MarketHoursOnly = false

	order, err := router.RouteOrder(context.Background(), RouteRequest{Symbol: "SBIN", Side: "SELL", Quantity: 20, Price: 800})
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusRejected, order.Status)
	assert.Equal(t, ReasonBrokerNotConfigured, order.Reason)
}

func TestRouteOrderLiveDispatch(t *testing.T) {
	broker := connectors.NewSimBroker()
	router, _ := newTestRouter(t, model.ModeLive, broker)
	router.engine.Config().MarketHoursOnly = false

	order, err := router.RouteOrder(context.Background(), RouteRequest{Symbol: "SBIN", Side: "BUY", Quantity: 20, Price: 800})
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusSent, order.Status)
	assert.NotEmpty(t, order.BrokerOrderID)
	assert.NotEmpty(t, order.BrokerPayload)
	assert.Equal(t, 1, router.OrdersToday())
}

func TestRouteOrderLiveBrokerFailure(t *testing.T) {
	broker := connectors.NewSimBroker()
	broker.FailNext = true
	router, journal := newTestRouter(t, model.ModeLive, broker)
	router.engine.Config().MarketHoursOnly = false

	order, err := router.RouteOrder(context.Background(), RouteRequest{Symbol: "SBIN", Side: "BUY", Quantity: 20, Price: 800})
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusRejected, order.Status)
	assert.Contains(t, order.Reason, "broker_error")
	assert.Equal(t, 0, router.OrdersToday())
	assert.Equal(t, 1, countRows(t, journal))
}

func TestOrdersTodayUTCDayRollover(t *testing.T) {
	router, _ := newTestRouter(t, model.ModePaper, nil)
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	router.WithClock(func() time.Time { return now })

	_, err := router.RouteOrder(ctx, RouteRequest{Symbol: "A", Side: "BUY", Quantity: 1, Price: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, router.OrdersToday())

	now = time.Date(2026, 3, 2, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 0, router.OrdersToday())
}

func TestSetMode(t *testing.T) {
	router, _ := newTestRouter(t, model.ModePaper, nil)

	assert.True(t, router.SetMode("LIVE"))
	assert.Equal(t, model.ModeLive, router.Mode())
	assert.False(t, router.SetMode("turbo"))
	assert.Equal(t, model.ModeLive, router.Mode())
}

func TestReconcileOrderStatuses(t *testing.T) {
	broker := connectors.NewSimBroker()
	router, journal := newTestRouter(t, model.ModeLive, broker)
	router.engine.Config().MarketHoursOnly = false
	ctx := context.Background()

	order, err := router.RouteOrder(ctx, RouteRequest{Symbol: "SBIN", Side: "BUY", Quantity: 20, Price: 800})
	require.NoError(t, err)
	require.Equal(t, model.OrderStatusSent, order.Status)

	broker.SetStatus(order.BrokerOrderID, "COMPLETE")
	assert.Equal(t, 1, router.ReconcileOrderStatuses(ctx))

	open, err := journal.GetOpenLiveOrders(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, open)

	// Already terminal, nothing left to update.
	assert.Equal(t, 0, router.ReconcileOrderStatuses(ctx))
}
