package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"tradeconsole/src/model"
)

func newTestJournal(t *testing.T) *OrderJournal {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Order{}))

	return (&OrderJournal{}).WithDB(db)
}

func TestRecordOrderNormalizes(t *testing.T) {
	journal := newTestJournal(t)
	ctx := context.Background()

	id, err := journal.RecordOrder(ctx, &model.Order{
		Symbol:   "reliance",
		Side:     "buy",
		Quantity: 50,
		Price:    100,
		Mode:     "Paper",
		Status:   "filled",
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	var row model.Order
	require.NoError(t, journal.db.First(&row, id).Error)
	assert.Equal(t, "RELIANCE", row.Symbol)
	assert.Equal(t, "BUY", row.Side)
	assert.Equal(t, "FILLED", row.Status)
	assert.Equal(t, "paper", row.Mode)
	assert.Equal(t, "{}", row.BrokerPayload)
}

func TestUpdateOrderRevisesStatusReasonPayload(t *testing.T) {
	journal := newTestJournal(t)
	ctx := context.Background()

	id, err := journal.RecordOrder(ctx, &model.Order{
		Symbol: "TCS", Side: "SELL", Quantity: 5, Price: 3500,
		Mode: model.ModeLive, Status: model.OrderStatusSent,
	})
	require.NoError(t, err)

	updated, err := journal.UpdateOrder(ctx, id, "complete", "reconciled", map[string]interface{}{"order_status": "COMPLETE"})
	require.NoError(t, err)
	assert.True(t, updated)

	var row model.Order
	require.NoError(t, journal.db.First(&row, id).Error)
	assert.Equal(t, "COMPLETE", row.Status)
	assert.Equal(t, "reconciled", row.Reason)
	assert.Contains(t, row.BrokerPayload, "COMPLETE")

	// Unknown id updates nothing.
	updated, err = journal.UpdateOrder(ctx, 9999, "FILLED", "", nil)
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestGetOpenLiveOrders(t *testing.T) {
	journal := newTestJournal(t)
	ctx := context.Background()

	sentID, err := journal.RecordOrder(ctx, &model.Order{
		Symbol: "INFY", Side: "BUY", Quantity: 10, Price: 1500,
		Mode: model.ModeLive, Status: model.OrderStatusSent,
	})
	require.NoError(t, err)

	// Paper orders and terminal live orders must not show up.
	_, err = journal.RecordOrder(ctx, &model.Order{
		Symbol: "INFY", Side: "BUY", Quantity: 10, Price: 1500,
		Mode: model.ModePaper, Status: model.OrderStatusFilled,
	})
	require.NoError(t, err)
	_, err = journal.RecordOrder(ctx, &model.Order{
		Symbol: "TCS", Side: "SELL", Quantity: 3, Price: 3500,
		Mode: model.ModeLive, Status: model.OrderStatusRejected,
	})
	require.NoError(t, err)

	open, err := journal.GetOpenLiveOrders(ctx, 10)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, sentID, open[0].ID)

	// Moving the order to a terminal state removes it from the open set.
	_, err = journal.UpdateOrder(ctx, sentID, model.OrderStatusComplete, "reconciled", nil)
	require.NoError(t, err)

	open, err = journal.GetOpenLiveOrders(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestGetOpenLiveOrdersNewestFirstBounded(t *testing.T) {
	journal := newTestJournal(t)
	ctx := context.Background()

	var last uint
	for i := 0; i < 5; i++ {
		id, err := journal.RecordOrder(ctx, &model.Order{
			Symbol: "SBIN", Side: "BUY", Quantity: 1, Price: 600,
			Mode: model.ModeLive, Status: model.OrderStatusSent,
		})
		require.NoError(t, err)
		last = id
	}

	open, err := journal.GetOpenLiveOrders(ctx, 3)
	require.NoError(t, err)
	require.Len(t, open, 3)
	assert.Equal(t, last, open[0].ID)
}

func TestGetSessionSummary(t *testing.T) {
	journal := newTestJournal(t)
	ctx := context.Background()
	sessionStart := time.Now().UTC().Add(-time.Minute)

	_, err := journal.RecordOrder(ctx, &model.Order{
		Symbol: "RELIANCE", Side: "BUY", Quantity: 50, Price: 100,
		Mode: model.ModePaper, Status: model.OrderStatusFilled,
	})
	require.NoError(t, err)
	_, err = journal.RecordOrder(ctx, &model.Order{
		Symbol: "TCS", Side: "SELL", Quantity: 3, Price: 3500,
		Mode: model.ModeLive, Status: model.OrderStatusSent,
	})
	require.NoError(t, err)

	summary, err := journal.GetSessionSummary(ctx, sessionStart, 10)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalOrders)
	assert.Equal(t, 1, summary.OpenOrders)
	assert.Equal(t, 1, summary.ClosedOrders)
	require.Len(t, summary.OpenRows, 1)
	require.Len(t, summary.ClosedRows, 1)
	assert.Equal(t, "TCS", summary.OpenRows[0].Symbol)
	assert.Equal(t, "RELIANCE", summary.ClosedRows[0].Symbol)

	// Orders before the session window are excluded.
	future := time.Now().UTC().Add(time.Hour)
	summary, err = journal.GetSessionSummary(ctx, future, 10)
	require.NoError(t, err)
	assert.Zero(t, summary.TotalOrders)
}
