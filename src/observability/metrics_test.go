package observability

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeconsole/src/model"
)

func TestOnOrderCounting(t *testing.T) {
	m := New(filepath.Join(t.TempDir(), "metrics.json"))

	m.OnOrder(model.OrderStatusFilled)
	m.OnOrder(model.OrderStatusSent)
	m.OnOrder(model.OrderStatusRejected)
	m.OnOrder(model.OrderStatusSkipped)

	snap := m.Snapshot(100000, 100000, 0, 0, 0, nil)
	assert.Equal(t, 4, snap.TotalOrders)
	assert.Equal(t, 2, snap.FilledOrders)
	assert.Equal(t, 1, snap.RejectedOrders)
}

func TestSnapshotTracksDrawdown(t *testing.T) {
	m := New(filepath.Join(t.TempDir(), "metrics.json"))

	first := m.Snapshot(100000, 100000, 0, 0, 0, nil)
	assert.Equal(t, 100000.0, first.MaxEquity)
	assert.Equal(t, 100000.0, first.MinEquity)
	assert.Equal(t, 0.0, first.DrawdownPct)

	second := m.Snapshot(95000, 95000, -5000, 1, 2, []string{"event"})
	assert.Equal(t, 100000.0, second.MaxEquity)
	assert.Equal(t, 95000.0, second.MinEquity)
	assert.Equal(t, -5.0, second.DrawdownPct)
}

func TestSnapshotBoundsRecentEvents(t *testing.T) {
	m := New(filepath.Join(t.TempDir(), "metrics.json"))

	events := make([]string, 25)
	for i := range events {
		events[i] = "event"
	}
	snap := m.Snapshot(1000, 1000, 0, 0, 0, events)
	assert.Len(t, snap.RecentEvents, 10)
}

func TestExportWritesDocument(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "runtime", "metrics_latest.json")
	m := New(outputFile)
	m.OnEvent("order_placed")

	snap := m.Snapshot(100000, 99000, 150, 2, 3, []string{"a", "b"})
	require.True(t, m.Export(snap))

	payload, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, snap.Equity, decoded.Equity)
	assert.Equal(t, "order_placed", decoded.LastEvent)
	assert.Equal(t, []string{"a", "b"}, decoded.RecentEvents)
}
