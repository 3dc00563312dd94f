package observability

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"time"

	logger "github.com/sirupsen/logrus"

	"tradeconsole/src/model"
)

// Snapshot is one per-cycle metrics export.
type Snapshot struct {
	Timestamp      time.Time `json:"timestamp"`
	Equity         float64   `json:"equity"`
	Cash           float64   `json:"cash"`
	RealizedPnL    float64   `json:"realized_pnl"`
	OpenPositions  int       `json:"open_positions"`
	OrdersToday    int       `json:"orders_today"`
	TotalOrders    int       `json:"total_orders"`
	FilledOrders   int       `json:"filled_orders"`
	RejectedOrders int       `json:"rejected_orders"`
	MaxEquity      float64   `json:"max_equity"`
	MinEquity      float64   `json:"min_equity"`
	DrawdownPct    float64   `json:"drawdown_pct"`
	LastEvent      string    `json:"last_event"`
	RecentEvents   []string  `json:"recent_events"`
}

// RuntimeMetrics accumulates rolling counters across cycles and renders the
// per-cycle snapshot consumed by the event bus and the metrics document.
type RuntimeMetrics struct {
	outputFile     string
	maxEquity      float64
	minEquity      float64
	totalOrders    int
	filledOrders   int
	rejectedOrders int
	lastEvent      string
}

// New returns metrics exporting to the given file.
func New(outputFile string) *RuntimeMetrics {
	return &RuntimeMetrics{
		outputFile: outputFile,
		minEquity:  math.Inf(1),
	}
}

// OnOrder counts a routed order outcome.
func (m *RuntimeMetrics) OnOrder(status string) {
	m.totalOrders++
	switch status {
	case model.OrderStatusFilled, model.OrderStatusSent, model.OrderStatusComplete:
		m.filledOrders++
	case model.OrderStatusRejected, model.OrderStatusFailed:
		m.rejectedOrders++
	}
}

// OnEvent remembers the most recent event topic.
func (m *RuntimeMetrics) OnEvent(topic string) {
	m.lastEvent = topic
}

// Snapshot folds the cycle's equity into the running max/min and returns the
// full metrics payload.
func (m *RuntimeMetrics) Snapshot(equity, cash, realizedPnL float64, openPositions, ordersToday int, recentEvents []string) Snapshot {
	if equity > m.maxEquity {
		m.maxEquity = equity
	}
	if equity < m.minEquity {
		m.minEquity = equity
	}

	drawdown := 0.0
	if m.maxEquity > 0 {
		drawdown = (equity - m.maxEquity) / m.maxEquity * 100.0
	}

	minEquity := m.minEquity
	if math.IsInf(minEquity, 1) {
		minEquity = equity
	}

	if len(recentEvents) > 10 {
		recentEvents = recentEvents[len(recentEvents)-10:]
	}
	events := make([]string, len(recentEvents))
	copy(events, recentEvents)

	return Snapshot{
		Timestamp:      time.Now().UTC(),
		Equity:         round2(equity),
		Cash:           round2(cash),
		RealizedPnL:    round2(realizedPnL),
		OpenPositions:  openPositions,
		OrdersToday:    ordersToday,
		TotalOrders:    m.totalOrders,
		FilledOrders:   m.filledOrders,
		RejectedOrders: m.rejectedOrders,
		MaxEquity:      round2(m.maxEquity),
		MinEquity:      round2(minEquity),
		DrawdownPct:    round2(drawdown),
		LastEvent:      m.lastEvent,
		RecentEvents:   events,
	}
}

// Export writes the snapshot document. A failed export is logged and
// swallowed; the next cycle rewrites it anyway.
func (m *RuntimeMetrics) Export(snapshot Snapshot) bool {
	payload, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(m.outputFile), 0o755); err != nil {
		logger.WithField("component", "RuntimeMetrics").WithError(err).Warn("Failed to create metrics directory")
		return false
	}
	if err := os.WriteFile(m.outputFile, payload, 0o644); err != nil {
		logger.WithField("component", "RuntimeMetrics").WithError(err).Warn("Failed to export metrics snapshot")
		return false
	}
	return true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
