package model

import "time"

// Order statuses written by the router or learned from the broker.
const (
	OrderStatusFilled    = "FILLED"
	OrderStatusSent      = "SENT"
	OrderStatusRejected  = "REJECTED"
	OrderStatusSkipped   = "SKIPPED"
	OrderStatusComplete  = "COMPLETE"
	OrderStatusCancelled = "CANCELLED"
	OrderStatusFailed    = "FAILED"
	OrderStatusOpen      = "OPEN"
	OrderStatusPartial   = "PARTIAL"
)

// Execution modes.
const (
	ModePaper = "paper"
	ModeLive  = "live"
)

// Order sides.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// TerminalStatuses are the statuses after which no further transition is
// expected for an order.
var TerminalStatuses = []string{
	OrderStatusComplete,
	OrderStatusFilled,
	OrderStatusCancelled,
	OrderStatusRejected,
	OrderStatusFailed,
}

// OpenLiveStatuses are the non-terminal statuses a live order can sit in
// while waiting for broker reconciliation.
var OpenLiveStatuses = []string{
	OrderStatusSent,
	OrderStatusOpen,
	OrderStatusPartial,
}

// IsTerminalStatus reports whether the (already uppercased) status is final.
func IsTerminalStatus(status string) bool {
	for _, s := range TerminalStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Order is one journal row. Every routing attempt produces exactly one row;
// only status, reason, broker payload and updated_at may change afterwards.
type Order struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Symbol        string    `gorm:"size:40;not null" json:"symbol"`
	Side          string    `gorm:"size:10;not null" json:"side"`
	Quantity      int       `gorm:"not null" json:"quantity"`
	Price         float64   `gorm:"not null" json:"price"`
	Mode          string    `gorm:"size:10;not null;index:idx_orders_status_mode,priority:2" json:"mode"`
	Status        string    `gorm:"size:20;not null;index:idx_orders_status_mode,priority:1" json:"status"`
	Reason        string    `json:"reason,omitempty"`
	BrokerOrderID string    `gorm:"size:60" json:"broker_order_id,omitempty"`
	BrokerPayload string    `json:"broker_payload,omitempty"`
	IsExit        bool      `gorm:"not null;default:false" json:"is_exit"`
}

// TableName pins the journal table name.
func (Order) TableName() string {
	return "orders"
}

// OrderSample is the trimmed row shape exposed on dashboards and in session
// summaries.
type OrderSample struct {
	ID        uint      `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Symbol    string    `json:"symbol"`
	Side      string    `json:"side"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	Status    string    `json:"status"`
	Mode      string    `json:"mode"`
}

// SessionSummary aggregates journal activity since a session started.
type SessionSummary struct {
	TotalOrders  int           `json:"total_orders"`
	OpenOrders   int           `json:"open_orders"`
	ClosedOrders int           `json:"closed_orders"`
	OpenRows     []OrderSample `json:"open_rows"`
	ClosedRows   []OrderSample `json:"closed_rows"`
}
