package model

import "time"

// Position sides.
const (
	PositionSideLong  = "LONG"
	PositionSideShort = "SHORT"
)

// PositionState is one open position. A symbol has at most one open position
// at a time; opposite-direction fills close it before a new one opens.
type PositionState struct {
	Symbol     string    `json:"symbol"`
	Side       string    `json:"side"`
	Quantity   int       `json:"quantity"`
	EntryPrice float64   `json:"entry_price"`
	OpenedAt   time.Time `json:"opened_at"`
}

// UnrealizedPnL marks the position against the given price.
func (p PositionState) UnrealizedPnL(markPrice float64) float64 {
	if p.Side == PositionSideLong {
		return (markPrice - p.EntryPrice) * float64(p.Quantity)
	}
	return (p.EntryPrice - markPrice) * float64(p.Quantity)
}

// MarketValue is the signed mark-to-market contribution to equity.
func (p PositionState) MarketValue(markPrice float64) float64 {
	value := float64(p.Quantity) * markPrice
	if p.Side == PositionSideShort {
		return -value
	}
	return value
}
