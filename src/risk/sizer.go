package risk

import "github.com/shopspring/decimal"

// Sizing floors. Stop-loss is floored so the risk bound never divides by a
// vanishing stop distance.
const (
	minStopLossPct    = 0.001
	minRiskPct        = 0.001
	minMaxPositionPct = 0.01
)

// CalculateQuantity sizes an entry as the minimum of three independent upper
// bounds: risk budget over stop distance, allocation budget over price, and
// available cash over price. The result is an integer share count, never
// negative, and zero whenever price or cash is non-positive.
func CalculateQuantity(cash, price, riskPerTradePct, stopLossPct, maxPositionPct, capitalBase float64) int {
	if price <= 0 || cash <= 0 {
		return 0
	}

	priceDec := decimal.NewFromFloat(price)
	base := decimal.NewFromFloat(capitalBase)

	safeStopLoss := decimal.NewFromFloat(maxFloat(stopLossPct, minStopLossPct))
	riskBudget := base.Mul(decimal.NewFromFloat(maxFloat(riskPerTradePct, minRiskPct)))
	allocationBudget := base.Mul(decimal.NewFromFloat(maxFloat(maxPositionPct, minMaxPositionPct)))

	qtyByRisk := riskBudget.Div(priceDec.Mul(safeStopLoss)).IntPart()
	qtyByAllocation := allocationBudget.Div(priceDec).IntPart()
	qtyByCash := decimal.NewFromFloat(cash).Div(priceDec).IntPart()

	qty := qtyByRisk
	if qtyByAllocation < qty {
		qty = qtyByAllocation
	}
	if qtyByCash < qty {
		qty = qtyByCash
	}
	if qty < 0 {
		return 0
	}
	return int(qty)
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
