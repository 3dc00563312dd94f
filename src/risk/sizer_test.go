package risk

import "testing"

func TestCalculateQuantity(t *testing.T) {
	tests := []struct {
		name            string
		cash            float64
		price           float64
		riskPerTradePct float64
		stopLossPct     float64
		maxPositionPct  float64
		capitalBase     float64
		want            int
	}{
		{
			// risk bound 100000*0.01/(100*0.2)=50, allocation 100, cash 1000
			name: "risk budget binds",
			cash: 100000, price: 100,
			riskPerTradePct: 0.01, stopLossPct: 0.2, maxPositionPct: 0.10,
			capitalBase: 100000,
			want:        50,
		},
		{
			name: "allocation binds",
			cash: 100000, price: 100,
			riskPerTradePct: 0.10, stopLossPct: 0.02, maxPositionPct: 0.05,
			capitalBase: 100000,
			want:        50,
		},
		{
			name: "cash binds",
			cash: 1200, price: 100,
			riskPerTradePct: 0.05, stopLossPct: 0.02, maxPositionPct: 0.50,
			capitalBase: 100000,
			want:        12,
		},
		{
			name: "zero price",
			cash: 100000, price: 0,
			riskPerTradePct: 0.01, stopLossPct: 0.02, maxPositionPct: 0.10,
			capitalBase: 100000,
			want:        0,
		},
		{
			name: "zero cash",
			cash: 0, price: 100,
			riskPerTradePct: 0.01, stopLossPct: 0.02, maxPositionPct: 0.10,
			capitalBase: 100000,
			want:        0,
		},
		{
			// zero stop-loss is floored at 0.001, not divided through
			name: "stop loss floored",
			cash: 100000, price: 100,
			riskPerTradePct: 0.01, stopLossPct: 0, maxPositionPct: 0.10,
			capitalBase: 100000,
			want:        100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateQuantity(tt.cash, tt.price, tt.riskPerTradePct, tt.stopLossPct, tt.maxPositionPct, tt.capitalBase)
			if got != tt.want {
				t.Fatalf("quantity mismatch. got=%d want=%d", got, tt.want)
			}
		})
	}
}

func TestCalculateQuantityNeverNegative(t *testing.T) {
	prices := []float64{0.01, 1, 99.99, 1000000}
	cashes := []float64{0.5, 100, 100000}
	for _, price := range prices {
		for _, cash := range cashes {
			got := CalculateQuantity(cash, price, 0.01, 0.02, 0.10, 100000)
			if got < 0 {
				t.Fatalf("negative quantity for cash=%v price=%v: %d", cash, price, got)
			}
		}
	}
}
