package scanner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"tradeconsole/src/marketdata"
	"tradeconsole/src/model"
)

func TestScanGroupsAndRanks(t *testing.T) {
	provider := marketdata.StaticProvider{
		"AAA": {Price: 10, ChangePct: 1.5, Signal: model.SignalBuy, OK: true},
		"BBB": {Price: 20, ChangePct: 4.0, Signal: model.SignalBuy, OK: true},
		"CCC": {Price: 30, ChangePct: -2.5, Signal: model.SignalSell, OK: true},
		"DDD": {Price: 40, ChangePct: 0.2, Signal: model.SignalHold, OK: true},
		"EEE": {}, // no data
	}

	scanner := New(provider).WithPool(4, 10)
	result := scanner.Scan(context.Background(), []string{"AAA", "BBB", "CCC", "DDD", "EEE"})

	assert.Len(t, result.Buys, 2)
	assert.Equal(t, "BBB", result.Buys[0].Symbol, "highest score first")
	assert.Equal(t, "AAA", result.Buys[1].Symbol)

	assert.Len(t, result.Sells, 1)
	assert.Equal(t, "CCC", result.Sells[0].Symbol)
	assert.Equal(t, "SELL", result.Sells[0].Signal)
	assert.Equal(t, 2.5, result.Sells[0].Score)
}

func TestScanBoundsResults(t *testing.T) {
	provider := marketdata.StaticProvider{}
	universe := make([]string, 0, 20)
	for _, symbol := range []string{"A", "B", "C", "D", "E", "F"} {
		provider[symbol] = model.SymbolSnapshot{Price: 1, ChangePct: 1, Signal: model.SignalBuy, OK: true}
		universe = append(universe, symbol)
	}

	result := New(provider).WithPool(2, 3).Scan(context.Background(), universe)
	assert.Len(t, result.Buys, 3)
}

func TestScanEmptyUniverse(t *testing.T) {
	result := New(marketdata.StaticProvider{}).WithPool(2, 5).Scan(context.Background(), nil)
	assert.Empty(t, result.Buys)
	assert.Empty(t, result.Sells)
}
