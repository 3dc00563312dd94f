package marketdata

import (
	"context"
	"fmt"
	"testing"

	"github.com/nntaoli-project/goex"
	"github.com/stretchr/testify/assert"

	"tradeconsole/src/model"
	"tradeconsole/src/strategy"
)

// stubExchange overrides only the kline call; everything else panics if used.
type stubExchange struct {
	goex.API
	klines []goex.Kline
	err    error
}

func (s *stubExchange) GetKlineRecords(currency goex.CurrencyPair, period goex.KlinePeriod, size int, optional ...goex.OptionalParameter) ([]goex.Kline, error) {
	return s.klines, s.err
}

func klinesFromCloses(closes []float64) []goex.Kline {
	klines := make([]goex.Kline, 0, len(closes))
	for _, c := range closes {
		klines = append(klines, goex.Kline{Close: c})
	}
	return klines
}

func TestKlineProviderSnapshot(t *testing.T) {
	closes := []float64{100, 100, 100, 100, 100, 100, 100, 100, 108}
	provider := NewKlineProvider(strategy.NewSMACrossover(3, 6)).
		WithExchange(&stubExchange{klines: klinesFromCloses(closes)})

	snapshot := provider.Snapshot(context.Background(), "BTC")

	assert.True(t, snapshot.OK)
	assert.Equal(t, "BTC", snapshot.Symbol)
	assert.Equal(t, 108.0, snapshot.Price)
	assert.InDelta(t, 8.0, snapshot.ChangePct, 1e-9)
	assert.Equal(t, model.SignalBuy, snapshot.Signal)
}

func TestKlineProviderFetchFailure(t *testing.T) {
	provider := NewKlineProvider(strategy.NewSMACrossover(3, 6)).
		WithExchange(&stubExchange{err: fmt.Errorf("rate limited")})

	snapshot := provider.Snapshot(context.Background(), "ETH")

	assert.False(t, snapshot.OK)
	assert.Zero(t, snapshot.Price)
	assert.Equal(t, model.SignalHold, snapshot.Signal)
}

func TestKlineProviderShortHistory(t *testing.T) {
	provider := NewKlineProvider(strategy.NewSMACrossover(3, 6)).
		WithExchange(&stubExchange{klines: klinesFromCloses([]float64{100})})

	assert.False(t, provider.Snapshot(context.Background(), "SOL").OK)
}

func TestStaticProvider(t *testing.T) {
	provider := StaticProvider{
		"INFY": {Price: 1500, ChangePct: 1.2, Signal: model.SignalBuy, OK: true},
	}

	hit := provider.Snapshot(context.Background(), "INFY")
	assert.True(t, hit.OK)
	assert.Equal(t, "INFY", hit.Symbol)

	miss := provider.Snapshot(context.Background(), "TCS")
	assert.False(t, miss.OK)
	assert.Equal(t, "TCS", miss.Symbol)
}

func TestParseKlinePeriod(t *testing.T) {
	assert.Equal(t, goex.KlinePeriod(goex.KLINE_PERIOD_1MIN), parseKlinePeriod("1m"))
	assert.Equal(t, goex.KlinePeriod(goex.KLINE_PERIOD_1H), parseKlinePeriod("bogus"))
}
