package marketdata

import (
	"context"
	"net/http"

	"github.com/nntaoli-project/goex"
	"github.com/nntaoli-project/goex/binance"
	logger "github.com/sirupsen/logrus"

	"tradeconsole/src/model"
	"tradeconsole/src/strategy"
)

// SnapshotProvider yields the per-symbol view the console loop consumes. A
// failed fetch is reported through OK=false, never an error, so one bad
// symbol cannot end a cycle.
type SnapshotProvider interface {
	Snapshot(ctx context.Context, symbol string) model.SymbolSnapshot
}

// KlineProvider fetches close-price history from an exchange and runs the
// injected strategy over it.
type KlineProvider struct {
	exchange goex.API
	strat    strategy.Strategy
	quote    string
	period   goex.KlinePeriod
	limit    int
}

func NewKlineProvider(strat strategy.Strategy) *KlineProvider {
	config := GetConfig()

	apiConfig := &goex.APIConfig{
		HttpClient: http.DefaultClient,
		Endpoint:   binance.GLOBAL_API_BASE_URL,
	}

	return &KlineProvider{
		exchange: binance.NewWithConfig(apiConfig),
		strat:    strat,
		quote:    config.QuoteCurrency,
		period:   parseKlinePeriod(config.KlinePeriod),
		limit:    config.KlineLimit,
	}
}

// WithExchange swaps the goex client, for tests.
func (p *KlineProvider) WithExchange(exchange goex.API) *KlineProvider {
	p.exchange = exchange
	return p
}

func parseKlinePeriod(period string) goex.KlinePeriod {
	switch period {
	case "1m":
		return goex.KLINE_PERIOD_1MIN
	case "5m":
		return goex.KLINE_PERIOD_5MIN
	case "15m":
		return goex.KLINE_PERIOD_15MIN
	case "1h":
		return goex.KLINE_PERIOD_1H
	case "1d":
		return goex.KLINE_PERIOD_1DAY
	default:
		logger.WithField("period", period).Warn("unknown kline period, using 1h")
		return goex.KLINE_PERIOD_1H
	}
}

func (p *KlineProvider) Snapshot(ctx context.Context, symbol string) model.SymbolSnapshot {
	snapshot := model.SymbolSnapshot{Symbol: symbol}

	pair := goex.NewCurrencyPair(goex.Currency{Symbol: symbol}, goex.Currency{Symbol: p.quote})
	klines, err := p.exchange.GetKlineRecords(pair, p.period, p.limit)
	if err != nil {
		logger.WithField("symbol", symbol).WithError(err).Warn("kline fetch failed")
		return snapshot
	}
	if len(klines) < 2 {
		logger.WithField("symbol", symbol).Warn("not enough kline history")
		return snapshot
	}

	closes := make([]float64, 0, len(klines))
	for _, k := range klines {
		closes = append(closes, k.Close)
	}

	price := closes[len(closes)-1]
	prevClose := closes[len(closes)-2]

	snapshot.Price = price
	if prevClose > 0 {
		snapshot.ChangePct = (price - prevClose) / prevClose * 100
	}
	snapshot.Signal = p.strat.Signal(closes)
	snapshot.OK = true
	return snapshot
}

// StaticProvider serves canned snapshots, for tests and dry runs.
type StaticProvider map[string]model.SymbolSnapshot

func (p StaticProvider) Snapshot(ctx context.Context, symbol string) model.SymbolSnapshot {
	snapshot, ok := p[symbol]
	if !ok {
		return model.SymbolSnapshot{Symbol: symbol}
	}
	snapshot.Symbol = symbol
	return snapshot
}
