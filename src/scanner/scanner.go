package scanner

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/kelseyhightower/envconfig"
	logger "github.com/sirupsen/logrus"

	"tradeconsole/src/marketdata"
	"tradeconsole/src/model"
)

type Config struct {
	Workers int `envconfig:"SCAN_WORKERS" default:"8"`
	TopN    int `envconfig:"SCAN_TOP_N" default:"25"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

// Candidate is one scored scan hit.
type Candidate struct {
	Symbol    string  `json:"symbol"`
	Signal    string  `json:"signal"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
	Score     float64 `json:"score"`
}

// Result groups candidates by direction, each sorted by score descending and
// bounded to the configured top N.
type Result struct {
	Buys  []Candidate `json:"buys"`
	Sells []Candidate `json:"sells"`
}

// Scanner scores BUY/SELL candidates across a symbol universe. Symbols are
// independent, so they are fanned out over a bounded pool of workers and
// collected once all complete.
type Scanner struct {
	provider marketdata.SnapshotProvider
	workers  int
	topN     int
}

func New(provider marketdata.SnapshotProvider) *Scanner {
	config := GetConfig()
	return &Scanner{
		provider: provider,
		workers:  max(config.Workers, 1),
		topN:     max(config.TopN, 1),
	}
}

// WithPool overrides pool size and result bound, for tests.
func (s *Scanner) WithPool(workers, topN int) *Scanner {
	s.workers = max(workers, 1)
	s.topN = max(topN, 1)
	return s
}

func (s *Scanner) Scan(ctx context.Context, universe []string) Result {
	symbols := make(chan string)
	candidates := make(chan Candidate)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range symbols {
				snapshot := s.provider.Snapshot(ctx, symbol)
				if !snapshot.OK || snapshot.Signal == model.SignalHold {
					continue
				}
				candidates <- Candidate{
					Symbol:    snapshot.Symbol,
					Signal:    model.SignalLabel(snapshot.Signal),
					Price:     snapshot.Price,
					ChangePct: snapshot.ChangePct,
					Score:     math.Abs(snapshot.ChangePct),
				}
			}
		}()
	}

	go func() {
		defer close(symbols)
		for _, symbol := range universe {
			select {
			case symbols <- symbol:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(candidates)
	}()

	var result Result
	for candidate := range candidates {
		if candidate.Signal == model.SignalLabel(model.SignalBuy) {
			result.Buys = append(result.Buys, candidate)
		} else {
			result.Sells = append(result.Sells, candidate)
		}
	}

	result.Buys = sortAndBound(result.Buys, s.topN)
	result.Sells = sortAndBound(result.Sells, s.topN)

	logger.WithFields(map[string]interface{}{
		"universe": len(universe),
		"buys":     len(result.Buys),
		"sells":    len(result.Sells),
	}).Info("scan complete")

	return result
}

func sortAndBound(candidates []Candidate, topN int) []Candidate {
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > topN {
		candidates = candidates[:topN]
	}
	return candidates
}
