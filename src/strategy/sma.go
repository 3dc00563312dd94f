package strategy

import (
	"fmt"

	"tradeconsole/src/model"
)

// Strategy turns a close-price series into a signal for the latest bar.
// Implementations are pure and hold no runtime state.
type Strategy interface {
	Name() string
	Signal(closes []float64) int
}

// SMACrossover signals BUY when the short SMA crosses above the long SMA on
// the latest bar and SELL when it crosses below. Anything else is HOLD.
type SMACrossover struct {
	ShortWindow int
	LongWindow  int
}

func NewSMACrossover(shortWindow, longWindow int) *SMACrossover {
	if shortWindow < 1 {
		shortWindow = 10
	}
	if longWindow <= shortWindow {
		longWindow = shortWindow * 3
	}
	return &SMACrossover{ShortWindow: shortWindow, LongWindow: longWindow}
}

func (s *SMACrossover) Name() string {
	return fmt.Sprintf("sma_crossover_%d_%d", s.ShortWindow, s.LongWindow)
}

func (s *SMACrossover) Signal(closes []float64) int {
	// Need one extra bar to compare against the previous pair of SMAs.
	if len(closes) < s.LongWindow+1 {
		return model.SignalHold
	}

	last := len(closes) - 1
	shortNow := smaAt(closes, last, s.ShortWindow)
	longNow := smaAt(closes, last, s.LongWindow)
	shortPrev := smaAt(closes, last-1, s.ShortWindow)
	longPrev := smaAt(closes, last-1, s.LongWindow)

	if shortNow > longNow && shortPrev <= longPrev {
		return model.SignalBuy
	}
	if shortNow < longNow && shortPrev >= longPrev {
		return model.SignalSell
	}
	return model.SignalHold
}

// smaAt averages the window ending at index i inclusive.
func smaAt(closes []float64, i, window int) float64 {
	sum := 0.0
	for j := i - window + 1; j <= i; j++ {
		sum += closes[j]
	}
	return sum / float64(window)
}
