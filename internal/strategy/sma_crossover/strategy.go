package sma_crossover

import (
	"fmt"
	"math"
	"time"

	"github.com/marwyn/tradewind/internal/core"
	"github.com/marwyn/tradewind/internal/indicator"
	"github.com/marwyn/tradewind/internal/strategy"
)

// Strategy signals on a fast/slow SMA crossover between the previous and
// current bar, confirmed by current volume exceeding its rolling average.
// Without volume data the confirmation is vacuously true.
type Strategy struct {
	fast      int
	slow      int
	volFactor float64
}

var _ strategy.Strategy = (*Strategy)(nil)

// New creates the strategy with the standard 10/20 windows.
func New() *Strategy {
	return &Strategy{fast: 10, slow: 20, volFactor: 1.2}
}

func (s *Strategy) Name() string {
	return "sma_crossover"
}

func (s *Strategy) Description() string {
	return fmt.Sprintf("SMA %d/%d crossover with volume confirmation", s.fast, s.slow)
}

func (s *Strategy) Warmup() int {
	return s.slow + 2
}

func (s *Strategy) Evaluate(series core.PriceSeries) (core.Signal, error) {
	closes := series.Closes()
	fastMA := indicator.SMA(closes, s.fast)
	slowMA := indicator.SMA(closes, s.slow)

	n := len(closes) - 1
	if math.IsNaN(fastMA[n]) || math.IsNaN(slowMA[n]) ||
		math.IsNaN(fastMA[n-1]) || math.IsNaN(slowMA[n-1]) {
		return core.Hold("insufficient data"), nil
	}

	confirmed := true
	if series.HasVolume() {
		vols := series.Volumes()
		avgVol := indicator.SMA(vols, s.slow)
		confirmed = !math.IsNaN(avgVol[n]) && vols[n] > s.volFactor*avgVol[n]
	}

	crossUp := fastMA[n-1] <= slowMA[n-1] && fastMA[n] > slowMA[n]
	crossDown := fastMA[n-1] >= slowMA[n-1] && fastMA[n] < slowMA[n]

	switch {
	case crossUp && confirmed:
		return core.Signal{
			Action:      core.ActionBuy,
			Reason:      fmt.Sprintf("SMA%d (%.5f) crossed above SMA%d (%.5f)", s.fast, fastMA[n], s.slow, slowMA[n]),
			GeneratedAt: time.Now(),
		}, nil
	case crossDown && confirmed:
		return core.Signal{
			Action:      core.ActionSell,
			Reason:      fmt.Sprintf("SMA%d (%.5f) crossed below SMA%d (%.5f)", s.fast, fastMA[n], s.slow, slowMA[n]),
			GeneratedAt: time.Now(),
		}, nil
	}
	return core.Hold("no crossover"), nil
}
