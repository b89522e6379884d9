package ema_crossover

import (
	"fmt"
	"time"

	"github.com/marwyn/tradewind/internal/core"
	"github.com/marwyn/tradewind/internal/indicator"
	"github.com/marwyn/tradewind/internal/strategy"
)

// Strategy signals on a fast/slow EMA crossover confirmed by the slow EMA
// sitting on the right side of the long trend EMA.
type Strategy struct {
	fast  int
	slow  int
	trend int
}

var _ strategy.Strategy = (*Strategy)(nil)

func New() *Strategy {
	return &Strategy{fast: 9, slow: 21, trend: 50}
}

func (s *Strategy) Name() string {
	return "ema_crossover"
}

func (s *Strategy) Description() string {
	return fmt.Sprintf("EMA %d/%d crossover with EMA%d trend confirmation", s.fast, s.slow, s.trend)
}

func (s *Strategy) Warmup() int {
	return s.trend + 2
}

func (s *Strategy) Evaluate(series core.PriceSeries) (core.Signal, error) {
	closes := series.Closes()
	fastEMA := indicator.EMA(closes, s.fast)
	slowEMA := indicator.EMA(closes, s.slow)
	trendEMA := indicator.EMA(closes, s.trend)

	n := len(closes) - 1
	crossUp := fastEMA[n-1] <= slowEMA[n-1] && fastEMA[n] > slowEMA[n]
	crossDown := fastEMA[n-1] >= slowEMA[n-1] && fastEMA[n] < slowEMA[n]
	trendUp := slowEMA[n] > trendEMA[n]
	trendDown := slowEMA[n] < trendEMA[n]

	switch {
	case crossUp && trendUp:
		return core.Signal{
			Action:      core.ActionBuy,
			Reason:      fmt.Sprintf("EMA%d (%.5f) crossed above EMA%d (%.5f) in uptrend", s.fast, fastEMA[n], s.slow, slowEMA[n]),
			GeneratedAt: time.Now(),
		}, nil
	case crossDown && trendDown:
		return core.Signal{
			Action:      core.ActionSell,
			Reason:      fmt.Sprintf("EMA%d (%.5f) crossed below EMA%d (%.5f) in downtrend", s.fast, fastEMA[n], s.slow, slowEMA[n]),
			GeneratedAt: time.Now(),
		}, nil
	}
	return core.Hold("no crossover"), nil
}
