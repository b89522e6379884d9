package rsi_scalping

import (
	"fmt"
	"math"
	"time"

	"github.com/marwyn/tradewind/internal/core"
	"github.com/marwyn/tradewind/internal/indicator"
	"github.com/marwyn/tradewind/internal/strategy"
)

// Strategy fades RSI extremes when short-term momentum agrees: sell an
// overbought market that is already turning down, buy an oversold one
// that is turning up.
type Strategy struct {
	period     int
	lag        int
	overbought float64
	oversold   float64
}

var _ strategy.Strategy = (*Strategy)(nil)

func New() *Strategy {
	return &Strategy{period: 14, lag: 5, overbought: 75, oversold: 25}
}

func (s *Strategy) Name() string {
	return "rsi_scalping"
}

func (s *Strategy) Description() string {
	return fmt.Sprintf("RSI(%d) scalping with %d-bar momentum confirmation", s.period, s.lag)
}

func (s *Strategy) Warmup() int {
	return s.period + 2
}

func (s *Strategy) Evaluate(series core.PriceSeries) (core.Signal, error) {
	closes := series.Closes()
	rsi := indicator.RSI(closes, s.period)
	mom := indicator.Momentum(closes, s.lag)

	n := len(closes) - 1
	if math.IsNaN(rsi[n]) || math.IsNaN(mom[n]) {
		return core.Hold("insufficient data"), nil
	}

	switch {
	case rsi[n] > s.overbought && mom[n] < 0:
		return core.Signal{
			Action:      core.ActionSell,
			Reason:      fmt.Sprintf("RSI %.2f overbought with negative momentum %.5f", rsi[n], mom[n]),
			GeneratedAt: time.Now(),
		}, nil
	case rsi[n] < s.oversold && mom[n] > 0:
		return core.Signal{
			Action:      core.ActionBuy,
			Reason:      fmt.Sprintf("RSI %.2f oversold with positive momentum %.5f", rsi[n], mom[n]),
			GeneratedAt: time.Now(),
		}, nil
	}
	return core.Hold("no RSI extreme"), nil
}
