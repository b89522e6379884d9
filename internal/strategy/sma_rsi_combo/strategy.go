package sma_rsi_combo

import (
	"fmt"
	"math"
	"time"

	"github.com/marwyn/tradewind/internal/core"
	"github.com/marwyn/tradewind/internal/indicator"
	"github.com/marwyn/tradewind/internal/strategy"
)

// Strategy requires four simultaneous confirmations: an SMA crossover,
// RSI inside a directional band, MACD histogram sign agreement, and price
// on the correct side of the long trend SMA. Anything less is hold.
type Strategy struct {
	fast      int
	slow      int
	trend     int
	rsiPeriod int
}

var _ strategy.Strategy = (*Strategy)(nil)

func New() *Strategy {
	return &Strategy{fast: 10, slow: 20, trend: 50, rsiPeriod: 14}
}

func (s *Strategy) Name() string {
	return "sma_rsi_combo"
}

func (s *Strategy) Description() string {
	return fmt.Sprintf("SMA %d/%d crossover with RSI, MACD and SMA%d trend filters", s.fast, s.slow, s.trend)
}

func (s *Strategy) Warmup() int {
	return s.trend + 2
}

func (s *Strategy) Evaluate(series core.PriceSeries) (core.Signal, error) {
	closes := series.Closes()
	fastMA := indicator.SMA(closes, s.fast)
	slowMA := indicator.SMA(closes, s.slow)
	trendMA := indicator.SMA(closes, s.trend)
	rsi := indicator.RSI(closes, s.rsiPeriod)
	macd := indicator.MACD(closes)

	n := len(closes) - 1
	if math.IsNaN(fastMA[n]) || math.IsNaN(fastMA[n-1]) ||
		math.IsNaN(slowMA[n]) || math.IsNaN(slowMA[n-1]) ||
		math.IsNaN(trendMA[n]) || math.IsNaN(rsi[n]) {
		return core.Hold("insufficient data"), nil
	}

	smaBuy := fastMA[n-1] <= slowMA[n-1] && fastMA[n] > slowMA[n]
	smaSell := fastMA[n-1] >= slowMA[n-1] && fastMA[n] < slowMA[n]

	rsiBullish := rsi[n] > 40 && rsi[n] < 70
	rsiBearish := rsi[n] > 30 && rsi[n] < 60

	hist := macd.Histogram[n]
	trendUp := closes[n] > trendMA[n]
	trendDown := closes[n] < trendMA[n]

	switch {
	case smaBuy && rsiBullish && hist > 0 && trendUp:
		return core.Signal{
			Action:      core.ActionBuy,
			Reason:      fmt.Sprintf("SMA crossover up, RSI %.2f, MACD histogram %.5f, above SMA%d", rsi[n], hist, s.trend),
			GeneratedAt: time.Now(),
		}, nil
	case smaSell && rsiBearish && hist < 0 && trendDown:
		return core.Signal{
			Action:      core.ActionSell,
			Reason:      fmt.Sprintf("SMA crossover down, RSI %.2f, MACD histogram %.5f, below SMA%d", rsi[n], hist, s.trend),
			GeneratedAt: time.Now(),
		}, nil
	}
	return core.Hold("confirmations not aligned"), nil
}
