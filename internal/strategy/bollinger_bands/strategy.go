package bollinger_bands

import (
	"fmt"
	"math"
	"time"

	"github.com/marwyn/tradewind/internal/core"
	"github.com/marwyn/tradewind/internal/indicator"
	"github.com/marwyn/tradewind/internal/strategy"
)

// Strategy trades mean reversion at the Bollinger band edges with an RSI
// extreme as confirmation.
type Strategy struct {
	period     int
	k          float64
	rsiPeriod  int
	overbought float64
	oversold   float64
}

var _ strategy.Strategy = (*Strategy)(nil)

func New() *Strategy {
	return &Strategy{period: 20, k: 2, rsiPeriod: 14, overbought: 70, oversold: 30}
}

func (s *Strategy) Name() string {
	return "bollinger_bands"
}

func (s *Strategy) Description() string {
	return fmt.Sprintf("Bollinger(%d, %.0f) mean reversion with RSI confirmation", s.period, s.k)
}

func (s *Strategy) Warmup() int {
	return s.period + 2
}

func (s *Strategy) Evaluate(series core.PriceSeries) (core.Signal, error) {
	closes := series.Closes()
	bands := indicator.Bollinger(closes, s.period, s.k)
	rsi := indicator.RSI(closes, s.rsiPeriod)

	n := len(closes) - 1
	if math.IsNaN(bands.Upper[n]) || math.IsNaN(rsi[n]) {
		return core.Hold("insufficient data"), nil
	}

	switch {
	case closes[n] <= bands.Lower[n] && rsi[n] < s.oversold:
		return core.Signal{
			Action:      core.ActionBuy,
			Reason:      fmt.Sprintf("close %.5f at lower band %.5f, RSI %.2f", closes[n], bands.Lower[n], rsi[n]),
			GeneratedAt: time.Now(),
		}, nil
	case closes[n] >= bands.Upper[n] && rsi[n] > s.overbought:
		return core.Signal{
			Action:      core.ActionSell,
			Reason:      fmt.Sprintf("close %.5f at upper band %.5f, RSI %.2f", closes[n], bands.Upper[n], rsi[n]),
			GeneratedAt: time.Now(),
		}, nil
	}
	return core.Hold("inside bands"), nil
}
