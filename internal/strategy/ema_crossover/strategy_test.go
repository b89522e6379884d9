package ema_crossover

import (
	"testing"
	"time"

	"github.com/marwyn/tradewind/internal/core"
	"github.com/marwyn/tradewind/internal/strategy"
)

func mkSeries(closes []float64) core.PriceSeries {
	base := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	s := make(core.PriceSeries, len(closes))
	for i, c := range closes {
		s[i] = core.PriceBar{
			Time: base.Add(time.Duration(i) * time.Hour),
			Open: c, High: c, Low: c, Close: c,
		}
	}
	return s
}

// Long uptrend, sharp pullback, then a resuming rally: EMA9 crosses back
// above EMA21 on the final bar while EMA21 stays above EMA50.
func pullbackResumeCloses() []float64 {
	closes := make([]float64, 0, 71)
	for i := 0; i < 60; i++ {
		closes = append(closes, 100+float64(i))
	}
	top := closes[len(closes)-1]
	for i := 1; i <= 5; i++ {
		closes = append(closes, top-4*float64(i))
	}
	bottom := closes[len(closes)-1]
	for i := 1; i <= 6; i++ {
		closes = append(closes, bottom+2*float64(i))
	}
	return closes
}

func TestImplementsStrategy(t *testing.T) {
	var _ strategy.Strategy = New()
}

func TestResumedUptrendBuys(t *testing.T) {
	sig, err := New().Evaluate(mkSeries(pullbackResumeCloses()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Action != core.ActionBuy {
		t.Errorf("expected buy on trend-confirmed cross, got %s (%s)", sig.Action, sig.Reason)
	}
}

func TestResumedDowntrendSells(t *testing.T) {
	// Affine mirror of the buy scenario flips every comparison.
	up := pullbackResumeCloses()
	closes := make([]float64, len(up))
	for i, c := range up {
		closes[i] = 300 - c
	}
	sig, err := New().Evaluate(mkSeries(closes))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Action != core.ActionSell {
		t.Errorf("expected sell on trend-confirmed cross, got %s (%s)", sig.Action, sig.Reason)
	}
}

func TestSteadyTrendHolds(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	sig, err := New().Evaluate(mkSeries(closes))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Action != core.ActionHold {
		t.Errorf("expected hold without a fresh cross, got %s (%s)", sig.Action, sig.Reason)
	}
}
