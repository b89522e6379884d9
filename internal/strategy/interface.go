package strategy

import (
	"github.com/marwyn/tradewind/internal/core"
)

// Strategy defines the interface for signal-generating trading strategies.
// Evaluate looks at the full supplied history and decides for the latest
// bar only; edge-triggered rules compare the last two bars.
type Strategy interface {
	// Name returns the registry identifier for this strategy.
	Name() string

	// Description returns a short human-readable summary.
	Description() string

	// Warmup returns the minimum number of bars Evaluate needs. With
	// fewer bars the engine answers hold without calling the strategy.
	Warmup() int

	// Evaluate produces a signal for the most recent bar of the series.
	// Implementations degrade to hold on any internal edge case; a
	// non-nil error is reserved for contract violations.
	Evaluate(series core.PriceSeries) (core.Signal, error)
}
