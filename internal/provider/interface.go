// Package provider supplies historical bars and instrument reference
// data to the rest of the system.
package provider

import (
	"context"

	"github.com/marwyn/tradewind/internal/core"
)

// BarProvider serves historical price bars for a symbol, oldest first.
// A count of zero or less means everything available.
type BarProvider interface {
	Bars(ctx context.Context, symbol string, count int) (core.PriceSeries, error)
}

// ReferenceData resolves contract metadata for a symbol.
type ReferenceData interface {
	Instrument(symbol string) (core.InstrumentSpec, error)
}
