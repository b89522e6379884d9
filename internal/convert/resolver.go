// Package convert resolves exchange rates between currencies using the
// tradeable symbols a quote source actually carries. Brokers list the
// same pair under several naming variants, so resolution probes each
// variant before falling back to a synthetic cross rate through USD.
package convert

import (
	"go.uber.org/zap"

	"github.com/marwyn/tradewind/internal/core"
)

// symbolVariants are the naming suffixes probed for each currency pair,
// in preference order. The bare name wins when a broker lists both.
var symbolVariants = []string{"", "m", ".pro", "_i", ".raw", ".m"}

// QuoteSource supplies the current ask price for a tradeable symbol.
// The boolean reports whether the symbol is known at all; a zero or
// negative ask is treated the same as unknown.
type QuoteSource interface {
	Ask(symbol string) (float64, bool)
}

// Rate is a resolved conversion between two currencies. When Inverted
// is set, the quote was found for the reversed pair and amounts must be
// divided by Value instead of multiplied.
type Rate struct {
	Value    float64
	Inverted bool
	Symbol   string
}

// Apply converts an amount denominated in the source currency.
func (r Rate) Apply(amount float64) float64 {
	if r.Inverted {
		return amount / r.Value
	}
	return amount * r.Value
}

// Resolver finds conversion rates against a quote source.
type Resolver struct {
	quotes QuoteSource
	logger *zap.Logger
}

// NewResolver creates a resolver backed by the given quote source.
func NewResolver(quotes QuoteSource, logger ...*zap.Logger) *Resolver {
	var l *zap.Logger
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	} else {
		l = zap.NewNop()
	}
	return &Resolver{quotes: quotes, logger: l}
}

// Resolve finds a conversion rate from one currency to another. It
// tries the direct pair under every symbol variant, then the reversed
// pair, and finally a two-leg cross rate through USD. The cross rate is
// pre-multiplied, so it never reports Inverted. Returns
// ErrConversionNotFound when no path exists.
func (r *Resolver) Resolve(from, to string) (Rate, error) {
	if from == to {
		return Rate{Value: 1.0}, nil
	}

	if rate, ok := r.lookup(from + to); ok {
		r.logger.Debug("direct conversion rate",
			zap.String("symbol", rate.Symbol),
			zap.Float64("rate", rate.Value))
		return rate, nil
	}

	if rate, ok := r.lookup(to + from); ok {
		rate.Inverted = true
		r.logger.Debug("inverse conversion rate",
			zap.String("symbol", rate.Symbol),
			zap.Float64("rate", rate.Value))
		return rate, nil
	}

	if from != "USD" && to != "USD" {
		leg1, err1 := r.Resolve(from, "USD")
		leg2, err2 := r.Resolve("USD", to)
		if err1 == nil && err2 == nil {
			combined := leg1.Apply(1.0) * leg2.Apply(1.0)
			r.logger.Debug("cross rate via USD",
				zap.String("from", from),
				zap.String("to", to),
				zap.Float64("rate", combined))
			return Rate{Value: combined}, nil
		}
	}

	r.logger.Warn("no conversion path",
		zap.String("from", from),
		zap.String("to", to))
	return Rate{}, core.WrapErrorf(core.ErrConversionNotFound, "%s to %s", from, to)
}

func (r *Resolver) lookup(pair string) (Rate, bool) {
	for _, suffix := range symbolVariants {
		symbol := pair + suffix
		if ask, ok := r.quotes.Ask(symbol); ok && ask > 0 {
			return Rate{Value: ask, Symbol: symbol}, true
		}
	}
	return Rate{}, false
}
