package provider

import (
	"strings"

	"github.com/marwyn/tradewind/internal/core"
	"github.com/marwyn/tradewind/internal/risk"
)

// Catalog is a static instrument reference. Unknown symbols get a
// synthesized spec from their instrument class, so sizing still works
// for pairs the catalog does not list explicitly.
type Catalog struct {
	instruments map[string]core.InstrumentSpec
}

var _ ReferenceData = (*Catalog)(nil)

// NewCatalog creates a catalog pre-loaded with the common instruments.
func NewCatalog() *Catalog {
	c := &Catalog{instruments: make(map[string]core.InstrumentSpec)}
	for _, spec := range builtins {
		c.instruments[spec.Symbol] = spec
	}
	return c
}

// Add installs or replaces an instrument.
func (c *Catalog) Add(spec core.InstrumentSpec) {
	c.instruments[spec.Symbol] = spec
}

// Instrument resolves the spec for a symbol. Broker naming suffixes
// are stripped before lookup; a symbol with no catalog entry falls
// back to class defaults.
func (c *Catalog) Instrument(symbol string) (core.InstrumentSpec, error) {
	if symbol == "" {
		return core.InstrumentSpec{}, core.WrapErrorf(core.ErrInvalidInstrument, "empty symbol")
	}
	key := strings.ToUpper(stripSuffix(symbol))
	if spec, ok := c.instruments[key]; ok {
		spec.Symbol = symbol
		return spec, nil
	}
	return synthesize(symbol), nil
}

var knownSuffixes = []string{".pro", ".raw", "_i", ".m", "m"}

func stripSuffix(symbol string) string {
	for _, s := range knownSuffixes {
		if len(symbol) > len(s) && strings.HasSuffix(symbol, s) {
			return symbol[:len(symbol)-len(s)]
		}
	}
	return symbol
}

// synthesize derives a workable spec from the instrument class. The
// profit currency guess takes the trailing three letters of the pair.
func synthesize(symbol string) core.InstrumentSpec {
	class := risk.Classify(symbol)
	spec := core.InstrumentSpec{
		Symbol:       symbol,
		PointSize:    class.PointSize(),
		ContractSize: 100000,
		VolumeMin:    0.01,
		VolumeMax:    100,
		VolumeStep:   0.01,
	}
	switch class {
	case risk.ClassGold:
		spec.ContractSize = 100
	case risk.ClassCrypto:
		spec.ContractSize = 1
	}
	base := strings.ToUpper(stripSuffix(symbol))
	if len(base) >= 6 {
		spec.QuoteCurrency = base[len(base)-3:]
		spec.ProfitCurrency = spec.QuoteCurrency
	}
	return spec
}

var builtins = []core.InstrumentSpec{
	{
		Symbol: "EURUSD", PointSize: 0.0001, ContractSize: 100000,
		TickValue: 10, TickSize: 0.0001,
		VolumeMin: 0.01, VolumeMax: 100, VolumeStep: 0.01,
		QuoteCurrency: "USD", ProfitCurrency: "USD",
	},
	{
		Symbol: "GBPUSD", PointSize: 0.0001, ContractSize: 100000,
		TickValue: 10, TickSize: 0.0001,
		VolumeMin: 0.01, VolumeMax: 100, VolumeStep: 0.01,
		QuoteCurrency: "USD", ProfitCurrency: "USD",
	},
	{
		Symbol: "AUDUSD", PointSize: 0.0001, ContractSize: 100000,
		TickValue: 10, TickSize: 0.0001,
		VolumeMin: 0.01, VolumeMax: 100, VolumeStep: 0.01,
		QuoteCurrency: "USD", ProfitCurrency: "USD",
	},
	{
		Symbol: "USDCHF", PointSize: 0.0001, ContractSize: 100000,
		TickValue: 10, TickSize: 0.0001,
		VolumeMin: 0.01, VolumeMax: 100, VolumeStep: 0.01,
		QuoteCurrency: "CHF", ProfitCurrency: "CHF",
	},
	{
		Symbol: "USDJPY", PointSize: 0.01, ContractSize: 100000,
		TickValue: 1000, TickSize: 0.01,
		VolumeMin: 0.01, VolumeMax: 100, VolumeStep: 0.01,
		QuoteCurrency: "JPY", ProfitCurrency: "JPY",
	},
	{
		Symbol: "EURJPY", PointSize: 0.01, ContractSize: 100000,
		TickValue: 1000, TickSize: 0.01,
		VolumeMin: 0.01, VolumeMax: 100, VolumeStep: 0.01,
		QuoteCurrency: "JPY", ProfitCurrency: "JPY",
	},
	{
		Symbol: "XAUUSD", PointSize: 0.01, ContractSize: 100,
		TickValue: 1, TickSize: 0.01,
		VolumeMin: 0.01, VolumeMax: 50, VolumeStep: 0.01,
		QuoteCurrency: "USD", ProfitCurrency: "USD",
	},
	{
		Symbol: "BTCUSD", PointSize: 0.01, ContractSize: 1,
		TickValue: 0.01, TickSize: 0.01,
		VolumeMin: 0.01, VolumeMax: 10, VolumeStep: 0.01,
		QuoteCurrency: "USD", ProfitCurrency: "USD",
	},
	{
		Symbol: "ETHUSD", PointSize: 0.01, ContractSize: 1,
		TickValue: 0.01, TickSize: 0.01,
		VolumeMin: 0.01, VolumeMax: 100, VolumeStep: 0.01,
		QuoteCurrency: "USD", ProfitCurrency: "USD",
	},
}
