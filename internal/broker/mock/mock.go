// Package mock provides an in-memory broker gateway for tests and dry
// runs. Orders fill instantly at the configured tick and positions are
// settled against the instrument's contract size.
package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/marwyn/tradewind/internal/broker"
	"github.com/marwyn/tradewind/internal/core"
)

// Gateway is an in-memory broker.Gateway implementation.
type Gateway struct {
	mu          sync.RWMutex
	connected   bool
	balance     float64
	currency    string
	ticks       map[string]broker.Tick
	rates       map[string]core.PriceSeries
	instruments map[string]core.InstrumentSpec
	positions   map[string]*broker.Position
	nextTicket  int
}

var _ broker.Gateway = (*Gateway)(nil)

// New creates a mock gateway with a 10000 USD account and no symbols.
func New() *Gateway {
	return &Gateway{
		balance:     10000,
		currency:    "USD",
		ticks:       make(map[string]broker.Tick),
		rates:       make(map[string]core.PriceSeries),
		instruments: make(map[string]core.InstrumentSpec),
		positions:   make(map[string]*broker.Position),
		nextTicket:  1000,
	}
}

// SetBalance overrides the account balance.
func (g *Gateway) SetBalance(balance float64, currency string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.balance = balance
	g.currency = currency
}

// SetTick installs or updates the quote for a symbol and marks open
// positions on it to the new price.
func (g *Gateway) SetTick(symbol string, bid, ask float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ticks[symbol] = broker.Tick{Symbol: symbol, Bid: bid, Ask: ask, Time: time.Now()}
	for _, p := range g.positions {
		if p.Symbol != symbol {
			continue
		}
		if p.Side == core.DirectionBuy {
			p.CurrentPrice = bid
		} else {
			p.CurrentPrice = ask
		}
		p.Profit = g.unrealized(p)
	}
}

// SetRates installs the historical series served for a symbol.
func (g *Gateway) SetRates(symbol string, series core.PriceSeries) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rates[symbol] = series
}

// SetInstrument installs the contract metadata for a symbol.
func (g *Gateway) SetInstrument(spec core.InstrumentSpec) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.instruments[spec.Symbol] = spec
}

// Ask implements convert.QuoteSource against the installed ticks.
func (g *Gateway) Ask(symbol string) (float64, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	t, ok := g.ticks[symbol]
	return t.Ask, ok
}

func (g *Gateway) Name() string { return "mock" }

func (g *Gateway) Connect(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.connected {
		return broker.ErrAlreadyConnected
	}
	g.connected = true
	return nil
}

func (g *Gateway) Disconnect() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.connected = false
	return nil
}

func (g *Gateway) IsConnected() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.connected
}

func (g *Gateway) Tick(ctx context.Context, symbol string) (*broker.Tick, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.connected {
		return nil, broker.ErrNotConnected
	}
	t, ok := g.ticks[symbol]
	if !ok {
		return nil, broker.ErrSymbolNotFound
	}
	return &t, nil
}

func (g *Gateway) Rates(ctx context.Context, symbol string, count int) (core.PriceSeries, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.connected {
		return nil, broker.ErrNotConnected
	}
	series, ok := g.rates[symbol]
	if !ok {
		return nil, broker.ErrSymbolNotFound
	}
	if count > 0 && len(series) > count {
		series = series[len(series)-count:]
	}
	out := make(core.PriceSeries, len(series))
	copy(out, series)
	return out, nil
}

func (g *Gateway) Instrument(ctx context.Context, symbol string) (*core.InstrumentSpec, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.connected {
		return nil, broker.ErrNotConnected
	}
	spec, ok := g.instruments[symbol]
	if !ok {
		return nil, broker.ErrSymbolNotFound
	}
	return &spec, nil
}

func (g *Gateway) Account(ctx context.Context) (*core.AccountState, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.connected {
		return nil, broker.ErrNotConnected
	}
	return &core.AccountState{Balance: g.balance, Currency: g.currency}, nil
}

func (g *Gateway) PlaceOrder(ctx context.Context, req broker.OrderRequest) (*broker.OrderResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.connected {
		return nil, broker.ErrNotConnected
	}
	tick, ok := g.ticks[req.Symbol]
	if !ok {
		return nil, broker.ErrSymbolNotFound
	}

	price := tick.Ask
	if req.Side == core.DirectionSell {
		price = tick.Bid
	}
	if req.StopLoss != 0 {
		wrongSide := (req.Side == core.DirectionBuy && req.StopLoss >= price) ||
			(req.Side == core.DirectionSell && req.StopLoss <= price)
		if wrongSide {
			return nil, broker.ErrInvalidStops
		}
	}

	g.nextTicket++
	ticket := fmt.Sprintf("%d", g.nextTicket)
	now := time.Now()
	g.positions[ticket] = &broker.Position{
		Ticket:       ticket,
		Symbol:       req.Symbol,
		Side:         req.Side,
		Volume:       req.Volume,
		OpenPrice:    price,
		StopLoss:     req.StopLoss,
		TakeProfit:   req.TakeProfit,
		CurrentPrice: price,
		OpenTime:     now,
	}
	return &broker.OrderResult{
		Ticket:     ticket,
		Symbol:     req.Symbol,
		Side:       req.Side,
		Volume:     req.Volume,
		Price:      price,
		ExecutedAt: now,
	}, nil
}

func (g *Gateway) ModifyPosition(ctx context.Context, ticket string, stopLoss, takeProfit float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.connected {
		return broker.ErrNotConnected
	}
	p, ok := g.positions[ticket]
	if !ok {
		return broker.ErrPositionNotFound
	}
	p.StopLoss = stopLoss
	p.TakeProfit = takeProfit
	return nil
}

func (g *Gateway) ClosePosition(ctx context.Context, ticket string) (*broker.OrderResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.connected {
		return nil, broker.ErrNotConnected
	}
	p, ok := g.positions[ticket]
	if !ok {
		return nil, broker.ErrPositionNotFound
	}
	tick, ok := g.ticks[p.Symbol]
	if !ok {
		return nil, broker.ErrSymbolNotFound
	}

	price := tick.Bid
	if p.Side == core.DirectionSell {
		price = tick.Ask
	}
	p.CurrentPrice = price
	g.balance += g.unrealized(p)
	delete(g.positions, ticket)

	return &broker.OrderResult{
		Ticket:     ticket,
		Symbol:     p.Symbol,
		Side:       p.Side,
		Volume:     p.Volume,
		Price:      price,
		ExecutedAt: time.Now(),
	}, nil
}

func (g *Gateway) Positions(ctx context.Context, symbol string) ([]broker.Position, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.connected {
		return nil, broker.ErrNotConnected
	}
	var out []broker.Position
	for _, p := range g.positions {
		if symbol == "" || p.Symbol == symbol {
			out = append(out, *p)
		}
	}
	return out, nil
}

// unrealized values the position at its current price using the
// instrument contract size, defaulting to a standard 100000 lot.
func (g *Gateway) unrealized(p *broker.Position) float64 {
	contract := 100000.0
	if spec, ok := g.instruments[p.Symbol]; ok && spec.ContractSize > 0 {
		contract = spec.ContractSize
	}
	diff := p.CurrentPrice - p.OpenPrice
	if p.Side == core.DirectionSell {
		diff = -diff
	}
	return diff * p.Volume * contract
}
