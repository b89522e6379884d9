// Package broker defines the gateway interface towards a trading
// server and the order and position types that cross it.
package broker

import (
	"context"
	"errors"
	"time"

	"github.com/marwyn/tradewind/internal/core"
)

// Broker-specific errors.
var (
	// ErrNotConnected indicates the gateway is not connected.
	ErrNotConnected = errors.New("broker: not connected")
	// ErrAlreadyConnected indicates the gateway is already connected.
	ErrAlreadyConnected = errors.New("broker: already connected")
	// ErrPositionNotFound indicates the position ticket was not found.
	ErrPositionNotFound = errors.New("broker: position not found")
	// ErrSymbolNotFound indicates the symbol is not tradeable.
	ErrSymbolNotFound = errors.New("broker: symbol not found")
	// ErrInvalidSymbol indicates an empty or malformed symbol.
	ErrInvalidSymbol = errors.New("broker: invalid symbol")
	// ErrInvalidVolume indicates a non-positive order volume.
	ErrInvalidVolume = errors.New("broker: invalid volume")
	// ErrInvalidStops indicates stop levels on the wrong side of price.
	ErrInvalidStops = errors.New("broker: invalid stop levels")
	// ErrInsufficientFunds indicates the account cannot carry the order.
	ErrInsufficientFunds = errors.New("broker: insufficient funds")
)

// Tick is a top-of-book snapshot for one symbol.
type Tick struct {
	Symbol string    `json:"symbol"`
	Bid    float64   `json:"bid"`
	Ask    float64   `json:"ask"`
	Time   time.Time `json:"time"`
}

// OrderRequest asks the gateway to open a market position with
// protective stops already attached.
type OrderRequest struct {
	Symbol     string         `json:"symbol"`
	Side       core.Direction `json:"side"`
	Volume     float64        `json:"volume"`
	StopLoss   float64        `json:"stop_loss,omitempty"`
	TakeProfit float64        `json:"take_profit,omitempty"`
	Comment    string         `json:"comment,omitempty"`
}

// Validate checks the request before it reaches the wire.
func (r OrderRequest) Validate() error {
	if r.Symbol == "" {
		return ErrInvalidSymbol
	}
	if r.Volume <= 0 {
		return ErrInvalidVolume
	}
	if r.Side != core.DirectionBuy && r.Side != core.DirectionSell {
		return ErrInvalidSymbol
	}
	return nil
}

// OrderResult reports a filled order.
type OrderResult struct {
	Ticket     string         `json:"ticket"`
	Symbol     string         `json:"symbol"`
	Side       core.Direction `json:"side"`
	Volume     float64        `json:"volume"`
	Price      float64        `json:"price"`
	ExecutedAt time.Time      `json:"executed_at"`
}

// Position is an open position held at the broker.
type Position struct {
	Ticket       string         `json:"ticket"`
	Symbol       string         `json:"symbol"`
	Side         core.Direction `json:"side"`
	Volume       float64        `json:"volume"`
	OpenPrice    float64        `json:"open_price"`
	StopLoss     float64        `json:"stop_loss,omitempty"`
	TakeProfit   float64        `json:"take_profit,omitempty"`
	CurrentPrice float64        `json:"current_price"`
	Profit       float64        `json:"profit"`
	OpenTime     time.Time      `json:"open_time"`
}

// InProfit reports whether the position is currently ahead of its
// entry price.
func (p Position) InProfit() bool {
	if p.Side == core.DirectionBuy {
		return p.CurrentPrice > p.OpenPrice
	}
	return p.CurrentPrice < p.OpenPrice
}

// Gateway is the interface to a trading server. Implementations must
// be safe for concurrent use.
type Gateway interface {
	// Name returns the gateway identifier (e.g. "mock", "mt5").
	Name() string

	// Connection management
	Connect(ctx context.Context) error
	Disconnect() error
	IsConnected() bool

	// Market data
	Tick(ctx context.Context, symbol string) (*Tick, error)
	Rates(ctx context.Context, symbol string, count int) (core.PriceSeries, error)
	Instrument(ctx context.Context, symbol string) (*core.InstrumentSpec, error)

	// Account
	Account(ctx context.Context) (*core.AccountState, error)

	// Trading. Positions with an empty symbol returns every open
	// position.
	PlaceOrder(ctx context.Context, req OrderRequest) (*OrderResult, error)
	ModifyPosition(ctx context.Context, ticket string, stopLoss, takeProfit float64) error
	ClosePosition(ctx context.Context, ticket string) (*OrderResult, error)
	Positions(ctx context.Context, symbol string) ([]Position, error)
}
