package mock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marwyn/tradewind/internal/broker"
	"github.com/marwyn/tradewind/internal/core"
)

func connected(t *testing.T) *Gateway {
	t.Helper()
	g := New()
	require.NoError(t, g.Connect(context.Background()))
	return g
}

func TestConnectionLifecycle(t *testing.T) {
	g := New()
	ctx := context.Background()

	assert.False(t, g.IsConnected())
	_, err := g.Account(ctx)
	assert.ErrorIs(t, err, broker.ErrNotConnected)

	require.NoError(t, g.Connect(ctx))
	assert.True(t, g.IsConnected())
	assert.ErrorIs(t, g.Connect(ctx), broker.ErrAlreadyConnected)

	require.NoError(t, g.Disconnect())
	assert.False(t, g.IsConnected())
}

func TestPlaceOrderFillsAtTick(t *testing.T) {
	g := connected(t)
	ctx := context.Background()
	g.SetTick("EURUSD", 1.0848, 1.0850)

	res, err := g.PlaceOrder(ctx, broker.OrderRequest{
		Symbol:     "EURUSD",
		Side:       core.DirectionBuy,
		Volume:     0.1,
		StopLoss:   1.0800,
		TakeProfit: 1.0950,
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0850, res.Price, "buys fill at the ask")

	positions, err := g.Positions(ctx, "EURUSD")
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, res.Ticket, positions[0].Ticket)
	assert.Equal(t, 1.0800, positions[0].StopLoss)
}

func TestPlaceOrderRejectsWrongSideStop(t *testing.T) {
	g := connected(t)
	g.SetTick("EURUSD", 1.0848, 1.0850)

	_, err := g.PlaceOrder(context.Background(), broker.OrderRequest{
		Symbol:   "EURUSD",
		Side:     core.DirectionBuy,
		Volume:   0.1,
		StopLoss: 1.0900,
	})
	assert.ErrorIs(t, err, broker.ErrInvalidStops)
}

func TestPlaceOrderUnknownSymbol(t *testing.T) {
	g := connected(t)
	_, err := g.PlaceOrder(context.Background(), broker.OrderRequest{
		Symbol: "GBPUSD",
		Side:   core.DirectionSell,
		Volume: 0.1,
	})
	assert.ErrorIs(t, err, broker.ErrSymbolNotFound)
}

func TestClosePositionSettlesBalance(t *testing.T) {
	g := connected(t)
	ctx := context.Background()
	g.SetTick("EURUSD", 1.0848, 1.0850)
	g.SetInstrument(core.InstrumentSpec{Symbol: "EURUSD", ContractSize: 100000, PointSize: 0.0001})

	res, err := g.PlaceOrder(ctx, broker.OrderRequest{Symbol: "EURUSD", Side: core.DirectionBuy, Volume: 0.1})
	require.NoError(t, err)

	// Price moves 50 points up; a 0.1 lot long gains 50.
	g.SetTick("EURUSD", 1.0900, 1.0902)
	closeRes, err := g.ClosePosition(ctx, res.Ticket)
	require.NoError(t, err)
	assert.Equal(t, 1.0900, closeRes.Price, "longs close at the bid")

	account, err := g.Account(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 10050, account.Balance, 1e-6)

	positions, err := g.Positions(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, positions)
}

func TestModifyPosition(t *testing.T) {
	g := connected(t)
	ctx := context.Background()
	g.SetTick("USDJPY", 150.00, 150.02)

	res, err := g.PlaceOrder(ctx, broker.OrderRequest{Symbol: "USDJPY", Side: core.DirectionSell, Volume: 0.2})
	require.NoError(t, err)

	require.NoError(t, g.ModifyPosition(ctx, res.Ticket, 150.50, 148.00))
	positions, err := g.Positions(ctx, "USDJPY")
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, 150.50, positions[0].StopLoss)
	assert.Equal(t, 148.00, positions[0].TakeProfit)

	assert.ErrorIs(t, g.ModifyPosition(ctx, "99999", 1, 2), broker.ErrPositionNotFound)
}

func TestRatesReturnsTail(t *testing.T) {
	g := connected(t)
	base := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	series := make(core.PriceSeries, 10)
	for i := range series {
		series[i] = core.PriceBar{Time: base.Add(time.Duration(i) * time.Hour), Close: float64(i)}
	}
	g.SetRates("EURUSD", series)

	got, err := g.Rates(context.Background(), "EURUSD", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 7.0, got[0].Close)
}

func TestQuoteSourceAdapter(t *testing.T) {
	g := New()
	g.SetTick("EURUSD", 1.0848, 1.0850)

	ask, ok := g.Ask("EURUSD")
	assert.True(t, ok)
	assert.Equal(t, 1.0850, ask)

	_, ok = g.Ask("GBPUSD")
	assert.False(t, ok)
}
