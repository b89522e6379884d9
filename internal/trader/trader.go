// Package trader drives the live trading loop: evaluate strategies,
// size and place orders through a broker gateway, and manage open
// positions with trailing and breakeven stops.
package trader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/marwyn/tradewind/internal/broker"
	"github.com/marwyn/tradewind/internal/core"
	"github.com/marwyn/tradewind/internal/metrics"
	"github.com/marwyn/tradewind/internal/notifier"
	"github.com/marwyn/tradewind/internal/provider"
	"github.com/marwyn/tradewind/internal/risk"
	"github.com/marwyn/tradewind/internal/strategy"
)

// Status tells a cycle whether it may open new positions. The caller
// owns the value; the trader never flips it on its own.
type Status string

const (
	StatusRunning Status = "running"
	StatusPaused  Status = "paused"
)

// Config holds the per-cycle trading parameters.
type Config struct {
	Symbols          []string
	Strategy         string
	Bars             int
	RiskPercent      float64
	MaxVolume        float64
	TrailingStopPips float64
	BreakevenPips    float64
	Session          Session
}

// Deps bundles the collaborators a Trader needs.
type Deps struct {
	Gateway   broker.Gateway
	Engine    *strategy.Engine
	Sizer     *risk.Sizer
	Stops     *risk.StopEngine
	Checker   *broker.RiskChecker
	Notifiers *notifier.Registry
	Metrics   *metrics.Registry
	// Reference resolves instrument metadata when the gateway cannot.
	Reference provider.ReferenceData
}

// Trader runs one decision cycle at a time. The gateway is the source
// of truth for positions; the trader only keeps a snapshot of the last
// cycle so it can tell when the broker closed one.
type Trader struct {
	deps   Deps
	cfg    Config
	logger *zap.Logger

	// seen snapshots the previous cycle's positions by ticket so the
	// next cycle can detect server-side closures.
	seen map[string]broker.Position
}

// New creates a trader. The metrics registry and reference catalog in
// deps are optional.
func New(deps Deps, cfg Config, logger ...*zap.Logger) *Trader {
	l := zap.NewNop()
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	return &Trader{deps: deps, cfg: cfg, logger: l}
}

// RunCycle performs one pass over the configured symbols: manage open
// positions, then evaluate the strategy and open new positions where
// the signal and the risk checks allow it. A paused status still
// manages open positions but opens nothing new.
func (t *Trader) RunCycle(ctx context.Context, status Status) error {
	start := time.Now()

	account, err := t.deps.Gateway.Account(ctx)
	if err != nil {
		t.recordCycle("error", start)
		return fmt.Errorf("trader: account state: %w", err)
	}
	if t.deps.Metrics != nil {
		t.deps.Metrics.SetAccountBalance(account.Balance)
	}

	positions, err := t.deps.Gateway.Positions(ctx, "")
	if err != nil {
		t.recordCycle("error", start)
		return fmt.Errorf("trader: open positions: %w", err)
	}
	if t.deps.Metrics != nil {
		t.deps.Metrics.SetOpenPositions(len(positions))
	}

	t.recordClosures(start, positions)

	for _, p := range positions {
		if err := t.managePosition(ctx, p); err != nil {
			t.logger.Warn("position management failed",
				zap.String("ticket", p.Ticket),
				zap.String("symbol", p.Symbol),
				zap.Error(err))
		}
	}

	entriesAllowed := true
	switch {
	case status == StatusPaused:
		t.logger.Debug("trader paused, managing positions only")
		entriesAllowed = false
	case !t.cfg.Session.Contains(start):
		t.logger.Debug("outside trading session, managing positions only")
		entriesAllowed = false
	default:
		if res := t.deps.Checker.CheckDailyLoss(start, account.Balance); !res.Allowed {
			t.logger.Warn("daily loss limit reached, halting new entries",
				zap.String("reason", res.Reason))
			t.alert(res.Reason)
			entriesAllowed = false
		}
	}

	if entriesAllowed {
		for _, symbol := range t.cfg.Symbols {
			if ctx.Err() != nil {
				t.recordCycle("cancelled", start)
				return ctx.Err()
			}
			if err := t.processSymbol(ctx, symbol, *account, positions); err != nil {
				t.logger.Warn("symbol cycle failed",
					zap.String("symbol", symbol), zap.Error(err))
				continue
			}
			// Refresh so position limits see orders opened this cycle.
			if refreshed, err := t.deps.Gateway.Positions(ctx, ""); err == nil {
				positions = refreshed
			}
		}
	}

	t.snapshot(positions)
	t.recordCycle("ok", start)
	t.logger.Debug("cycle complete",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("open_positions", len(positions)))
	return nil
}

func (t *Trader) processSymbol(ctx context.Context, symbol string, account core.AccountState, positions []broker.Position) error {
	series, err := t.deps.Gateway.Rates(ctx, symbol, t.cfg.Bars)
	if err != nil {
		return fmt.Errorf("rates for %s: %w", symbol, err)
	}

	sig, err := t.deps.Engine.Evaluate(t.cfg.Strategy, series)
	if err != nil {
		return err
	}
	sig.Symbol = symbol
	if t.deps.Metrics != nil {
		t.deps.Metrics.RecordSignal(sig.Strategy, string(sig.Action))
	}
	if sig.Action == core.ActionHold {
		t.logger.Debug("hold", zap.String("symbol", symbol), zap.String("reason", sig.Reason))
		return nil
	}

	t.logger.Info("signal",
		zap.String("symbol", symbol),
		zap.String("action", string(sig.Action)),
		zap.String("strategy", sig.Strategy),
		zap.String("reason", sig.Reason))
	t.notifySignal(sig)

	if res := t.deps.Checker.CheckOrder(positions, symbol); !res.Allowed {
		t.logger.Info("order blocked", zap.String("symbol", symbol), zap.String("reason", res.Reason))
		return nil
	}

	spec, err := t.instrument(ctx, symbol)
	if err != nil {
		return err
	}
	if err := spec.Validate(); err != nil {
		return err
	}

	stops := t.deps.Stops.Estimate(series, symbol)
	volume, err := t.deps.Sizer.SizeByRisk(account, *spec, stops.StopPips, t.cfg.RiskPercent, t.cfg.MaxVolume)
	switch {
	case errors.Is(err, core.ErrConversionNotFound), errors.Is(err, core.ErrDegenerateRisk):
		// Reference-data gap, not a market condition. Trade the minimum.
		t.logger.Warn("sizing degraded to minimum volume",
			zap.String("symbol", symbol), zap.Error(err))
		volume = spec.VolumeMin
	case err != nil:
		return fmt.Errorf("sizing %s: %w", symbol, err)
	}

	tick, err := t.deps.Gateway.Tick(ctx, symbol)
	if err != nil {
		return fmt.Errorf("tick for %s: %w", symbol, err)
	}

	side := core.DirectionBuy
	entry := tick.Ask
	if sig.Action == core.ActionSell {
		side = core.DirectionSell
		entry = tick.Bid
	}
	sl, tp := stopPrices(side, entry, spec.PointSize, stops)
	if err := validateStops(*spec, side, entry, sl, tp); err != nil {
		return err
	}

	result, err := t.deps.Gateway.PlaceOrder(ctx, broker.OrderRequest{
		Symbol:     symbol,
		Side:       side,
		Volume:     volume,
		StopLoss:   sl,
		TakeProfit: tp,
		Comment:    "tradewind " + sig.Strategy,
	})
	if err != nil {
		return core.WrapError(core.ErrOrderFailed, err)
	}

	t.logger.Info("position opened",
		zap.String("ticket", result.Ticket),
		zap.String("symbol", symbol),
		zap.String("side", string(side)),
		zap.Float64("volume", result.Volume),
		zap.Float64("price", result.Price),
		zap.Float64("stop_loss", sl),
		zap.Float64("take_profit", tp))
	if t.deps.Metrics != nil {
		t.deps.Metrics.RecordTradeOpened(symbol, string(side))
	}
	t.notifyTrade(core.Trade{
		ID:         result.Ticket,
		Symbol:     symbol,
		Direction:  side,
		EntryPrice: result.Price,
		StopLoss:   sl,
		TakeProfit: tp,
		Volume:     result.Volume,
		OpenTime:   result.ExecutedAt,
	})
	return nil
}

// recordClosures diffs the previous cycle's snapshot against the
// current positions and books every ticket that disappeared as a
// realized close. Server-side exits hit the stop loss or take profit
// on the broker, so this diff is the only place the trader sees them.
func (t *Trader) recordClosures(now time.Time, current []broker.Position) {
	if len(t.seen) == 0 {
		return
	}
	open := make(map[string]struct{}, len(current))
	for _, p := range current {
		open[p.Ticket] = struct{}{}
	}
	for ticket, p := range t.seen {
		if _, ok := open[ticket]; ok {
			continue
		}
		trade := core.Trade{
			ID:         ticket,
			Symbol:     p.Symbol,
			Direction:  p.Side,
			EntryPrice: p.OpenPrice,
			StopLoss:   p.StopLoss,
			TakeProfit: p.TakeProfit,
			Volume:     p.Volume,
			OpenTime:   p.OpenTime,
			CloseTime:  now,
			ExitPrice:  p.CurrentPrice,
			Profit:     p.Profit,
			ExitReason: "closed",
		}
		t.deps.Checker.RecordClose(trade)
		if t.deps.Metrics != nil {
			t.deps.Metrics.RecordTradeClosed(p.Symbol, trade.ExitReason, p.Profit)
		}
		t.logger.Info("position closed",
			zap.String("ticket", ticket),
			zap.String("symbol", p.Symbol),
			zap.Float64("profit", p.Profit))
		t.notifyTrade(trade)
	}
}

// snapshot remembers the cycle's final positions for the next diff.
func (t *Trader) snapshot(positions []broker.Position) {
	t.seen = make(map[string]broker.Position, len(positions))
	for _, p := range positions {
		t.seen[p.Ticket] = p
	}
}

// instrument asks the gateway first and falls back to the reference
// catalog for gateways without a symbol directory.
func (t *Trader) instrument(ctx context.Context, symbol string) (*core.InstrumentSpec, error) {
	spec, err := t.deps.Gateway.Instrument(ctx, symbol)
	if err == nil {
		return spec, nil
	}
	if t.deps.Reference != nil {
		if ref, refErr := t.deps.Reference.Instrument(symbol); refErr == nil {
			return &ref, nil
		}
	}
	return nil, fmt.Errorf("instrument %s: %w", symbol, err)
}

// stopPrices converts pip distances into absolute price levels around
// the entry.
func stopPrices(side core.Direction, entry, point float64, stops risk.Stops) (sl, tp float64) {
	if side == core.DirectionBuy {
		return entry - stops.StopPips*point, entry + stops.TakePips*point
	}
	return entry + stops.StopPips*point, entry - stops.TakePips*point
}

// validateStops rejects levels on the wrong side of the entry or
// closer than the broker's minimum stop distance (in points).
func validateStops(spec core.InstrumentSpec, side core.Direction, entry, sl, tp float64) error {
	minDist := spec.MinStopDistance * spec.PointSize
	if side == core.DirectionBuy {
		if sl >= entry || tp <= entry {
			return broker.ErrInvalidStops
		}
		if entry-sl < minDist || tp-entry < minDist {
			return broker.ErrInvalidStops
		}
		return nil
	}
	if sl <= entry || tp >= entry {
		return broker.ErrInvalidStops
	}
	if sl-entry < minDist || entry-tp < minDist {
		return broker.ErrInvalidStops
	}
	return nil
}

func (t *Trader) recordCycle(status string, start time.Time) {
	if t.deps.Metrics != nil {
		t.deps.Metrics.RecordCycle(status, time.Since(start))
	}
}

func (t *Trader) alert(message string) {
	if t.deps.Notifiers == nil {
		return
	}
	for name, err := range t.deps.Notifiers.BroadcastAlert(message) {
		t.logger.Warn("alert delivery failed", zap.String("notifier", name), zap.Error(err))
	}
}

func (t *Trader) notifySignal(sig core.Signal) {
	if t.deps.Notifiers == nil {
		return
	}
	for name, err := range t.deps.Notifiers.BroadcastSignal(sig) {
		t.logger.Warn("signal delivery failed", zap.String("notifier", name), zap.Error(err))
	}
}

func (t *Trader) notifyTrade(trade core.Trade) {
	if t.deps.Notifiers == nil {
		return
	}
	for name, err := range t.deps.Notifiers.BroadcastTrade(trade) {
		t.logger.Warn("trade delivery failed", zap.String("notifier", name), zap.Error(err))
	}
}
