package trader

import (
	"context"

	"go.uber.org/zap"

	"github.com/marwyn/tradewind/internal/broker"
	"github.com/marwyn/tradewind/internal/core"
)

// managePosition tightens the stop of one open position. The trailing
// stop takes over once price has moved far enough for the trailed level
// to clear the entry; before that the breakeven rule protects the trade.
func (t *Trader) managePosition(ctx context.Context, p broker.Position) error {
	spec, err := t.instrument(ctx, p.Symbol)
	if err != nil {
		return err
	}
	point := spec.PointSize

	if moved, err := t.applyTrailingStop(ctx, p, point); err != nil || moved {
		return err
	}
	_, err = t.applyBreakeven(ctx, p, point)
	return err
}

// applyTrailingStop keeps the stop a fixed pip distance behind the
// current price. The stop only moves in the profit direction and never
// below (above, for sells) the entry price.
func (t *Trader) applyTrailingStop(ctx context.Context, p broker.Position, point float64) (bool, error) {
	if t.cfg.TrailingStopPips <= 0 {
		return false, nil
	}
	distance := t.cfg.TrailingStopPips * point

	var newSL float64
	if p.Side == core.DirectionBuy {
		newSL = p.CurrentPrice - distance
		if newSL <= p.OpenPrice || (p.StopLoss != 0 && newSL <= p.StopLoss) {
			return false, nil
		}
	} else {
		newSL = p.CurrentPrice + distance
		if newSL >= p.OpenPrice || (p.StopLoss != 0 && newSL >= p.StopLoss) {
			return false, nil
		}
	}

	if err := t.deps.Gateway.ModifyPosition(ctx, p.Ticket, newSL, p.TakeProfit); err != nil {
		return false, err
	}
	t.logger.Info("trailing stop moved",
		zap.String("ticket", p.Ticket),
		zap.String("symbol", p.Symbol),
		zap.Float64("stop_loss", newSL))
	return true, nil
}

// applyBreakeven moves the stop to entry plus a small buffer once the
// position is a configured distance in profit. It runs once per
// position; a stop already at or past breakeven is left alone.
func (t *Trader) applyBreakeven(ctx context.Context, p broker.Position, point float64) (bool, error) {
	if t.cfg.BreakevenPips <= 0 {
		return false, nil
	}
	threshold := t.cfg.BreakevenPips * point
	buffer := 2 * point
	tolerance := 2 * point

	var gain, target float64
	if p.Side == core.DirectionBuy {
		gain = p.CurrentPrice - p.OpenPrice
		target = p.OpenPrice + buffer
		if p.StopLoss >= target-tolerance && p.StopLoss != 0 {
			return false, nil
		}
	} else {
		gain = p.OpenPrice - p.CurrentPrice
		target = p.OpenPrice - buffer
		if p.StopLoss != 0 && p.StopLoss <= target+tolerance {
			return false, nil
		}
	}
	if gain < threshold {
		return false, nil
	}

	if err := t.deps.Gateway.ModifyPosition(ctx, p.Ticket, target, p.TakeProfit); err != nil {
		return false, err
	}
	t.logger.Info("stop moved to breakeven",
		zap.String("ticket", p.Ticket),
		zap.String("symbol", p.Symbol),
		zap.Float64("stop_loss", target))
	return true, nil
}
