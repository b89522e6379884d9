package backtest

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marwyn/tradewind/internal/core"
	"github.com/marwyn/tradewind/internal/risk"
	"github.com/marwyn/tradewind/internal/strategy"
)

// Exit reasons recorded on closed trades.
const (
	ExitStopLoss   = "SL"
	ExitTakeProfit = "TP"
	ExitEndOfRun   = "End of backtest"
)

// Lot scale for simulated profit: one full lot moves the account by
// 100000 times the price change.
const lotScale = 100000

// Simulator replays a price series bar by bar, asking the strategy for
// a signal at each step with only the bars seen so far.
type Simulator struct {
	engine *strategy.Engine
	stops  *risk.StopEngine
	logger *zap.Logger
}

// NewSimulator creates a simulator backed by the given strategy engine.
func NewSimulator(engine *strategy.Engine, logger ...*zap.Logger) *Simulator {
	var l *zap.Logger
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	} else {
		l = zap.NewNop()
	}
	return &Simulator{
		engine: engine,
		stops:  risk.NewStopEngine(l),
		logger: l,
	}
}

// Run simulates the named strategy over the series. At each bar past
// warm-up the open position is checked against its stops using the bar
// close (stop loss wins if both levels are crossed), then a fresh
// signal may open a new position at that close. Any position still
// open at the last bar is force-closed there.
func (s *Simulator) Run(ctx context.Context, series core.PriceSeries, symbol, strategyName string, cfg Config) (*Result, error) {
	if len(series) == 0 {
		return nil, core.WrapErrorf(core.ErrNoData, "no bars for %s", symbol)
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	if _, ok := s.engine.Get(strategyName); !ok {
		return nil, core.WrapErrorf(core.ErrUnknownStrategy, "%s", strategyName)
	}

	balance := cfg.InitialBalance
	peak := balance
	maxDrawdown := 0.0

	var open *core.Trade
	var closed []core.Trade
	history := []BalancePoint{{Time: series[0].Time, Balance: balance}}

	point := risk.Classify(symbol).PointSize()

	for i := cfg.WarmupBars; i < len(series); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bar := series[i]

		sig, _ := s.engine.Evaluate(strategyName, series[:i+1])

		if open != nil {
			if done, ok := checkExit(*open, bar); ok {
				balance += done.Profit
				closed = append(closed, done)
				open = nil
			}
		}

		if open == nil && (sig.Action == core.ActionBuy || sig.Action == core.ActionSell) {
			trade := s.openTrade(sig.Action, bar, series[:i+1], symbol, point, balance, cfg)
			open = &trade
		}

		history = append(history, BalancePoint{Time: bar.Time, Balance: balance})
		if balance > peak {
			peak = balance
		}
		if dd := (peak - balance) / peak * 100; dd > maxDrawdown {
			maxDrawdown = dd
		}
	}

	if open != nil {
		done := forceClose(*open, series[len(series)-1])
		balance += done.Profit
		closed = append(closed, done)
	}

	result := summarize(cfg.InitialBalance, balance, maxDrawdown, closed, history)
	result.Symbol = symbol
	result.Strategy = strategyName

	s.logger.Info("backtest complete",
		zap.String("symbol", symbol),
		zap.String("strategy", strategyName),
		zap.Int("trades", result.TotalTrades),
		zap.Float64("final_balance", result.FinalBalance))
	return result, nil
}

func (s *Simulator) openTrade(action core.Action, bar core.PriceBar, seen core.PriceSeries, symbol string, point, balance float64, cfg Config) core.Trade {
	stops := s.stops.Estimate(seen, symbol)

	riskAmount := balance * (cfg.RiskPercent / 100)
	volume := riskAmount / (stops.StopPips * point * lotScale)
	if volume > cfg.MaxVolume {
		volume = cfg.MaxVolume
	}

	entry := bar.Close
	direction := core.DirectionBuy
	sl := entry - stops.StopPips*point
	tp := entry + stops.TakePips*point
	if action == core.ActionSell {
		direction = core.DirectionSell
		sl = entry + stops.StopPips*point
		tp = entry - stops.TakePips*point
	}

	return core.Trade{
		ID:         uuid.NewString(),
		Symbol:     symbol,
		Direction:  direction,
		EntryPrice: entry,
		StopLoss:   sl,
		TakeProfit: tp,
		Volume:     volume,
		OpenTime:   bar.Time,
	}
}

// checkExit closes the trade if the bar close crosses a stop level.
// The stop loss is evaluated before the take profit, so a degenerate
// bar breaching both books the loss.
func checkExit(t core.Trade, bar core.PriceBar) (core.Trade, bool) {
	price := bar.Close

	if t.Direction == core.DirectionBuy {
		if price <= t.StopLoss || price >= t.TakeProfit {
			exit, reason := t.TakeProfit, ExitTakeProfit
			if price <= t.StopLoss {
				exit, reason = t.StopLoss, ExitStopLoss
			}
			return settle(t, exit, reason, bar), true
		}
		return core.Trade{}, false
	}

	if price >= t.StopLoss || price <= t.TakeProfit {
		exit, reason := t.TakeProfit, ExitTakeProfit
		if price >= t.StopLoss {
			exit, reason = t.StopLoss, ExitStopLoss
		}
		return settle(t, exit, reason, bar), true
	}
	return core.Trade{}, false
}

func forceClose(t core.Trade, bar core.PriceBar) core.Trade {
	return settle(t, bar.Close, ExitEndOfRun, bar)
}

func settle(t core.Trade, exitPrice float64, reason string, bar core.PriceBar) core.Trade {
	profit := (exitPrice - t.EntryPrice) * t.Volume * lotScale
	if t.Direction == core.DirectionSell {
		profit = -profit
	}
	t.ExitPrice = exitPrice
	t.Profit = profit
	t.CloseTime = bar.Time
	t.ExitReason = reason
	return t
}
