package backtest

import (
	"math"

	"github.com/marwyn/tradewind/internal/core"
)

// summarize folds the closed trades and equity curve into a Result.
// A run with no trades reports zeros rather than NaN ratios.
func summarize(initial, final, maxDrawdown float64, trades []core.Trade, history []BalancePoint) *Result {
	r := &Result{
		InitialBalance: initial,
		FinalBalance:   final,
		MaxDrawdown:    round2(maxDrawdown),
		Trades:         trades,
		BalanceHistory: history,
	}
	if len(trades) == 0 {
		r.Trades = []core.Trade{}
		return r
	}

	var grossProfit, grossLoss float64
	for _, t := range trades {
		switch {
		case t.Profit > 0:
			r.WinningTrades++
			grossProfit += t.Profit
		case t.Profit < 0:
			r.LosingTrades++
			grossLoss += -t.Profit
		}
	}
	r.TotalTrades = len(trades)
	r.WinRate = round2(float64(r.WinningTrades) / float64(r.TotalTrades) * 100)

	if grossLoss > 0 {
		r.ProfitFactor = JSONFloat(round2(grossProfit / grossLoss))
	} else {
		r.ProfitFactor = JSONFloat(math.Inf(1))
	}
	if r.WinningTrades > 0 {
		r.AvgWin = round2(grossProfit / float64(r.WinningTrades))
	}
	if r.LosingTrades > 0 {
		r.AvgLoss = round2(grossLoss / float64(r.LosingTrades))
	}
	r.GrossProfit = round2(grossProfit)
	r.GrossLoss = round2(grossLoss)
	r.SharpeRatio = round2(sharpe(history))
	r.TotalReturn = round2((final - initial) / initial * 100)
	return r
}

// sharpe annualizes the mean over standard deviation of per-bar
// balance returns with a 252-period factor. The deviation is the
// population form; a flat curve scores zero.
func sharpe(history []BalancePoint) float64 {
	if len(history) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(history)-1)
	for i := 1; i < len(history); i++ {
		prev := history[i-1].Balance
		returns = append(returns, (history[i].Balance-prev)/prev)
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var sq float64
	for _, r := range returns {
		d := r - mean
		sq += d * d
	}
	std := math.Sqrt(sq / float64(len(returns)))
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(252)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
