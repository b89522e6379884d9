// Package backtest replays historical bars through a strategy and
// produces a trade-by-trade performance report.
package backtest

import (
	"math"
	"strconv"
	"time"

	"github.com/marwyn/tradewind/internal/core"
)

// JSONFloat marshals like a float64 but survives infinities, which
// encoding/json rejects. A division by zero gross loss is a legitimate
// profit factor, so it serializes as the string "inf".
type JSONFloat float64

func (f JSONFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsInf(v, 1):
		return []byte(`"inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-inf"`), nil
	case math.IsNaN(v):
		return []byte(`null`), nil
	}
	return strconv.AppendFloat(nil, v, 'f', -1, 64), nil
}

func (f *JSONFloat) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"inf"`:
		*f = JSONFloat(math.Inf(1))
		return nil
	case `"-inf"`:
		*f = JSONFloat(math.Inf(-1))
		return nil
	case `null`:
		*f = JSONFloat(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*f = JSONFloat(v)
	return nil
}

// BalancePoint is one sample of the equity curve.
type BalancePoint struct {
	Time    time.Time `json:"time"`
	Balance float64   `json:"balance"`
}

// Config controls a simulation run.
type Config struct {
	InitialBalance float64 `json:"initial_balance"`
	RiskPercent    float64 `json:"risk_percent"`
	MaxVolume      float64 `json:"max_volume"`
	WarmupBars     int     `json:"warmup_bars"`
}

// DefaultConfig returns the standard simulation parameters: 10000
// starting balance, 1% risk per trade, a 0.1 lot cap, and 50 bars of
// indicator warm-up before the first evaluation.
func DefaultConfig() Config {
	return Config{
		InitialBalance: 10000,
		RiskPercent:    1.0,
		MaxVolume:      0.1,
		WarmupBars:     50,
	}
}

// Result is the full outcome of a simulation run. Percentages are in
// whole percent and money values rounded to cents.
type Result struct {
	Symbol         string         `json:"symbol"`
	Strategy       string         `json:"strategy"`
	InitialBalance float64        `json:"initial_balance"`
	FinalBalance   float64        `json:"final_balance"`
	TotalReturn    float64        `json:"total_return"`
	TotalTrades    int            `json:"total_trades"`
	WinningTrades  int            `json:"winning_trades"`
	LosingTrades   int            `json:"losing_trades"`
	WinRate        float64        `json:"win_rate"`
	MaxDrawdown    float64        `json:"max_drawdown"`
	ProfitFactor   JSONFloat      `json:"profit_factor"`
	SharpeRatio    float64        `json:"sharpe_ratio"`
	AvgWin         float64        `json:"avg_win"`
	AvgLoss        float64        `json:"avg_loss"`
	GrossProfit    float64        `json:"gross_profit"`
	GrossLoss      float64        `json:"gross_loss"`
	Trades         []core.Trade   `json:"trades"`
	BalanceHistory []BalancePoint `json:"balance_history"`
}
