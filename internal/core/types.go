package core

import "time"

// PriceBar represents one OHLC candlestick as delivered by the market
// data provider. Bars are immutable once produced.
type PriceBar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume,omitempty"`
}

// PriceSeries is an ordered sequence of bars with strictly increasing time.
type PriceSeries []PriceBar

// Validate checks the series contract: strictly increasing timestamps.
// A violation indicates an upstream provider bug and is fatal to the call.
func (s PriceSeries) Validate() error {
	for i := 1; i < len(s); i++ {
		if !s[i].Time.After(s[i-1].Time) {
			return WrapErrorf(ErrInvalidSeries,
				"bar %d time %s not after bar %d time %s",
				i, s[i].Time.Format(time.RFC3339), i-1, s[i-1].Time.Format(time.RFC3339))
		}
	}
	return nil
}

// Closes extracts the close prices of the series.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Volumes extracts the per-bar volumes.
func (s PriceSeries) Volumes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Volume
	}
	return out
}

// HasVolume reports whether the provider supplied volume data at all.
func (s PriceSeries) HasVolume() bool {
	for _, b := range s {
		if b.Volume > 0 {
			return true
		}
	}
	return false
}

// Last returns the final bar. It panics on an empty series; callers are
// expected to have checked length against their warm-up requirement.
func (s PriceSeries) Last() PriceBar {
	return s[len(s)-1]
}

// Action represents a discrete trade signal.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

// Signal is the output of one strategy evaluation. Signals are produced
// fresh per evaluation and never persisted by the core.
type Signal struct {
	Symbol      string    `json:"symbol,omitempty"`
	Action      Action    `json:"action"`
	Reason      string    `json:"reason,omitempty"`
	Strategy    string    `json:"strategy,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Hold returns a hold signal with the given reason.
func Hold(reason string) Signal {
	return Signal{Action: ActionHold, Reason: reason, GeneratedAt: time.Now()}
}

// Direction is the side of an open position.
type Direction string

const (
	DirectionBuy  Direction = "buy"
	DirectionSell Direction = "sell"
)

// InstrumentSpec carries the tradable-instrument reference data supplied
// by the broker's symbol catalog. Read-only to the core.
type InstrumentSpec struct {
	Symbol          string  `json:"symbol"`
	PointSize       float64 `json:"point_size"`
	ContractSize    float64 `json:"contract_size"`
	TickValue       float64 `json:"tick_value"`
	TickSize        float64 `json:"tick_size"`
	VolumeMin       float64 `json:"volume_min"`
	VolumeMax       float64 `json:"volume_max"`
	VolumeStep      float64 `json:"volume_step"`
	QuoteCurrency   string  `json:"quote_currency"`
	ProfitCurrency  string  `json:"profit_currency"`
	MinStopDistance float64 `json:"min_stop_distance"`
}

// Validate checks the fields the sizing math divides by. A zero point size
// indicates broken reference data and aborts computation for the symbol.
func (s InstrumentSpec) Validate() error {
	if s.Symbol == "" {
		return WrapErrorf(ErrInvalidInstrument, "empty symbol")
	}
	if s.PointSize <= 0 {
		return WrapErrorf(ErrInvalidInstrument, "%s: point size %v", s.Symbol, s.PointSize)
	}
	if s.VolumeMin <= 0 || s.VolumeMax < s.VolumeMin {
		return WrapErrorf(ErrInvalidInstrument, "%s: volume bounds [%v, %v]",
			s.Symbol, s.VolumeMin, s.VolumeMax)
	}
	return nil
}

// AccountState is a snapshot of the trading account used for sizing.
type AccountState struct {
	Balance  float64 `json:"balance"`
	Currency string  `json:"currency"`
}

// Trade represents one simulated or live position through its
// open -> managed -> closed lifecycle. Only the owning lifecycle manager
// (live trade manager or backtest simulator) mutates it.
type Trade struct {
	ID         string    `json:"id"`
	Symbol     string    `json:"symbol"`
	Direction  Direction `json:"direction"`
	EntryPrice float64   `json:"entry_price"`
	StopLoss   float64   `json:"stop_loss"`
	TakeProfit float64   `json:"take_profit"`
	Volume     float64   `json:"volume"`
	OpenTime   time.Time `json:"open_time"`
	CloseTime  time.Time `json:"close_time"`
	ExitPrice  float64   `json:"exit_price,omitempty"`
	Profit     float64   `json:"profit"`
	ExitReason string    `json:"exit_reason,omitempty"`
}

// IsOpen reports whether the trade has not been closed yet.
func (t Trade) IsOpen() bool {
	return t.ExitReason == ""
}

// IsWin reports whether the closed trade was profitable.
func (t Trade) IsWin() bool {
	return t.Profit > 0
}
