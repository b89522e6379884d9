package indicator

import (
	"math"

	"github.com/marwyn/tradewind/internal/core"
)

// TrueRange is max(high-low, |high-prevClose|, |low-prevClose|).
func TrueRange(bar core.PriceBar, prevClose float64) float64 {
	hl := bar.High - bar.Low
	hc := math.Abs(bar.High - prevClose)
	lc := math.Abs(bar.Low - prevClose)
	return math.Max(hl, math.Max(hc, lc))
}

// ATR calculates the Average True Range as a rolling mean of the true
// range. The first bar has no previous close, so values are defined from
// index period onward.
func ATR(series core.PriceSeries, period int) []float64 {
	out := nanSlice(len(series))
	if period <= 0 || len(series) < period+1 {
		return out
	}

	w := newRolling(period)
	for i := 1; i < len(series); i++ {
		w.push(TrueRange(series[i], series[i-1].Close))
		if w.full() {
			out[i] = w.mean()
		}
	}
	return out
}
