package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/marwyn/tradewind/internal/core"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSMA(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	sma := SMA(values, 3)

	if len(sma) != len(values) {
		t.Fatalf("expected full-length output, got %d", len(sma))
	}
	if !math.IsNaN(sma[0]) || !math.IsNaN(sma[1]) {
		t.Error("warm-up prefix should be NaN")
	}
	want := []float64{2, 3, 4}
	for i, w := range want {
		if !almostEqual(sma[i+2], w) {
			t.Errorf("sma[%d] = %v, want %v", i+2, sma[i+2], w)
		}
	}
}

func TestSMAInsufficientData(t *testing.T) {
	sma := SMA([]float64{1, 2}, 5)
	for i, v := range sma {
		if !math.IsNaN(v) {
			t.Errorf("sma[%d] = %v, want NaN", i, v)
		}
	}
}

func TestSMAMatchesDirectRecompute(t *testing.T) {
	// The ring-buffer accumulator must agree with a naive windowed mean.
	values := make([]float64, 100)
	for i := range values {
		values[i] = math.Sin(float64(i)/3)*5 + 100
	}
	period := 20
	sma := SMA(values, period)
	for i := period - 1; i < len(values); i++ {
		var sum float64
		for j := i - period + 1; j <= i; j++ {
			sum += values[j]
		}
		if !almostEqual(sma[i], sum/float64(period)) {
			t.Fatalf("sma[%d] = %v, direct = %v", i, sma[i], sum/float64(period))
		}
	}
}

func TestEMASeededByFirstValue(t *testing.T) {
	values := []float64{10, 11, 12}
	ema := EMA(values, 9)
	if !almostEqual(ema[0], 10) {
		t.Errorf("ema[0] = %v, want seed 10", ema[0])
	}
	alpha := 2.0 / 10.0
	want1 := alpha*11 + (1-alpha)*10
	if !almostEqual(ema[1], want1) {
		t.Errorf("ema[1] = %v, want %v", ema[1], want1)
	}
}

func TestRSIUndefinedWithoutLosses(t *testing.T) {
	// Monotonically rising closes: loss average stays zero, RSI stays NaN.
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	rsi := RSI(closes, 14)
	for i, v := range rsi {
		if !math.IsNaN(v) {
			t.Fatalf("rsi[%d] = %v, want NaN on lossless series", i, v)
		}
	}
}

func TestRSIBounds(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + 3*math.Sin(float64(i)/2)
	}
	rsi := RSI(closes, 14)
	var defined int
	for _, v := range rsi {
		if math.IsNaN(v) {
			continue
		}
		defined++
		if v < 0 || v > 100 {
			t.Fatalf("rsi out of range: %v", v)
		}
	}
	if defined == 0 {
		t.Fatal("expected defined RSI values on oscillating series")
	}
}

func TestRSIWarmup(t *testing.T) {
	closes := []float64{1, 2, 1, 2, 1, 2, 1, 2}
	rsi := RSI(closes, 14)
	for i, v := range rsi {
		if !math.IsNaN(v) {
			t.Errorf("rsi[%d] = %v on short series, want NaN", i, v)
		}
	}
}

func TestMomentum(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6, 10}
	mom := Momentum(closes, 5)
	if !math.IsNaN(mom[4]) {
		t.Error("momentum before lag should be NaN")
	}
	if !almostEqual(mom[6], 10-2) {
		t.Errorf("mom[6] = %v, want 8", mom[6])
	}
}

func TestTrueRangeGaps(t *testing.T) {
	bar := core.PriceBar{High: 105, Low: 103, Close: 104}
	// Gap up: previous close far below the bar's range.
	if tr := TrueRange(bar, 100); !almostEqual(tr, 5) {
		t.Errorf("gap-up true range = %v, want 5", tr)
	}
	// Gap down: previous close above.
	if tr := TrueRange(bar, 110); !almostEqual(tr, 7) {
		t.Errorf("gap-down true range = %v, want 7", tr)
	}
}

func TestATR(t *testing.T) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	series := make(core.PriceSeries, 20)
	for i := range series {
		series[i] = core.PriceBar{
			Time: base.Add(time.Duration(i) * time.Hour),
			High: 101, Low: 99, Close: 100,
		}
	}
	atr := ATR(series, 14)
	if !math.IsNaN(atr[13]) {
		t.Error("ATR before warm-up should be NaN")
	}
	// Constant 2-point range, no gaps: ATR settles at 2.
	if !almostEqual(atr[len(atr)-1], 2) {
		t.Errorf("ATR = %v, want 2", atr[len(atr)-1])
	}
}

func TestBollinger(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 50 + float64(i%5)
	}
	b := Bollinger(closes, 20, 2)
	last := len(closes) - 1
	if math.IsNaN(b.Middle[last]) {
		t.Fatal("expected defined bands after warm-up")
	}
	if !(b.Lower[last] < b.Middle[last] && b.Middle[last] < b.Upper[last]) {
		t.Errorf("band ordering violated: %v %v %v", b.Lower[last], b.Middle[last], b.Upper[last])
	}
	// Bands are symmetric around the middle.
	if !almostEqual(b.Upper[last]-b.Middle[last], b.Middle[last]-b.Lower[last]) {
		t.Error("bands should be symmetric around the middle")
	}
}

func TestBollingerFlatSeries(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 100
	}
	b := Bollinger(closes, 20, 2)
	last := len(closes) - 1
	if !almostEqual(b.Upper[last], 100) || !almostEqual(b.Lower[last], 100) {
		t.Errorf("flat series should collapse bands to the mean: %v %v", b.Upper[last], b.Lower[last])
	}
}

func TestMACDHistogram(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	m := MACD(closes)
	for i := range closes {
		if !almostEqual(m.Histogram[i], m.Line[i]-m.Signal[i]) {
			t.Fatalf("histogram[%d] != line - signal", i)
		}
	}
	// A steady uptrend keeps the fast EMA above the slow one.
	if m.Line[len(closes)-1] <= 0 {
		t.Errorf("MACD line = %v, want positive in uptrend", m.Line[len(closes)-1])
	}
}
