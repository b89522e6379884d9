package indicator

// MACDSeries holds the MACD line, its signal line and the histogram.
type MACDSeries struct {
	Line      []float64
	Signal    []float64
	Histogram []float64
}

// MACD calculates EMA(12) - EMA(26) with an EMA(9) signal line.
func MACD(closes []float64) MACDSeries {
	n := len(closes)
	fast := EMA(closes, 12)
	slow := EMA(closes, 26)

	line := make([]float64, n)
	for i := 0; i < n; i++ {
		line[i] = fast[i] - slow[i]
	}
	signal := EMA(line, 9)

	hist := make([]float64, n)
	for i := 0; i < n; i++ {
		hist[i] = line[i] - signal[i]
	}
	return MACDSeries{Line: line, Signal: signal, Histogram: hist}
}
