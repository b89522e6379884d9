package indicator

// Bands holds the Bollinger band series. All three slices are full-length
// and NaN over the warm-up prefix.
type Bands struct {
	Middle []float64
	Upper  []float64
	Lower  []float64
}

// Bollinger calculates SMA(period) +/- k * rolling sample stddev(period).
func Bollinger(closes []float64, period int, k float64) Bands {
	n := len(closes)
	b := Bands{Middle: nanSlice(n), Upper: nanSlice(n), Lower: nanSlice(n)}
	if period <= 1 || n < period {
		return b
	}

	w := newRolling(period)
	for i, v := range closes {
		w.push(v)
		if !w.full() {
			continue
		}
		m := w.mean()
		sd := w.std()
		b.Middle[i] = m
		b.Upper[i] = m + k*sd
		b.Lower[i] = m - k*sd
	}
	return b
}
