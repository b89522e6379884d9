package indicator

// SMA calculates the simple moving average of the trailing period values.
// The first period-1 entries are NaN.
func SMA(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 || len(values) < period {
		return out
	}

	w := newRolling(period)
	for i, v := range values {
		w.push(v)
		if w.full() {
			out[i] = w.mean()
		}
	}
	return out
}

// EMA calculates the exponential moving average with smoothing factor
// alpha = 2/(span+1), seeded by the first value.
func EMA(values []float64, span int) []float64 {
	out := nanSlice(len(values))
	if span <= 0 || len(values) == 0 {
		return out
	}

	alpha := 2.0 / float64(span+1)
	ema := values[0]
	out[0] = ema
	for i := 1; i < len(values); i++ {
		ema = alpha*values[i] + (1-alpha)*ema
		out[i] = ema
	}
	return out
}
