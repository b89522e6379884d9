package indicator

// RSI calculates the Relative Strength Index over simple rolling means of
// gains and losses (not Wilder's smoothing): RSI = 100 - 100/(1+RS) where
// RS is the period-mean of positive deltas over the period-mean of
// negative deltas. Points where the loss average is zero stay NaN; callers
// must treat an undefined RSI as "no signal".
func RSI(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}

	gains := newRolling(period)
	losses := newRolling(period)
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		var gain, loss float64
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		gains.push(gain)
		losses.push(loss)

		if !gains.full() {
			continue
		}
		avgLoss := losses.mean()
		if avgLoss == 0 {
			continue
		}
		rs := gains.mean() / avgLoss
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// Momentum is the close-over-close difference across lag bars.
func Momentum(closes []float64, lag int) []float64 {
	out := nanSlice(len(closes))
	if lag <= 0 {
		return out
	}
	for i := lag; i < len(closes); i++ {
		out[i] = closes[i] - closes[i-lag]
	}
	return out
}
