package indicator

import "math"

// rolling is a fixed-size window accumulator backed by a ring buffer.
// push is O(1); mean and std read running sums instead of rescanning
// the window, while producing the same values as a windowed recompute.
type rolling struct {
	size  int
	buf   []float64
	head  int
	count int
	sum   float64
	sumSq float64
}

func newRolling(size int) *rolling {
	return &rolling{size: size, buf: make([]float64, size)}
}

func (r *rolling) push(v float64) {
	if r.count == r.size {
		old := r.buf[r.head]
		r.sum -= old
		r.sumSq -= old * old
	} else {
		r.count++
	}
	r.buf[r.head] = v
	r.head = (r.head + 1) % r.size
	r.sum += v
	r.sumSq += v * v
}

func (r *rolling) full() bool {
	return r.count == r.size
}

func (r *rolling) mean() float64 {
	if r.count == 0 {
		return math.NaN()
	}
	return r.sum / float64(r.count)
}

// std is the sample standard deviation over the window (ddof = 1), the
// rolling-stddev definition the band calculation is specified against.
func (r *rolling) std() float64 {
	if r.count < 2 {
		return math.NaN()
	}
	n := float64(r.count)
	variance := (r.sumSq - r.sum*r.sum/n) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// nanSlice returns a slice of n NaNs. Indicator outputs are full-length
// and NaN over the warm-up prefix; callers treat NaN as "no value",
// never as zero.
func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
