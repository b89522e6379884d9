package risk

import (
	"math"

	"go.uber.org/zap"

	"github.com/marwyn/tradewind/internal/core"
)

// Kelly fraction bounds. The upper cap keeps a hot streak from betting
// a quarter of the account on one position; the floor keeps a marginal
// edge tradeable at all.
const (
	kellyFloor = 0.01
	kellyCap   = 0.25
)

// SizeByKelly computes a volume from the Kelly criterion
// f = (b*p - q) / b with b = avgWin/|avgLoss|, p = winRate, q = 1-p.
// The fraction is clamped to [0.01, 0.25] and translated into lots
// using a 100-point risk unit. Win rate outside (0, 1) or a
// non-positive average loss returns ErrDegenerateRisk.
func (s *Sizer) SizeByKelly(spec core.InstrumentSpec, winRate, avgWin, avgLoss, balance float64) (float64, error) {
	if avgLoss <= 0 || winRate <= 0 || winRate >= 1 {
		return 0, core.WrapErrorf(core.ErrDegenerateRisk,
			"kelly inputs: win rate %.3f, avg loss %.2f", winRate, avgLoss)
	}
	if spec.PointSize <= 0 || spec.ContractSize <= 0 {
		return 0, core.WrapErrorf(core.ErrDegenerateRisk, "%s: missing contract metadata", spec.Symbol)
	}

	b := avgWin / math.Abs(avgLoss)
	p := winRate
	q := 1 - winRate

	fraction := (b*p - q) / b
	fraction = math.Min(fraction, kellyCap)
	fraction = math.Max(fraction, kellyFloor)

	riskAmount := balance * fraction
	volume := riskAmount / (100 * spec.PointSize * spec.ContractSize)
	volume = math.Max(spec.VolumeMin, volume)
	if spec.VolumeMax > 0 {
		volume = math.Min(spec.VolumeMax, volume)
	}
	volume = math.Round(volume*100) / 100

	s.logger.Debug("kelly sized",
		zap.String("symbol", spec.Symbol),
		zap.Float64("fraction", fraction),
		zap.Float64("volume", volume))
	return volume, nil
}
