// Package risk computes position sizes and protective stop distances.
// Sizes are derived from a fixed fraction of account equity or from the
// Kelly criterion, always quantized to the instrument's volume step and
// clamped to its tradeable range.
package risk

import (
	"math"

	"go.uber.org/zap"

	"github.com/marwyn/tradewind/internal/convert"
	"github.com/marwyn/tradewind/internal/core"
)

// Sizer converts a risk budget into an order volume.
type Sizer struct {
	resolver *convert.Resolver
	logger   *zap.Logger
}

// NewSizer creates a sizer. The resolver translates pip values quoted
// in the instrument's profit currency into the account currency.
func NewSizer(resolver *convert.Resolver, logger ...*zap.Logger) *Sizer {
	var l *zap.Logger
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	} else {
		l = zap.NewNop()
	}
	return &Sizer{resolver: resolver, logger: l}
}

// SizeByRisk computes the volume that loses riskPercent of the account
// balance if the stop at slPips is hit. The result is clamped to
// [VolumeMin, min(maxVolume, VolumeMax)], quantized to VolumeStep and
// rounded to three decimals. Degenerate inputs (non-positive stop,
// point size or pip value) return ErrDegenerateRisk; a missing
// conversion path surfaces ErrConversionNotFound.
func (s *Sizer) SizeByRisk(account core.AccountState, spec core.InstrumentSpec, slPips, riskPercent, maxVolume float64) (float64, error) {
	if slPips <= 0 {
		return 0, core.WrapErrorf(core.ErrDegenerateRisk, "stop distance %.1f pips", slPips)
	}
	if spec.PointSize <= 0 {
		return 0, core.WrapErrorf(core.ErrDegenerateRisk, "%s: zero point size", spec.Symbol)
	}

	riskAmount := account.Balance * (riskPercent / 100)

	pipValue := s.pipValue(spec)
	if spec.ProfitCurrency != "" && spec.ProfitCurrency != account.Currency {
		rate, err := s.resolver.Resolve(spec.ProfitCurrency, account.Currency)
		if err != nil {
			return 0, err
		}
		pipValue = rate.Apply(pipValue)
	}
	if pipValue <= 0 {
		return 0, core.WrapErrorf(core.ErrDegenerateRisk, "%s: pip value %.6f", spec.Symbol, pipValue)
	}

	volume := riskAmount / (slPips * pipValue)
	volume = s.clamp(spec, volume, maxVolume)

	s.logger.Debug("position sized",
		zap.String("symbol", spec.Symbol),
		zap.Float64("risk_amount", riskAmount),
		zap.Float64("sl_pips", slPips),
		zap.Float64("volume", volume))
	return volume, nil
}

// pipValue is the account-currency-agnostic value of one point of
// movement for one lot. Tick metadata is preferred; contract size times
// point is the fallback when the tick size is unknown.
func (s *Sizer) pipValue(spec core.InstrumentSpec) float64 {
	if spec.TickSize > 0 {
		return spec.TickValue * (spec.PointSize / spec.TickSize)
	}
	return spec.ContractSize * spec.PointSize
}

func (s *Sizer) clamp(spec core.InstrumentSpec, volume, maxVolume float64) float64 {
	limit := spec.VolumeMax
	if maxVolume > 0 && (limit <= 0 || maxVolume < limit) {
		limit = maxVolume
	}

	volume = math.Max(spec.VolumeMin, volume)
	if limit > 0 {
		volume = math.Min(limit, volume)
	}
	if spec.VolumeStep > 0 {
		volume = math.Round(volume/spec.VolumeStep) * spec.VolumeStep
		// Nearest-step rounding must not escape the clamp.
		if limit > 0 && volume > limit {
			volume -= spec.VolumeStep
		}
		volume = math.Max(spec.VolumeMin, volume)
	}
	return math.Round(volume*1000) / 1000
}
