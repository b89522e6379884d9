package risk

import (
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/marwyn/tradewind/internal/core"
	"github.com/marwyn/tradewind/internal/indicator"
)

// Class buckets instruments whose stop distances live on very
// different scales. A 30-pip stop is sane on EURUSD and absurd on
// bitcoin.
type Class string

const (
	ClassMajor  Class = "major"
	ClassJPY    Class = "jpy"
	ClassGold   Class = "gold"
	ClassCrypto Class = "crypto"
)

var cryptoTokens = []string{"BTC", "ETH", "ADA", "SOL", "XRP"}

// Classify maps a broker symbol onto its instrument class. Gold takes
// precedence so that a hypothetical XAUJPY is treated as metal.
func Classify(symbol string) Class {
	s := strings.ToUpper(symbol)
	switch {
	case strings.Contains(s, "XAU") || strings.Contains(s, "GOLD"):
		return ClassGold
	case strings.Contains(s, "JPY"):
		return ClassJPY
	default:
		for _, tok := range cryptoTokens {
			if strings.Contains(s, tok) {
				return ClassCrypto
			}
		}
		return ClassMajor
	}
}

// PointSize is the price increment one pip represents for the class.
func (c Class) PointSize() float64 {
	if c == ClassMajor {
		return 0.0001
	}
	return 0.01
}

// StopBounds returns the allowed stop-loss range in pips.
func (c Class) StopBounds() (min, max float64) {
	switch c {
	case ClassGold:
		return 50, 2000
	case ClassJPY:
		return 5, 500
	case ClassCrypto:
		return 100, 5000
	default:
		return 10, 1000
	}
}

// TakeBounds returns the allowed take-profit range in pips.
func (c Class) TakeBounds() (min, max float64) {
	switch c {
	case ClassGold:
		return 100, 4000
	case ClassJPY:
		return 10, 1000
	case ClassCrypto:
		return 200, 10000
	default:
		return 20, 2000
	}
}

// Fallback returns the conservative stop pair used when price history
// is too short to estimate anything.
func (c Class) Fallback() Stops {
	switch c {
	case ClassGold:
		return Stops{StopPips: 200, TakePips: 400, Method: MethodFallback}
	case ClassJPY:
		return Stops{StopPips: 20, TakePips: 40, Method: MethodFallback}
	case ClassCrypto:
		return Stops{StopPips: 500, TakePips: 1000, Method: MethodFallback}
	default:
		return Stops{StopPips: 30, TakePips: 60, Method: MethodFallback}
	}
}

// Estimation methods reported on Stops.
const (
	MethodBlended  = "blended"
	MethodFallback = "fallback"
)

// Stops is a stop-loss and take-profit distance pair in pips.
type Stops struct {
	StopPips float64
	TakePips float64
	Method   string
}

// StopEngine estimates stop distances from recent price action by
// blending three independent views: an ATR multiple, the distance to
// nearby support/resistance, and a volatility percentile of bar
// ranges. The blend is the plain mean, clamped to the class bounds.
type StopEngine struct {
	atrPeriod int
	slMult    float64
	tpMult    float64
	logger    *zap.Logger
}

// NewStopEngine creates a stop engine with ATR(14) and 1.5x/2.0x
// stop/take multipliers.
func NewStopEngine(logger ...*zap.Logger) *StopEngine {
	var l *zap.Logger
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	} else {
		l = zap.NewNop()
	}
	return &StopEngine{atrPeriod: 14, slMult: 1.5, tpMult: 2.0, logger: l}
}

// Estimate computes stop distances for the symbol. Series shorter than
// the ATR period plus five bars fall back to the class defaults; the
// Method field reports which path was taken.
func (e *StopEngine) Estimate(series core.PriceSeries, symbol string) Stops {
	class := Classify(symbol)
	if len(series) < e.atrPeriod+5 {
		e.logger.Warn("not enough history for stop estimation, using fallback",
			zap.String("symbol", symbol),
			zap.Int("bars", len(series)))
		return class.Fallback()
	}

	point := class.PointSize()

	atrSL, atrTP := e.atrStops(series, point)
	srSL, srTP := e.structureStops(series, point)
	volSL, volTP := e.percentileStops(series, point)

	sl := (atrSL + srSL + volSL) / 3
	tp := (atrTP + srTP + volTP) / 3

	minSL, maxSL := class.StopBounds()
	minTP, maxTP := class.TakeBounds()
	sl = math.Max(minSL, math.Min(maxSL, sl))
	tp = math.Max(minTP, math.Min(maxTP, tp))

	e.logger.Debug("stops estimated",
		zap.String("symbol", symbol),
		zap.String("class", string(class)),
		zap.Float64("sl_pips", sl),
		zap.Float64("tp_pips", tp))
	return Stops{StopPips: sl, TakePips: tp, Method: MethodBlended}
}

func (e *StopEngine) atrStops(series core.PriceSeries, point float64) (sl, tp float64) {
	atr := indicator.ATR(series, e.atrPeriod)
	last := atr[len(atr)-1]
	if math.IsNaN(last) {
		return 20, 40
	}
	return last * e.slMult / point, last * e.tpMult / point
}

// structureStops measures the distance to the nearest swing high and
// swing low. Swings are bars whose extreme dominates a centered 10-bar
// window; missing levels are synthesized two percent away from price.
func (e *StopEngine) structureStops(series core.PriceSeries, point float64) (sl, tp float64) {
	const window = 10
	const half = window / 2

	n := len(series)
	current := series[n-1].Close

	var resistances, supports []float64
	for i := half; i+window-half-1 < n; i++ {
		maxHigh := series[i-half].High
		minLow := series[i-half].Low
		for j := i - half + 1; j <= i+window-half-1; j++ {
			maxHigh = math.Max(maxHigh, series[j].High)
			minLow = math.Min(minLow, series[j].Low)
		}
		if series[i].High == maxHigh && series[i].High > current {
			resistances = append(resistances, series[i].High)
		}
		if series[i].Low == minLow && series[i].Low < current {
			supports = append(supports, series[i].Low)
		}
	}

	nearestResistance := current * 1.02
	if k := len(resistances); k > 0 {
		tail := resistances
		if k > 5 {
			tail = resistances[k-5:]
		}
		nearestResistance = tail[0]
		for _, r := range tail[1:] {
			nearestResistance = math.Min(nearestResistance, r)
		}
	}
	nearestSupport := current * 0.98
	if k := len(supports); k > 0 {
		tail := supports
		if k > 5 {
			tail = supports[k-5:]
		}
		nearestSupport = tail[0]
		for _, s := range tail[1:] {
			nearestSupport = math.Max(nearestSupport, s)
		}
	}

	resistanceDist := (nearestResistance - current) / point
	supportDist := (current - nearestSupport) / point

	sl = math.Min(resistanceDist, supportDist) * 0.8
	tp = math.Max(resistanceDist, supportDist) * 1.2
	return math.Max(10, sl), math.Max(20, tp)
}

// percentileStops derives distances from the 30th and 70th percentiles
// of relative bar ranges over the whole series.
func (e *StopEngine) percentileStops(series core.PriceSeries, point float64) (sl, tp float64) {
	ranges := make([]float64, len(series))
	for i, bar := range series {
		ranges[i] = (bar.High - bar.Low) / bar.Close * 100
	}

	slPct := quantile(ranges, 0.3)
	tpPct := quantile(ranges, 0.7)
	current := series[len(series)-1].Close

	sl = current * (slPct / 100) / point
	tp = current * (tpPct / 100) / point
	return math.Max(10, sl), math.Max(20, tp)
}

// quantile interpolates linearly between the two nearest order
// statistics.
func quantile(values []float64, p float64) float64 {
	s := append([]float64(nil), values...)
	sort.Float64s(s)
	h := float64(len(s)-1) * p
	lo := int(math.Floor(h))
	if lo >= len(s)-1 {
		return s[len(s)-1]
	}
	return s[lo] + (h-float64(lo))*(s[lo+1]-s[lo])
}
