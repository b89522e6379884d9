// Package all registers the complete closed set of built-in strategies.
package all

import (
	"github.com/marwyn/tradewind/internal/strategy"
	"github.com/marwyn/tradewind/internal/strategy/bollinger_bands"
	"github.com/marwyn/tradewind/internal/strategy/ema_crossover"
	"github.com/marwyn/tradewind/internal/strategy/rsi_scalping"
	"github.com/marwyn/tradewind/internal/strategy/sma_crossover"
	"github.com/marwyn/tradewind/internal/strategy/sma_rsi_combo"
	"go.uber.org/zap"
)

// NewEngine returns an engine with every built-in strategy registered.
func NewEngine(logger ...*zap.Logger) *strategy.Engine {
	e := strategy.NewEngine(logger...)
	Register(e)
	return e
}

// Register adds all built-in strategies to the engine.
func Register(e *strategy.Engine) {
	e.Register(sma_crossover.New())
	e.Register(rsi_scalping.New())
	e.Register(sma_rsi_combo.New())
	e.Register(bollinger_bands.New())
	e.Register(ema_crossover.New())
}
