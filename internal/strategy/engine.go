package strategy

import (
	"sort"
	"sync"

	"github.com/marwyn/tradewind/internal/core"
	"go.uber.org/zap"
)

// Engine holds the closed set of registered strategies and dispatches
// evaluations by name.
type Engine struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
	logger     *zap.Logger
}

// NewEngine creates an empty strategy engine.
func NewEngine(logger ...*zap.Logger) *Engine {
	var l *zap.Logger
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	} else {
		l = zap.NewNop()
	}
	return &Engine{
		strategies: make(map[string]Strategy),
		logger:     l,
	}
}

// Register adds a strategy to the engine.
func (e *Engine) Register(s Strategy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.strategies[s.Name()] = s
}

// Get retrieves a strategy by name.
func (e *Engine) Get(name string) (Strategy, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.strategies[name]
	return s, ok
}

// Names returns the registered strategy names in sorted order.
func (e *Engine) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.strategies))
	for n := range e.strategies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Evaluate runs the named strategy against the series. An unknown name
// yields hold together with ErrUnknownStrategy so the caller can surface
// the configuration gap; the condition is not fatal. Insufficient history
// and internal strategy failures both degrade to hold.
func (e *Engine) Evaluate(name string, series core.PriceSeries) (core.Signal, error) {
	s, ok := e.Get(name)
	if !ok {
		e.logger.Warn("strategy not registered, defaulting to hold",
			zap.String("strategy", name))
		sig := core.Hold("strategy not registered")
		sig.Strategy = name
		return sig, core.WrapErrorf(core.ErrUnknownStrategy, "%s", name)
	}

	if len(series) < s.Warmup() {
		sig := core.Hold("insufficient data")
		sig.Strategy = name
		return sig, nil
	}

	sig, err := s.Evaluate(series)
	if err != nil {
		e.logger.Warn("strategy evaluation failed, defaulting to hold",
			zap.String("strategy", name),
			zap.Error(err))
		sig = core.Hold("evaluation error")
	}
	sig.Strategy = name
	return sig, nil
}
