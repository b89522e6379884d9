// Package log implements a notifier that writes events to the
// structured log. It is the default channel when no external channel
// is configured.
package log

import (
	"go.uber.org/zap"

	"github.com/marwyn/tradewind/internal/core"
	"github.com/marwyn/tradewind/internal/notifier"
)

// Notifier logs trading events through zap.
type Notifier struct {
	logger *zap.Logger
}

var _ notifier.Notifier = (*Notifier)(nil)

// New creates a log notifier.
func New(logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{logger: logger}
}

func (n *Notifier) Name() string { return "log" }

func (n *Notifier) SendSignal(sig core.Signal) error {
	n.logger.Info("signal",
		zap.String("symbol", sig.Symbol),
		zap.String("strategy", sig.Strategy),
		zap.String("action", string(sig.Action)),
		zap.String("reason", sig.Reason))
	return nil
}

func (n *Notifier) SendTrade(t core.Trade) error {
	if t.IsOpen() {
		n.logger.Info("trade opened",
			zap.String("ticket", t.ID),
			zap.String("symbol", t.Symbol),
			zap.String("side", string(t.Direction)),
			zap.Float64("volume", t.Volume),
			zap.Float64("entry", t.EntryPrice),
			zap.Float64("sl", t.StopLoss),
			zap.Float64("tp", t.TakeProfit))
		return nil
	}
	n.logger.Info("trade closed",
		zap.String("ticket", t.ID),
		zap.String("symbol", t.Symbol),
		zap.String("reason", t.ExitReason),
		zap.Float64("exit", t.ExitPrice),
		zap.Float64("profit", t.Profit))
	return nil
}

func (n *Notifier) SendAlert(message string) error {
	n.logger.Warn("alert", zap.String("message", message))
	return nil
}
