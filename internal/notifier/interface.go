// Package notifier fans trading events out to notification channels.
package notifier

import (
	"github.com/marwyn/tradewind/internal/core"
)

// Notifier delivers trading events to one channel.
type Notifier interface {
	// Name returns the unique identifier for this notifier.
	Name() string

	// SendSignal delivers a generated signal.
	SendSignal(sig core.Signal) error

	// SendTrade delivers a trade lifecycle event. Open trades have no
	// exit reason; closed trades carry their exit details.
	SendTrade(t core.Trade) error

	// SendAlert delivers an operational warning.
	SendAlert(message string) error
}
