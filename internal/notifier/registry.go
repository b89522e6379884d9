package notifier

import (
	"fmt"
	"sync"

	"github.com/marwyn/tradewind/internal/core"
)

// Registry manages notifier instances and broadcasts events to all of
// them.
type Registry struct {
	mu        sync.RWMutex
	notifiers map[string]Notifier
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{notifiers: make(map[string]Notifier)}
}

// Register adds a notifier to the registry.
func (r *Registry) Register(n Notifier) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := n.Name()
	if _, exists := r.notifiers[name]; exists {
		return fmt.Errorf("notifier %s already registered", name)
	}
	r.notifiers[name] = n
	return nil
}

// Get retrieves a notifier by name.
func (r *Registry) Get(name string) (Notifier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, exists := r.notifiers[name]
	if !exists {
		return nil, fmt.Errorf("notifier %s not found", name)
	}
	return n, nil
}

// All returns every registered notifier.
func (r *Registry) All() []Notifier {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Notifier, 0, len(r.notifiers))
	for _, n := range r.notifiers {
		out = append(out, n)
	}
	return out
}

// BroadcastSignal sends a signal to every notifier and collects the
// per-channel failures.
func (r *Registry) BroadcastSignal(sig core.Signal) map[string]error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	errs := make(map[string]error)
	for name, n := range r.notifiers {
		if err := n.SendSignal(sig); err != nil {
			errs[name] = err
		}
	}
	return errs
}

// BroadcastTrade sends a trade event to every notifier.
func (r *Registry) BroadcastTrade(t core.Trade) map[string]error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	errs := make(map[string]error)
	for name, n := range r.notifiers {
		if err := n.SendTrade(t); err != nil {
			errs[name] = err
		}
	}
	return errs
}

// BroadcastAlert sends an operational warning to every notifier.
func (r *Registry) BroadcastAlert(message string) map[string]error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	errs := make(map[string]error)
	for name, n := range r.notifiers {
		if err := n.SendAlert(message); err != nil {
			errs[name] = err
		}
	}
	return errs
}
