package notifier

import (
	"errors"
	"testing"

	"github.com/marwyn/tradewind/internal/core"
)

type fakeNotifier struct {
	name    string
	err     error
	signals []core.Signal
	trades  []core.Trade
	alerts  []string
}

func (f *fakeNotifier) Name() string { return f.name }

func (f *fakeNotifier) SendSignal(sig core.Signal) error {
	f.signals = append(f.signals, sig)
	return f.err
}

func (f *fakeNotifier) SendTrade(t core.Trade) error {
	f.trades = append(f.trades, t)
	return f.err
}

func (f *fakeNotifier) SendAlert(message string) error {
	f.alerts = append(f.alerts, message)
	return f.err
}

func TestRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	n := &fakeNotifier{name: "primary"}

	if err := r.Register(n); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(&fakeNotifier{name: "primary"}); err == nil {
		t.Error("expected duplicate registration to fail")
	}

	got, err := r.Get("primary")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != n {
		t.Error("Get returned a different notifier")
	}
	if _, err := r.Get("missing"); err == nil {
		t.Error("expected Get on missing name to fail")
	}
}

func TestBroadcastSignalCollectsErrors(t *testing.T) {
	r := NewRegistry()
	good := &fakeNotifier{name: "good"}
	bad := &fakeNotifier{name: "bad", err: errors.New("channel down")}
	_ = r.Register(good)
	_ = r.Register(bad)

	errs := r.BroadcastSignal(core.Signal{Symbol: "EURUSD", Action: core.ActionBuy})
	if len(errs) != 1 {
		t.Fatalf("expected one failure, got %v", errs)
	}
	if _, ok := errs["bad"]; !ok {
		t.Errorf("expected failure keyed by notifier name, got %v", errs)
	}
	if len(good.signals) != 1 || len(bad.signals) != 1 {
		t.Error("every notifier must receive the signal")
	}
}

func TestBroadcastTradeAndAlert(t *testing.T) {
	r := NewRegistry()
	n := &fakeNotifier{name: "only"}
	_ = r.Register(n)

	if errs := r.BroadcastTrade(core.Trade{Symbol: "EURUSD"}); len(errs) != 0 {
		t.Errorf("unexpected errors: %v", errs)
	}
	if errs := r.BroadcastAlert("daily loss limit reached"); len(errs) != 0 {
		t.Errorf("unexpected errors: %v", errs)
	}
	if len(n.trades) != 1 || len(n.alerts) != 1 {
		t.Errorf("expected one trade and one alert, got %d/%d", len(n.trades), len(n.alerts))
	}
}
