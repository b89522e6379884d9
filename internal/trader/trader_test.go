package trader

import (
	"context"
	"testing"
	"time"

	"github.com/marwyn/tradewind/internal/broker"
	"github.com/marwyn/tradewind/internal/broker/mock"
	"github.com/marwyn/tradewind/internal/convert"
	"github.com/marwyn/tradewind/internal/core"
	"github.com/marwyn/tradewind/internal/notifier"
	"github.com/marwyn/tradewind/internal/provider"
	"github.com/marwyn/tradewind/internal/risk"
	"github.com/marwyn/tradewind/internal/strategy/all"
)

type fakeNotifier struct {
	signals []core.Signal
	trades  []core.Trade
	alerts  []string
}

func (f *fakeNotifier) Name() string                     { return "fake" }
func (f *fakeNotifier) SendSignal(sig core.Signal) error { f.signals = append(f.signals, sig); return nil }
func (f *fakeNotifier) SendTrade(t core.Trade) error     { f.trades = append(f.trades, t); return nil }
func (f *fakeNotifier) SendAlert(msg string) error       { f.alerts = append(f.alerts, msg); return nil }

// Declining closes followed by a sharp recovery so the fast SMA crosses
// above the slow one on the final bar, scaled to FX-like prices.
func buySeries() core.PriceSeries {
	base := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	closes := make([]float64, 0, 30)
	for i := 0; i < 25; i++ {
		closes = append(closes, (120-float64(i))/100)
	}
	for i := 1; i <= 5; i++ {
		closes = append(closes, (96+6*float64(i))/100)
	}
	series := make(core.PriceSeries, len(closes))
	for i, c := range closes {
		series[i] = core.PriceBar{
			Time: base.Add(time.Duration(i) * time.Hour),
			Open: c, High: c, Low: c, Close: c,
		}
	}
	return series
}

func eurusdSpec() core.InstrumentSpec {
	return core.InstrumentSpec{
		Symbol: "EURUSD", PointSize: 0.0001, ContractSize: 100000,
		TickValue: 10, TickSize: 0.0001,
		VolumeMin: 0.01, VolumeMax: 100, VolumeStep: 0.01,
		QuoteCurrency: "USD", ProfitCurrency: "USD",
	}
}

func newTestTrader(gw *mock.Gateway, cfg Config, n notifier.Notifier) *Trader {
	notifiers := notifier.NewRegistry()
	if n != nil {
		_ = notifiers.Register(n)
	}
	return New(Deps{
		Gateway:   gw,
		Engine:    all.NewEngine(),
		Sizer:     risk.NewSizer(convert.NewResolver(gw)),
		Stops:     risk.NewStopEngine(),
		Checker:   broker.NewRiskChecker(broker.DefaultRiskLimits()),
		Notifiers: notifiers,
		Reference: provider.NewCatalog(),
	}, cfg)
}

func defaultCfg() Config {
	return Config{
		Symbols:          []string{"EURUSD"},
		Strategy:         "sma_crossover",
		Bars:             0,
		RiskPercent:      1.0,
		MaxVolume:        0.1,
		TrailingStopPips: 20,
		BreakevenPips:    15,
	}
}

func TestRunCycleOpensPositionOnBuySignal(t *testing.T) {
	gw := mock.New()
	if err := gw.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	gw.SetInstrument(eurusdSpec())
	gw.SetRates("EURUSD", buySeries())
	gw.SetTick("EURUSD", 1.2600, 1.2602)

	fake := &fakeNotifier{}
	tr := newTestTrader(gw, defaultCfg(), fake)

	if err := tr.RunCycle(context.Background(), StatusRunning); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}

	positions, _ := gw.Positions(context.Background(), "EURUSD")
	if len(positions) != 1 {
		t.Fatalf("expected one open position, got %d", len(positions))
	}
	p := positions[0]
	if p.Side != core.DirectionBuy {
		t.Errorf("expected buy, got %s", p.Side)
	}
	if p.OpenPrice != 1.2602 {
		t.Errorf("expected fill at ask 1.2602, got %v", p.OpenPrice)
	}
	if p.Volume < 0.01 || p.Volume > 0.1 {
		t.Errorf("volume %v outside configured bounds", p.Volume)
	}
	if !(p.StopLoss < p.OpenPrice && p.TakeProfit > p.OpenPrice) {
		t.Errorf("stops on wrong side: sl=%v tp=%v entry=%v", p.StopLoss, p.TakeProfit, p.OpenPrice)
	}
	if len(fake.signals) != 1 || fake.signals[0].Action != core.ActionBuy {
		t.Errorf("expected one buy signal notification, got %+v", fake.signals)
	}
	if len(fake.trades) != 1 || fake.trades[0].Symbol != "EURUSD" {
		t.Errorf("expected one trade notification, got %+v", fake.trades)
	}
}

func TestRunCycleHonorsPerSymbolLimit(t *testing.T) {
	gw := mock.New()
	if err := gw.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	gw.SetInstrument(eurusdSpec())
	gw.SetRates("EURUSD", buySeries())
	gw.SetTick("EURUSD", 1.2600, 1.2602)

	tr := newTestTrader(gw, defaultCfg(), nil)
	ctx := context.Background()
	if err := tr.RunCycle(ctx, StatusRunning); err != nil {
		t.Fatalf("first cycle failed: %v", err)
	}
	if err := tr.RunCycle(ctx, StatusRunning); err != nil {
		t.Fatalf("second cycle failed: %v", err)
	}

	positions, _ := gw.Positions(ctx, "EURUSD")
	if len(positions) != 1 {
		t.Fatalf("expected the second entry to be blocked, got %d positions", len(positions))
	}
}

func TestRunCyclePausedManagesButDoesNotOpen(t *testing.T) {
	gw := mock.New()
	ctx := context.Background()
	if err := gw.Connect(ctx); err != nil {
		t.Fatal(err)
	}
	gw.SetInstrument(eurusdSpec())
	gw.SetRates("EURUSD", buySeries())
	gw.SetTick("EURUSD", 1.0998, 1.1000)

	res, err := gw.PlaceOrder(ctx, broker.OrderRequest{
		Symbol: "EURUSD", Side: core.DirectionBuy, Volume: 0.1,
		StopLoss: 1.0980, TakeProfit: 1.1200,
	})
	if err != nil {
		t.Fatal(err)
	}
	// Price runs 100 pips in favor; the 20 pip trail should follow.
	gw.SetTick("EURUSD", 1.1100, 1.1102)

	tr := newTestTrader(gw, defaultCfg(), nil)
	if err := tr.RunCycle(ctx, StatusPaused); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}

	positions, _ := gw.Positions(ctx, "")
	if len(positions) != 1 {
		t.Fatalf("paused cycle opened a position: %d total", len(positions))
	}
	p := positions[0]
	if p.Ticket != res.Ticket {
		t.Fatalf("unexpected position %s", p.Ticket)
	}
	want := 1.1100 - 20*0.0001
	if diff := p.StopLoss - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("trailing stop at %v, want %v", p.StopLoss, want)
	}
	if p.TakeProfit != 1.1200 {
		t.Errorf("take profit changed: %v", p.TakeProfit)
	}
}

func TestRunCycleMovesStopToBreakeven(t *testing.T) {
	gw := mock.New()
	ctx := context.Background()
	if err := gw.Connect(ctx); err != nil {
		t.Fatal(err)
	}
	gw.SetInstrument(eurusdSpec())
	gw.SetTick("EURUSD", 1.0998, 1.1000)

	if _, err := gw.PlaceOrder(ctx, broker.OrderRequest{
		Symbol: "EURUSD", Side: core.DirectionBuy, Volume: 0.1,
		StopLoss: 1.0980, TakeProfit: 1.1200,
	}); err != nil {
		t.Fatal(err)
	}
	// 16 pips in profit: past the 15 pip breakeven threshold but not far
	// enough for the 20 pip trail to clear the entry.
	gw.SetTick("EURUSD", 1.1016, 1.1018)

	cfg := defaultCfg()
	cfg.Symbols = nil // manage only
	tr := newTestTrader(gw, cfg, nil)
	if err := tr.RunCycle(ctx, StatusRunning); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}

	positions, _ := gw.Positions(ctx, "")
	if len(positions) != 1 {
		t.Fatalf("expected one position, got %d", len(positions))
	}
	want := 1.1000 + 2*0.0001
	if diff := positions[0].StopLoss - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("breakeven stop at %v, want %v", positions[0].StopLoss, want)
	}
}

func TestRunCycleHaltsOnDailyLossLimit(t *testing.T) {
	gw := mock.New()
	ctx := context.Background()
	if err := gw.Connect(ctx); err != nil {
		t.Fatal(err)
	}
	gw.SetInstrument(eurusdSpec())
	gw.SetRates("EURUSD", buySeries())
	gw.SetTick("EURUSD", 1.2600, 1.2602)

	fake := &fakeNotifier{}
	tr := newTestTrader(gw, defaultCfg(), fake)
	// 6% realized loss today on a 10000 account.
	tr.deps.Checker.RecordClose(core.Trade{Profit: -600, CloseTime: time.Now()})

	if err := tr.RunCycle(ctx, StatusRunning); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}

	positions, _ := gw.Positions(ctx, "")
	if len(positions) != 0 {
		t.Fatalf("expected no entries past the loss limit, got %d", len(positions))
	}
	if len(fake.alerts) == 0 {
		t.Error("expected a loss limit alert")
	}
}

func TestRunCycleBooksBrokerSideClosures(t *testing.T) {
	gw := mock.New()
	ctx := context.Background()
	if err := gw.Connect(ctx); err != nil {
		t.Fatal(err)
	}
	gw.SetInstrument(eurusdSpec())
	gw.SetTick("EURUSD", 1.0998, 1.1000)

	res, err := gw.PlaceOrder(ctx, broker.OrderRequest{
		Symbol: "EURUSD", Side: core.DirectionBuy, Volume: 1.0,
		StopLoss: 1.0900, TakeProfit: 1.1200,
	})
	if err != nil {
		t.Fatal(err)
	}
	// 60 pips against a full lot: -600 on the mark.
	gw.SetTick("EURUSD", 1.0940, 1.0942)

	fake := &fakeNotifier{}
	tr := newTestTrader(gw, defaultCfg(), fake)

	// First cycle snapshots the losing position.
	if err := tr.RunCycle(ctx, StatusPaused); err != nil {
		t.Fatalf("first cycle failed: %v", err)
	}
	if got := tr.deps.Checker.DailyLoss(time.Now()); got != 0 {
		t.Fatalf("no close happened yet, daily loss %v", got)
	}

	// The broker closes it between cycles, as a stop loss hit would.
	if _, err := gw.ClosePosition(ctx, res.Ticket); err != nil {
		t.Fatal(err)
	}
	gw.SetRates("EURUSD", buySeries())

	if err := tr.RunCycle(ctx, StatusRunning); err != nil {
		t.Fatalf("second cycle failed: %v", err)
	}

	loss := tr.deps.Checker.DailyLoss(time.Now())
	if diff := loss - 600; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("daily loss %v, want 600", loss)
	}
	if len(fake.trades) != 1 {
		t.Fatalf("expected one close notification, got %d", len(fake.trades))
	}
	closed := fake.trades[0]
	if closed.IsOpen() || closed.ID != res.Ticket {
		t.Errorf("unexpected close notification: %+v", closed)
	}
	if diff := closed.Profit + 600; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("booked profit %v, want -600", closed.Profit)
	}
	// The realized loss exceeds the daily limit, so the buy signal
	// must not open a new position.
	positions, _ := gw.Positions(ctx, "")
	if len(positions) != 0 {
		t.Fatalf("expected entries halted after the loss, got %d", len(positions))
	}
	if len(fake.alerts) == 0 {
		t.Error("expected a loss limit alert")
	}
}

func TestRunCycleSizingGapDegradesToMinimumVolume(t *testing.T) {
	gw := mock.New()
	ctx := context.Background()
	if err := gw.Connect(ctx); err != nil {
		t.Fatal(err)
	}
	// Profit currency with no resolvable conversion path.
	spec := eurusdSpec()
	spec.ProfitCurrency = "CHF"
	gw.SetInstrument(spec)
	gw.SetRates("EURUSD", buySeries())
	gw.SetTick("EURUSD", 1.2600, 1.2602)

	tr := newTestTrader(gw, defaultCfg(), nil)
	if err := tr.RunCycle(ctx, StatusRunning); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}

	positions, _ := gw.Positions(ctx, "EURUSD")
	if len(positions) != 1 {
		t.Fatalf("expected a minimum-volume entry, got %d positions", len(positions))
	}
	if positions[0].Volume != 0.01 {
		t.Errorf("expected minimum volume 0.01, got %v", positions[0].Volume)
	}
}

func TestRunCycleDisconnectedGateway(t *testing.T) {
	gw := mock.New()
	tr := newTestTrader(gw, defaultCfg(), nil)
	if err := tr.RunCycle(context.Background(), StatusRunning); err == nil {
		t.Fatal("expected error from disconnected gateway")
	}
}

func TestInstrumentFallsBackToCatalog(t *testing.T) {
	gw := mock.New()
	ctx := context.Background()
	if err := gw.Connect(ctx); err != nil {
		t.Fatal(err)
	}
	// Gateway has no symbol directory entry; the catalog supplies it.
	tr := newTestTrader(gw, defaultCfg(), nil)
	spec, err := tr.instrument(ctx, "GBPUSD")
	if err != nil {
		t.Fatalf("expected catalog fallback, got %v", err)
	}
	if spec.TickValue != 10 {
		t.Errorf("expected catalog tick value 10, got %v", spec.TickValue)
	}
}

func TestValidateStops(t *testing.T) {
	spec := eurusdSpec()
	spec.MinStopDistance = 10

	cases := []struct {
		name    string
		side    core.Direction
		entry   float64
		sl, tp  float64
		wantErr bool
	}{
		{"buy ok", core.DirectionBuy, 1.1000, 1.0950, 1.1100, false},
		{"buy sl above entry", core.DirectionBuy, 1.1000, 1.1010, 1.1100, true},
		{"buy tp below entry", core.DirectionBuy, 1.1000, 1.0950, 1.0990, true},
		{"buy sl too close", core.DirectionBuy, 1.1000, 1.09995, 1.1100, true},
		{"sell ok", core.DirectionSell, 1.1000, 1.1050, 1.0900, false},
		{"sell sl below entry", core.DirectionSell, 1.1000, 1.0990, 1.0900, true},
		{"sell tp too close", core.DirectionSell, 1.1000, 1.1050, 1.09995, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateStops(spec, tc.side, tc.entry, tc.sl, tc.tp)
			if tc.wantErr && err == nil {
				t.Error("expected rejection")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected rejection: %v", err)
			}
		})
	}
}
