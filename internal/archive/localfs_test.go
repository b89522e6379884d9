package archive

import (
	"context"
	"math"
	"testing"

	"github.com/marwyn/tradewind/internal/backtest"
)

func TestLocalFSRoundTrip(t *testing.T) {
	store, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalFS: %v", err)
	}
	ctx := context.Background()

	if err := store.Put(ctx, "backtests/EURUSD/a.json", []byte("{}")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	data, err := store.Fetch(ctx, "backtests/EURUSD/a.json")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("unexpected content %q", data)
	}

	ok, err := store.Exists(ctx, "backtests/EURUSD/a.json")
	if err != nil || !ok {
		t.Errorf("Exists = %v, %v", ok, err)
	}
	ok, err = store.Exists(ctx, "backtests/EURUSD/missing.json")
	if err != nil || ok {
		t.Errorf("Exists on missing key = %v, %v", ok, err)
	}

	if err := store.Remove(ctx, "backtests/EURUSD/a.json"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if ok, _ := store.Exists(ctx, "backtests/EURUSD/a.json"); ok {
		t.Error("key must be gone after Remove")
	}
}

func TestLocalFSKeys(t *testing.T) {
	store, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalFS: %v", err)
	}
	ctx := context.Background()

	for _, key := range []string{
		"backtests/EURUSD/sma_crossover/one.json",
		"backtests/EURUSD/rsi_scalping/two.json",
		"backtests/USDJPY/sma_crossover/three.json",
	} {
		if err := store.Put(ctx, key, []byte("{}")); err != nil {
			t.Fatalf("Put %s: %v", key, err)
		}
	}

	keys, err := store.Keys(ctx, "backtests/EURUSD")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("expected 2 keys under EURUSD, got %v", keys)
	}

	keys, err = store.Keys(ctx, "backtests/GBPUSD")
	if err != nil {
		t.Fatalf("Keys on missing prefix: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("expected no keys, got %v", keys)
	}
}

func TestReportsRoundTrip(t *testing.T) {
	store, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalFS: %v", err)
	}
	reports := NewReports(store)
	ctx := context.Background()

	result := &backtest.Result{
		Symbol:         "EURUSD",
		Strategy:       "sma_crossover",
		InitialBalance: 10000,
		FinalBalance:   10250,
		TotalTrades:    3,
		ProfitFactor:   backtest.JSONFloat(math.Inf(1)),
	}

	key, err := reports.Save(ctx, result)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := reports.Load(ctx, key)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.FinalBalance != 10250 || loaded.TotalTrades != 3 {
		t.Errorf("unexpected result after round trip: %+v", loaded)
	}
	if !math.IsInf(float64(loaded.ProfitFactor), 1) {
		t.Errorf("profit factor must survive as +Inf, got %v", loaded.ProfitFactor)
	}

	keys, err := reports.List(ctx, "EURUSD")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 1 || keys[0] != key {
		t.Errorf("expected [%s], got %v", key, keys)
	}
}
