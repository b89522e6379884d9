package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/marwyn/tradewind/internal/backtest"
)

// Reports archives backtest results as JSON blobs keyed by
// backtests/<symbol>/<strategy>/<timestamp>.json.
type Reports struct {
	store Store
}

// NewReports wraps a store with the report layout.
func NewReports(store Store) *Reports {
	return &Reports{store: store}
}

func reportKey(symbol, strategy string, at time.Time) string {
	return fmt.Sprintf("backtests/%s/%s/%s.json",
		strings.ToUpper(symbol), strategy, at.UTC().Format("20060102T150405Z"))
}

// Save archives a result and returns the key it was stored under.
func (r *Reports) Save(ctx context.Context, result *backtest.Result) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}
	key := reportKey(result.Symbol, result.Strategy, time.Now())
	if err := r.store.Put(ctx, key, data); err != nil {
		return "", fmt.Errorf("archiving result: %w", err)
	}
	return key, nil
}

// Load retrieves a previously archived result by key.
func (r *Reports) Load(ctx context.Context, key string) (*backtest.Result, error) {
	data, err := r.store.Fetch(ctx, key)
	if err != nil {
		return nil, err
	}
	var result backtest.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decoding result %s: %w", key, err)
	}
	return &result, nil
}

// List returns the archived report keys for a symbol, or every report
// when symbol is empty.
func (r *Reports) List(ctx context.Context, symbol string) ([]string, error) {
	prefix := "backtests"
	if symbol != "" {
		prefix = "backtests/" + strings.ToUpper(symbol)
	}
	return r.store.Keys(ctx, prefix)
}
