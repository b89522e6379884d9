package broker

import (
	"fmt"
	"sync"
	"time"

	"github.com/marwyn/tradewind/internal/core"
)

// RiskLimits defines the account-level guard rails applied before any
// new position is opened.
type RiskLimits struct {
	// DailyLossLimitPct halts new trades for the rest of the day once
	// realized losses reach this percentage of the balance.
	DailyLossLimitPct float64
	// MaxTotalPositions caps concurrent open positions across symbols.
	MaxTotalPositions int
	// MaxPositionsPerSymbol caps concurrent positions on one symbol.
	MaxPositionsPerSymbol int
}

// DefaultRiskLimits returns the standard guard rails: 5% daily loss,
// five total positions, one per symbol.
func DefaultRiskLimits() RiskLimits {
	return RiskLimits{
		DailyLossLimitPct:     5.0,
		MaxTotalPositions:     5,
		MaxPositionsPerSymbol: 1,
	}
}

// RiskCheckResult is the outcome of a pre-trade check.
type RiskCheckResult struct {
	Allowed bool
	Reason  string
}

func allow() RiskCheckResult {
	return RiskCheckResult{Allowed: true}
}

func deny(format string, args ...any) RiskCheckResult {
	return RiskCheckResult{Allowed: false, Reason: fmt.Sprintf(format, args...)}
}

// RiskChecker tracks realized losses per calendar day and enforces
// position limits. Losses reset when the UTC date changes.
type RiskChecker struct {
	limits RiskLimits

	mu        sync.Mutex
	day       string
	dailyLoss float64
}

// NewRiskChecker creates a checker with the given limits.
func NewRiskChecker(limits RiskLimits) *RiskChecker {
	return &RiskChecker{limits: limits}
}

// RecordClose accumulates the realized loss of a closed trade into the
// day bucket of its close time. Winning trades are ignored.
func (r *RiskChecker) RecordClose(t core.Trade) {
	if t.Profit >= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roll(t.CloseTime)
	r.dailyLoss += -t.Profit
}

// DailyLoss returns the realized loss recorded for the given day.
func (r *RiskChecker) DailyLoss(now time.Time) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roll(now)
	return r.dailyLoss
}

// CheckDailyLoss reports whether trading may continue today.
func (r *RiskChecker) CheckDailyLoss(now time.Time, balance float64) RiskCheckResult {
	if balance <= 0 {
		return allow()
	}
	lossPct := r.DailyLoss(now) / balance * 100
	if lossPct >= r.limits.DailyLossLimitPct {
		return deny("daily loss limit reached: %.2f%% >= %.2f%%", lossPct, r.limits.DailyLossLimitPct)
	}
	return allow()
}

// CheckOrder validates position limits for a prospective order on the
// symbol given the currently open positions.
func (r *RiskChecker) CheckOrder(positions []Position, symbol string) RiskCheckResult {
	if len(positions) >= r.limits.MaxTotalPositions {
		return deny("max open positions reached: %d >= %d", len(positions), r.limits.MaxTotalPositions)
	}
	onSymbol := 0
	for _, p := range positions {
		if p.Symbol == symbol {
			onSymbol++
		}
	}
	if onSymbol >= r.limits.MaxPositionsPerSymbol {
		return deny("max positions for %s reached: %d >= %d", symbol, onSymbol, r.limits.MaxPositionsPerSymbol)
	}
	return allow()
}

func (r *RiskChecker) roll(now time.Time) {
	day := now.UTC().Format("2006-01-02")
	if day != r.day {
		r.day = day
		r.dailyLoss = 0
	}
}
