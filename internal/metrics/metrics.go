// Package metrics exposes Prometheus instrumentation for the trading
// engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	signalsGenerated *prometheus.CounterVec
	tradesOpened     *prometheus.CounterVec
	tradesClosed     *prometheus.CounterVec
	tradeProfit      prometheus.Histogram
	cycleDuration    prometheus.Histogram
	cyclesTotal      *prometheus.CounterVec
	openPositions    prometheus.Gauge
	accountBalance   prometheus.Gauge
}

// NewRegistry creates a registry with every metric registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		signalsGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradewind_signals_generated_total",
				Help: "Total number of signals generated",
			},
			[]string{"strategy", "action"},
		),
		tradesOpened: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradewind_trades_opened_total",
				Help: "Total number of trades opened",
			},
			[]string{"symbol", "side"},
		),
		tradesClosed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradewind_trades_closed_total",
				Help: "Total number of trades closed",
			},
			[]string{"symbol", "reason"},
		),
		tradeProfit: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tradewind_trade_profit",
				Help:    "Realized profit per closed trade in account currency",
				Buckets: []float64{-500, -100, -50, -10, 0, 10, 50, 100, 500},
			},
		),
		cycleDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tradewind_cycle_duration_seconds",
				Help:    "Trading cycle duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		cyclesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradewind_cycles_total",
				Help: "Total number of trading cycles by outcome",
			},
			[]string{"status"},
		),
		openPositions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tradewind_open_positions",
				Help: "Number of currently open positions",
			},
		),
		accountBalance: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tradewind_account_balance",
				Help: "Current account balance",
			},
		),
	}

	reg.MustRegister(r.signalsGenerated)
	reg.MustRegister(r.tradesOpened)
	reg.MustRegister(r.tradesClosed)
	reg.MustRegister(r.tradeProfit)
	reg.MustRegister(r.cycleDuration)
	reg.MustRegister(r.cyclesTotal)
	reg.MustRegister(r.openPositions)
	reg.MustRegister(r.accountBalance)

	return r
}

// RecordSignal counts a generated signal.
func (r *Registry) RecordSignal(strategy, action string) {
	r.signalsGenerated.WithLabelValues(strategy, action).Inc()
}

// RecordTradeOpened counts an opened trade.
func (r *Registry) RecordTradeOpened(symbol, side string) {
	r.tradesOpened.WithLabelValues(symbol, side).Inc()
}

// RecordTradeClosed counts a closed trade and observes its profit.
func (r *Registry) RecordTradeClosed(symbol, reason string, profit float64) {
	r.tradesClosed.WithLabelValues(symbol, reason).Inc()
	r.tradeProfit.Observe(profit)
}

// RecordCycle observes one trading cycle.
func (r *Registry) RecordCycle(status string, duration time.Duration) {
	r.cyclesTotal.WithLabelValues(status).Inc()
	r.cycleDuration.Observe(duration.Seconds())
}

// SetOpenPositions updates the open position gauge.
func (r *Registry) SetOpenPositions(n int) {
	r.openPositions.Set(float64(n))
}

// SetAccountBalance updates the balance gauge.
func (r *Registry) SetAccountBalance(balance float64) {
	r.accountBalance.Set(balance)
}
