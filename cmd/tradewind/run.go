package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marwyn/tradewind/internal/broker"
	"github.com/marwyn/tradewind/internal/broker/mock"
	"github.com/marwyn/tradewind/internal/config"
	"github.com/marwyn/tradewind/internal/convert"
	"github.com/marwyn/tradewind/internal/logger"
	"github.com/marwyn/tradewind/internal/metrics"
	"github.com/marwyn/tradewind/internal/notifier"
	lognotifier "github.com/marwyn/tradewind/internal/notifier/log"
	"github.com/marwyn/tradewind/internal/provider"
	"github.com/marwyn/tradewind/internal/risk"
	"github.com/marwyn/tradewind/internal/strategy/all"
	"github.com/marwyn/tradewind/internal/trader"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the live trading loop",
	RunE:  runLive,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.Must(debug || cfg.Log.Development)
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gateway, err := newGateway(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer gateway.Disconnect()

	session, err := trader.NewSession(cfg.Session.Enabled, cfg.Session.Start, cfg.Session.End)
	if err != nil {
		return err
	}

	notifiers := notifier.NewRegistry()
	if err := notifiers.Register(lognotifier.New(log)); err != nil {
		return err
	}

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
		go serveMetrics(cfg, reg, log)
	}

	quotes, ok := gateway.(convert.QuoteSource)
	if !ok {
		return fmt.Errorf("gateway %s cannot serve conversion quotes", gateway.Name())
	}

	t := trader.New(trader.Deps{
		Gateway: gateway,
		Engine:  all.NewEngine(log),
		Sizer:   risk.NewSizer(convert.NewResolver(quotes, log), log),
		Stops:   risk.NewStopEngine(log),
		Checker: broker.NewRiskChecker(broker.RiskLimits{
			DailyLossLimitPct:     cfg.Risk.DailyLossLimitPct,
			MaxTotalPositions:     cfg.Risk.MaxTotalPositions,
			MaxPositionsPerSymbol: cfg.Risk.MaxPositionsPerSymbol,
		}),
		Notifiers: notifiers,
		Metrics:   reg,
		Reference: provider.NewCatalog(),
	}, trader.Config{
		Symbols:          cfg.Trading.Symbols,
		Strategy:         cfg.Trading.Strategy,
		Bars:             cfg.Trading.Bars,
		RiskPercent:      cfg.Risk.RiskPercent,
		MaxVolume:        cfg.Risk.MaxVolume,
		TrailingStopPips: cfg.Risk.TrailingStopPips,
		BreakevenPips:    cfg.Risk.BreakevenPips,
		Session:          session,
	}, log)

	log.Info("starting trading loop",
		zap.Strings("symbols", cfg.Trading.Symbols),
		zap.String("strategy", cfg.Trading.Strategy),
		zap.Duration("interval", cfg.Trading.Interval),
		zap.String("broker", gateway.Name()),
	)

	if err := t.RunCycle(ctx, trader.StatusRunning); err != nil {
		log.Error("cycle failed", zap.Error(err))
	}

	ticker := time.NewTicker(cfg.Trading.Interval)
	defer ticker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			if err := t.RunCycle(ctx, trader.StatusRunning); err != nil {
				log.Error("cycle failed", zap.Error(err))
			}
		case <-quit:
			log.Info("shutting down trading loop")
			cancel()
			return nil
		}
	}
}

// newGateway builds and connects the configured broker gateway. The
// mock gateway is seeded with historical bars from the data directory
// so a dry run produces signals.
func newGateway(ctx context.Context, cfg *config.Config, log *zap.Logger) (broker.Gateway, error) {
	if cfg.Broker.Provider != "mock" {
		return nil, fmt.Errorf("unknown broker provider %q", cfg.Broker.Provider)
	}

	gw := mock.New()
	if err := gw.Connect(ctx); err != nil {
		return nil, err
	}

	catalog := provider.NewCatalog()
	dir := provider.NewDir(cfg.Data.Dir)
	for _, symbol := range cfg.Trading.Symbols {
		series, err := dir.Bars(ctx, symbol, 0)
		if err != nil {
			log.Warn("no historical data for symbol",
				zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		gw.SetRates(symbol, series)

		spec, err := catalog.Instrument(symbol)
		if err != nil {
			log.Warn("no instrument metadata for symbol",
				zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		gw.SetInstrument(spec)

		// Synthesize a tick around the last close with a one-point spread.
		last := series.Last().Close
		gw.SetTick(symbol, last, last+spec.PointSize)
	}
	return gw, nil
}

func serveMetrics(cfg *config.Config, reg *metrics.Registry, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, promhttp.HandlerFor(reg.Registry, promhttp.HandlerOpts{}))
	log.Info("metrics server listening",
		zap.String("addr", cfg.Metrics.Addr),
		zap.String("path", cfg.Metrics.Path))
	if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
		log.Error("metrics server stopped", zap.Error(err))
	}
}
