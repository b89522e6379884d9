package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marwyn/tradewind/internal/core"
	"github.com/marwyn/tradewind/internal/logger"
	"github.com/marwyn/tradewind/internal/provider"
	"github.com/marwyn/tradewind/internal/strategy/all"
)

var (
	signalSymbol string
	signalFile   string
	signalBars   int
)

var signalCmd = &cobra.Command{
	Use:   "signal [strategy]",
	Short: "Evaluate a strategy against historical data",
	Long:  "Load historical bars and print the signal the strategy produces on the latest bar",
	Args:  cobra.ExactArgs(1),
	RunE:  runSignal,
}

func init() {
	signalCmd.Flags().StringVar(&signalSymbol, "symbol", "", "Symbol to evaluate (required)")
	signalCmd.Flags().StringVar(&signalFile, "file", "", "CSV file with bars (default: <data dir>/<SYMBOL>.csv)")
	signalCmd.Flags().IntVar(&signalBars, "bars", 0, "Evaluate only the most recent N bars")

	signalCmd.MarkFlagRequired("symbol")

	rootCmd.AddCommand(signalCmd)
}

func runSignal(cmd *cobra.Command, args []string) error {
	strategyName := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.Must(debug || cfg.Log.Development)
	defer log.Sync()

	var series core.PriceSeries
	if signalFile != "" {
		series, err = provider.LoadSeries(signalFile)
	} else {
		series, err = provider.NewDir(cfg.Data.Dir).Bars(context.Background(), signalSymbol, signalBars)
	}
	if err != nil {
		return fmt.Errorf("loading bars: %w", err)
	}
	if signalBars > 0 && len(series) > signalBars {
		series = series[len(series)-signalBars:]
	}

	engine := all.NewEngine(log)
	sig, err := engine.Evaluate(strategyName, series)
	if err != nil {
		return fmt.Errorf("evaluating %s: %w", strategyName, err)
	}

	last := series.Last()
	fmt.Printf("Symbol:   %s\n", signalSymbol)
	fmt.Printf("Strategy: %s\n", strategyName)
	fmt.Printf("Bars:     %d (last close %.5f at %s)\n", len(series), last.Close, last.Time.Format("2006-01-02 15:04"))
	fmt.Printf("Signal:   %s\n", sig.Action)
	if sig.Reason != "" {
		fmt.Printf("Reason:   %s\n", sig.Reason)
	}
	return nil
}
