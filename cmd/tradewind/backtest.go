package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marwyn/tradewind/internal/archive"
	"github.com/marwyn/tradewind/internal/backtest"
	"github.com/marwyn/tradewind/internal/config"
	"github.com/marwyn/tradewind/internal/core"
	"github.com/marwyn/tradewind/internal/logger"
	"github.com/marwyn/tradewind/internal/provider"
	"github.com/marwyn/tradewind/internal/risk"
	"github.com/marwyn/tradewind/internal/strategy/all"
)

var (
	backtestSymbol  string
	backtestFile    string
	backtestBalance float64
	backtestRisk    float64
	backtestMaxVol  float64
	backtestWarmup  int
	backtestJSON    bool
	backtestSave    bool
)

var backtestCmd = &cobra.Command{
	Use:   "backtest [strategy]",
	Short: "Run a backtest on a strategy",
	Long:  "Replay a strategy against historical data and show performance statistics",
	Args:  cobra.ExactArgs(1),
	RunE:  runBacktest,
}

func init() {
	backtestCmd.Flags().StringVar(&backtestSymbol, "symbol", "", "Symbol to backtest (required)")
	backtestCmd.Flags().StringVar(&backtestFile, "file", "", "CSV file with bars (default: <data dir>/<SYMBOL>.csv)")
	backtestCmd.Flags().Float64Var(&backtestBalance, "balance", 10000, "Initial balance")
	backtestCmd.Flags().Float64Var(&backtestRisk, "risk", 1.0, "Risk percent per trade")
	backtestCmd.Flags().Float64Var(&backtestMaxVol, "max-volume", 0.1, "Maximum volume per trade")
	backtestCmd.Flags().IntVar(&backtestWarmup, "warmup", 50, "Warm-up bars before the first evaluation")
	backtestCmd.Flags().BoolVar(&backtestJSON, "json", false, "Print the full result as JSON")
	backtestCmd.Flags().BoolVar(&backtestSave, "save", false, "Archive the result per the config")

	backtestCmd.MarkFlagRequired("symbol")

	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	strategyName := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.Must(debug || cfg.Log.Development)
	defer log.Sync()

	bars, err := loadBars(cfg, backtestFile, backtestSymbol)
	if err != nil {
		return err
	}

	sim := backtest.NewSimulator(all.NewEngine(log), log)
	result, err := sim.Run(context.Background(), bars, backtestSymbol, strategyName, backtest.Config{
		InitialBalance: backtestBalance,
		RiskPercent:    backtestRisk,
		MaxVolume:      backtestMaxVol,
		WarmupBars:     backtestWarmup,
	})
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	if backtestJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		printResult(result)
		printKellySuggestion(result)
	}

	if backtestSave {
		key, err := saveResult(cfg, result)
		if err != nil {
			return fmt.Errorf("archiving result: %w", err)
		}
		fmt.Printf("\nSaved: %s\n", key)
	}
	return nil
}

func loadBars(cfg *config.Config, file, symbol string) (core.PriceSeries, error) {
	if file != "" {
		return provider.LoadSeries(file)
	}
	return provider.NewDir(cfg.Data.Dir).Bars(context.Background(), symbol, 0)
}

func newStore(cfg *config.Config) (archive.Store, error) {
	switch cfg.Archive.Type {
	case "s3":
		return archive.NewS3(archive.S3Config{
			Bucket:    cfg.Archive.S3.Bucket,
			Endpoint:  cfg.Archive.S3.Endpoint,
			Region:    cfg.Archive.S3.Region,
			AccessKey: cfg.Archive.S3.AccessKey,
			SecretKey: cfg.Archive.S3.SecretKey,
			Prefix:    cfg.Archive.S3.Prefix,
		})
	default:
		return archive.NewLocalFS(cfg.Archive.Path)
	}
}

func saveResult(cfg *config.Config, result *backtest.Result) (string, error) {
	store, err := newStore(cfg)
	if err != nil {
		return "", err
	}
	return archive.NewReports(store).Save(context.Background(), result)
}

func printResult(r *backtest.Result) {
	fmt.Println("=== Tradewind Backtest ===")
	fmt.Printf("Symbol:          %s\n", r.Symbol)
	fmt.Printf("Strategy:        %s\n", r.Strategy)
	fmt.Println()
	fmt.Printf("Initial balance: %.2f\n", r.InitialBalance)
	fmt.Printf("Final balance:   %.2f\n", r.FinalBalance)
	fmt.Printf("Total return:    %.2f%%\n", r.TotalReturn)
	fmt.Printf("Max drawdown:    %.2f%%\n", r.MaxDrawdown)
	fmt.Println()
	fmt.Printf("Trades:          %d (%d won, %d lost)\n", r.TotalTrades, r.WinningTrades, r.LosingTrades)
	fmt.Printf("Win rate:        %.2f%%\n", r.WinRate)
	fmt.Printf("Profit factor:   %s\n", formatFactor(r.ProfitFactor))
	fmt.Printf("Sharpe ratio:    %.2f\n", r.SharpeRatio)
	fmt.Printf("Avg win / loss:  %.2f / %.2f\n", r.AvgWin, r.AvgLoss)
}

// printKellySuggestion sizes the next trade from the realized win rate
// and average win/loss, when the run produced both.
func printKellySuggestion(r *backtest.Result) {
	if r.WinningTrades == 0 || r.LosingTrades == 0 {
		return
	}
	spec, err := provider.NewCatalog().Instrument(r.Symbol)
	if err != nil {
		return
	}
	sizer := risk.NewSizer(nil)
	volume, err := sizer.SizeByKelly(spec, r.WinRate/100, r.AvgWin, r.AvgLoss, r.FinalBalance)
	if err != nil {
		return
	}
	fmt.Printf("Kelly volume:    %.2f lots\n", volume)
}

func formatFactor(f backtest.JSONFloat) string {
	data, err := f.MarshalJSON()
	if err != nil {
		return "n/a"
	}
	return string(data)
}
