package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marwyn/tradewind/internal/archive"
)

var reportsSymbol string

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List archived backtest reports",
	RunE:  runReportsList,
}

var reportsShowCmd = &cobra.Command{
	Use:   "show [key]",
	Short: "Show an archived backtest report",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportsShow,
}

func init() {
	reportsCmd.Flags().StringVar(&reportsSymbol, "symbol", "", "Only reports for this symbol")
	reportsCmd.AddCommand(reportsShowCmd)
	rootCmd.AddCommand(reportsCmd)
}

func runReportsList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := newStore(cfg)
	if err != nil {
		return err
	}
	keys, err := archive.NewReports(store).List(context.Background(), reportsSymbol)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		fmt.Println("No archived reports")
		return nil
	}
	for _, key := range keys {
		fmt.Println(key)
	}
	return nil
}

func runReportsShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := newStore(cfg)
	if err != nil {
		return err
	}
	result, err := archive.NewReports(store).Load(context.Background(), args[0])
	if err != nil {
		return err
	}
	printResult(result)
	return nil
}
