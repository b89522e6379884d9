package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marwyn/tradewind/internal/strategy/all"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the available strategies",
	Run: func(cmd *cobra.Command, args []string) {
		engine := all.NewEngine()
		for _, name := range engine.Names() {
			s, _ := engine.Get(name)
			fmt.Printf("%-18s %s\n", name, s.Description())
		}
	},
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}
