package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stockmarket",
	Short: "A stock market simulation game",
	Long: `Stockmarket is a persistent stock market simulation game.

It provides:
  - A simulated market of stocks with random-walk price movement
  - Buying and selling against a cash account with a full trade ledger
  - Earnings upgrades, a gambling mini-game and portfolio analytics
  - Automatic state persistence with portable export/import backups
  - An HTTP API for driving the game from any client
  - Optional live price enrichment from public quote APIs`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
