package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stockmarket/persist"
	"stockmarket/state/data"
)

var importCmd = &cobra.Command{
	Use:   "import <backup.json>",
	Short: "Restore the saved game from a backup document",
	Long: `Parse a backup document and replace the saved state file with it.

Keys missing from the backup fall back to a fresh game's defaults. A backup
that cannot be parsed leaves the saved state untouched.

Example:
  stockmarket import backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var importConfigPath string

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&importConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(importConfigPath)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}

	s, err := persist.Import(raw, data.Initial(cfg.Game.StartingBalance))
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	if err := persist.NewStore(cfg.State.File).Save(s); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	fmt.Printf("Game state restored to %s\n", cfg.State.File)
	return nil
}
