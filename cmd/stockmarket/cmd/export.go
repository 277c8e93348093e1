package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"stockmarket/persist"
	"stockmarket/state/data"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the saved game as a backup document",
	Long: `Read the saved state file and write a portable backup document.

The document carries the full game state plus an export date and format
version, and can be restored later with the import command or the API.

Example:
  stockmarket export --config stockmarket.yaml --out backup.json`,
	RunE: runExport,
}

var (
	exportConfigPath string
	exportOutPath    string
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
	exportCmd.Flags().StringVarP(&exportOutPath, "out", "o", "", "output file (default stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(exportConfigPath)
	if err != nil {
		return err
	}

	stateStore := persist.NewStore(cfg.State.File)
	s, found, err := stateStore.Load(data.Initial(cfg.Game.StartingBalance))
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if !found {
		return fmt.Errorf("no saved game at %s", cfg.State.File)
	}

	doc, err := persist.Export(s, time.Now())
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if exportOutPath == "" {
		fmt.Println(string(doc))
		return nil
	}
	if err := os.WriteFile(exportOutPath, doc, 0o644); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	fmt.Printf("Backup written to %s\n", exportOutPath)
	return nil
}
