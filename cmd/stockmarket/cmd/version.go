package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the stockmarket CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("stockmarket version %s\n", version)
		fmt.Println("A persistent stock market simulation game")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
