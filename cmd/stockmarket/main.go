package main

import (
	"os"

	"stockmarket/cmd/stockmarket/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
