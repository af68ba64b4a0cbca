package main

import (
	"os"

	"github.com/pulsemetrics/collector/cmd/collectorctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
