package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "collectorctl",
	Short: "Collector operations CLI",
	Long: `collectorctl is the command-line interface for the event collector.

Check service health, mint test tokens, and seed the ingestion
endpoint with synthetic analytics traffic.`,
	Version: "0.1.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("url", "http://localhost:8080", "collector base URL")
	rootCmd.PersistentFlags().StringP("token", "t", "", "bearer token for authenticated endpoints")
}
