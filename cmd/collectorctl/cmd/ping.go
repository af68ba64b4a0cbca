package cmd

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check collector liveness",
	Long:  "Send a ping request to the collector and print the response",
	RunE: func(cmd *cobra.Command, args []string) error {
		baseURL, _ := cmd.Flags().GetString("url")

		client := &http.Client{Timeout: 5 * time.Second}
		start := time.Now()
		resp, err := client.Get(baseURL + "/ping")
		if err != nil {
			return fmt.Errorf("collector unreachable: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
		}

		fmt.Printf("%s (%.1fms)\n", string(body), float64(time.Since(start).Microseconds())/1000)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
