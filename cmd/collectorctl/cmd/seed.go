package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pulsemetrics/collector/cmd/collectorctl/internal/seeder"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Send synthetic analytics traffic",
	Long: `Generate fake analytics events and post them to the collector.

Traffic shape comes from a YAML profile file with weighted pages and
event types; without one, a built-in profile is used.`,
	Example: `  collectorctl seed --token $TOKEN --count 1000
  collectorctl seed --token $TOKEN --count 50000 --interval 1ms
  collectorctl seed --token $TOKEN --profile ./traffic.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		baseURL, _ := cmd.Flags().GetString("url")
		token, _ := cmd.Flags().GetString("token")
		count, _ := cmd.Flags().GetInt("count")
		interval, _ := cmd.Flags().GetDuration("interval")
		profilePath, _ := cmd.Flags().GetString("profile")
		randSeed, _ := cmd.Flags().GetInt64("seed")

		if token == "" {
			return fmt.Errorf("--token is required (create one with 'collectorctl token')")
		}
		if count <= 0 {
			return fmt.Errorf("--count must be positive")
		}

		profile := seeder.DefaultProfile()
		if profilePath != "" {
			var err error
			profile, err = seeder.LoadProfile(profilePath)
			if err != nil {
				return err
			}
		}

		if randSeed == 0 {
			randSeed = time.Now().UnixNano()
		}

		gen := seeder.NewGenerator(profile, randSeed)
		runner := seeder.NewRunner(baseURL, token, count, interval, gen)
		return runner.Run()
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().IntP("count", "n", 100, "number of events to send")
	seedCmd.Flags().Duration("interval", 0, "delay between events (0 sends as fast as possible)")
	seedCmd.Flags().String("profile", "", "YAML traffic profile file")
	seedCmd.Flags().Int64("seed", 0, "random seed (0 uses current time)")
}
