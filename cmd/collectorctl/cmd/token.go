package cmd

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/pulsemetrics/collector/internal/middleware"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a signed bearer token",
	Long:  "Create an HS256 token the collector will accept, for local testing and seeding",
	Example: `  collectorctl token --secret dev-secret --user alice
  collectorctl token --secret dev-secret --user load-test --ttl 1h`,
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, _ := cmd.Flags().GetString("secret")
		userID, _ := cmd.Flags().GetString("user")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		if secret == "" {
			return fmt.Errorf("--secret is required")
		}

		now := time.Now()
		claims := &middleware.Claims{
			UserID: userID,
			RegisteredClaims: jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			},
		}

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte(secret))
		if err != nil {
			return fmt.Errorf("failed to sign token: %w", err)
		}

		fmt.Println(signed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().String("secret", "", "HMAC signing secret (must match the collector)")
	tokenCmd.Flags().String("user", "collectorctl", "user ID claim")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime")
}
