package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/lakegate/internal/config"
	"github.com/darmiel/lakegate/internal/core"
)

var (
	tokenIssueSpaceID   string
	tokenIssueRoles     []string
	tokenIssueGenerator string
	tokenIssueExpiresIn int
)

// tokenIssueCmd mints a token directly against the identity provider,
// bypassing the HTTP gateway. Useful for bootstrapping.
var tokenIssueCmd = &cobra.Command{
	Use:     "issue",
	Short:   "Mint a tenant-scoped access token",
	Example: `  lakegate token issue --space my-space --role admin --generator bootstrap`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		sec, err := buildSecurity(cfg)
		if err != nil {
			return err
		}

		log.Debug().Strs("roles", tokenIssueRoles).Msg("requesting token")
		token, err := sec.GenerateToken(cmd.Context(), core.TokenRequest{
			SpaceID:          tokenIssueSpaceID,
			RoleKeys:         tokenIssueRoles,
			Generator:        tokenIssueGenerator,
			ExpiresInMinutes: tokenIssueExpiresIn,
		})
		if err != nil {
			return fmt.Errorf("issuing token: %w", err)
		}

		// token goes to stdout so it can be piped, logs go to stderr
		fmt.Println(token)
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenIssueCmd)

	tokenIssueCmd.Flags().StringVar(&tokenIssueSpaceID, "space", "", "Tenant space the token is scoped to")
	tokenIssueCmd.Flags().StringSliceVar(&tokenIssueRoles, "role", nil, "Role key to grant (repeatable)")
	tokenIssueCmd.Flags().StringVar(&tokenIssueGenerator, "generator", "lakegate-cli", "Attribution for the issued token")
	tokenIssueCmd.Flags().IntVar(&tokenIssueExpiresIn, "expires-in", 0, "Token lifetime in minutes (0 = default)")

	_ = tokenIssueCmd.MarkFlagRequired("space")
	_ = tokenIssueCmd.MarkFlagRequired("role")
}
