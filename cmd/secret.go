package cmd

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/lakegate/internal/config"
	"github.com/darmiel/lakegate/internal/secrets"
)

// secretCmd groups direct access to the Vault-backed secret store.
// Mostly used to install the "public-key" and "api-access" secrets
// that the security layer reads at runtime.
var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Manage secrets in the configured secret store",
}

func secretStore() (*secrets.VaultStore, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.Security.Local {
		return nil, fmt.Errorf("local security has no external secret store")
	}
	return secrets.NewVaultStore(cfg.Vault, cfg.Security.Scope, cfg.Security.Application), nil
}

var secretGetCmd = &cobra.Command{
	Use:     "get <id>",
	Short:   "Read a secret",
	Example: `  lakegate secret get public-key`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := secretStore()
		if err != nil {
			return err
		}
		value, err := store.GetSecret(cmd.Context(), args[0])
		if err != nil {
			if errors.Is(err, secrets.ErrNotFound) {
				return fmt.Errorf("secret %q not found", args[0])
			}
			return err
		}
		fmt.Println(value)
		return nil
	},
}

var secretPutCmd = &cobra.Command{
	Use:     "put <id> <value>",
	Short:   "Write a secret",
	Example: `  lakegate secret put api-access "$API_KEY"`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := secretStore()
		if err != nil {
			return err
		}
		if err := store.PutSecret(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		log.Info().Str("id", args[0]).Msg("secret stored")
		return nil
	},
}

var secretDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a secret",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := secretStore()
		if err != nil {
			return err
		}
		if err := store.DeleteSecret(cmd.Context(), args[0]); err != nil {
			return err
		}
		log.Info().Str("id", args[0]).Msg("secret deleted")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(secretCmd)
	secretCmd.AddCommand(secretGetCmd)
	secretCmd.AddCommand(secretPutCmd)
	secretCmd.AddCommand(secretDeleteCmd)
}
