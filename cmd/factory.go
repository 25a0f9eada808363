package cmd

import (
	"fmt"

	"github.com/darmiel/lakegate/internal/audit"
	"github.com/darmiel/lakegate/internal/config"
	"github.com/darmiel/lakegate/internal/core"
	"github.com/darmiel/lakegate/internal/secrets"
	"github.com/darmiel/lakegate/internal/security"
)

// buildSecurity assembles the security implementation from the server
// configuration. Local mode runs entirely offline with a self-signed
// key pair; otherwise secrets come from Vault and tokens from the
// identity provider.
func buildSecurity(cfg *config.Config) (core.Security, error) {
	if cfg.Security.Local {
		local, err := security.NewLocal()
		if err != nil {
			return nil, fmt.Errorf("building local security: %w", err)
		}
		// grant the issuance roles something usable out of the box
		for _, role := range cfg.Server.IssueRoles {
			local.RoleToPermissions[role] = []string{"*"}
		}
		return local, nil
	}

	store := secrets.NewVaultStore(cfg.Vault, cfg.Security.Scope, cfg.Security.Application)
	return security.New(security.Options{
		APIHost:     cfg.Security.APIHost,
		SecretStore: store,
	}), nil
}

func buildAuditor(cfg *config.Config) (core.Auditor, error) {
	if !cfg.Audit.Enabled {
		return audit.NewNoopAuditor(), nil
	}
	switch cfg.Audit.Type {
	case "file":
		return audit.NewFileAuditor(cfg.Audit.Path)
	case "", "memory":
		return audit.NewInMemoryAuditor(), nil
	default:
		return nil, fmt.Errorf("unknown audit type %q", cfg.Audit.Type)
	}
}
