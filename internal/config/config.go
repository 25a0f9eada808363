package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/darmiel/lakegate/internal/secrets"
)

type Config struct {
	Server   ServerConfig        `yaml:"server"`
	Security SecurityConfig      `yaml:"security"`
	Vault    secrets.VaultConfig `yaml:"vault"`
	Audit    AuditConfig         `yaml:"audit"`
}

type ServerConfig struct {
	// Addr to listen on. Empty means ":8080".
	Addr string `yaml:"addr"`

	// IssueRoles are the roles allowed to mint tokens through the
	// gateway. Empty means "admin" only.
	IssueRoles []string `yaml:"issue_roles"`
}

// SecurityConfig selects and configures the security implementation.
type SecurityConfig struct {
	// APIHost of the identity provider. Empty falls back to the
	// SECURITY_API_HOST environment variable, then the SaaS default.
	APIHost string `yaml:"api_host"`

	// Scope is the environment namespace for secrets (e.g. "dev").
	Scope string `yaml:"scope"`

	// Application is the application namespace for secrets.
	Application string `yaml:"application"`

	// Local switches to the offline implementation: self-signed key
	// pair, no identity provider, no Vault. For development only.
	Local bool `yaml:"local"`
}

// AuditConfig holds configuration for auditing.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Type    string `yaml:"type"` // e.g., "file", "memory"
}

// Load reads and parses the configuration file at the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if len(c.Server.IssueRoles) == 0 {
		c.Server.IssueRoles = []string{"admin"}
	}
	if c.Security.Application == "" {
		c.Security.Application = "frontegg"
	}
	if !c.Security.Local {
		if c.Security.Scope == "" {
			return fmt.Errorf("security.scope is required")
		}
		if c.Vault.Addr == "" {
			return fmt.Errorf("vault.addr is required")
		}
		if c.Vault.Token == "" {
			return fmt.Errorf("vault.token is required")
		}
	}
	if c.Audit.Enabled {
		switch c.Audit.Type {
		case "", "memory":
		case "file":
			if c.Audit.Path == "" {
				return fmt.Errorf("audit.path is required for file auditing")
			}
		default:
			return fmt.Errorf("unknown audit type %q", c.Audit.Type)
		}
	}
	return nil
}
