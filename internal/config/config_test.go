package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lakegate.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
security:
  local: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if diff := cmp.Diff([]string{"admin"}, cfg.Server.IssueRoles); diff != "" {
		t.Errorf("IssueRoles mismatch (-want +got):\n%s", diff)
	}
	if cfg.Security.Application != "frontegg" {
		t.Errorf("Security.Application = %q", cfg.Security.Application)
	}
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
  issue_roles: [admin, service]
security:
  api_host: https://idp.example.com
  scope: prod
  application: frontegg
vault:
  addr: http://127.0.0.1:8200
  token: root
  mount: kv
audit:
  enabled: true
  type: file
  path: /tmp/audit.log
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Security.APIHost != "https://idp.example.com" {
		t.Errorf("APIHost = %q", cfg.Security.APIHost)
	}
	if diff := cmp.Diff([]string{"admin", "service"}, cfg.Server.IssueRoles); diff != "" {
		t.Errorf("IssueRoles mismatch (-want +got):\n%s", diff)
	}
	if cfg.Vault.Mount != "kv" {
		t.Errorf("Vault.Mount = %q", cfg.Vault.Mount)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing scope", `
vault:
  addr: http://127.0.0.1:8200
  token: root
`},
		{"missing vault addr", `
security:
  scope: dev
vault:
  token: root
`},
		{"missing vault token", `
security:
  scope: dev
vault:
  addr: http://127.0.0.1:8200
`},
		{"file audit without path", `
security:
  local: true
audit:
  enabled: true
  type: file
`},
		{"unknown audit type", `
security:
  local: true
audit:
  enabled: true
  type: syslog
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("Load() succeeded, want validation error")
			}
		})
	}
}
