package secrets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNotFound is returned when a secret does not exist in the store.
var ErrNotFound = errors.New("secret not found")

// VaultStore stores secrets in a Vault KV v2 mount, namespaced by an
// environment scope and an application name: {mount}/{scope}/{application}/{id}.
type VaultStore struct {
	addr        string
	token       string
	mount       string
	scope       string
	application string
	httpClient  *http.Client
}

type VaultConfig struct {
	// Addr is the Vault server address (e.g. http://127.0.0.1:8200).
	Addr string `yaml:"addr"`

	// Token authenticates against Vault.
	Token string `yaml:"token"`

	// Mount is the KV v2 mount point. Empty means "secret".
	Mount string `yaml:"mount"`
}

func NewVaultStore(cfg VaultConfig, scope, application string) *VaultStore {
	mount := cfg.Mount
	if mount == "" {
		mount = "secret"
	}
	return &VaultStore{
		addr:        strings.TrimRight(cfg.Addr, "/"),
		token:       cfg.Token,
		mount:       mount,
		scope:       scope,
		application: application,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *VaultStore) dataURL(id string) string {
	return fmt.Sprintf("%s/v1/%s/data/%s/%s/%s", v.addr, v.mount, v.scope, v.application, id)
}

func (v *VaultStore) do(req *http.Request) (*http.Response, error) {
	if v.addr == "" || v.token == "" {
		return nil, errors.New("vault addr or token missing")
	}
	req.Header.Set("X-Vault-Token", v.token)
	return v.httpClient.Do(req)
}

func (v *VaultStore) GetSecret(ctx context.Context, id string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.dataURL(id), nil)
	if err != nil {
		return "", err
	}
	resp, err := v.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("reading secret %q: %w", id, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("vault read failed: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var envelope struct {
		Data struct {
			Data struct {
				Value string `json:"value"`
			} `json:"data"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("decoding vault response: %w", err)
	}
	return envelope.Data.Data.Value, nil
}

func (v *VaultStore) PutSecret(ctx context.Context, id, value string) error {
	payload, err := json.Marshal(map[string]any{
		"data": map[string]string{"value": value},
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.dataURL(id), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("vault write failed: status %d", resp.StatusCode)
	}
	return nil
}

func (v *VaultStore) DeleteSecret(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, v.dataURL(id), nil)
	if err != nil {
		return err
	}
	resp, err := v.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("vault delete failed: status %d", resp.StatusCode)
	}
	return nil
}
