package security

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/lakegate/internal/core"
	"github.com/darmiel/lakegate/internal/rest"
)

const (
	// apiAccessSecretID holds the vendor credential JSON used to
	// authenticate against the identity provider.
	apiAccessSecretID = "api-access"

	vendorAuthEndpoint  = "/auth/vendor"
	rolesEndpoint       = "/identity/resources/roles/v1"
	accessTokenEndpoint = "/identity/resources/tenants/access-tokens/v1"

	// tenantHeader scopes access-token creation to a single tenant.
	tenantHeader = "frontegg-tenant-id"
)

// providerIssuer mints tenant-scoped tokens through the identity
// provider's HTTP API. The role-key to role-id mapping is fetched once and
// cached for the lifetime of the instance. Upstream failures are logged in
// full and surfaced as opaque 500s; nothing from the upstream response
// body reaches the caller.
type providerIssuer struct {
	apiHost    string
	secrets    core.SecretStore
	httpClient *http.Client

	mu    sync.Mutex
	roles map[string]string
}

func newProviderIssuer(apiHost string, store core.SecretStore, client *http.Client) *providerIssuer {
	return &providerIssuer{
		apiHost:    strings.TrimRight(apiHost, "/"),
		secrets:    store,
		httpClient: client,
	}
}

type vendorAuthResponse struct {
	Token string `json:"token"`
}

type providerRole struct {
	ID  any    `json:"id"`
	Key string `json:"key"`
}

type createAccessTokenRequest struct {
	ExpiresInMinutes int      `json:"expiresInMinutes"`
	RoleIDs          []string `json:"roleIds"`
	Description      string   `json:"description"`
}

type createAccessTokenResponse struct {
	Secret string `json:"secret"`
}

// Issue exchanges the vendor credential for a vendor token, resolves the
// requested role keys to provider role ids, and requests a tenant-scoped
// access token.
func (p *providerIssuer) Issue(ctx context.Context, req core.TokenRequest) (string, error) {
	if len(req.RoleKeys) == 0 {
		return "", rest.New(http.StatusBadRequest, "role_keys must not be empty")
	}

	authToken, err := p.vendorAuth(ctx)
	if err != nil {
		return "", err
	}

	roles, err := p.roleMap(ctx, authToken)
	if err != nil {
		return "", err
	}
	roleIDs := make([]string, 0, len(req.RoleKeys))
	for _, key := range req.RoleKeys {
		id, ok := roles[key]
		if !ok {
			return "", rest.Newf(http.StatusBadRequest, "unknown role key %q", key)
		}
		roleIDs = append(roleIDs, id)
	}

	expires := req.ExpiresInMinutes
	if expires <= 0 {
		expires = core.DefaultExpiresInMinutes
	}
	return p.createAccessToken(ctx, authToken, req.SpaceID, req.Generator, roleIDs, expires)
}

// vendorAuth trades the stored vendor credential for a short-lived vendor
// access token.
func (p *providerIssuer) vendorAuth(ctx context.Context) (string, error) {
	credential, err := p.secrets.GetSecret(ctx, apiAccessSecretID)
	if err != nil {
		log.Error().Err(err).Msg("failed to read vendor credential")
		return "", rest.New(http.StatusInternalServerError, "failed to get auth token, check logs")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.apiHost+vendorAuthEndpoint, strings.NewReader(credential))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("failed to get auth token")
		return "", rest.New(http.StatusInternalServerError, "failed to get auth token, check logs")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logErrorResponse("failed to get auth token", resp)
		return "", rest.New(http.StatusInternalServerError, "failed to get auth token, check logs")
	}

	var body vendorAuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Error().Err(err).Msg("failed to decode auth token response")
		return "", rest.New(http.StatusInternalServerError, "failed to get auth token, check logs")
	}
	return body.Token, nil
}

// roleMap returns the cached role-key to role-id mapping, fetching it from
// the provider on first use. Concurrent first calls may both fetch; the
// fetch is idempotent and last write wins.
func (p *providerIssuer) roleMap(ctx context.Context, authToken string) (map[string]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.roles != nil {
		return p.roles, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiHost+rolesEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+authToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("failed to get roles")
		return nil, rest.New(http.StatusInternalServerError, "failed to get roles, check logs")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logErrorResponse("failed to get roles", resp)
		return nil, rest.New(http.StatusInternalServerError, "failed to get roles, check logs")
	}

	var providerRoles []providerRole
	if err := json.NewDecoder(resp.Body).Decode(&providerRoles); err != nil {
		log.Error().Err(err).Msg("failed to decode roles response")
		return nil, rest.New(http.StatusInternalServerError, "failed to get roles, check logs")
	}

	roles := make(map[string]string, len(providerRoles))
	for _, role := range providerRoles {
		roles[role.Key] = fmt.Sprint(role.ID)
	}
	p.roles = roles
	return roles, nil
}

func (p *providerIssuer) createAccessToken(
	ctx context.Context,
	authToken, spaceID, generator string,
	roleIDs []string,
	expiresInMinutes int,
) (string, error) {
	payload, err := json.Marshal(createAccessTokenRequest{
		ExpiresInMinutes: expiresInMinutes,
		RoleIDs:          roleIDs,
		Description: fmt.Sprintf("Auto-created for %s at %s",
			generator, time.Now().UTC().Format(time.RFC3339)),
	})
	if err != nil {
		return "", fmt.Errorf("marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.apiHost+accessTokenEndpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+authToken)
	req.Header.Set(tenantHeader, spaceID)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate access token")
		return "", rest.New(http.StatusInternalServerError, "failed to generate access token, check logs")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logErrorResponse("failed to generate access token", resp)
		return "", rest.New(http.StatusInternalServerError, "failed to generate access token, check logs")
	}

	var body createAccessTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Error().Err(err).Msg("failed to decode access token response")
		return "", rest.New(http.StatusInternalServerError, "failed to generate access token, check logs")
	}
	return body.Secret, nil
}

// logErrorResponse logs the full upstream response before it is collapsed
// into an opaque 500.
func logErrorResponse(message string, resp *http.Response) {
	body := "unable to read body"
	if data, err := io.ReadAll(resp.Body); err == nil {
		body = string(data)
	} else {
		log.Error().Err(err).Msg("failed to read error response body")
	}
	log.Error().
		Int("status", resp.StatusCode).
		Str("status_text", resp.Status).
		Str("url", resp.Request.URL.String()).
		Interface("headers", resp.Header).
		Str("body", body).
		Msg(message)
}
