// Package security guards inbound requests for content lake functions and
// mints server-to-server tokens against the external identity provider.
package security

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/darmiel/lakegate/internal/core"
	"github.com/darmiel/lakegate/internal/httpx"
	"github.com/darmiel/lakegate/internal/rest"
)

const (
	// SpaceIDHeader carries the tenant identifier on inbound requests.
	SpaceIDHeader = "x-space-id"

	// DefaultAPIHost is the identity provider's SaaS endpoint.
	DefaultAPIHost = "https://api.frontegg.com"

	// APIHostEnv overrides the identity provider host.
	APIHostEnv = "SECURITY_API_HOST"

	// length of the "Bearer " scheme prefix
	bearerOffset = 7
)

// tokenIssuer mints tenant-scoped tokens. The provider-backed issuer talks
// to the identity provider; the local issuer signs with its own key pair.
type tokenIssuer interface {
	Issue(ctx context.Context, req core.TokenRequest) (string, error)
}

// Security is the provider-backed implementation of core.Security. Each
// instance owns its verification-key and role caches; instances sharing a
// secret store are safe to use concurrently.
type Security struct {
	verifier *verifier
	issuer   tokenIssuer
}

var _ core.Security = (*Security)(nil)

type Options struct {
	// APIHost is the identity provider host. Empty falls back to the
	// SECURITY_API_HOST environment variable, then DefaultAPIHost.
	APIHost string

	// SecretStore provides the verification key ("public-key") and the
	// vendor credential ("api-access").
	SecretStore core.SecretStore

	// HTTPClient used for identity provider calls. nil means a retrying
	// client with a 30s timeout.
	HTTPClient *http.Client
}

func New(opts Options) *Security {
	host := opts.APIHost
	if host == "" {
		host = os.Getenv(APIHostEnv)
	}
	if host == "" {
		host = DefaultAPIHost
	}
	client := opts.HTTPClient
	if client == nil {
		client = httpx.NewClient(30 * time.Second)
	}
	return &Security{
		verifier: newVerifier(opts.SecretStore),
		issuer:   newProviderIssuer(host, opts.SecretStore, client),
	}
}

// Authorize checks signature validity only: the request must carry the
// tenant header and a bearer token signed by the key held in the secret
// store. It does not check tenant match or roles.
func (s *Security) Authorize(r *http.Request) error {
	if _, err := requiredHeader(r, SpaceIDHeader); err != nil {
		return err
	}
	token, err := bearerToken(r)
	if err != nil {
		return err
	}
	_, err = s.verifier.Verify(r.Context(), token)
	return err
}

// Authenticate decodes the token's claims without re-verifying the
// signature (Authorize is expected to have run) and enforces tenant
// scoping plus the optional role/permission requirement.
func (s *Security) Authenticate(r *http.Request, requirement *core.AuthenticationRequirement) error {
	spaceID, err := requiredHeader(r, SpaceIDHeader)
	if err != nil {
		return err
	}
	token, err := bearerToken(r)
	if err != nil {
		return err
	}
	claims, err := decodeClaims(token)
	if err != nil {
		return err
	}
	return authenticateClaims(claims, spaceID, requirement)
}

// GenerateToken mints a new tenant-scoped token via the configured issuer.
func (s *Security) GenerateToken(ctx context.Context, req core.TokenRequest) (string, error) {
	return s.issuer.Issue(ctx, req)
}

// requiredHeader returns the header value or a 400 error when absent.
func requiredHeader(r *http.Request, name string) (string, error) {
	value := r.Header.Get(name)
	if value == "" {
		log.Debug().Msgf("missing header [%s]", name)
		return "", rest.Newf(http.StatusBadRequest, "missing header [%s]", name)
	}
	return value, nil
}

// bearerToken extracts the token after the "Bearer " prefix. The prefix is
// matched case-insensitively, the token itself is taken verbatim.
func bearerToken(r *http.Request) (string, error) {
	authorization := r.Header.Get("authorization")
	if authorization == "" || !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
		log.Debug().Msg("invalid or missing authorization header")
		return "", rest.New(http.StatusUnauthorized, "invalid or missing authorization header")
	}
	return authorization[bearerOffset:], nil
}

// decodeClaims parses the token payload without signature verification.
func decodeClaims(token string) (*core.Claims, error) {
	claims := &core.Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		log.Debug().Err(err).Msg("failed to decode token claims")
		return nil, rest.New(http.StatusUnauthorized, "malformed token")
	}
	return claims, nil
}
