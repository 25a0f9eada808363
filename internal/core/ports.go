package core

import (
	"context"
	"net/http"
)

// SecretStore is a namespaced key/value store for opaque secret strings.
// Implementations: Vault-backed store, in-memory store.
type SecretStore interface {
	// GetSecret returns the secret value, or an error if it does not exist.
	GetSecret(ctx context.Context, id string) (string, error)

	// PutSecret creates or updates the secret (upsert semantics).
	PutSecret(ctx context.Context, id, value string) error

	// DeleteSecret removes the secret.
	DeleteSecret(ctx context.Context, id string) error
}

// Security guards inbound requests and mints server-to-server tokens.
// Implementations: provider-backed (talks to the identity provider) and
// local (self-signed key pair, no network), selected by injection.
type Security interface {
	// Authorize checks only that the request carries the tenant header and
	// a bearer token with a valid signature. 400 if the tenant header is
	// missing, 401 for a missing/non-bearer/invalid token.
	Authorize(r *http.Request) error

	// Authenticate decodes the claims (without re-verifying the signature)
	// and enforces tenant scoping plus the optional requirement. Same
	// 400/401 failure modes as Authorize, 403 on any check failure.
	Authenticate(r *http.Request, requirement *AuthenticationRequirement) error

	// GenerateToken mints a new tenant-scoped token.
	GenerateToken(ctx context.Context, req TokenRequest) (string, error)
}
