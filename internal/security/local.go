package security

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/darmiel/lakegate/internal/core"
	"github.com/darmiel/lakegate/internal/rest"
	"github.com/darmiel/lakegate/internal/secrets"
)

// LocalSecurity satisfies the same contract as the provider-backed
// Security without any network dependency: it generates its own RSA key
// pair, seeds the public key into an in-memory secret store, and signs
// tokens itself. Tokens from one instance are rejected by any other.
type LocalSecurity struct {
	Security

	// AdditionalTenantIDs are embedded as the tenantIds claim of every
	// issued token.
	AdditionalTenantIDs []string

	// RoleToPermissions expands the requested role keys into the granted
	// permissions of issued tokens.
	RoleToPermissions map[string][]string

	privateKey *rsa.PrivateKey
}

func NewLocal() (*LocalSecurity, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("generating key pair: %w", err)
	}
	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("encoding public key: %w", err)
	}
	publicPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: publicDER,
	})

	store := secrets.NewMemoryStore()
	if err := store.PutSecret(context.Background(), publicKeySecretID, string(publicPEM)); err != nil {
		return nil, fmt.Errorf("seeding public key: %w", err)
	}

	ls := &LocalSecurity{
		RoleToPermissions: make(map[string][]string),
		privateKey:        key,
	}
	ls.Security = Security{
		verifier: newVerifier(store),
		issuer:   &localIssuer{sec: ls},
	}
	return ls, nil
}

// localIssuer signs tokens with the instance's own private key.
type localIssuer struct {
	sec *LocalSecurity
}

func (l *localIssuer) Issue(_ context.Context, req core.TokenRequest) (string, error) {
	if len(req.RoleKeys) == 0 {
		return "", rest.New(http.StatusBadRequest, "role_keys must not be empty")
	}

	permissionSet := make(map[string]struct{})
	for _, role := range req.RoleKeys {
		for _, permission := range l.sec.RoleToPermissions[role] {
			permissionSet[permission] = struct{}{}
		}
	}
	permissions := make([]string, 0, len(permissionSet))
	for permission := range permissionSet {
		permissions = append(permissions, permission)
	}
	sort.Strings(permissions)

	expires := req.ExpiresInMinutes
	if expires <= 0 {
		expires = core.DefaultExpiresInMinutes
	}

	now := time.Now()
	claims := core.Claims{
		Permissions: permissions,
		Roles:       req.RoleKeys,
		TenantID:    req.SpaceID,
		TenantIDs:   l.sec.AdditionalTenantIDs,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expires) * time.Minute)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(l.sec.privateKey)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}
