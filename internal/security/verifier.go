package security

import (
	"context"
	"crypto/rsa"
	"net/http"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/darmiel/lakegate/internal/core"
	"github.com/darmiel/lakegate/internal/rest"
)

// publicKeySecretID is the well-known secret holding the PEM-encoded
// verification key.
const publicKeySecretID = "public-key"

// verifier validates token signatures against a public key fetched lazily
// from the secret store and cached for the lifetime of the instance. Key
// rotation requires a new instance.
type verifier struct {
	secrets core.SecretStore

	mu        sync.Mutex
	publicKey *rsa.PublicKey
}

func newVerifier(store core.SecretStore) *verifier {
	return &verifier{secrets: store}
}

func (v *verifier) key(ctx context.Context) (*rsa.PublicKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.publicKey != nil {
		return v.publicKey, nil
	}
	pemData, err := v.secrets.GetSecret(ctx, publicKeySecretID)
	if err != nil {
		return nil, err
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemData))
	if err != nil {
		return nil, err
	}
	v.publicKey = key
	return key, nil
}

// Verify checks the token's signature and expiry and returns its claims.
// Key-fetch failures and signature failures are indistinguishable to the
// caller: both surface as 401.
func (v *verifier) Verify(ctx context.Context, token string) (*core.Claims, error) {
	key, err := v.key(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load verification key")
		return nil, rest.New(http.StatusUnauthorized, "")
	}

	claims := &core.Claims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	if err != nil {
		log.Warn().Err(err).Msg("failed to verify authorization")
		return nil, rest.New(http.StatusUnauthorized, "")
	}
	return claims, nil
}
