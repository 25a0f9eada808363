package audit

import (
	"crypto/sha256"
	"encoding/base64"
)

// Fingerprint derives a stable identifier for an issued token so the
// audit trail can reference it without storing the secret itself.
func Fingerprint(token string) string {
	hash := sha256.Sum256([]byte(token))
	return base64.StdEncoding.EncodeToString(hash[:])
}
