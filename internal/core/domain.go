package core

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the decoded payload of a signed access token. Once signed the
// claims are immutable; verification and authentication never mutate them.
type Claims struct {
	// Permissions are glob-pattern permission strings granted to the
	// token holder (e.g. "app.*").
	Permissions []string `json:"permissions"`

	// Roles are the role keys granted to the token holder.
	Roles []string `json:"roles"`

	// TenantID is the single space this token is scoped to.
	TenantID string `json:"tenantId"`

	// TenantIDs optionally lists additional spaces the holder may access.
	// Advisory only; the tenant check uses TenantID exclusively.
	TenantIDs []string `json:"tenantIds,omitempty"`

	// Type of the token (e.g. "userApiToken").
	Type string `json:"type,omitempty"`

	jwt.RegisteredClaims
}

// AuthenticationRequirement describes what a protected operation demands
// beyond a valid, tenant-matched token. Both fields are optional; leaving
// both empty means any tenant-matched token is sufficient. When both are
// set, both must be satisfied.
type AuthenticationRequirement struct {
	// AllowedRoles is satisfied if the claims contain any of these roles.
	AllowedRoles []string `json:"allowed_roles,omitempty"`

	// AllowedPermissions is satisfied if any granted permission
	// glob-matches any of these.
	AllowedPermissions []string `json:"allowed_permissions,omitempty"`
}

// DefaultExpiresInMinutes is the issuance default (14 days).
const DefaultExpiresInMinutes = 20160

// TokenRequest describes a server-to-server token to issue.
type TokenRequest struct {
	// SpaceID is the tenant the token will be scoped to.
	SpaceID string `json:"space_id"`

	// RoleKeys are the role keys to grant. Must be non-empty.
	RoleKeys []string `json:"role_keys"`

	// Generator provides attribution, embedded in the token description.
	Generator string `json:"generator"`

	// ExpiresInMinutes is the token lifetime. Zero means the default.
	ExpiresInMinutes int `json:"expires_in_minutes,omitempty"`
}
