package security

import (
	"net/http"

	"github.com/gobwas/glob"
	"github.com/rs/zerolog/log"

	"github.com/darmiel/lakegate/internal/core"
	"github.com/darmiel/lakegate/internal/rest"
)

// authenticateClaims enforces tenant scoping and the optional
// role/permission requirement. All checks must pass; the first failure
// short-circuits with 403. When the requirement sets both roles and
// permissions, both must be satisfied independently.
func authenticateClaims(claims *core.Claims, spaceID string, requirement *core.AuthenticationRequirement) error {
	// exact tenant match only; tenantIds is advisory and not consulted
	if claims.TenantID != spaceID {
		log.Debug().
			Str("expected", spaceID).
			Str("found", claims.TenantID).
			Msg("mismatched spaceId")
		return rest.New(http.StatusForbidden, "")
	}
	if requirement == nil {
		return nil
	}

	if len(requirement.AllowedRoles) > 0 {
		if !hasAnyRole(requirement.AllowedRoles, claims.Roles) {
			log.Debug().
				Strs("allowed_roles", requirement.AllowedRoles).
				Strs("actual_roles", claims.Roles).
				Msg("token did not contain allowed roles")
			return rest.New(http.StatusForbidden, "")
		}
	}

	if len(requirement.AllowedPermissions) > 0 {
		if !hasPermission(requirement.AllowedPermissions, claims.Permissions) {
			log.Debug().
				Strs("allowed_permissions", requirement.AllowedPermissions).
				Strs("actual_permissions", claims.Permissions).
				Msg("token did not contain allowed permissions")
			return rest.New(http.StatusForbidden, "")
		}
	}
	return nil
}

// hasAnyRole reports whether the intersection of allowed and actual roles
// is non-empty.
func hasAnyRole(allowed, actual []string) bool {
	for _, role := range allowed {
		for _, actualRole := range actual {
			if role == actualRole {
				return true
			}
		}
	}
	return false
}

// hasPermission reports whether any granted permission glob-matches any
// required permission. The granted side is the pattern: tokens carry
// wildcards (e.g. "app.*"), callers require concrete permissions. Globs
// are segmented on '.' so "app.*" does not match "app.sub.read".
func hasPermission(required, granted []string) bool {
	for _, grantedPerm := range granted {
		pattern, err := glob.Compile(grantedPerm, '.')
		if err != nil {
			log.Debug().Str("permission", grantedPerm).Err(err).Msg("skipping unparsable permission")
			continue
		}
		for _, requiredPerm := range required {
			if pattern.Match(requiredPerm) {
				return true
			}
		}
	}
	return false
}
