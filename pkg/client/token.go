package client

import (
	"context"

	"github.com/darmiel/lakegate/internal/api"
	"github.com/darmiel/lakegate/internal/core"
)

// IssueTokenOptions contains parameters for issuing a token.
type IssueTokenOptions struct {
	// RoleKeys to grant to the issued token.
	RoleKeys []string

	// Generator provides attribution for the issued token.
	Generator string

	// ExpiresInMinutes is the token lifetime. Zero means the server default.
	ExpiresInMinutes int
}

// IssueToken requests a new tenant-scoped token from the server. The
// client's own token must carry one of the server's issuance roles.
func (c *Client) IssueToken(ctx context.Context, opts IssueTokenOptions) (string, string, error) {
	var result api.IssueResponse
	correlation, err := c.post(ctx, api.IssueTokenRoute, api.IssuePayload{
		RoleKeys:         opts.RoleKeys,
		Generator:        opts.Generator,
		ExpiresInMinutes: opts.ExpiresInMinutes,
	}, &result)
	if err != nil {
		return "", correlation, err
	}
	return result.Token, correlation, nil
}

// Introspect verifies the client's token server-side and returns its claims.
func (c *Client) Introspect(ctx context.Context) (*core.Claims, string, error) {
	var result api.IntrospectResponse
	correlation, err := c.get(ctx, api.IntrospectRoute, &result)
	if err != nil {
		return nil, correlation, err
	}
	return result.Claims, correlation, nil
}
