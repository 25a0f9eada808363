package client

import (
	"context"

	"github.com/darmiel/lakegate/internal/api"
	"github.com/darmiel/lakegate/internal/buildinfo"
)

func (c *Client) Info(ctx context.Context) (*buildinfo.Info, string, error) {
	var info buildinfo.Info
	correlation, err := c.get(ctx, api.AboutRoute, &info)
	if err != nil {
		return nil, correlation, err
	}
	return &info, correlation, nil
}
