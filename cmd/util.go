package cmd

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/darmiel/lakegate/pkg/client"
)

const (
	// TokenKey resolves to the LAKEGATE_TOKEN environment variable.
	TokenKey = "token"

	// SpaceKey resolves to the LAKEGATE_SPACE environment variable.
	SpaceKey = "space"
)

func getClient() (*client.Client, error) {
	// we need the user to provide some server address first
	server := viper.GetString(LakegateAddrKey)
	if server == "" {
		return nil, fmt.Errorf("server address not configured, provide via --server or env")
	}
	return client.New(server,
		client.WithAuthToken(viper.GetString(TokenKey)),
		client.WithSpaceID(viper.GetString(SpaceKey)),
	), nil
}
