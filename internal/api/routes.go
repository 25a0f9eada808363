package api

const (
	HealthCheckRoute = "/healthz"
	AboutRoute       = "/v1/about"

	IssueTokenRoute = "/v1/tokens"
	IntrospectRoute = "/v1/introspect"
)
