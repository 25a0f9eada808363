package api

import (
	"net/http"

	"github.com/darmiel/lakegate/internal/api/middleware"
	"github.com/darmiel/lakegate/internal/audit"
	"github.com/darmiel/lakegate/internal/core"
)

// Server is the auth gateway: it exposes token issuance and introspection
// over HTTP, guarded by the injected security implementation.
type Server struct {
	security core.Security
	auditor  core.Auditor

	// issueRequirement guards the token-issuance route.
	issueRequirement *core.AuthenticationRequirement
}

func NewServer(security core.Security, auditor core.Auditor, issueRoles []string) *Server {
	if auditor == nil {
		auditor = audit.NewNoopAuditor()
	}
	if len(issueRoles) == 0 {
		issueRoles = []string{"admin"}
	}
	return &Server{
		security: security,
		auditor:  auditor,
		issueRequirement: &core.AuthenticationRequirement{
			AllowedRoles: issueRoles,
		},
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// public routes
	mux.HandleFunc("GET "+HealthCheckRoute, s.handleHealth)
	mux.HandleFunc("GET "+AboutRoute, s.handleAbout)

	// guarded routes
	mux.HandleFunc("POST "+IssueTokenRoute, s.handleIssue)
	mux.HandleFunc("GET "+IntrospectRoute, s.handleIntrospect)

	return middleware.RecoverMiddleware(
		middleware.CorrelationIDMiddleware(
			middleware.LoggingMiddleware(
				mux)))
}
