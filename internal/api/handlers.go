package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/darmiel/lakegate/internal/api/middleware"
	"github.com/darmiel/lakegate/internal/api/presenter"
	"github.com/darmiel/lakegate/internal/audit"
	"github.com/darmiel/lakegate/internal/buildinfo"
	"github.com/darmiel/lakegate/internal/core"
	"github.com/darmiel/lakegate/internal/security"
)

// handleHealth responds with a simple OK status to indicate the server is healthy.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleAbout responds with service information including version and commit hash.
func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	presenter.JSON(w, r, buildinfo.GetBuildInfo(), http.StatusOK)
}

type IssuePayload struct {
	// RoleKeys to grant to the issued token.
	RoleKeys []string `json:"role_keys"`

	// Generator provides attribution for the issued token.
	Generator string `json:"generator"`

	// ExpiresInMinutes is the token lifetime. Zero means the default.
	ExpiresInMinutes int `json:"expires_in_minutes,omitempty"`
}

type IssueResponse struct {
	Token string `json:"token"`
}

type IntrospectResponse struct {
	Claims *core.Claims `json:"claims"`
}

func DecodePayload(r *http.Request, dest any) error {
	switch r.Header.Get("Content-Type") {
	case "application/json", "":
		// strict encoding for JSON
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(dest); err != nil {
			if !errors.Is(err, io.EOF) {
				return err
			}
		}
		// ensure there's no extra data
		if dec.More() {
			return errors.New("extra data in request body")
		}
		return nil
	default:
		return errors.New("unsupported content type")
	}
}

// handleIssue mints a tenant-scoped token for the space named in the
// request headers. The caller must present a verified token carrying one
// of the configured issuance roles.
func (s *Server) handleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	auditEntry := core.AuditEntry{
		ID:      middleware.CorrelationCtx(ctx),
		Time:    time.Now(),
		Action:  "token.issue",
		SpaceID: r.Header.Get(security.SpaceIDHeader),
	}
	defer func() {
		if err := s.auditor.Log(auditEntry); err != nil {
			logger.Error().Err(err).Msg("failed to write audit log")
		}
	}()

	if err := s.security.Authorize(r); err != nil {
		auditEntry.Error = err.Error()
		presenter.Err(w, r, err)
		return
	}
	if err := s.security.Authenticate(r, s.issueRequirement); err != nil {
		auditEntry.Error = err.Error()
		presenter.Err(w, r, err)
		return
	}

	var payload IssuePayload
	if err := DecodePayload(r, &payload); err != nil {
		logger.Warn().Err(err).Msg("failed to decode issue request payload")
		auditEntry.Error = "invalid request payload"
		presenter.JSON(w, r, map[string]string{"error": "invalid request payload"}, http.StatusBadRequest)
		return
	}
	auditEntry.RoleKeys = payload.RoleKeys
	auditEntry.Generator = payload.Generator

	token, err := s.security.GenerateToken(ctx, core.TokenRequest{
		SpaceID:          r.Header.Get(security.SpaceIDHeader),
		RoleKeys:         payload.RoleKeys,
		Generator:        payload.Generator,
		ExpiresInMinutes: payload.ExpiresInMinutes,
	})
	if err != nil {
		auditEntry.Error = err.Error()
		presenter.Err(w, r, err)
		return
	}

	auditEntry.Granted = true
	auditEntry.TokenFingerprint = audit.Fingerprint(token)
	presenter.JSON(w, r, IssueResponse{Token: token}, http.StatusCreated)
}

// handleIntrospect verifies the presented token and returns its claims.
func (s *Server) handleIntrospect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	auditEntry := core.AuditEntry{
		ID:      middleware.CorrelationCtx(ctx),
		Time:    time.Now(),
		Action:  "token.introspect",
		SpaceID: r.Header.Get(security.SpaceIDHeader),
	}
	defer func() {
		if err := s.auditor.Log(auditEntry); err != nil {
			logger.Error().Err(err).Msg("failed to write audit log")
		}
	}()

	if err := s.security.Authorize(r); err != nil {
		auditEntry.Error = err.Error()
		presenter.Err(w, r, err)
		return
	}
	if err := s.security.Authenticate(r, nil); err != nil {
		auditEntry.Error = err.Error()
		presenter.Err(w, r, err)
		return
	}

	claims, err := claimsFromRequest(r)
	if err != nil {
		auditEntry.Error = err.Error()
		presenter.Err(w, r, err)
		return
	}

	auditEntry.Granted = true
	auditEntry.Subject = claims.Subject
	presenter.JSON(w, r, IntrospectResponse{Claims: claims}, http.StatusOK)
}

// claimsFromRequest decodes the bearer token's payload. The signature was
// already checked by Authorize.
func claimsFromRequest(r *http.Request) (*core.Claims, error) {
	authorization := r.Header.Get("authorization")
	// Authorize already established the bearer prefix
	token := authorization[len("Bearer "):]
	claims := &core.Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}
