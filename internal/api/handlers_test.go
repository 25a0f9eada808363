package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/darmiel/lakegate/internal/audit"
	"github.com/darmiel/lakegate/internal/core"
	"github.com/darmiel/lakegate/internal/security"
)

func newTestGateway(t *testing.T) (*httptest.Server, *security.LocalSecurity, *audit.InMemoryAuditor) {
	t.Helper()
	sec, err := security.NewLocal()
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}
	sec.RoleToPermissions["admin"] = []string{"app.*"}
	sec.RoleToPermissions["user"] = []string{"app.read"}

	auditor := audit.NewInMemoryAuditor()
	srv := httptest.NewServer(NewServer(sec, auditor, nil).Routes())
	t.Cleanup(srv.Close)
	return srv, sec, auditor
}

func issueLocal(t *testing.T, sec *security.LocalSecurity, spaceID string, roles ...string) string {
	t.Helper()
	token, err := sec.GenerateToken(context.Background(), core.TokenRequest{
		SpaceID:   spaceID,
		Generator: "gateway-test",
		RoleKeys:  roles,
	})
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	return token
}

func doRequest(t *testing.T, method, url, spaceID, token string, payload any) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshalling payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	if spaceID != "" {
		req.Header.Set(security.SpaceIDHeader, spaceID)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHealthAndAbout(t *testing.T) {
	srv, _, _ := newTestGateway(t)

	resp := doRequest(t, http.MethodGet, srv.URL+HealthCheckRoute, "", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodGet, srv.URL+AboutRoute, "", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("about status = %d", resp.StatusCode)
	}
	var info map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatalf("decoding about: %v", err)
	}
	if info["service"] != "Lakegate" {
		t.Errorf("service = %v", info["service"])
	}
}

func TestIntrospect(t *testing.T) {
	srv, sec, _ := newTestGateway(t)
	token := issueLocal(t, sec, "test-space", "user")

	t.Run("returns claims for a valid token", func(t *testing.T) {
		resp := doRequest(t, http.MethodGet, srv.URL+IntrospectRoute, "test-space", token, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		var body IntrospectResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if body.Claims.TenantID != "test-space" {
			t.Errorf("TenantID = %q", body.Claims.TenantID)
		}
		if len(body.Claims.Roles) != 1 || body.Claims.Roles[0] != "user" {
			t.Errorf("Roles = %v", body.Claims.Roles)
		}
	})

	t.Run("400 without tenant header", func(t *testing.T) {
		resp := doRequest(t, http.MethodGet, srv.URL+IntrospectRoute, "", token, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})

	t.Run("401 for foreign key pair", func(t *testing.T) {
		other, err := security.NewLocal()
		if err != nil {
			t.Fatalf("NewLocal() error = %v", err)
		}
		foreign := issueLocal(t, other, "test-space", "user")
		resp := doRequest(t, http.MethodGet, srv.URL+IntrospectRoute, "test-space", foreign, nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", resp.StatusCode)
		}
	})

	t.Run("403 for cross-tenant token", func(t *testing.T) {
		resp := doRequest(t, http.MethodGet, srv.URL+IntrospectRoute, "other-space", issueLocal(t, sec, "test-space", "user"), nil)
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("status = %d, want 403", resp.StatusCode)
		}
	})
}

func TestIssueRoute(t *testing.T) {
	srv, sec, auditor := newTestGateway(t)
	adminToken := issueLocal(t, sec, "test-space", "admin")
	userToken := issueLocal(t, sec, "test-space", "user")

	t.Run("mints a token for admins", func(t *testing.T) {
		resp := doRequest(t, http.MethodPost, srv.URL+IssueTokenRoute, "test-space", adminToken, IssuePayload{
			RoleKeys:  []string{"user"},
			Generator: "handlers-test",
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want 201", resp.StatusCode)
		}
		var body IssueResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if body.Token == "" {
			t.Fatal("empty token in response")
		}

		// the minted token authorizes against the same gateway
		introspect := doRequest(t, http.MethodGet, srv.URL+IntrospectRoute, "test-space", body.Token, nil)
		if introspect.StatusCode != http.StatusOK {
			t.Errorf("introspect of minted token = %d", introspect.StatusCode)
		}

		entries, err := auditor.GetRecent(10)
		if err != nil {
			t.Fatalf("GetRecent() error = %v", err)
		}
		var found bool
		for _, entry := range entries {
			if entry.Action == "token.issue" && entry.Granted {
				found = true
				if entry.TokenFingerprint == "" {
					t.Error("issued entry missing token fingerprint")
				}
			}
		}
		if !found {
			t.Error("no granted token.issue audit entry")
		}
	})

	t.Run("403 for non-admin callers", func(t *testing.T) {
		resp := doRequest(t, http.MethodPost, srv.URL+IssueTokenRoute, "test-space", userToken, IssuePayload{
			RoleKeys:  []string{"user"},
			Generator: "handlers-test",
		})
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("status = %d, want 403", resp.StatusCode)
		}
	})

	t.Run("400 for empty role keys", func(t *testing.T) {
		resp := doRequest(t, http.MethodPost, srv.URL+IssueTokenRoute, "test-space", adminToken, IssuePayload{
			Generator: "handlers-test",
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})

	t.Run("401 without token", func(t *testing.T) {
		resp := doRequest(t, http.MethodPost, srv.URL+IssueTokenRoute, "test-space", "", IssuePayload{
			RoleKeys: []string{"user"},
		})
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", resp.StatusCode)
		}
	})
}
