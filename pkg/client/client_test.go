package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/darmiel/lakegate/internal/api"
	"github.com/darmiel/lakegate/internal/core"
	"github.com/darmiel/lakegate/internal/security"
)

func newTestServer(t *testing.T) (*httptest.Server, *security.LocalSecurity) {
	t.Helper()
	sec, err := security.NewLocal()
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}
	sec.RoleToPermissions["admin"] = []string{"app.*"}
	sec.RoleToPermissions["user"] = []string{"app.read"}

	srv := httptest.NewServer(api.NewServer(sec, nil, nil).Routes())
	t.Cleanup(srv.Close)
	return srv, sec
}

func adminToken(t *testing.T, sec *security.LocalSecurity, spaceID string) string {
	t.Helper()
	token, err := sec.GenerateToken(context.Background(), core.TokenRequest{
		SpaceID:   spaceID,
		RoleKeys:  []string{"admin"},
		Generator: "client-test",
	})
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	return token
}

func TestInfo(t *testing.T) {
	srv, _ := newTestServer(t)

	cli := New(srv.URL)
	info, correlation, err := cli.Info(context.Background())
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	if info.Service != "Lakegate" {
		t.Errorf("Service = %q", info.Service)
	}
	if correlation == "" {
		t.Error("missing correlation ID")
	}
}

func TestIssueAndIntrospect(t *testing.T) {
	srv, sec := newTestServer(t)
	cli := New(srv.URL,
		WithAuthToken(adminToken(t, sec, "test-space")),
		WithSpaceID("test-space"),
	)

	token, _, err := cli.IssueToken(context.Background(), IssueTokenOptions{
		RoleKeys:  []string{"user"},
		Generator: "client-test",
	})
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	// the issued token works for introspection
	issued := New(srv.URL, WithAuthToken(token), WithSpaceID("test-space"))
	claims, _, err := issued.Introspect(context.Background())
	if err != nil {
		t.Fatalf("Introspect() error = %v", err)
	}
	if claims.TenantID != "test-space" {
		t.Errorf("TenantID = %q", claims.TenantID)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "user" {
		t.Errorf("Roles = %v", claims.Roles)
	}
}

func TestErrorsCarryProblemDetails(t *testing.T) {
	srv, sec := newTestServer(t)

	t.Run("missing space header", func(t *testing.T) {
		cli := New(srv.URL, WithAuthToken(adminToken(t, sec, "test-space")))
		_, _, err := cli.Introspect(context.Background())
		var apiErr APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("error = %v, want APIError", err)
		}
		if apiErr.Status != http.StatusBadRequest {
			t.Errorf("Status = %d, want 400", apiErr.Status)
		}
		if apiErr.CorrelationID == "" {
			t.Error("missing correlation ID")
		}
	})

	t.Run("non-admin issuance", func(t *testing.T) {
		user, err := sec.GenerateToken(context.Background(), core.TokenRequest{
			SpaceID:   "test-space",
			RoleKeys:  []string{"user"},
			Generator: "client-test",
		})
		if err != nil {
			t.Fatalf("GenerateToken() error = %v", err)
		}
		cli := New(srv.URL, WithAuthToken(user), WithSpaceID("test-space"))
		_, _, issueErr := cli.IssueToken(context.Background(), IssueTokenOptions{
			RoleKeys: []string{"user"},
		})
		var apiErr APIError
		if !errors.As(issueErr, &apiErr) {
			t.Fatalf("error = %v, want APIError", issueErr)
		}
		if apiErr.Status != http.StatusForbidden {
			t.Errorf("Status = %d, want 403", apiErr.Status)
		}
	})
}
