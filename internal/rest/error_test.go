package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"direct", New(http.StatusForbidden, "nope"), http.StatusForbidden},
		{"wrapped", fmt.Errorf("outer: %w", New(http.StatusUnauthorized, "")), http.StatusUnauthorized},
		{"plain error defaults to 500", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusOf(tt.err); got != tt.want {
				t.Errorf("StatusOf() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := New(http.StatusBadRequest, "missing header [x-space-id]")
	want := "400 Bad Request: missing header [x-space-id]"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	bare := New(http.StatusUnauthorized, "")
	if bare.Error() != "401 Unauthorized" {
		t.Errorf("Error() = %q, want %q", bare.Error(), "401 Unauthorized")
	}
}

func TestWriteProblem(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteProblem(rec, New(http.StatusForbidden, "cross-tenant request"))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("content type = %q", ct)
	}

	var p Problem
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("decoding problem: %v", err)
	}
	if p.Title != "Forbidden" || p.Status != http.StatusForbidden || p.Detail != "cross-tenant request" {
		t.Errorf("unexpected problem: %+v", p)
	}
}
