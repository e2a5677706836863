package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/medfront/medfront/internal/auth"
	"github.com/medfront/medfront/internal/config"
	"github.com/medfront/medfront/internal/docparse"
	apperrors "github.com/medfront/medfront/internal/errors"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	tokens, err := auth.NewTokenManager(config.AuthConfig{Secret: "test-secret"})
	if err != nil {
		t.Fatalf("failed to build token manager: %v", err)
	}

	return New("127.0.0.1", 0, Dependencies{
		Tokens: tokens,
		Docs:   docparse.NewService(nil),
	})
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) apperrors.HTTPErrorResponse {
	t.Helper()

	var body apperrors.HTTPErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return body
}

func TestServerUsesStandardErrorHandlers(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/does-not-exist", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}

	if body := decodeErrorBody(t, rec); body.Error.Code != "NOT_FOUND" {
		t.Fatalf("expected error code NOT_FOUND, got %s", body.Error.Code)
	}
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/api/auth/me", "/api/libraries/", "/api/system/statistics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()

		srv.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected status 401, got %d", path, rec.Code)
		}
	}
}

func TestProtectedRoutesRejectGarbageToken(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}
