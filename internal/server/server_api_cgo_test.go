//go:build cgo

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/medfront/medfront/internal/auth"
	"github.com/medfront/medfront/internal/config"
	"github.com/medfront/medfront/internal/core"
	"github.com/medfront/medfront/internal/core/store"
	"github.com/medfront/medfront/internal/docparse"
	"github.com/medfront/medfront/internal/server/handlers"
)

type apiFixture struct {
	srv   *Server
	store *store.Store
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(ctx, config.StoreConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	if err := st.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate store: %v", err)
	}

	tokens, err := auth.NewTokenManager(config.AuthConfig{Secret: "api-test-secret"})
	if err != nil {
		t.Fatalf("failed to build token manager: %v", err)
	}

	srv := New("127.0.0.1", 0, Dependencies{
		Store:  st,
		Tokens: tokens,
		Docs:   docparse.NewService(nil),
	})

	return &apiFixture{srv: srv, store: st}
}

func (f *apiFixture) seedUser(t *testing.T, username string, role core.UserRole) {
	t.Helper()

	hashed, err := auth.HashPassword("password123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	err = f.store.CreateUser(context.Background(), core.User{
		Username:       username,
		Email:          username + "@example.com",
		HashedPassword: hashed,
		Role:           role,
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}
}

func (f *apiFixture) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) login(t *testing.T, username string) string {
	t.Helper()

	body := fmt.Sprintf(`{"username": %q, "password": "password123"}`, username)
	rec := f.do(t, http.MethodPost, "/api/auth/login", "", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("login for %s failed with %d: %s", username, rec.Code, rec.Body.String())
	}

	var resp handlers.AuthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	return resp.Token
}

func TestRegisterLoginAndProfile(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/auth/register", "", `{
		"username": "reader",
		"password": "password123",
		"confirm_password": "password123",
		"email": "reader@example.com"
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created handlers.AuthResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode register response: %v", err)
	}
	if created.Role != "user" {
		t.Fatalf("expected role user, got %s", created.Role)
	}

	rec = f.do(t, http.MethodGet, "/api/auth/me", created.Token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var me handlers.UserInfoResponse
	if err := json.NewDecoder(rec.Body).Decode(&me); err != nil {
		t.Fatalf("failed to decode profile: %v", err)
	}
	if me.Username != "reader" || me.Email != "reader@example.com" {
		t.Fatalf("unexpected profile: %+v", me)
	}

	// Duplicate registration is rejected.
	rec = f.do(t, http.MethodPost, "/api/auth/register", "", `{
		"username": "reader",
		"password": "password123",
		"confirm_password": "password123",
		"email": "other@example.com"
	}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	f := newAPIFixture(t)

	cases := []struct {
		name string
		body string
	}{
		{"short username", `{"username": "ab", "password": "password123", "confirm_password": "password123", "email": "a@b.co"}`},
		{"short password", `{"username": "reader", "password": "pw", "confirm_password": "pw", "email": "a@b.co"}`},
		{"mismatched passwords", `{"username": "reader", "password": "password123", "confirm_password": "password124", "email": "a@b.co"}`},
		{"bad email", `{"username": "reader", "password": "password123", "confirm_password": "password123", "email": "nope"}`},
	}
	for _, tc := range cases {
		rec := f.do(t, http.MethodPost, "/api/auth/register", "", tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected status 400, got %d", tc.name, rec.Code)
		}
	}
}

func TestPaperLifecycleOverHTTP(t *testing.T) {
	f := newAPIFixture(t)
	f.seedUser(t, "editor", core.RolePaperAdmin)
	f.seedUser(t, "reader", core.RoleUser)
	editorToken := f.login(t, "editor")
	readerToken := f.login(t, "reader")

	// Readers cannot create papers.
	rec := f.do(t, http.MethodPost, "/api/papers/", readerToken, `{"title": "Nope"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/papers/", editorToken, `{
		"title": "Deep learning for radiology",
		"summary": "A survey",
		"author": "Chen",
		"tags": ["ai", "radiology"],
		"domain": "radiology"
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var paper core.Paper
	if err := json.NewDecoder(rec.Body).Decode(&paper); err != nil {
		t.Fatalf("failed to decode paper: %v", err)
	}

	// Anonymous listing sees the paper.
	rec = f.do(t, http.MethodGet, "/api/papers/?tag=ai", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var listing handlers.PaperListResponse
	if err := json.NewDecoder(rec.Body).Decode(&listing); err != nil {
		t.Fatalf("failed to decode listing: %v", err)
	}
	if listing.Total != 1 || len(listing.Papers) != 1 {
		t.Fatalf("expected one paper, got %+v", listing)
	}

	// Authenticated reader can comment.
	rec = f.do(t, http.MethodPost, "/api/papers/"+paper.ID+"/comments", readerToken, `{"content": "great survey"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodGet, "/api/papers/"+paper.ID, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var fetched core.Paper
	if err := json.NewDecoder(rec.Body).Decode(&fetched); err != nil {
		t.Fatalf("failed to decode paper: %v", err)
	}
	if len(fetched.Comments) != 1 || fetched.Comments[0].Author != "reader" {
		t.Fatalf("expected reader comment, got %+v", fetched.Comments)
	}

	// Partial update.
	rec = f.do(t, http.MethodPut, "/api/papers/"+paper.ID, editorToken, `{"summary": "An extended survey"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Delete and confirm 404.
	rec = f.do(t, http.MethodDelete, "/api/papers/"+paper.ID, editorToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	rec = f.do(t, http.MethodGet, "/api/papers/"+paper.ID, "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestNewsViewCountOverHTTP(t *testing.T) {
	f := newAPIFixture(t)
	f.seedUser(t, "editor", core.RolePaperAdmin)
	editorToken := f.login(t, "editor")

	rec := f.do(t, http.MethodPost, "/api/news/", editorToken, `{
		"title": "Conference announced",
		"category": "events"
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var item core.News
	if err := json.NewDecoder(rec.Body).Decode(&item); err != nil {
		t.Fatalf("failed to decode news: %v", err)
	}

	for i := 1; i <= 2; i++ {
		rec = f.do(t, http.MethodGet, "/api/news/"+item.ID, "", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		var fetched core.News
		if err := json.NewDecoder(rec.Body).Decode(&fetched); err != nil {
			t.Fatalf("failed to decode news: %v", err)
		}
		if fetched.ViewCount != i {
			t.Fatalf("expected view count %d, got %d", i, fetched.ViewCount)
		}
	}

	rec = f.do(t, http.MethodGet, "/api/news/categories", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var categories map[string][]string
	if err := json.NewDecoder(rec.Body).Decode(&categories); err != nil {
		t.Fatalf("failed to decode categories: %v", err)
	}
	if len(categories["categories"]) != 1 || categories["categories"][0] != "events" {
		t.Fatalf("unexpected categories: %+v", categories)
	}
}

func TestLibraryVisibilityOverHTTP(t *testing.T) {
	f := newAPIFixture(t)
	f.seedUser(t, "owner", core.RoleUser)
	f.seedUser(t, "viewer", core.RoleUser)
	ownerToken := f.login(t, "owner")
	viewerToken := f.login(t, "viewer")

	rec := f.do(t, http.MethodPost, "/api/libraries/", ownerToken, `{"name": "Reading list", "is_public": false}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var library core.Library
	if err := json.NewDecoder(rec.Body).Decode(&library); err != nil {
		t.Fatalf("failed to decode library: %v", err)
	}

	// Private library is invisible to others.
	rec = f.do(t, http.MethodGet, "/api/libraries/"+library.ID, viewerToken, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}

	// Only the owner may modify it.
	rec = f.do(t, http.MethodPut, "/api/libraries/"+library.ID, viewerToken, `{"is_public": true}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodPut, "/api/libraries/"+library.ID, ownerToken, `{"is_public": true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Now visible to others.
	rec = f.do(t, http.MethodGet, "/api/libraries/"+library.ID, viewerToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestAdminEndpointsOverHTTP(t *testing.T) {
	f := newAPIFixture(t)
	f.seedUser(t, "root", core.RoleSuperAdmin)
	f.seedUser(t, "reader", core.RoleUser)
	rootToken := f.login(t, "root")
	readerToken := f.login(t, "reader")

	// Regular users cannot reach admin routes.
	rec := f.do(t, http.MethodGet, "/api/admin/users", readerToken, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/api/admin/users", rootToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var users handlers.UserListResponse
	if err := json.NewDecoder(rec.Body).Decode(&users); err != nil {
		t.Fatalf("failed to decode users: %v", err)
	}
	if users.Total != 2 {
		t.Fatalf("expected 2 users, got %d", users.Total)
	}

	// Promote the reader.
	rec = f.do(t, http.MethodPut, "/api/admin/users/reader/role", rootToken, `{"role": "paper_admin"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Reset the reader's credentials and confirm the new password works.
	rec = f.do(t, http.MethodPut, "/api/admin/users/reader", rootToken, `{"email": "reader2@example.com", "password": "rotated456"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = f.do(t, http.MethodPost, "/api/auth/login", "", `{"username": "reader", "password": "rotated456"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected login with rotated password to succeed, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = f.do(t, http.MethodPut, "/api/admin/users/ghost", rootToken, `{"email": "ghost@example.com"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}

	// Admins cannot change their own role or delete themselves.
	rec = f.do(t, http.MethodPut, "/api/admin/users/root/role", rootToken, `{"role": "user"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
	rec = f.do(t, http.MethodDelete, "/api/admin/users/root", rootToken, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}

	// Statistics reflect the seeded state.
	rec = f.do(t, http.MethodGet, "/api/system/statistics", rootToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var stats handlers.StatisticsResponse
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("failed to decode statistics: %v", err)
	}
	if stats.TotalUsers != 2 || stats.AdminUsers != 2 || stats.RegularUsers != 0 {
		t.Fatalf("unexpected statistics: %+v", stats)
	}
}
