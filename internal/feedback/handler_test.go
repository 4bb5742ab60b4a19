package feedback_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/GenQServe/citilyst-backend/internal/feedback"
	"github.com/GenQServe/citilyst-backend/internal/rbac"
	"github.com/GenQServe/citilyst-backend/internal/token"
	_ "github.com/GenQServe/citilyst-backend/testing"
)

type stubRepo struct {
	entries []feedback.Entry
}

func (s *stubRepo) Create(ctx context.Context, e feedback.Entry) (feedback.Entry, error) {
	e.CreatedAt = time.Now()
	s.entries = append(s.entries, e)
	return e, nil
}

func (s *stubRepo) List(ctx context.Context) ([]feedback.Entry, error) {
	return s.entries, nil
}

type stubDirectory struct {
	roles map[string]rbac.Role
}

func (s *stubDirectory) RoleByID(ctx context.Context, id string) (rbac.Role, error) {
	role, ok := s.roles[id]
	if !ok {
		return "", rbac.ErrSubjectNotFound
	}
	return role, nil
}

func newRouter(t *testing.T, repo *stubRepo, dir *stubDirectory) (chi.Router, *token.Codec) {
	t.Helper()
	codec, err := token.NewCodec("feedback-secret", time.Hour, time.Hour)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	checker := rbac.NewChecker(dir, codec, slog.Default())
	handler := feedback.NewHandler(slog.Default(), repo, checker)
	r := chi.NewRouter()
	r.Route("/feedback-user", handler.MountRoutes)
	return r, codec
}

func TestSubmitFeedbackWithoutToken(t *testing.T) {
	repo := &stubRepo{}
	router, _ := newRouter(t, repo, &stubDirectory{})

	body := `{"user_name":"Warga","user_email":"warga@test.local","description":"Aplikasi sangat membantu"}`
	req := httptest.NewRequest(http.MethodPost, "/feedback-user/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Code, res.Body.String())
	}
	if len(repo.entries) != 1 {
		t.Fatalf("expected one stored entry, got %d", len(repo.entries))
	}
	if repo.entries[0].ID == "" {
		t.Fatalf("expected generated id")
	}
}

func TestSubmitFeedbackValidation(t *testing.T) {
	router, _ := newRouter(t, &stubRepo{}, &stubDirectory{})

	body := `{"user_name":"Warga","user_email":"not-an-email","description":"x"}`
	req := httptest.NewRequest(http.MethodPost, "/feedback-user/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestListFeedbackRequiresAdmin(t *testing.T) {
	repo := &stubRepo{entries: []feedback.Entry{{ID: "f1", UserName: "Warga"}}}
	dir := &stubDirectory{roles: map[string]rbac.Role{"admin-1": rbac.RoleAdmin, "user-1": rbac.RoleUser}}
	router, codec := newRouter(t, repo, dir)

	// No token at all.
	req := httptest.NewRequest(http.MethodGet, "/feedback-user/", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", res.Code)
	}

	// Citizen token.
	userToken, err := codec.EncodeAccess(token.Identity{ID: "user-1", Role: "user"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/feedback-user/", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	res = httptest.NewRecorder()
	router.ServeHTTP(res, req)
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for citizen, got %d", res.Code)
	}

	// Admin token.
	adminToken, err := codec.EncodeAccess(token.Identity{ID: "admin-1", Role: "admin"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/feedback-user/", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	res = httptest.NewRecorder()
	router.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d: %s", res.Code, res.Body.String())
	}
	if !strings.Contains(res.Body.String(), "Warga") {
		t.Fatalf("expected entries in response body")
	}
}
