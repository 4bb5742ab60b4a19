package rbac_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GenQServe/citilyst-backend/internal/rbac"
	"github.com/GenQServe/citilyst-backend/internal/token"
	_ "github.com/GenQServe/citilyst-backend/testing"
)

type stubDirectory struct {
	roles map[string]rbac.Role
	err   error
}

func (s *stubDirectory) RoleByID(ctx context.Context, id string) (rbac.Role, error) {
	if s.err != nil {
		return "", s.err
	}
	role, ok := s.roles[id]
	if !ok {
		return "", rbac.ErrSubjectNotFound
	}
	return role, nil
}

func requestWithPrincipal(id string, role rbac.Role) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	principal := &rbac.Principal{ID: id, Role: role, ExpiresAt: time.Now().Add(time.Hour)}
	return req.WithContext(rbac.ContextWithPrincipal(req.Context(), principal))
}

func TestCheckerAllowsPermittedRole(t *testing.T) {
	dir := &stubDirectory{roles: map[string]rbac.Role{"admin-1": rbac.RoleAdmin}}
	checker := rbac.NewChecker(dir, testCodec(t, nil), slog.Default())

	hit := false
	mw := checker.Require(rbac.Perm(rbac.ResourceUsers, rbac.ActionDelete))
	res := httptest.NewRecorder()
	mw(okHandler(&hit)).ServeHTTP(res, requestWithPrincipal("admin-1", rbac.RoleAdmin))

	if !hit || res.Code != http.StatusOK {
		t.Fatalf("expected pass through, got %d hit=%v", res.Code, hit)
	}
}

func TestCheckerDeniesMissingPermission(t *testing.T) {
	dir := &stubDirectory{roles: map[string]rbac.Role{"user-1": rbac.RoleUser}}
	checker := rbac.NewChecker(dir, testCodec(t, nil), slog.Default())

	mw := checker.Require(rbac.Perm(rbac.ResourceUsers, rbac.ActionDelete))
	res := httptest.NewRecorder()
	mw(okHandler(nil)).ServeHTTP(res, requestWithPrincipal("user-1", rbac.RoleUser))

	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", res.Code)
	}
	if got := decodeMessage(t, res); got != "Insufficient permissions to access this resource" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestCheckerUsesLiveRoleOverTokenRole(t *testing.T) {
	// The token still claims admin but the stored role was downgraded.
	dir := &stubDirectory{roles: map[string]rbac.Role{"user-1": rbac.RoleUser}}
	checker := rbac.NewChecker(dir, testCodec(t, nil), slog.Default())

	mw := checker.Require(rbac.Perm(rbac.ResourceDistricts, rbac.ActionCreate))
	res := httptest.NewRecorder()
	mw(okHandler(nil)).ServeHTTP(res, requestWithPrincipal("user-1", rbac.RoleAdmin))

	if res.Code != http.StatusForbidden {
		t.Fatalf("expected live role to win, got %d", res.Code)
	}
}

func TestCheckerRejectsDeletedSubject(t *testing.T) {
	dir := &stubDirectory{roles: map[string]rbac.Role{}}
	checker := rbac.NewChecker(dir, testCodec(t, nil), slog.Default())

	mw := checker.Require(rbac.Perm(rbac.ResourceReports, rbac.ActionRead))
	res := httptest.NewRecorder()
	mw(okHandler(nil)).ServeHTTP(res, requestWithPrincipal("ghost", rbac.RoleUser))

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for deleted subject, got %d", res.Code)
	}
}

func TestCheckerRejectsMissingToken(t *testing.T) {
	dir := &stubDirectory{roles: map[string]rbac.Role{"user-1": rbac.RoleUser}}
	checker := rbac.NewChecker(dir, testCodec(t, nil), slog.Default())

	mw := checker.Require(rbac.Perm(rbac.ResourceReports, rbac.ActionRead))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	res := httptest.NewRecorder()
	mw(okHandler(nil)).ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without principal, got %d", res.Code)
	}
}

func TestCheckerDecodesBearerOnExemptPath(t *testing.T) {
	// No principal in context, as on gate-exempt paths: the checker falls back
	// to decoding the Authorization header itself.
	codec := testCodec(t, nil)
	raw, err := codec.EncodeAccess(token.Identity{ID: "admin-1", Role: "admin"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	dir := &stubDirectory{roles: map[string]rbac.Role{"admin-1": rbac.RoleAdmin}}
	checker := rbac.NewChecker(dir, codec, slog.Default())

	hit := false
	mw := checker.Require(rbac.Perm(rbac.ResourceFeedbackUser, rbac.ActionRead))
	req := httptest.NewRequest(http.MethodGet, "/feedback-user", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	res := httptest.NewRecorder()
	mw(okHandler(&hit)).ServeHTTP(res, req)

	if !hit || res.Code != http.StatusOK {
		t.Fatalf("expected bearer fallback to admit request, got %d hit=%v", res.Code, hit)
	}
}

func TestCheckerDirectoryFailure(t *testing.T) {
	dir := &stubDirectory{err: errors.New("connection refused")}
	checker := rbac.NewChecker(dir, testCodec(t, nil), slog.Default())

	mw := checker.Require(rbac.Perm(rbac.ResourceReports, rbac.ActionRead))
	res := httptest.NewRecorder()
	mw(okHandler(nil)).ServeHTTP(res, requestWithPrincipal("user-1", rbac.RoleUser))

	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on directory failure, got %d", res.Code)
	}
}
