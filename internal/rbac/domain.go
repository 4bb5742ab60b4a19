// Package rbac implements role based authorization: a static role to
// permission table, the coarse token gate applied to every non exempt
// request, and the fine grained permission checker used per route.
package rbac

import (
	"context"
	"time"
)

// Role is one of the closed set of account roles.
type Role string

const (
	// RoleUser is the default role for citizen accounts.
	RoleUser Role = "user"
	// RoleAdmin marks administrator accounts.
	RoleAdmin Role = "admin"
)

// Roles lists every accepted role value.
func Roles() []Role {
	return []Role{RoleUser, RoleAdmin}
}

// Valid reports whether the role is one of the accepted values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Action is a CRUD verb on a resource.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Resource names a protected entity collection.
type Resource string

const (
	ResourceUsers        Resource = "users"
	ResourceUsersProfile Resource = "users_profile"
	ResourceReports      Resource = "reports"
	ResourceDistricts    Resource = "districts"
	ResourceVillages     Resource = "villages"
	ResourceFeedbackUser Resource = "feedback_user"
)

// Permission is a resource action pair in "resource.action" form.
type Permission string

// Perm builds a Permission from a resource and an action.
func Perm(res Resource, act Action) Permission {
	return Permission(string(res) + "." + string(act))
}

// Principal is the authenticated actor attached to the request context by
// the authorization gate. It lives for the duration of one request.
type Principal struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       Role      `json:"role"`
	IsVerified bool      `json:"is_verified"`
	ExpiresAt  time.Time `json:"-"`
	Expires    string    `json:"expires"`
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}
