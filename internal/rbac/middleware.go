package rbac

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/GenQServe/citilyst-backend/internal/platform/httpx"
	"github.com/GenQServe/citilyst-backend/internal/token"
)

// defaultExemptPaths never require authentication. They are appended to any
// configured exemptions at construction.
var defaultExemptPaths = []string{
	"/docs",
	"/redoc",
	"/openapi.json",
	"/healthz",
	"/auth/login",
	"/auth/register",
	"/auth/google",
	"/auth/google/callback",
	"/auth/verify-otp",
	"/auth/resend-otp",
	"/auth/me",
	"/feedback-user",
	"/static/*",
}

// Rejection messages emitted by the gate.
const (
	msgTokenMissing  = "Authentication required. Please provide a valid Bearer token."
	msgTokenInvalid  = "Invalid authentication token. Please log in again."
	msgMissingExpiry = "Invalid token: missing expiration time."
	msgRoleRejected  = "Insufficient permissions"
	msgInternal      = "Internal server error"
)

// Gate is the coarse grained authorization middleware. For every non exempt
// path it requires a valid, unexpired bearer token with an accepted role and
// attaches the resulting principal to the request context.
type Gate struct {
	codec  *token.Codec
	logger *slog.Logger
	exempt []string
	now    func() time.Time
}

// NewGate constructs a Gate. The default exempt paths are always appended to
// the supplied list.
func NewGate(codec *token.Codec, logger *slog.Logger, exemptPaths ...string) *Gate {
	exempt := make([]string, 0, len(exemptPaths)+len(defaultExemptPaths))
	exempt = append(exempt, exemptPaths...)
	exempt = append(exempt, defaultExemptPaths...)
	return &Gate{codec: codec, logger: logger, exempt: exempt, now: time.Now}
}

// WithClock overrides the time source. Intended for tests.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

// Authenticate is the middleware entry point.
func (g *Gate) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if g.logger != nil {
					g.logger.Error("authorization gate panic", slog.Any("panic", rec))
				}
				httpx.Error(w, http.StatusInternalServerError, msgInternal)
			}
		}()

		if g.pathExempt(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		raw := bearerToken(r)
		if raw == "" {
			httpx.Error(w, http.StatusUnauthorized, msgTokenMissing)
			return
		}

		claims, err := g.codec.Decode(raw)
		switch {
		case err == nil:
		case errors.Is(err, token.ErrTokenExpired):
			elapsed := g.now().Sub(claims.ExpiresAt.Time)
			httpx.Error(w, http.StatusUnauthorized,
				fmt.Sprintf("Authentication token expired %s ago. Please log in again.", humanizeElapsed(elapsed)))
			return
		case errors.Is(err, token.ErrTokenMissingExpiry):
			httpx.Error(w, http.StatusUnauthorized, msgMissingExpiry)
			return
		default:
			if g.logger != nil {
				g.logger.Warn("token decode failed", slog.String("path", r.URL.Path), slog.Any("error", err))
			}
			httpx.Error(w, http.StatusUnauthorized, msgTokenInvalid)
			return
		}

		role := Role(strings.ToLower(strings.TrimSpace(claims.Role)))
		if !role.Valid() {
			httpx.Error(w, http.StatusForbidden, msgRoleRejected)
			return
		}

		expiresAt := claims.ExpiresAt.Time
		principal := &Principal{
			ID:         claims.Subject,
			Email:      claims.Email,
			Name:       claims.Name,
			Role:       role,
			IsVerified: claims.IsVerified,
			ExpiresAt:  expiresAt,
			Expires:    expiresAt.UTC().Format(time.RFC3339),
		}
		next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
	})
}

func (g *Gate) pathExempt(path string) bool {
	for _, allowed := range g.exempt {
		if allowed == path {
			return true
		}
		if strings.HasSuffix(allowed, "*") && strings.HasPrefix(path, strings.TrimSuffix(allowed, "*")) {
			return true
		}
	}
	return false
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// humanizeElapsed renders an elapsed duration at minute granularity under an
// hour, hour granularity under a day, otherwise in days.
func humanizeElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d.Minutes())
	if minutes < 1 {
		minutes = 1
	}
	if minutes < 60 {
		return pluralize(minutes, "minute")
	}
	hours := int(d.Hours())
	if hours < 24 {
		return pluralize(hours, "hour")
	}
	return pluralize(hours/24, "day")
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
