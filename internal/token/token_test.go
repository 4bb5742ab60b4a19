package token_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/GenQServe/citilyst-backend/internal/token"
)

func newCodec(t *testing.T) *token.Codec {
	t.Helper()
	c, err := token.NewCodec("test-secret", 24*time.Hour, 720*time.Hour)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return c
}

func TestNewCodecRequiresSecret(t *testing.T) {
	if _, err := token.NewCodec("", time.Hour, time.Hour); !errors.Is(err, token.ErrSecretMissing) {
		t.Fatalf("expected ErrSecretMissing, got %v", err)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	codec := newCodec(t)
	id := token.Identity{
		ID:         "user-1",
		Email:      "warga@test.local",
		Name:       "Warga Satu",
		Role:       "user",
		IsVerified: true,
		Picture:    "https://img.test/avatar.png",
	}
	raw, err := codec.EncodeAccess(id)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	claims, err := codec.Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.Subject != id.ID {
		t.Fatalf("expected subject %q, got %q", id.ID, claims.Subject)
	}
	if claims.Email != id.Email || claims.Name != id.Name || claims.Role != id.Role {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if !claims.IsVerified {
		t.Fatalf("expected verified claim")
	}
	if claims.Picture != id.Picture {
		t.Fatalf("expected picture %q, got %q", id.Picture, claims.Picture)
	}
}

func TestDecodeRejectsWrongSecret(t *testing.T) {
	codec := newCodec(t)
	other, err := token.NewCodec("other-secret", time.Hour, time.Hour)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	raw, err := other.EncodeAccess(token.Identity{ID: "user-1", Role: "user"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := codec.Decode(raw); !errors.Is(err, token.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	codec := newCodec(t)
	if _, err := codec.Decode("not-a-token"); !errors.Is(err, token.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestDecodeExpiredReturnsClaims(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	issuer := newCodec(t).WithClock(func() time.Time { return base })
	raw, err := issuer.EncodeAccess(token.Identity{ID: "user-1", Email: "warga@test.local", Role: "user"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	// Decode two hours after the 24h expiry.
	reader := newCodec(t).WithClock(func() time.Time { return base.Add(26 * time.Hour) })
	claims, err := reader.Decode(raw)
	if !errors.Is(err, token.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if claims == nil {
		t.Fatalf("expected claims alongside expiry error")
	}
	if claims.Subject != "user-1" {
		t.Fatalf("expected subject from expired token, got %q", claims.Subject)
	}
	if claims.ExpiresAt == nil {
		t.Fatalf("expected expiry present on claims")
	}
}

func TestDecodeRequiresExpiry(t *testing.T) {
	codec := newCodec(t)
	// Hand-build a signed token with no exp claim.
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "user-1",
		"email": "warga@test.local",
		"role":  "user",
	})
	raw, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := codec.Decode(raw); !errors.Is(err, token.ErrTokenMissingExpiry) {
		t.Fatalf("expected ErrTokenMissingExpiry, got %v", err)
	}
}
