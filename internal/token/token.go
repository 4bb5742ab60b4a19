// Package token encodes and decodes the signed session tokens carried by
// API clients in the Authorization header.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrSecretMissing indicates the codec was built without a signing secret.
	ErrSecretMissing = errors.New("token: signing secret is not set")
	// ErrTokenInvalid indicates a malformed token or a failed signature check.
	ErrTokenInvalid = errors.New("token: invalid token")
	// ErrTokenExpired indicates the token's expiry time has passed.
	ErrTokenExpired = errors.New("token: token expired")
	// ErrTokenMissingExpiry indicates the token carries no exp claim.
	ErrTokenMissingExpiry = errors.New("token: missing expiration time")
)

// Claims is the payload carried by every session token.
type Claims struct {
	Email      string `json:"email"`
	Name       string `json:"name,omitempty"`
	Role       string `json:"role,omitempty"`
	IsVerified bool   `json:"is_verified"`
	Picture    string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// Identity describes the user fields embedded into a token.
type Identity struct {
	ID         string
	Email      string
	Name       string
	Role       string
	IsVerified bool
	Picture    string
}

// Codec signs and verifies session tokens with a symmetric server secret.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewCodec constructs a Codec. It fails when the secret is empty so the
// process refuses to serve authenticated routes with an unset secret.
func NewCodec(secret string, accessTTL, refreshTTL time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, ErrSecretMissing
	}
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	return &Codec{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}, nil
}

// WithClock overrides the time source. Intended for tests.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

// EncodeAccess produces a signed access token for the identity.
func (c *Codec) EncodeAccess(id Identity) (string, error) {
	return c.encode(id, c.accessTTL)
}

// EncodeRefresh produces a signed long lived refresh token for the identity.
func (c *Codec) EncodeRefresh(id Identity) (string, error) {
	return c.encode(id, c.refreshTTL)
}

func (c *Codec) encode(id Identity, ttl time.Duration) (string, error) {
	now := c.now()
	claims := Claims{
		Email:      id.Email,
		Name:       id.Name,
		Role:       id.Role,
		IsVerified: id.IsVerified,
		Picture:    id.Picture,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Decode verifies the signature and expiry of a token and returns its claims.
// On expiry the claims are still returned alongside ErrTokenExpired so callers
// can report how long ago the token died.
func (c *Codec) Decode(raw string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) && parsed != nil {
			return claims, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if claims.ExpiresAt == nil {
		return claims, ErrTokenMissingExpiry
	}
	return claims, nil
}
