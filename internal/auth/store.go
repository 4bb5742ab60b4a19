package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrOTPMismatch is returned when a submitted code does not match the stored one
// or the stored code already expired.
var ErrOTPMismatch = errors.New("auth: otp invalid or expired")

// ErrStateInvalid is returned when an OAuth state token is unknown or expired.
var ErrStateInvalid = errors.New("auth: oauth state invalid or expired")

const oauthStateTTL = time.Hour

// Store keeps short-lived verification codes and OAuth state in Redis.
type Store struct {
	client *redis.Client
	otpTTL time.Duration
}

// NewStore constructs the Redis-backed auth store.
func NewStore(client *redis.Client, otpTTL time.Duration) *Store {
	if otpTTL <= 0 {
		otpTTL = 5 * time.Minute
	}
	return &Store{client: client, otpTTL: otpTTL}
}

func otpKey(userID string) string {
	return fmt.Sprintf("otp:%s", userID)
}

// IssueOTP generates a six digit code and stores it under the user's key,
// replacing any previous code.
func (s *Store) IssueOTP(ctx context.Context, userID string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, otpKey(userID), code, s.otpTTL).Err(); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}
	return code, nil
}

// VerifyOTP compares the submitted code against the stored one and consumes it
// on success.
func (s *Store) VerifyOTP(ctx context.Context, userID, code string) error {
	stored, err := s.client.Get(ctx, otpKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return ErrOTPMismatch
	}
	if err != nil {
		return fmt.Errorf("load otp: %w", err)
	}
	if stored != code {
		return ErrOTPMismatch
	}
	if err := s.client.Del(ctx, otpKey(userID)).Err(); err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	return nil
}

// SaveState records the OAuth redirect target keyed by the state token.
func (s *Store) SaveState(ctx context.Context, state, redirectURI, path string) error {
	if err := s.client.Set(ctx, "redirect_uri:"+state, redirectURI, oauthStateTTL).Err(); err != nil {
		return fmt.Errorf("store oauth state: %w", err)
	}
	if path != "" {
		if err := s.client.Set(ctx, "path:"+state, path, oauthStateTTL).Err(); err != nil {
			return fmt.Errorf("store oauth path: %w", err)
		}
	}
	return nil
}

// TakeState resolves and consumes a state token, returning the redirect URI and
// optional path recorded at login start.
func (s *Store) TakeState(ctx context.Context, state string) (redirectURI, path string, err error) {
	redirectURI, err = s.client.Get(ctx, "redirect_uri:"+state).Result()
	if errors.Is(err, redis.Nil) {
		return "", "", ErrStateInvalid
	}
	if err != nil {
		return "", "", fmt.Errorf("load oauth state: %w", err)
	}
	path, err = s.client.Get(ctx, "path:"+state).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", "", fmt.Errorf("load oauth path: %w", err)
	}
	s.client.Del(ctx, "redirect_uri:"+state, "path:"+state)
	return redirectURI, path, nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
