package auth_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/GenQServe/citilyst-backend/internal/auth"
	"github.com/GenQServe/citilyst-backend/internal/token"
	"github.com/GenQServe/citilyst-backend/internal/users"
	"github.com/GenQServe/citilyst-backend/jobs"
	_ "github.com/GenQServe/citilyst-backend/testing"
)

type stubUserStore struct {
	byEmail map[string]users.User
	byID    map[string]users.User
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{byEmail: map[string]users.User{}, byID: map[string]users.User{}}
}

func (s *stubUserStore) put(u users.User) {
	s.byEmail[u.Email] = u
	s.byID[u.ID] = u
}

func (s *stubUserStore) Create(ctx context.Context, u users.User) (users.User, error) {
	if _, ok := s.byEmail[u.Email]; ok {
		return users.User{}, users.ErrEmailTaken
	}
	s.put(u)
	return u, nil
}

func (s *stubUserStore) FindByID(ctx context.Context, id string) (users.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func (s *stubUserStore) FindByEmail(ctx context.Context, email string) (users.User, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func (s *stubUserStore) Update(ctx context.Context, u users.User) (users.User, error) {
	if _, ok := s.byID[u.ID]; !ok {
		return users.User{}, users.ErrNotFound
	}
	s.put(u)
	return u, nil
}

func (s *stubUserStore) SetVerified(ctx context.Context, id string, verified bool) error {
	u, ok := s.byID[id]
	if !ok {
		return users.ErrNotFound
	}
	u.IsVerified = verified
	s.put(u)
	return nil
}

type stubQueue struct {
	sent []jobs.SendEmailPayload
}

func (s *stubQueue) EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error) {
	s.sent = append(s.sent, payload)
	return &asynq.TaskInfo{}, nil
}

func newAuthService(t *testing.T, store *stubUserStore, queue *stubQueue) (*auth.Service, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	codec, err := token.NewCodec("auth-secret", 24*time.Hour, 720*time.Hour)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	authStore := auth.NewStore(redisClient, 5*time.Minute)
	google := auth.NewGoogle("test-client", "test-secret", "http://localhost:8080/auth/google/callback")
	svc := auth.NewService(store, codec, authStore, google, queue, "http://localhost:3000", slog.Default())
	return svc, redisClient
}

func TestRegisterSendsOTP(t *testing.T) {
	store := newStubUserStore()
	queue := &stubQueue{}
	svc, redisClient := newAuthService(t, store, queue)

	u, err := svc.Register(context.Background(), auth.RegisterInput{
		Email:    "Warga@Test.Local",
		Name:     "Warga Satu",
		Password: "rahasia-kuat",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Email != "warga@test.local" {
		t.Fatalf("expected lowercased email, got %q", u.Email)
	}
	if u.IsVerified {
		t.Fatalf("new accounts must start unverified")
	}
	if u.Role != "user" {
		t.Fatalf("expected default role user, got %q", u.Role)
	}

	code, err := redisClient.Get(context.Background(), "otp:"+u.ID).Result()
	if err != nil {
		t.Fatalf("expected otp stored: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6 digit code, got %q", code)
	}
	if len(queue.sent) != 1 {
		t.Fatalf("expected one email enqueued, got %d", len(queue.sent))
	}
	if queue.sent[0].To != u.Email {
		t.Fatalf("email addressed to %q", queue.sent[0].To)
	}
	if !strings.Contains(queue.sent[0].Body, code) {
		t.Fatalf("expected otp code embedded in email body")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newStubUserStore()
	store.put(users.User{ID: "u1", Email: "warga@test.local"})
	svc, _ := newAuthService(t, store, &stubQueue{})

	_, err := svc.Register(context.Background(), auth.RegisterInput{
		Email:    "warga@test.local",
		Name:     "Warga",
		Password: "rahasia-kuat",
	})
	if !errors.Is(err, users.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestVerifyOTPMarksVerified(t *testing.T) {
	store := newStubUserStore()
	queue := &stubQueue{}
	svc, redisClient := newAuthService(t, store, queue)

	u, err := svc.Register(context.Background(), auth.RegisterInput{
		Email:    "warga@test.local",
		Name:     "Warga",
		Password: "rahasia-kuat",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	code, err := redisClient.Get(context.Background(), "otp:"+u.ID).Result()
	if err != nil {
		t.Fatalf("load otp: %v", err)
	}

	if err := svc.VerifyOTP(context.Background(), u.Email, code); err != nil {
		t.Fatalf("verify otp: %v", err)
	}
	verified, err := store.FindByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if !verified.IsVerified {
		t.Fatalf("expected account verified")
	}

	// Codes are single use.
	if err := svc.VerifyOTP(context.Background(), u.Email, code); !errors.Is(err, auth.ErrOTPMismatch) {
		t.Fatalf("expected consumed code to fail, got %v", err)
	}
}

func TestVerifyOTPWrongCode(t *testing.T) {
	store := newStubUserStore()
	svc, _ := newAuthService(t, store, &stubQueue{})

	u, err := svc.Register(context.Background(), auth.RegisterInput{
		Email:    "warga@test.local",
		Name:     "Warga",
		Password: "rahasia-kuat",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.VerifyOTP(context.Background(), u.Email, "000000"); !errors.Is(err, auth.ErrOTPMismatch) {
		t.Fatalf("expected ErrOTPMismatch, got %v", err)
	}
}

func TestResendOTPAlreadyVerified(t *testing.T) {
	store := newStubUserStore()
	store.put(users.User{ID: "u1", Email: "warga@test.local", IsVerified: true})
	svc, _ := newAuthService(t, store, &stubQueue{})

	if err := svc.ResendOTP(context.Background(), "warga@test.local"); !errors.Is(err, auth.ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}
}

func TestLoginSuccess(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("rahasia-kuat"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	store := newStubUserStore()
	store.put(users.User{
		ID:           "u1",
		Email:        "warga@test.local",
		Name:         "Warga",
		Role:         "user",
		IsVerified:   true,
		PasswordHash: string(hashed),
	})
	svc, _ := newAuthService(t, store, &stubQueue{})

	pair, u, err := svc.Login(context.Background(), "warga@test.local", "rahasia-kuat")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u.ID != "u1" {
		t.Fatalf("unexpected user %q", u.ID)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected both tokens issued")
	}
	if pair.TokenType != "bearer" {
		t.Fatalf("unexpected token type %q", pair.TokenType)
	}

	codec, err := token.NewCodec("auth-secret", 24*time.Hour, 720*time.Hour)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	claims, err := codec.Decode(pair.AccessToken)
	if err != nil {
		t.Fatalf("decode access token: %v", err)
	}
	if claims.Subject != "u1" || claims.Role != "user" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("rahasia-kuat"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	store := newStubUserStore()
	store.put(users.User{ID: "u1", Email: "warga@test.local", IsVerified: true, PasswordHash: string(hashed)})
	svc, _ := newAuthService(t, store, &stubQueue{})

	if _, _, err := svc.Login(context.Background(), "warga@test.local", "salah"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newAuthService(t, newStubUserStore(), &stubQueue{})
	if _, _, err := svc.Login(context.Background(), "ghost@test.local", "apapun"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginGoogleOnlyAccountHasNoPassword(t *testing.T) {
	store := newStubUserStore()
	store.put(users.User{ID: "u1", Email: "warga@test.local", IsVerified: true})
	svc, _ := newAuthService(t, store, &stubQueue{})

	if _, _, err := svc.Login(context.Background(), "warga@test.local", "apapun"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnverifiedAccount(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("rahasia-kuat"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	store := newStubUserStore()
	store.put(users.User{ID: "u1", Email: "warga@test.local", PasswordHash: string(hashed)})
	svc, _ := newAuthService(t, store, &stubQueue{})

	if _, _, err := svc.Login(context.Background(), "warga@test.local", "rahasia-kuat"); !errors.Is(err, auth.ErrNotVerified) {
		t.Fatalf("expected ErrNotVerified, got %v", err)
	}
}

func TestGoogleLoginURLStoresState(t *testing.T) {
	svc, redisClient := newAuthService(t, newStubUserStore(), &stubQueue{})

	consentURL, err := svc.GoogleLoginURL(context.Background(), "http://app.test/dashboard", "/reports")
	if err != nil {
		t.Fatalf("google login url: %v", err)
	}
	if !strings.Contains(consentURL, "accounts.google.com") {
		t.Fatalf("expected google consent url, got %q", consentURL)
	}

	keys, err := redisClient.Keys(context.Background(), "redirect_uri:*").Result()
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("expected one stored state, got %d", len(keys))
	}
	stored, err := redisClient.Get(context.Background(), keys[0]).Result()
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if stored != "http://app.test/dashboard" {
		t.Fatalf("unexpected redirect uri %q", stored)
	}
}

func TestGoogleLoginURLUnconfigured(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	codec, err := token.NewCodec("auth-secret", 24*time.Hour, 720*time.Hour)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	svc := auth.NewService(newStubUserStore(), codec, auth.NewStore(redisClient, 5*time.Minute),
		auth.NewGoogle("", "", ""), &stubQueue{}, "http://localhost:3000", slog.Default())

	if _, err := svc.GoogleLoginURL(context.Background(), "", ""); !errors.Is(err, auth.ErrGoogleNotConfigured) {
		t.Fatalf("expected ErrGoogleNotConfigured, got %v", err)
	}
}
