// Package auth implements registration, credential and Google OAuth2 login,
// and OTP email verification.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"golang.org/x/crypto/bcrypt"

	"github.com/GenQServe/citilyst-backend/internal/mailer"
	"github.com/GenQServe/citilyst-backend/internal/rbac"
	"github.com/GenQServe/citilyst-backend/internal/token"
	"github.com/GenQServe/citilyst-backend/internal/users"
	"github.com/GenQServe/citilyst-backend/jobs"
)

var (
	// ErrInvalidCredentials covers unknown email, missing password, and mismatch.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrNotVerified is returned when an unverified account attempts to log in.
	ErrNotVerified = errors.New("auth: account not verified")
	// ErrAlreadyVerified is returned when OTP is requested for a verified account.
	ErrAlreadyVerified = errors.New("auth: account already verified")
	// ErrGoogleNotConfigured is returned when OAuth2 credentials are absent.
	ErrGoogleNotConfigured = errors.New("auth: google sign-in not configured")
)

// UserStore is the slice of the users repository the auth service needs.
type UserStore interface {
	Create(ctx context.Context, u users.User) (users.User, error)
	FindByID(ctx context.Context, id string) (users.User, error)
	FindByEmail(ctx context.Context, email string) (users.User, error)
	Update(ctx context.Context, u users.User) (users.User, error)
	SetVerified(ctx context.Context, id string, verified bool) error
}

// EmailQueue enqueues transactional emails for the background worker.
type EmailQueue interface {
	EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error)
}

// TokenPair carries the issued session tokens.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
}

// RegisterInput are the fields accepted at registration time.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// Service implements the authentication flows.
type Service struct {
	store       UserStore
	codec       *token.Codec
	authStore   *Store
	google      *Google
	queue       EmailQueue
	frontendURL string
	logger      *slog.Logger
}

// NewService wires the authentication service.
func NewService(store UserStore, codec *token.Codec, authStore *Store, google *Google, queue EmailQueue, frontendURL string, logger *slog.Logger) *Service {
	return &Service{
		store:       store,
		codec:       codec,
		authStore:   authStore,
		google:      google,
		queue:       queue,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger,
	}
}

// Register creates an unverified account and emails a verification code.
func (s *Service) Register(ctx context.Context, in RegisterInput) (users.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return users.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := users.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Name:         in.Name,
		Role:         string(rbac.RoleUser),
		PasswordHash: string(hash),
	}
	created, err := s.store.Create(ctx, u)
	if err != nil {
		return users.User{}, err
	}
	if err := s.sendOTP(ctx, created); err != nil {
		s.logger.Error("send verification email", slog.String("user_id", created.ID), slog.Any("error", err))
	}
	return created, nil
}

// Login authenticates by email and password and issues access and refresh tokens.
func (s *Service) Login(ctx context.Context, email, password string) (TokenPair, users.User, error) {
	u, err := s.store.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if users.IsNotFound(err) {
			return TokenPair{}, users.User{}, ErrInvalidCredentials
		}
		return TokenPair{}, users.User{}, err
	}
	if !u.HasPassword() {
		return TokenPair{}, users.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return TokenPair{}, users.User{}, ErrInvalidCredentials
	}
	if !u.IsVerified {
		return TokenPair{}, users.User{}, ErrNotVerified
	}
	pair, err := s.issueTokens(u, true)
	if err != nil {
		return TokenPair{}, users.User{}, err
	}
	return pair, u, nil
}

// GoogleLoginURL stores the caller's redirect target and returns the consent URL.
func (s *Service) GoogleLoginURL(ctx context.Context, redirectURI, path string) (string, error) {
	if !s.google.Configured() {
		return "", ErrGoogleNotConfigured
	}
	state := uuid.NewString()
	if redirectURI == "" {
		redirectURI = s.frontendURL
	}
	if err := s.authStore.SaveState(ctx, state, redirectURI, path); err != nil {
		return "", err
	}
	return s.google.ConsentURL(state), nil
}

// GoogleCallbackResult is the outcome of a completed OAuth2 flow.
type GoogleCallbackResult struct {
	AccessToken string
	RedirectURL string
	User        users.User
}

// GoogleCallback validates state, exchanges the code, upserts a verified user,
// and issues an access token for the browser redirect.
func (s *Service) GoogleCallback(ctx context.Context, state, code string) (GoogleCallbackResult, error) {
	redirectURI, path, err := s.authStore.TakeState(ctx, state)
	if err != nil {
		return GoogleCallbackResult{}, err
	}
	profile, err := s.google.Exchange(ctx, code)
	if err != nil {
		return GoogleCallbackResult{}, err
	}
	u, err := s.upsertGoogleUser(ctx, profile)
	if err != nil {
		return GoogleCallbackResult{}, err
	}
	pair, err := s.issueTokens(u, false)
	if err != nil {
		return GoogleCallbackResult{}, err
	}
	return GoogleCallbackResult{
		AccessToken: pair.AccessToken,
		RedirectURL: buildRedirect(redirectURI, path),
		User:        u,
	}, nil
}

// VerifyOTP checks the emailed code and marks the account verified.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) error {
	u, err := s.store.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	if err := s.authStore.VerifyOTP(ctx, u.ID, code); err != nil {
		return err
	}
	return s.store.SetVerified(ctx, u.ID, true)
}

// ResendOTP issues a fresh code for an unverified account.
func (s *Service) ResendOTP(ctx context.Context, email string) error {
	u, err := s.store.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	if u.IsVerified {
		return ErrAlreadyVerified
	}
	return s.sendOTP(ctx, u)
}

// Me resolves the live user record behind a bearer token.
func (s *Service) Me(ctx context.Context, rawToken string) (users.User, error) {
	claims, err := s.codec.Decode(rawToken)
	if err != nil {
		return users.User{}, err
	}
	return s.store.FindByID(ctx, claims.Subject)
}

func (s *Service) issueTokens(u users.User, withRefresh bool) (TokenPair, error) {
	id := token.Identity{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       u.Role,
		IsVerified: u.IsVerified,
		Picture:    u.ImageURL,
	}
	access, err := s.codec.EncodeAccess(id)
	if err != nil {
		return TokenPair{}, err
	}
	pair := TokenPair{AccessToken: access, TokenType: "bearer"}
	if withRefresh {
		refresh, err := s.codec.EncodeRefresh(id)
		if err != nil {
			return TokenPair{}, err
		}
		pair.RefreshToken = refresh
	}
	return pair, nil
}

func (s *Service) upsertGoogleUser(ctx context.Context, profile *GoogleProfile) (users.User, error) {
	email := strings.ToLower(profile.Email)
	u, err := s.store.FindByEmail(ctx, email)
	if err == nil {
		changed := false
		if u.Name == "" && profile.Name != "" {
			u.Name = profile.Name
			changed = true
		}
		if u.ImageURL == "" && profile.Picture != "" {
			u.ImageURL = profile.Picture
			changed = true
		}
		if !u.IsVerified {
			if err := s.store.SetVerified(ctx, u.ID, true); err != nil {
				return users.User{}, err
			}
			u.IsVerified = true
		}
		if changed {
			return s.store.Update(ctx, u)
		}
		return u, nil
	}
	if !users.IsNotFound(err) {
		return users.User{}, err
	}
	return s.store.Create(ctx, users.User{
		ID:         uuid.NewString(),
		Email:      email,
		Name:       profile.Name,
		ImageURL:   profile.Picture,
		Role:       string(rbac.RoleUser),
		IsVerified: true,
	})
}

func (s *Service) sendOTP(ctx context.Context, u users.User) error {
	code, err := s.authStore.IssueOTP(ctx, u.ID)
	if err != nil {
		return err
	}
	body, err := mailer.RenderOTP(code)
	if err != nil {
		return err
	}
	_, err = s.queue.EnqueueSendEmail(ctx, jobs.SendEmailPayload{
		To:      u.Email,
		Subject: "Kode Verifikasi Akun Citilyst",
		Body:    body,
	})
	return err
}

func buildRedirect(redirectURI, path string) string {
	target := redirectURI
	if path != "" {
		target = strings.TrimRight(redirectURI, "/") + "/" + strings.TrimLeft(path, "/")
	}
	if _, err := url.Parse(target); err != nil {
		return redirectURI
	}
	return target
}
