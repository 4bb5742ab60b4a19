package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/GenQServe/citilyst-backend/internal/platform/httpx"
	"github.com/GenQServe/citilyst-backend/internal/token"
	"github.com/GenQServe/citilyst-backend/internal/users"
)

// Handler exposes the /auth endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	secure   bool
}

// NewHandler constructs the auth handler. secure controls the cookie flag set
// during the OAuth browser redirect.
func NewHandler(logger *slog.Logger, service *Service, secure bool) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		secure:   secure,
	}
}

// MountRoutes registers authentication routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/verify-otp", h.verifyOTP)
	r.Post("/resend-otp", h.resendOTP)
	r.Get("/google", h.googleLogin)
	r.Get("/google/callback", h.googleCallback)
	r.Get("/me", h.me)
	r.Post("/logout", h.logout)
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2"`
	Password string `json:"password" validate:"required,min=8"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	u, err := h.service.Register(r.Context(), RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			httpx.Error(w, http.StatusConflict, "Email is already registered")
			return
		}
		h.logger.Error("register user", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	httpx.Created(w, "User registered successfully. Please check your email for the verification code.", u)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	pair, u, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			httpx.Error(w, http.StatusUnauthorized, "Invalid email or password")
		case errors.Is(err, ErrNotVerified):
			httpx.Error(w, http.StatusForbidden, "Account is not verified. Please verify your email first.")
		default:
			h.logger.Error("login", slog.Any("error", err))
			httpx.Error(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	httpx.OK(w, "Login successful", map[string]any{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    pair.TokenType,
		"user":          u,
	})
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6"`
}

func (h *Handler) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.service.VerifyOTP(r.Context(), req.Email, req.Code); err != nil {
		switch {
		case users.IsNotFound(err):
			httpx.Error(w, http.StatusNotFound, "User not found")
		case errors.Is(err, ErrOTPMismatch):
			httpx.Error(w, http.StatusBadRequest, "OTP code is invalid or has expired")
		default:
			h.logger.Error("verify otp", slog.Any("error", err))
			httpx.Error(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	httpx.OK(w, "Account verified successfully", nil)
}

type resendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *Handler) resendOTP(w http.ResponseWriter, r *http.Request) {
	var req resendOTPRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.service.ResendOTP(r.Context(), req.Email); err != nil {
		switch {
		case users.IsNotFound(err):
			httpx.Error(w, http.StatusNotFound, "User not found")
		case errors.Is(err, ErrAlreadyVerified):
			httpx.Error(w, http.StatusBadRequest, "Account is already verified")
		default:
			h.logger.Error("resend otp", slog.Any("error", err))
			httpx.Error(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	httpx.OK(w, "Verification code sent. Please check your email.", nil)
}

func (h *Handler) googleLogin(w http.ResponseWriter, r *http.Request) {
	redirectURI := r.URL.Query().Get("redirect_uri")
	path := r.URL.Query().Get("path")
	consentURL, err := h.service.GoogleLoginURL(r.Context(), redirectURI, path)
	if err != nil {
		if errors.Is(err, ErrGoogleNotConfigured) {
			httpx.Error(w, http.StatusServiceUnavailable, "Google sign-in is not available")
			return
		}
		h.logger.Error("google login url", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	http.Redirect(w, r, consentURL, http.StatusTemporaryRedirect)
}

func (h *Handler) googleCallback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		httpx.Error(w, http.StatusBadRequest, "Missing state or code parameter")
		return
	}
	result, err := h.service.GoogleCallback(r.Context(), state, code)
	if err != nil {
		if errors.Is(err, ErrStateInvalid) {
			httpx.Error(w, http.StatusBadRequest, "OAuth state is invalid or has expired")
			return
		}
		h.logger.Error("google callback", slog.Any("error", err))
		httpx.Error(w, http.StatusBadGateway, "Google sign-in failed. Please try again.")
		return
	}
	// Browser flow only: the cookie is a convenience for the frontend, the
	// authorization gate reads the Authorization header exclusively.
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    result.AccessToken,
		Path:     "/",
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: false,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, result.RedirectURL, http.StatusTemporaryRedirect)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	raw := bearerToken(r)
	if raw == "" {
		httpx.Error(w, http.StatusUnauthorized, "Authentication required. Please provide a valid Bearer token.")
		return
	}
	u, err := h.service.Me(r.Context(), raw)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrTokenExpired), errors.Is(err, token.ErrTokenInvalid), errors.Is(err, token.ErrTokenMissingExpiry):
			httpx.Error(w, http.StatusUnauthorized, "Invalid authentication token. Please log in again.")
		case users.IsNotFound(err):
			httpx.Error(w, http.StatusUnauthorized, "User not found")
		default:
			h.logger.Error("resolve current user", slog.Any("error", err))
			httpx.Error(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	httpx.OK(w, "User retrieved successfully", u)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:    "access_token",
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
		MaxAge:  -1,
	})
	httpx.OK(w, "Logout successful", nil)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
