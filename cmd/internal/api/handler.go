// Package api exposes the identity and profile operations over HTTP.
//
// Every route answers with a JSON envelope. Operation results are written with the status
// resolved from the envelope; transport-level rejections (method, body, bearer, throttling)
// also use the envelope shape.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"usersvc/cmd/identity"
	"usersvc/cmd/internal/authflow"
	"usersvc/cmd/internal/envelope"
	"usersvc/cmd/internal/profile"
)

// AuthService is the identity operation surface consumed by the handler.
// *authflow.Service satisfies it.
type AuthService interface {
	Register(ctx context.Context, email, password string) envelope.Envelope[authflow.RegisterResult]
	Authenticate(ctx context.Context, email, password string) envelope.Envelope[identity.AuthResult]
	SignOut(ctx context.Context, accessToken string) envelope.Envelope[bool]
	ConfirmRegistration(ctx context.Context, email, code string) envelope.Envelope[bool]
	InitiatePasswordReset(ctx context.Context, email string) envelope.Envelope[bool]
	ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) envelope.Envelope[bool]
	VerifySecondFactor(ctx context.Context, email, code, session, challenge string) envelope.Envelope[identity.AuthResult]
}

// ProfileService is the profile operation surface consumed by the handler.
// *profile.Service satisfies it.
type ProfileService interface {
	Upsert(ctx context.Context, p profile.Profile) envelope.Envelope[profile.Profile]
	Fetch(ctx context.Context, id string) envelope.Envelope[profile.Profile]
}

// OutcomeObserver receives the route and resulting code ("" on success) of every
// envelope the handler writes.
type OutcomeObserver func(route string, code envelope.Code)

// Handler wires HTTP routes to the operation services.
type Handler struct {
	log *slog.Logger
	cfg Config

	auth     AuthService
	profiles ProfileService

	limiter  *ClientLimiter
	observer OutcomeObserver
}

// HandlerOption configures optional handler dependencies.
type HandlerOption func(*Handler)

// WithOutcomeObserver registers a callback for envelope outcomes (metrics).
func WithOutcomeObserver(fn OutcomeObserver) HandlerOption {
	return func(h *Handler) {
		if h == nil || fn == nil {
			return
		}
		h.observer = fn
	}
}

// WithClientLimiter overrides the limiter built from Config.
func WithClientLimiter(l *ClientLimiter) HandlerOption {
	return func(h *Handler) {
		if h == nil {
			return
		}
		h.limiter = l
	}
}

// NewHandler constructs a Handler.
func NewHandler(log *slog.Logger, auth AuthService, profiles ProfileService, cfg Config, opts ...HandlerOption) (*Handler, error) {
	if auth == nil || profiles == nil {
		return nil, errors.New("api: nil service")
	}
	if log == nil {
		log = slog.Default()
	}
	cfg = cfg.withDefaults()

	h := &Handler{
		log:      log,
		cfg:      cfg,
		auth:     auth,
		profiles: profiles,
	}
	if cfg.RateLimitEnabled {
		h.limiter = NewClientLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 0)
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(h)
	}
	return h, nil
}

// Register wires the API routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.Handle("/signup", h.throttle(http.HandlerFunc(h.handleSignUp)))
	mux.Handle("/signin", h.throttle(http.HandlerFunc(h.handleSignIn)))
	mux.Handle("/signout", h.throttle(http.HandlerFunc(h.handleSignOut)))
	mux.Handle("/verify-account", h.throttle(http.HandlerFunc(h.handleVerifyAccount)))
	mux.Handle("/verify-mfa", h.throttle(http.HandlerFunc(h.handleVerifyMFA)))
	mux.Handle("/forgot-password", h.throttle(http.HandlerFunc(h.handleForgotPassword)))
	mux.Handle("/confirm-forgot-password", h.throttle(http.HandlerFunc(h.handleConfirmForgotPassword)))
	mux.Handle("/profile/save", h.throttle(h.requireBearer(http.HandlerFunc(h.handleProfileSave))))
	mux.Handle("/profile/get", h.throttle(h.requireBearer(http.HandlerFunc(h.handleProfileGet))))
	mux.HandleFunc("/healthcheck", h.handleHealthcheck)
}

// respond writes env with its resolved status and reports the outcome.
func respond[T any](h *Handler, w http.ResponseWriter, r *http.Request, env envelope.Envelope[T]) {
	h.observe(r, env.Code())
	envelope.Write(w, env)
}

// reject writes a transport-level failure with an explicit status.
func (h *Handler) reject(w http.ResponseWriter, r *http.Request, status int, code envelope.Code, msg string) {
	h.observe(r, code)
	envelope.WriteStatus(w, status, envelope.Failf[struct{}](code, msg))
}

func (h *Handler) observe(r *http.Request, code envelope.Code) {
	if h.observer != nil {
		h.observer(r.URL.Path, code)
	}
}

func (h *Handler) allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	h.reject(w, r, http.StatusMethodNotAllowed, envelope.CodeInvalidRequest, "Method not allowed")
	return false
}

// decode reads the JSON body into dst, writing INVALID_REQUEST on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, dst); err != nil {
		h.log.DebugContext(r.Context(), "api.decode.fail", "path", r.URL.Path, "err", err)
		h.reject(w, r, http.StatusBadRequest, envelope.CodeInvalidRequest, decodeErrorMessage(err))
		return false
	}
	return true
}
