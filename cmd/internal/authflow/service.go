package authflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"usersvc/cmd/identity"
	"usersvc/cmd/internal/envelope"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "usersvc/authflow"

// ErrNilProvider is returned by NewService without a provider.
var ErrNilProvider = errors.New("authflow: nil identity provider")

// RegisterResult is the success payload of Register.
type RegisterResult struct {
	UserID string `json:"userId"`
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger used for failure events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithTracer sets the tracer used for provider spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// Service runs the identity operations against a Provider. It holds no mutable state and is
// safe for concurrent use.
type Service struct {
	provider identity.Provider
	log      *slog.Logger
	tracer   trace.Tracer
}

// NewService constructs a Service backed by p.
func NewService(p identity.Provider, opts ...Option) (*Service, error) {
	if p == nil {
		return nil, ErrNilProvider
	}
	s := &Service{
		provider: p,
		log:      slog.Default(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Register creates an account for email.
func (s *Service) Register(ctx context.Context, email, password string) envelope.Envelope[RegisterResult] {
	email = identity.NormalizeEmail(email)
	if email == "" || password == "" {
		return envelope.Failf[RegisterResult](envelope.CodeInvalidRequest, "Email and password are required")
	}

	var out identity.SignUpResult
	err := s.call(ctx, OpRegister, func(ctx context.Context) error {
		var err error
		out, err = s.provider.SignUp(ctx, email, password)
		return err
	})
	if err != nil {
		return envelope.Fail[RegisterResult](s.fail(ctx, OpRegister, err))
	}
	s.log.InfoContext(ctx, "authflow.register.ok", "user_id", out.UserSub, "confirmed", out.Confirmed)
	return envelope.OK(RegisterResult{UserID: out.UserSub})
}

// Authenticate signs email in with a password.
//
// A pending MFA_SETUP or SOFTWARE_TOKEN_MFA challenge yields the MFA_REQUIRED soft outcome
// carrying the challenge name and session; the caller continues with VerifySecondFactor.
func (s *Service) Authenticate(ctx context.Context, email, password string) envelope.Envelope[identity.AuthResult] {
	email = identity.NormalizeEmail(email)
	if email == "" || password == "" {
		return envelope.Failf[identity.AuthResult](envelope.CodeInvalidRequest, "Email and password are required")
	}

	var out identity.AuthOutput
	err := s.call(ctx, OpAuthenticate, func(ctx context.Context) error {
		var err error
		out, err = s.provider.InitiateAuth(ctx, email, password)
		return err
	})
	if err != nil {
		return envelope.Fail[identity.AuthResult](s.fail(ctx, OpAuthenticate, err))
	}

	switch out.ChallengeName {
	case identity.ChallengeMFASetup, identity.ChallengeSoftwareTokenMFA:
		return envelope.Fail[identity.AuthResult](envelope.Error{
			Code:      envelope.CodeMFARequired,
			Message:   "MFA authentication required",
			Challenge: out.ChallengeName,
			Session:   out.Session,
		})
	}
	// Other challenges complete without tokens; the caller gets a success with no data.
	return envelope.New(out.Result, nil)
}

// SignOut revokes every token of the user that owns accessToken.
func (s *Service) SignOut(ctx context.Context, accessToken string) envelope.Envelope[bool] {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return envelope.Failf[bool](envelope.CodeInvalidRequest, "Access token is required")
	}

	err := s.call(ctx, OpSignOut, func(ctx context.Context) error {
		return s.provider.GlobalSignOut(ctx, accessToken)
	})
	if err != nil {
		return envelope.Fail[bool](s.fail(ctx, OpSignOut, err))
	}
	return envelope.OK(true)
}

// ConfirmRegistration confirms an account with the emailed code.
func (s *Service) ConfirmRegistration(ctx context.Context, email, code string) envelope.Envelope[bool] {
	email = identity.NormalizeEmail(email)
	code = identity.NormalizeCode(code)
	if email == "" || code == "" {
		return envelope.Failf[bool](envelope.CodeInvalidRequest, "Email and verification code are required")
	}

	err := s.call(ctx, OpConfirmRegistration, func(ctx context.Context) error {
		return s.provider.ConfirmSignUp(ctx, email, code)
	})
	if err != nil {
		return envelope.Fail[bool](s.fail(ctx, OpConfirmRegistration, err))
	}
	return envelope.OK(true)
}

// InitiatePasswordReset sends a reset code to email.
func (s *Service) InitiatePasswordReset(ctx context.Context, email string) envelope.Envelope[bool] {
	email = identity.NormalizeEmail(email)
	if email == "" {
		return envelope.Failf[bool](envelope.CodeInvalidRequest, "Email is required")
	}

	err := s.call(ctx, OpInitiatePasswordReset, func(ctx context.Context) error {
		return s.provider.ForgotPassword(ctx, email)
	})
	if err != nil {
		return envelope.Fail[bool](s.fail(ctx, OpInitiatePasswordReset, err))
	}
	return envelope.OK(true)
}

// ConfirmPasswordReset sets newPassword using the reset code.
func (s *Service) ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) envelope.Envelope[bool] {
	email = identity.NormalizeEmail(email)
	code = identity.NormalizeCode(code)
	if email == "" || code == "" || newPassword == "" {
		return envelope.Failf[bool](envelope.CodeInvalidRequest, "Email, code, and new password are required")
	}

	err := s.call(ctx, OpConfirmPasswordReset, func(ctx context.Context) error {
		return s.provider.ConfirmForgotPassword(ctx, email, code, newPassword)
	})
	if err != nil {
		return envelope.Fail[bool](s.fail(ctx, OpConfirmPasswordReset, err))
	}
	return envelope.OK(true)
}

// VerifySecondFactor answers the pending challenge of session with code.
// An empty challenge answers as CUSTOM_CHALLENGE.
func (s *Service) VerifySecondFactor(ctx context.Context, email, code, session, challenge string) envelope.Envelope[identity.AuthResult] {
	session = strings.TrimSpace(session)
	if session == "" {
		return envelope.Failf[identity.AuthResult](envelope.CodeInvalidSession, "Session token is required for MFA verification")
	}
	email = identity.NormalizeEmail(email)
	code = identity.NormalizeCode(code)
	if email == "" || code == "" {
		return envelope.Failf[identity.AuthResult](envelope.CodeInvalidRequest, "Email, code, and session are required")
	}

	var out identity.AuthOutput
	err := s.call(ctx, OpVerifySecondFactor, func(ctx context.Context) error {
		var err error
		out, err = s.provider.RespondToChallenge(ctx, identity.ChallengeInput{
			ChallengeName: strings.TrimSpace(challenge),
			Username:      email,
			Answer:        code,
			Session:       session,
		})
		return err
	})
	if err != nil {
		return envelope.Fail[identity.AuthResult](s.fail(ctx, OpVerifySecondFactor, err))
	}
	if out.Result == nil {
		s.log.InfoContext(ctx, "authflow.verify_second_factor.no_result",
			"challenge", out.ChallengeName,
		)
		return envelope.Failf[identity.AuthResult](envelope.CodeMFAFailed, "MFA verification failed")
	}
	return envelope.OK(*out.Result)
}

// call runs one provider round-trip inside a span.
func (s *Service) call(ctx context.Context, op Operation, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "authflow."+string(op),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()

	err := fn(ctx)
	if err != nil {
		if kind, ok := identity.KindOf(err); ok {
			span.SetAttributes(attribute.String("identity.failure", string(kind)))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider call failed")
	}
	return err
}

// fail classifies err and logs it. Unclassified failures keep the raw cause server-side.
func (s *Service) fail(ctx context.Context, op Operation, err error) envelope.Error {
	res := Classify(op, err)
	kind, _ := identity.KindOf(err)
	if res.Code != envelope.CodeInternalError {
		s.log.InfoContext(ctx, "authflow."+string(op)+".fail",
			"failure", string(kind),
			"code", string(res.Code),
		)
		return res
	}
	s.log.ErrorContext(ctx, "authflow."+string(op)+".unclassified",
		"failure", string(kind),
		"err", err,
	)
	return res
}
