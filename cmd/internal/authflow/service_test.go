package authflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"

	"usersvc/cmd/identity"
	"usersvc/cmd/internal/envelope"
)

type fakeProvider struct {
	mu    sync.Mutex
	calls int
	err   error

	signUp    identity.SignUpResult
	auth      identity.AuthOutput
	challenge identity.AuthOutput

	lastChallenge identity.ChallengeInput
	lastUsername  string
}

func (f *fakeProvider) record(username string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastUsername = username
}

func (f *fakeProvider) SignUp(_ context.Context, username, _ string) (identity.SignUpResult, error) {
	f.record(username)
	return f.signUp, f.err
}

func (f *fakeProvider) InitiateAuth(_ context.Context, username, _ string) (identity.AuthOutput, error) {
	f.record(username)
	return f.auth, f.err
}

func (f *fakeProvider) ConfirmSignUp(_ context.Context, username, _ string) error {
	f.record(username)
	return f.err
}

func (f *fakeProvider) ForgotPassword(_ context.Context, username string) error {
	f.record(username)
	return f.err
}

func (f *fakeProvider) ConfirmForgotPassword(_ context.Context, username, _, _ string) error {
	f.record(username)
	return f.err
}

func (f *fakeProvider) RespondToChallenge(_ context.Context, in identity.ChallengeInput) (identity.AuthOutput, error) {
	f.record(in.Username)
	f.mu.Lock()
	f.lastChallenge = in
	f.mu.Unlock()
	return f.challenge, f.err
}

func (f *fakeProvider) GlobalSignOut(_ context.Context, _ string) error {
	f.record("")
	return f.err
}

func newTestService(t *testing.T, p identity.Provider) *Service {
	t.Helper()
	s, err := NewService(p, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return s
}

func kindErr(kind identity.Failure) error {
	return identity.Fail("test", kind, errors.New("provider said no"))
}

func TestNewService_NilProvider(t *testing.T) {
	t.Parallel()

	if _, err := NewService(nil); !errors.Is(err, ErrNilProvider) {
		t.Fatalf("err=%v want ErrNilProvider", err)
	}
}

func TestRequiredFields_NoProviderCall(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{}
	s := newTestService(t, p)
	ctx := context.Background()

	codes := []envelope.Code{
		s.Register(ctx, " ", "pw").Code(),
		s.Register(ctx, "a@example.com", "").Code(),
		s.Authenticate(ctx, "", "pw").Code(),
		s.SignOut(ctx, "").Code(),
		s.ConfirmRegistration(ctx, "a@example.com", " ").Code(),
		s.InitiatePasswordReset(ctx, "").Code(),
		s.ConfirmPasswordReset(ctx, "a@example.com", "123", "").Code(),
		s.VerifySecondFactor(ctx, "", "123", "sess", "").Code(),
	}
	for i, c := range codes {
		if c != envelope.CodeInvalidRequest {
			t.Fatalf("case %d: code=%s want INVALID_REQUEST", i, c)
		}
	}
	if p.calls != 0 {
		t.Fatalf("provider called %d times on invalid input", p.calls)
	}
}

func TestVerifySecondFactor_MissingSessionIsInvalidSession(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{}
	s := newTestService(t, p)

	// Checked before the other required fields.
	env := s.VerifySecondFactor(context.Background(), "", "", "  ", "")
	if env.Code() != envelope.CodeInvalidSession {
		t.Fatalf("code=%s want INVALID_SESSION", env.Code())
	}
	if env.Status() != http.StatusUnauthorized {
		t.Fatalf("status=%d want 401", env.Status())
	}
	if p.calls != 0 {
		t.Fatalf("provider must not be called")
	}
}

func TestRegister(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{signUp: identity.SignUpResult{UserSub: "sub-1"}}
	s := newTestService(t, p)

	env := s.Register(context.Background(), "  user@example.com ", "pw")
	if !env.IsSuccess || env.Data == nil || env.Data.UserID != "sub-1" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if p.lastUsername != "user@example.com" {
		t.Fatalf("email not normalized: %q", p.lastUsername)
	}

	p.err = kindErr(identity.FailureUsernameExists)
	env = s.Register(context.Background(), "user@example.com", "pw")
	if env.IsSuccess || env.Code() != envelope.CodeUserExists || env.Status() != http.StatusBadRequest {
		t.Fatalf("unexpected envelope: %+v status=%d", env, env.Status())
	}
	if env.Data != nil {
		t.Fatalf("failed envelope must not carry data")
	}
	if p.calls != 2 {
		t.Fatalf("calls=%d want one per operation", p.calls)
	}
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	t.Run("tokens", func(t *testing.T) {
		t.Parallel()
		p := &fakeProvider{auth: identity.AuthOutput{Result: &identity.AuthResult{AccessToken: "a", TokenType: "Bearer"}}}
		env := newTestService(t, p).Authenticate(context.Background(), "u@example.com", "pw")
		if !env.IsSuccess || env.Data == nil || env.Data.AccessToken != "a" {
			t.Fatalf("unexpected envelope: %+v", env)
		}
	})

	t.Run("mfa challenge is soft outcome", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{identity.ChallengeSoftwareTokenMFA, identity.ChallengeMFASetup} {
			p := &fakeProvider{auth: identity.AuthOutput{ChallengeName: name, Session: "sess-token"}}
			env := newTestService(t, p).Authenticate(context.Background(), "u@example.com", "pw")
			if env.IsSuccess || env.Error == nil {
				t.Fatalf("%s: expected error-shaped envelope", name)
			}
			if env.Error.Code != envelope.CodeMFARequired || env.Error.Challenge != name || env.Error.Session != "sess-token" {
				t.Fatalf("%s: unexpected error: %+v", name, env.Error)
			}
			if env.Status() != http.StatusOK {
				t.Fatalf("%s: status=%d want 200", name, env.Status())
			}
		}
	})

	t.Run("other challenge succeeds without data", func(t *testing.T) {
		t.Parallel()
		p := &fakeProvider{auth: identity.AuthOutput{ChallengeName: identity.ChallengeCustom, Session: "s"}}
		env := newTestService(t, p).Authenticate(context.Background(), "u@example.com", "pw")
		if !env.IsSuccess || env.Data != nil {
			t.Fatalf("unexpected envelope: %+v", env)
		}
	})

	t.Run("not confirmed", func(t *testing.T) {
		t.Parallel()
		p := &fakeProvider{err: kindErr(identity.FailureUserNotConfirmed)}
		env := newTestService(t, p).Authenticate(context.Background(), "u@example.com", "pw")
		if env.Code() != envelope.CodeUserNotConfirmed || env.Status() != http.StatusForbidden {
			t.Fatalf("unexpected envelope: %+v", env)
		}
	})
}

func TestConfirmations(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{}
	s := newTestService(t, p)
	ctx := context.Background()

	for i, env := range []envelope.Envelope[bool]{
		s.SignOut(ctx, "token"),
		s.ConfirmRegistration(ctx, "u@example.com", "123456"),
		s.InitiatePasswordReset(ctx, "u@example.com"),
		s.ConfirmPasswordReset(ctx, "u@example.com", "123456", "new-pw"),
	} {
		if !env.IsSuccess || env.Data == nil || !*env.Data {
			t.Fatalf("case %d: unexpected envelope: %+v", i, env)
		}
	}
}

func TestConfirmPasswordReset_ExpiredCode(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{err: kindErr(identity.FailureExpiredCode)}
	env := newTestService(t, p).ConfirmPasswordReset(context.Background(), "u@example.com", "123456", "new-pw")
	if env.Code() != envelope.CodeExpiredCode || env.Status() != http.StatusBadRequest {
		t.Fatalf("unexpected envelope: %+v status=%d", env, env.Status())
	}
}

func TestInitiatePasswordReset_LimitExceededIs500(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{err: kindErr(identity.FailureLimitExceeded)}
	env := newTestService(t, p).InitiatePasswordReset(context.Background(), "u@example.com")
	if env.Code() != envelope.CodeLimitExceeded || env.Status() != http.StatusInternalServerError {
		t.Fatalf("unexpected envelope: %+v status=%d", env, env.Status())
	}
}

func TestSignOut_AnyFailureIsInternal(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{err: kindErr(identity.FailureNotAuthorized)}
	env := newTestService(t, p).SignOut(context.Background(), "token")
	if env.Code() != envelope.CodeInternalError || env.Error.Message != "Failed to sign out" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestVerifySecondFactor(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		p := &fakeProvider{challenge: identity.AuthOutput{Result: &identity.AuthResult{AccessToken: "a"}}}
		env := newTestService(t, p).VerifySecondFactor(context.Background(), "u@example.com", " 123456 ", "sess", "SOFTWARE_TOKEN_MFA")
		if !env.IsSuccess || env.Data == nil || env.Data.AccessToken != "a" {
			t.Fatalf("unexpected envelope: %+v", env)
		}
		want := identity.ChallengeInput{ChallengeName: "SOFTWARE_TOKEN_MFA", Username: "u@example.com", Answer: "123456", Session: "sess"}
		if p.lastChallenge != want {
			t.Fatalf("challenge input=%+v want=%+v", p.lastChallenge, want)
		}
	})

	t.Run("no result is mfa failed", func(t *testing.T) {
		t.Parallel()
		p := &fakeProvider{challenge: identity.AuthOutput{ChallengeName: identity.ChallengeSoftwareTokenMFA}}
		env := newTestService(t, p).VerifySecondFactor(context.Background(), "u@example.com", "123456", "sess", "")
		if env.Code() != envelope.CodeMFAFailed || env.Status() != http.StatusUnauthorized {
			t.Fatalf("unexpected envelope: %+v", env)
		}
	})

	t.Run("code mismatch", func(t *testing.T) {
		t.Parallel()
		p := &fakeProvider{err: kindErr(identity.FailureCodeMismatch)}
		env := newTestService(t, p).VerifySecondFactor(context.Background(), "u@example.com", "000000", "sess", "")
		if env.Code() != envelope.CodeInvalidCode || env.Error.Message != "Invalid MFA code" {
			t.Fatalf("unexpected envelope: %+v", env)
		}
	})
}

func TestUnclassifiedFailureNeverLeaksProviderText(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{err: errors.New("secret internal detail")}
	s := newTestService(t, p)
	ctx := context.Background()

	errs := []*envelope.Error{
		s.Register(ctx, "u@example.com", "pw").Error,
		s.Authenticate(ctx, "u@example.com", "pw").Error,
		s.SignOut(ctx, "tok").Error,
		s.ConfirmRegistration(ctx, "u@example.com", "1").Error,
		s.InitiatePasswordReset(ctx, "u@example.com").Error,
		s.ConfirmPasswordReset(ctx, "u@example.com", "1", "pw").Error,
		s.VerifySecondFactor(ctx, "u@example.com", "1", "sess", "").Error,
	}
	for i, e := range errs {
		if e == nil || e.Code != envelope.CodeInternalError {
			t.Fatalf("case %d: err=%+v want INTERNAL_ERROR", i, e)
		}
		if e.Message == "secret internal detail" {
			t.Fatalf("case %d: provider text leaked", i)
		}
	}
}

func TestRegister_LogsConfirmationState(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := &fakeProvider{signUp: identity.SignUpResult{UserSub: "sub-9", Confirmed: true}}
	svc, err := NewService(p, WithLogger(slog.New(slog.NewJSONHandler(&buf, nil))))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	env := svc.Register(context.Background(), "a@example.com", "pw")
	if !env.IsSuccess || env.Data.UserID != "sub-9" {
		t.Fatalf("env=%+v", env)
	}

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v (%q)", err, buf.String())
	}
	if line["msg"] != "authflow.register.ok" || line["user_id"] != "sub-9" || line["confirmed"] != true {
		t.Fatalf("unexpected log line: %v", line)
	}
}
