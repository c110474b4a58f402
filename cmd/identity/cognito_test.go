package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ciptypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

type cognitoStub struct {
	err error

	signUpIn    *cip.SignUpInput
	authIn      *cip.AdminInitiateAuthInput
	authOut     *cip.AdminInitiateAuthOutput
	challengeIn *cip.RespondToAuthChallengeInput
	signOutIn   *cip.GlobalSignOutInput
}

func (s *cognitoStub) SignUp(_ context.Context, in *cip.SignUpInput, _ ...func(*cip.Options)) (*cip.SignUpOutput, error) {
	s.signUpIn = in
	if s.err != nil {
		return nil, s.err
	}
	return &cip.SignUpOutput{UserSub: aws.String("sub-123")}, nil
}

func (s *cognitoStub) AdminInitiateAuth(_ context.Context, in *cip.AdminInitiateAuthInput, _ ...func(*cip.Options)) (*cip.AdminInitiateAuthOutput, error) {
	s.authIn = in
	if s.err != nil {
		return nil, s.err
	}
	if s.authOut != nil {
		return s.authOut, nil
	}
	return &cip.AdminInitiateAuthOutput{}, nil
}

func (s *cognitoStub) ConfirmSignUp(_ context.Context, _ *cip.ConfirmSignUpInput, _ ...func(*cip.Options)) (*cip.ConfirmSignUpOutput, error) {
	return &cip.ConfirmSignUpOutput{}, s.err
}

func (s *cognitoStub) ForgotPassword(_ context.Context, _ *cip.ForgotPasswordInput, _ ...func(*cip.Options)) (*cip.ForgotPasswordOutput, error) {
	return &cip.ForgotPasswordOutput{}, s.err
}

func (s *cognitoStub) ConfirmForgotPassword(_ context.Context, _ *cip.ConfirmForgotPasswordInput, _ ...func(*cip.Options)) (*cip.ConfirmForgotPasswordOutput, error) {
	return &cip.ConfirmForgotPasswordOutput{}, s.err
}

func (s *cognitoStub) RespondToAuthChallenge(_ context.Context, in *cip.RespondToAuthChallengeInput, _ ...func(*cip.Options)) (*cip.RespondToAuthChallengeOutput, error) {
	s.challengeIn = in
	if s.err != nil {
		return nil, s.err
	}
	return &cip.RespondToAuthChallengeOutput{
		AuthenticationResult: &ciptypes.AuthenticationResultType{AccessToken: aws.String("access")},
	}, nil
}

func (s *cognitoStub) GlobalSignOut(_ context.Context, in *cip.GlobalSignOutInput, _ ...func(*cip.Options)) (*cip.GlobalSignOutOutput, error) {
	s.signOutIn = in
	return &cip.GlobalSignOutOutput{}, s.err
}

func mustCognito(t *testing.T, stub *cognitoStub, secret string) *CognitoProvider {
	t.Helper()
	p, err := NewCognitoProvider(stub, CognitoConfig{UserPoolID: "pool-1", ClientID: "client-1", ClientSecret: secret})
	if err != nil {
		t.Fatalf("NewCognitoProvider: %v", err)
	}
	return p
}

func TestNewCognitoProvider_RequiresIDs(t *testing.T) {
	t.Parallel()

	if _, err := NewCognitoProvider(&cognitoStub{}, CognitoConfig{ClientID: "c"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("missing pool id err=%v", err)
	}
	if _, err := NewCognitoProvider(&cognitoStub{}, CognitoConfig{UserPoolID: "p", ClientID: "  "}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("blank client id err=%v", err)
	}
	if _, err := NewCognitoProvider(nil, CognitoConfig{UserPoolID: "p", ClientID: "c"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("nil client err=%v", err)
	}
}

func TestCognito_FailureDiscriminantFromAPIError(t *testing.T) {
	t.Parallel()

	stub := &cognitoStub{err: &ciptypes.UsernameExistsException{Message: aws.String("exists")}}
	p := mustCognito(t, stub, "")

	_, err := p.SignUp(context.Background(), "user@example.com", "pw")
	kind, ok := KindOf(err)
	if !ok || kind != FailureUsernameExists {
		t.Fatalf("KindOf=%q,%v want=%q", kind, ok, FailureUsernameExists)
	}
	if stub.signUpIn.SecretHash != nil {
		t.Fatalf("no secret configured, SECRET_HASH must be omitted")
	}
}

func TestCognito_TransportErrorHasNoDiscriminant(t *testing.T) {
	t.Parallel()

	p := mustCognito(t, &cognitoStub{err: errors.New("dial tcp: timeout")}, "")

	err := p.ForgotPassword(context.Background(), "user@example.com")
	if err == nil {
		t.Fatalf("expected error")
	}
	if _, ok := KindOf(err); ok {
		t.Fatalf("transport error must not carry a discriminant")
	}
	var pe ProviderError
	if !errors.As(err, &pe) || pe.Op != "identity.ForgotPassword" {
		t.Fatalf("expected ProviderError with op, got %v", err)
	}
}

func TestCognito_InitiateAuthUsesAdminFlowAndSecretHash(t *testing.T) {
	t.Parallel()

	stub := &cognitoStub{authOut: &cip.AdminInitiateAuthOutput{
		ChallengeName: ciptypes.ChallengeNameTypeSoftwareTokenMfa,
		Session:       aws.String("sess"),
	}}
	p := mustCognito(t, stub, "shh")

	out, err := p.InitiateAuth(context.Background(), "user@example.com", "pw")
	if err != nil {
		t.Fatalf("InitiateAuth: %v", err)
	}
	if stub.authIn.AuthFlow != ciptypes.AuthFlowTypeAdminNoSrpAuth {
		t.Fatalf("auth flow=%q", stub.authIn.AuthFlow)
	}
	if aws.ToString(stub.authIn.UserPoolId) != "pool-1" {
		t.Fatalf("user pool id not sent")
	}
	if stub.authIn.AuthParameters["SECRET_HASH"] == "" {
		t.Fatalf("SECRET_HASH missing with client secret configured")
	}
	if out.ChallengeName != ChallengeSoftwareTokenMFA || out.Session != "sess" || out.Result != nil {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestCognito_RespondToChallengeAnswerKey(t *testing.T) {
	t.Parallel()

	cases := []struct {
		challenge string
		wantName  string
		wantKey   string
	}{
		{challenge: "", wantName: ChallengeCustom, wantKey: "ANSWER"},
		{challenge: ChallengeSoftwareTokenMFA, wantName: ChallengeSoftwareTokenMFA, wantKey: "SOFTWARE_TOKEN_MFA_CODE"},
		{challenge: ChallengeSMSMFA, wantName: ChallengeSMSMFA, wantKey: "SMS_MFA_CODE"},
	}

	for _, tc := range cases {
		stub := &cognitoStub{}
		p := mustCognito(t, stub, "")
		out, err := p.RespondToChallenge(context.Background(), ChallengeInput{
			ChallengeName: tc.challenge,
			Username:      "user@example.com",
			Answer:        "123456",
			Session:       "sess",
		})
		if err != nil {
			t.Fatalf("RespondToChallenge(%q): %v", tc.challenge, err)
		}
		if string(stub.challengeIn.ChallengeName) != tc.wantName {
			t.Fatalf("challenge name=%q want=%q", stub.challengeIn.ChallengeName, tc.wantName)
		}
		if stub.challengeIn.ChallengeResponses[tc.wantKey] != "123456" {
			t.Fatalf("answer not sent under %q: %v", tc.wantKey, stub.challengeIn.ChallengeResponses)
		}
		if out.Result == nil || out.Result.AccessToken != "access" {
			t.Fatalf("auth result not mapped: %+v", out)
		}
	}
}

func TestCognito_GlobalSignOut(t *testing.T) {
	t.Parallel()

	stub := &cognitoStub{}
	p := mustCognito(t, stub, "")
	if err := p.GlobalSignOut(context.Background(), "tok"); err != nil {
		t.Fatalf("GlobalSignOut: %v", err)
	}
	if aws.ToString(stub.signOutIn.AccessToken) != "tok" {
		t.Fatalf("access token not forwarded")
	}
}
