package identity

import "context"

// Challenge names the provider may return while a sign-in is still pending.
const (
	ChallengeMFASetup         = "MFA_SETUP"
	ChallengeSoftwareTokenMFA = "SOFTWARE_TOKEN_MFA"
	ChallengeSMSMFA           = "SMS_MFA"
	ChallengeCustom           = "CUSTOM_CHALLENGE"
)

// AuthResult is the completed-authentication subset returned to callers.
// Field names follow the provider's wire names so existing clients keep working.
type AuthResult struct {
	AccessToken  string `json:"AccessToken,omitempty"`
	ExpiresIn    int32  `json:"ExpiresIn,omitempty"`
	IdToken      string `json:"IdToken,omitempty"`
	RefreshToken string `json:"RefreshToken,omitempty"`
	TokenType    string `json:"TokenType,omitempty"`
}

// AuthOutput is the raw result of an authentication step.
// Exactly one of Result or ChallengeName is normally set.
type AuthOutput struct {
	Result        *AuthResult
	ChallengeName string
	Session       string
}

// SignUpResult carries the provider-assigned user id.
type SignUpResult struct {
	UserSub   string
	Confirmed bool
}

// ChallengeInput answers a pending authentication challenge.
type ChallengeInput struct {
	ChallengeName string
	Username      string
	Answer        string
	Session       string
}

// Provider is the identity-provider collaborator.
//
// Contract:
//   - every method performs exactly one provider round-trip;
//   - failures are returned as ProviderError (KindOf yields the discriminant when known);
//   - implementations are safe for concurrent use.
type Provider interface {
	SignUp(ctx context.Context, username, password string) (SignUpResult, error)
	InitiateAuth(ctx context.Context, username, password string) (AuthOutput, error)
	ConfirmSignUp(ctx context.Context, username, code string) error
	ForgotPassword(ctx context.Context, username string) error
	ConfirmForgotPassword(ctx context.Context, username, code, newPassword string) error
	RespondToChallenge(ctx context.Context, in ChallengeInput) (AuthOutput, error)
	GlobalSignOut(ctx context.Context, accessToken string) error
}
