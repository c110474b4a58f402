package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"usersvc/cmd/security/token"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ciptypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
)

// CognitoAPI is the subset of the Cognito user-pool client used by CognitoProvider.
// *cognitoidentityprovider.Client satisfies it.
type CognitoAPI interface {
	SignUp(ctx context.Context, in *cip.SignUpInput, optFns ...func(*cip.Options)) (*cip.SignUpOutput, error)
	AdminInitiateAuth(ctx context.Context, in *cip.AdminInitiateAuthInput, optFns ...func(*cip.Options)) (*cip.AdminInitiateAuthOutput, error)
	ConfirmSignUp(ctx context.Context, in *cip.ConfirmSignUpInput, optFns ...func(*cip.Options)) (*cip.ConfirmSignUpOutput, error)
	ForgotPassword(ctx context.Context, in *cip.ForgotPasswordInput, optFns ...func(*cip.Options)) (*cip.ForgotPasswordOutput, error)
	ConfirmForgotPassword(ctx context.Context, in *cip.ConfirmForgotPasswordInput, optFns ...func(*cip.Options)) (*cip.ConfirmForgotPasswordOutput, error)
	RespondToAuthChallenge(ctx context.Context, in *cip.RespondToAuthChallengeInput, optFns ...func(*cip.Options)) (*cip.RespondToAuthChallengeOutput, error)
	GlobalSignOut(ctx context.Context, in *cip.GlobalSignOutInput, optFns ...func(*cip.Options)) (*cip.GlobalSignOutOutput, error)
}

// CognitoConfig identifies the user pool and app client.
type CognitoConfig struct {
	UserPoolID   string
	ClientID     string
	ClientSecret string
}

// CognitoProvider implements Provider over an AWS Cognito user pool.
// The client is owned by the caller and shared across requests.
type CognitoProvider struct {
	api    CognitoAPI
	poolID string
	client string
	secret string
}

// NewCognitoProvider validates cfg and returns a provider bound to api.
func NewCognitoProvider(api CognitoAPI, cfg CognitoConfig) (*CognitoProvider, error) {
	if api == nil {
		return nil, fmt.Errorf("identity: nil cognito client: %w", ErrNotConfigured)
	}
	poolID := strings.TrimSpace(cfg.UserPoolID)
	clientID := strings.TrimSpace(cfg.ClientID)
	if poolID == "" || clientID == "" {
		return nil, fmt.Errorf("identity: user pool id and client id are required: %w", ErrNotConfigured)
	}
	return &CognitoProvider{
		api:    api,
		poolID: poolID,
		client: clientID,
		secret: strings.TrimSpace(cfg.ClientSecret),
	}, nil
}

// SignUp registers a new user with username and password.
func (p *CognitoProvider) SignUp(ctx context.Context, username, password string) (SignUpResult, error) {
	const op = "identity.SignUp"

	out, err := p.api.SignUp(ctx, &cip.SignUpInput{
		ClientId:   aws.String(p.client),
		Username:   aws.String(username),
		Password:   aws.String(password),
		SecretHash: p.secretHash(username),
	})
	if err != nil {
		return SignUpResult{}, wrapCognito(op, err)
	}
	return SignUpResult{
		UserSub:   aws.ToString(out.UserSub),
		Confirmed: out.UserConfirmed,
	}, nil
}

// InitiateAuth runs the admin password flow (ADMIN_NO_SRP_AUTH).
func (p *CognitoProvider) InitiateAuth(ctx context.Context, username, password string) (AuthOutput, error) {
	const op = "identity.InitiateAuth"

	params := map[string]string{
		"USERNAME": username,
		"PASSWORD": password,
	}
	if sh := p.secretHash(username); sh != nil {
		params["SECRET_HASH"] = *sh
	}

	out, err := p.api.AdminInitiateAuth(ctx, &cip.AdminInitiateAuthInput{
		AuthFlow:       ciptypes.AuthFlowTypeAdminNoSrpAuth,
		ClientId:       aws.String(p.client),
		UserPoolId:     aws.String(p.poolID),
		AuthParameters: params,
	})
	if err != nil {
		return AuthOutput{}, wrapCognito(op, err)
	}
	return AuthOutput{
		Result:        toAuthResult(out.AuthenticationResult),
		ChallengeName: string(out.ChallengeName),
		Session:       aws.ToString(out.Session),
	}, nil
}

// ConfirmSignUp confirms a registration with the emailed code.
func (p *CognitoProvider) ConfirmSignUp(ctx context.Context, username, code string) error {
	_, err := p.api.ConfirmSignUp(ctx, &cip.ConfirmSignUpInput{
		ClientId:         aws.String(p.client),
		Username:         aws.String(username),
		ConfirmationCode: aws.String(code),
		SecretHash:       p.secretHash(username),
	})
	return wrapCognito("identity.ConfirmSignUp", err)
}

// ForgotPassword starts the password-reset flow.
func (p *CognitoProvider) ForgotPassword(ctx context.Context, username string) error {
	_, err := p.api.ForgotPassword(ctx, &cip.ForgotPasswordInput{
		ClientId:   aws.String(p.client),
		Username:   aws.String(username),
		SecretHash: p.secretHash(username),
	})
	return wrapCognito("identity.ForgotPassword", err)
}

// ConfirmForgotPassword sets a new password using the reset code.
func (p *CognitoProvider) ConfirmForgotPassword(ctx context.Context, username, code, newPassword string) error {
	_, err := p.api.ConfirmForgotPassword(ctx, &cip.ConfirmForgotPasswordInput{
		ClientId:         aws.String(p.client),
		Username:         aws.String(username),
		ConfirmationCode: aws.String(code),
		Password:         aws.String(newPassword),
		SecretHash:       p.secretHash(username),
	})
	return wrapCognito("identity.ConfirmForgotPassword", err)
}

// RespondToChallenge answers a pending MFA or custom challenge.
func (p *CognitoProvider) RespondToChallenge(ctx context.Context, in ChallengeInput) (AuthOutput, error) {
	const op = "identity.RespondToChallenge"

	name := in.ChallengeName
	if name == "" {
		name = ChallengeCustom
	}
	responses := map[string]string{"USERNAME": in.Username}
	responses[challengeAnswerKey(name)] = in.Answer
	if sh := p.secretHash(in.Username); sh != nil {
		responses["SECRET_HASH"] = *sh
	}

	out, err := p.api.RespondToAuthChallenge(ctx, &cip.RespondToAuthChallengeInput{
		ClientId:           aws.String(p.client),
		ChallengeName:      ciptypes.ChallengeNameType(name),
		ChallengeResponses: responses,
		Session:            aws.String(in.Session),
	})
	if err != nil {
		return AuthOutput{}, wrapCognito(op, err)
	}
	return AuthOutput{
		Result:        toAuthResult(out.AuthenticationResult),
		ChallengeName: string(out.ChallengeName),
		Session:       aws.ToString(out.Session),
	}, nil
}

// GlobalSignOut revokes every token issued for the access token's user.
func (p *CognitoProvider) GlobalSignOut(ctx context.Context, accessToken string) error {
	_, err := p.api.GlobalSignOut(ctx, &cip.GlobalSignOutInput{
		AccessToken: aws.String(accessToken),
	})
	return wrapCognito("identity.GlobalSignOut", err)
}

func (p *CognitoProvider) secretHash(username string) *string {
	if p.secret == "" {
		return nil
	}
	sh, err := token.SecretHash(username, p.client, p.secret)
	if err != nil {
		return nil
	}
	return &sh
}

func challengeAnswerKey(name string) string {
	switch name {
	case ChallengeSoftwareTokenMFA:
		return "SOFTWARE_TOKEN_MFA_CODE"
	case ChallengeSMSMFA:
		return "SMS_MFA_CODE"
	default:
		return "ANSWER"
	}
}

func toAuthResult(r *ciptypes.AuthenticationResultType) *AuthResult {
	if r == nil {
		return nil
	}
	return &AuthResult{
		AccessToken:  aws.ToString(r.AccessToken),
		ExpiresIn:    r.ExpiresIn,
		IdToken:      aws.ToString(r.IdToken),
		RefreshToken: aws.ToString(r.RefreshToken),
		TokenType:    aws.ToString(r.TokenType),
	}
}

// wrapCognito converts an SDK error into a ProviderError. The smithy error code is the
// discriminant; transport-level errors carry none.
func wrapCognito(op string, err error) error {
	if err == nil {
		return nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return ProviderError{Op: op, Kind: Failure(apiErr.ErrorCode()), Err: err}
	}
	return ProviderError{Op: op, Err: err}
}
