package cognito

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ciptypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

// IdentityProviderAPI is the subset of the user pool SDK client used by [Client],
// enabling mock injection for testing.
type IdentityProviderAPI interface {
	InitiateAuth(ctx context.Context, params *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	RespondToAuthChallenge(ctx context.Context, params *cip.RespondToAuthChallengeInput, optFns ...func(*cip.Options)) (*cip.RespondToAuthChallengeOutput, error)
	SignUp(ctx context.Context, params *cip.SignUpInput, optFns ...func(*cip.Options)) (*cip.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, params *cip.ConfirmSignUpInput, optFns ...func(*cip.Options)) (*cip.ConfirmSignUpOutput, error)
	ResendConfirmationCode(ctx context.Context, params *cip.ResendConfirmationCodeInput, optFns ...func(*cip.Options)) (*cip.ResendConfirmationCodeOutput, error)
	ForgotPassword(ctx context.Context, params *cip.ForgotPasswordInput, optFns ...func(*cip.Options)) (*cip.ForgotPasswordOutput, error)
	ConfirmForgotPassword(ctx context.Context, params *cip.ConfirmForgotPasswordInput, optFns ...func(*cip.Options)) (*cip.ConfirmForgotPasswordOutput, error)
	ChangePassword(ctx context.Context, params *cip.ChangePasswordInput, optFns ...func(*cip.Options)) (*cip.ChangePasswordOutput, error)
	SetUserMFAPreference(ctx context.Context, params *cip.SetUserMFAPreferenceInput, optFns ...func(*cip.Options)) (*cip.SetUserMFAPreferenceOutput, error)
	GlobalSignOut(ctx context.Context, params *cip.GlobalSignOutInput, optFns ...func(*cip.Options)) (*cip.GlobalSignOutOutput, error)
}

// Options configures the SDK-backed services.
type Options struct {
	Region         string
	UserPoolID     string
	ClientID       string
	ClientSecret   string
	IdentityPoolID string
}

// Client implements [UserPoolService] over the user pool SDK client.
type Client struct {
	api          IdentityProviderAPI
	clientID     string
	clientSecret string
}

var _ UserPoolService = (*Client)(nil)

// New creates a user pool client for opts.Region. User pool calls are unsigned, so the
// SDK is loaded with anonymous credentials.
func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.ClientID == "" {
		return nil, ErrMissingClientID
	}
	cfg, err := loadConfig(ctx, opts.Region)
	if err != nil {
		return nil, err
	}
	return NewClient(cip.NewFromConfig(cfg), opts.ClientID, opts.ClientSecret), nil
}

// NewClient wraps an existing SDK client.
func NewClient(api IdentityProviderAPI, clientID, clientSecret string) *Client {
	return &Client{api: api, clientID: clientID, clientSecret: clientSecret}
}

func loadConfig(ctx context.Context, region string) (aws.Config, error) {
	if region == "" {
		return aws.Config{}, ErrMissingRegion
	}
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(aws.AnonymousCredentials{}),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

// SecretHash computes the SECRET_HASH parameter for username.
func SecretHash(clientSecret, username, clientID string) string {
	mac := hmac.New(sha256.New, []byte(clientSecret))
	mac.Write([]byte(username + clientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (c *Client) secretHash(username string) *string {
	if c.clientSecret == "" {
		return nil
	}
	return aws.String(SecretHash(c.clientSecret, username, c.clientID))
}

func (c *Client) authParams(username string, params map[string]string) map[string]string {
	if h := c.secretHash(username); h != nil {
		params["SECRET_HASH"] = *h
	}
	return params
}

func (c *Client) InitiateAuth(ctx context.Context, username, password string) (*Challenge, error) {
	out, err := c.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: ciptypes.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(c.clientID),
		AuthParameters: c.authParams(username, map[string]string{
			"USERNAME": username,
			"PASSWORD": password,
		}),
	})
	if err != nil {
		return nil, convertError(err)
	}
	return toChallenge(out.ChallengeName, out.ChallengeParameters, out.Session, out.AuthenticationResult)
}

func (c *Client) RespondToNewPassword(ctx context.Context, username, session, newPassword string, attributes map[string]string) (*Challenge, error) {
	responses := c.authParams(username, map[string]string{
		"USERNAME":     username,
		"NEW_PASSWORD": newPassword,
	})
	for name, value := range attributes {
		responses["userAttributes."+name] = value
	}
	return c.respond(ctx, ciptypes.ChallengeNameTypeNewPasswordRequired, session, responses)
}

func (c *Client) RespondToMFA(ctx context.Context, username, session, code string, kind ChallengeKind) (*Challenge, error) {
	name := ciptypes.ChallengeNameTypeSmsMfa
	codeKey := "SMS_MFA_CODE"
	if kind == ChallengeSoftwareTokenMFA {
		name = ciptypes.ChallengeNameTypeSoftwareTokenMfa
		codeKey = "SOFTWARE_TOKEN_MFA_CODE"
	}
	return c.respond(ctx, name, session, c.authParams(username, map[string]string{
		"USERNAME": username,
		codeKey:    code,
	}))
}

func (c *Client) respond(ctx context.Context, name ciptypes.ChallengeNameType, session string, responses map[string]string) (*Challenge, error) {
	in := &cip.RespondToAuthChallengeInput{
		ChallengeName:      name,
		ClientId:           aws.String(c.clientID),
		ChallengeResponses: responses,
	}
	if session != "" {
		in.Session = aws.String(session)
	}
	out, err := c.api.RespondToAuthChallenge(ctx, in)
	if err != nil {
		return nil, convertError(err)
	}
	return toChallenge(out.ChallengeName, out.ChallengeParameters, out.Session, out.AuthenticationResult)
}

// RefreshSession exchanges refreshToken for fresh id and access tokens. The returned
// RefreshToken is empty unless the pool rotated it.
func (c *Client) RefreshSession(ctx context.Context, username, refreshToken string) (*Tokens, error) {
	out, err := c.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: ciptypes.AuthFlowTypeRefreshTokenAuth,
		ClientId: aws.String(c.clientID),
		AuthParameters: c.authParams(username, map[string]string{
			"REFRESH_TOKEN": refreshToken,
		}),
	})
	if err != nil {
		return nil, convertError(err)
	}
	if out.AuthenticationResult == nil {
		return nil, newServiceError(CodeMissingAuthentication, "refresh returned no tokens")
	}
	return toTokens(out.AuthenticationResult), nil
}

func (c *Client) SignUp(ctx context.Context, username, password string, attributes []Attribute) (*SignUpResult, error) {
	attrs := make([]ciptypes.AttributeType, 0, len(attributes))
	for _, a := range attributes {
		attrs = append(attrs, ciptypes.AttributeType{Name: aws.String(a.Name), Value: aws.String(a.Value)})
	}
	out, err := c.api.SignUp(ctx, &cip.SignUpInput{
		ClientId:       aws.String(c.clientID),
		Username:       aws.String(username),
		Password:       aws.String(password),
		SecretHash:     c.secretHash(username),
		UserAttributes: attrs,
	})
	if err != nil {
		return nil, convertError(err)
	}
	return &SignUpResult{
		UserConfirmed: out.UserConfirmed,
		UserSub:       aws.ToString(out.UserSub),
		Delivery:      toDelivery(out.CodeDeliveryDetails),
	}, nil
}

func (c *Client) ConfirmSignUp(ctx context.Context, username, code string) error {
	_, err := c.api.ConfirmSignUp(ctx, &cip.ConfirmSignUpInput{
		ClientId:         aws.String(c.clientID),
		Username:         aws.String(username),
		ConfirmationCode: aws.String(code),
		SecretHash:       c.secretHash(username),
	})
	return convertError(err)
}

func (c *Client) ResendConfirmationCode(ctx context.Context, username string) (*CodeDelivery, error) {
	out, err := c.api.ResendConfirmationCode(ctx, &cip.ResendConfirmationCodeInput{
		ClientId:   aws.String(c.clientID),
		Username:   aws.String(username),
		SecretHash: c.secretHash(username),
	})
	if err != nil {
		return nil, convertError(err)
	}
	return toDelivery(out.CodeDeliveryDetails), nil
}

func (c *Client) ForgotPassword(ctx context.Context, username string) (*CodeDelivery, error) {
	out, err := c.api.ForgotPassword(ctx, &cip.ForgotPasswordInput{
		ClientId:   aws.String(c.clientID),
		Username:   aws.String(username),
		SecretHash: c.secretHash(username),
	})
	if err != nil {
		return nil, convertError(err)
	}
	return toDelivery(out.CodeDeliveryDetails), nil
}

func (c *Client) ConfirmForgotPassword(ctx context.Context, username, code, newPassword string) error {
	_, err := c.api.ConfirmForgotPassword(ctx, &cip.ConfirmForgotPasswordInput{
		ClientId:         aws.String(c.clientID),
		Username:         aws.String(username),
		ConfirmationCode: aws.String(code),
		Password:         aws.String(newPassword),
		SecretHash:       c.secretHash(username),
	})
	return convertError(err)
}

func (c *Client) ChangePassword(ctx context.Context, accessToken, oldPassword, newPassword string) error {
	_, err := c.api.ChangePassword(ctx, &cip.ChangePasswordInput{
		AccessToken:      aws.String(accessToken),
		PreviousPassword: aws.String(oldPassword),
		ProposedPassword: aws.String(newPassword),
	})
	return convertError(err)
}

func (c *Client) SetSMSMFA(ctx context.Context, accessToken string, enabled bool) error {
	_, err := c.api.SetUserMFAPreference(ctx, &cip.SetUserMFAPreferenceInput{
		AccessToken: aws.String(accessToken),
		SMSMfaSettings: &ciptypes.SMSMfaSettingsType{
			Enabled:      enabled,
			PreferredMfa: enabled,
		},
	})
	return convertError(err)
}

func (c *Client) GlobalSignOut(ctx context.Context, accessToken string) error {
	_, err := c.api.GlobalSignOut(ctx, &cip.GlobalSignOutInput{
		AccessToken: aws.String(accessToken),
	})
	return convertError(err)
}

func toTokens(r *ciptypes.AuthenticationResultType) *Tokens {
	return &Tokens{
		IDToken:      aws.ToString(r.IdToken),
		AccessToken:  aws.ToString(r.AccessToken),
		RefreshToken: aws.ToString(r.RefreshToken),
		ExpiresIn:    time.Duration(r.ExpiresIn) * time.Second,
	}
}

func toDelivery(d *ciptypes.CodeDeliveryDetailsType) *CodeDelivery {
	if d == nil {
		return nil
	}
	return &CodeDelivery{
		Destination:    aws.ToString(d.Destination),
		DeliveryMedium: string(d.DeliveryMedium),
		AttributeName:  aws.ToString(d.AttributeName),
	}
}

// Attributes the pool reports but rejects in a new password response.
var readOnlyAttributes = []string{"email_verified", "phone_number_verified"}

func toChallenge(
	name ciptypes.ChallengeNameType,
	params map[string]string,
	session *string,
	result *ciptypes.AuthenticationResultType,
) (*Challenge, error) {
	ch := &Challenge{Name: string(name), Session: aws.ToString(session)}

	switch name {
	case "":
		if result == nil {
			return nil, newServiceError(CodeMissingAuthentication, "exchange returned neither tokens nor a challenge")
		}
		ch.Kind = ChallengeNone
		ch.Tokens = toTokens(result)
	case ciptypes.ChallengeNameTypeSmsMfa:
		ch.Kind = ChallengeSMSMFA
		ch.Destination = params["CODE_DELIVERY_DESTINATION"]
	case ciptypes.ChallengeNameTypeSoftwareTokenMfa:
		ch.Kind = ChallengeSoftwareTokenMFA
	case ciptypes.ChallengeNameTypeNewPasswordRequired:
		ch.Kind = ChallengeNewPassword
		attrs, required, err := parseNewPasswordParams(params)
		if err != nil {
			return nil, err
		}
		ch.UserAttributes = attrs
		ch.RequiredAttributes = required
	default:
		ch.Kind = ChallengeUnsupported
	}
	return ch, nil
}

func parseNewPasswordParams(params map[string]string) (map[string]string, []string, error) {
	attrs := map[string]string{}
	if raw := params["userAttributes"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
			return nil, nil, &ServiceError{Code: CodeInvalidParameter, Message: "malformed userAttributes challenge parameter", Err: err}
		}
	}
	for _, name := range readOnlyAttributes {
		delete(attrs, name)
	}

	var required []string
	if raw := params["requiredAttributes"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &required); err != nil {
			return nil, nil, &ServiceError{Code: CodeInvalidParameter, Message: "malformed requiredAttributes challenge parameter", Err: err}
		}
	}
	for i, name := range required {
		required[i] = strings.TrimPrefix(name, "userAttributes.")
	}
	return attrs, required, nil
}
