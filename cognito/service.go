package cognito

import "context"

// UserPoolService is the user pool contract consumed by the authenticator and the
// identity provider.
type UserPoolService interface {
	InitiateAuth(ctx context.Context, username, password string) (*Challenge, error)
	RespondToNewPassword(ctx context.Context, username, session, newPassword string, attributes map[string]string) (*Challenge, error)
	RespondToMFA(ctx context.Context, username, session, code string, kind ChallengeKind) (*Challenge, error)
	RefreshSession(ctx context.Context, username, refreshToken string) (*Tokens, error)

	SignUp(ctx context.Context, username, password string, attributes []Attribute) (*SignUpResult, error)
	ConfirmSignUp(ctx context.Context, username, code string) error
	ResendConfirmationCode(ctx context.Context, username string) (*CodeDelivery, error)

	ForgotPassword(ctx context.Context, username string) (*CodeDelivery, error)
	ConfirmForgotPassword(ctx context.Context, username, code, newPassword string) error
	ChangePassword(ctx context.Context, accessToken, oldPassword, newPassword string) error

	SetSMSMFA(ctx context.Context, accessToken string, enabled bool) error
	GlobalSignOut(ctx context.Context, accessToken string) error
}

// CredentialsService issues service credentials for an identity. An empty identityID
// asks the service to resolve one from logins first.
type CredentialsService interface {
	Credentials(ctx context.Context, identityID string, logins map[string]string) (*ServiceCredentials, error)
}

// LoginsKey is the identity pool logins map key of a user pool.
func LoginsKey(region, userPoolID string) string {
	return "cognito-idp." + region + ".amazonaws.com/" + userPoolID
}
