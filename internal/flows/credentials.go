package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/goCognito/cognito"
)

// CredentialsDeps captures service credential flow dependencies.
type CredentialsDeps struct {
	Service       cognito.CredentialsService
	Now           func() time.Time
	RefreshWindow time.Duration
	// LoginsKey is the identity pool logins key of the user pool.
	LoginsKey string
}

// CredentialsResult carries the credentials to use.
type CredentialsResult struct {
	Credentials *cognito.ServiceCredentials
	Refreshed   bool
	Err         error
}

// RunCredentials returns current while it is fresh, and otherwise requests new
// credentials for identityID using idToken as the login.
func RunCredentials(
	ctx context.Context,
	identityID, idToken string,
	current *cognito.ServiceCredentials,
	deps CredentialsDeps,
) CredentialsResult {
	if !current.NeedsRefresh(deps.Now(), deps.RefreshWindow) {
		return CredentialsResult{Credentials: current}
	}
	creds, err := deps.Service.Credentials(ctx, identityID, map[string]string{deps.LoginsKey: idToken})
	if err != nil {
		return CredentialsResult{Err: err}
	}
	return CredentialsResult{Credentials: creds, Refreshed: true}
}
