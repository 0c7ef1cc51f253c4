package test

import (
	"context"
	"net/http"
	"testing"

	goCognito "github.com/MrEthical07/goCognito"
	"github.com/MrEthical07/goCognito/middleware"
	"github.com/MrEthical07/goCognito/session"
)

// This test intentionally guards public API compile-compat for consumers.
func TestPublicAPISurfaceCompile(t *testing.T) {
	_ = goCognito.New

	var _ *goCognito.Engine
	var _ goCognito.Config
	var _ goCognito.LoginResult
	var _ goCognito.RegistrationResult
	var _ goCognito.UserData
	var _ goCognito.AuditSink
	var _ goCognito.RegistrationClassifier
	var _ goCognito.IdentitySource = (*goCognito.IdentityProvider)(nil)

	var _ error = goCognito.ErrNoUserContext
	var _ error = goCognito.ErrNoPendingChallenge
	var _ error = goCognito.ErrNotAuthenticated
	var _ error = goCognito.ErrIncompleteSession
	var _ error = goCognito.ErrEngineNotReady
	var _ error = goCognito.ErrProviderNotFound

	var _ func(goCognito.IdentitySource) func(http.Handler) http.Handler = middleware.Guard
	var _ func(goCognito.IdentitySource) func(http.Handler) http.Handler = middleware.Attach
	var _ func(goCognito.IdentitySource) func(http.Handler) http.Handler = middleware.RequireServiceCredentials

	var _ func(*goCognito.Authenticator, context.Context, string, string) (goCognito.LoginResult, error) = (*goCognito.Authenticator).Login
	var _ func(*goCognito.Authenticator, context.Context, string) (goCognito.LoginResult, error) = (*goCognito.Authenticator).ValidateMFAToken
	var _ func(*goCognito.Authenticator, context.Context, goCognito.UserData) (goCognito.RegistrationResult, error) = (*goCognito.Authenticator).Register
	var _ func(*goCognito.IdentityProvider, context.Context) *goCognito.Identity = (*goCognito.IdentityProvider).GetIdentity
	var _ func(*goCognito.IdentityProvider, context.Context, string, *session.Session) (*goCognito.Identity, error) = (*goCognito.IdentityProvider).Update
	var _ func(*goCognito.IdentityProvider, context.Context) error = (*goCognito.IdentityProvider).Clear
}

func TestResultCodesAreStable(t *testing.T) {
	if goCognito.LoginSuccess != 1 || goCognito.LoginError != 2 || goCognito.LoginMFARequired != 3 || goCognito.LoginChangePasswordRequired != 4 {
		t.Fatal("login codes changed")
	}
	if goCognito.RegistrationSuccess != 0 || goCognito.RegistrationFailureGeneric != 100 {
		t.Fatal("registration codes changed")
	}
}
