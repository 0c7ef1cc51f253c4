package flows

import (
	"context"

	"github.com/MrEthical07/goCognito/cognito"
)

// LoginOutcome is the terminal outcome of one authentication exchange.
type LoginOutcome int

const (
	LoginOutcomeError LoginOutcome = iota
	LoginOutcomeSuccess
	LoginOutcomeMFARequired
	LoginOutcomeNewPasswordRequired
)

// LoginResult carries exactly one outcome and the data that outcome defines.
type LoginResult struct {
	Outcome LoginOutcome
	// Tokens is set for LoginOutcomeSuccess.
	Tokens *cognito.Tokens
	// Pending is the challenge to answer next, set for MFA and new-password outcomes.
	Pending *cognito.Challenge
	// ErrorCode and Err are set for LoginOutcomeError.
	ErrorCode string
	Err       error
}

// LoginService is the user pool subset needed by the login flows.
type LoginService interface {
	InitiateAuth(ctx context.Context, username, password string) (*cognito.Challenge, error)
	RespondToNewPassword(ctx context.Context, username, session, newPassword string, attributes map[string]string) (*cognito.Challenge, error)
	RespondToMFA(ctx context.Context, username, session, code string, kind cognito.ChallengeKind) (*cognito.Challenge, error)
}

// LoginDeps captures login flow dependencies.
type LoginDeps struct {
	Service LoginService
}

// RunLogin starts password authentication for username.
func RunLogin(ctx context.Context, username, password string, deps LoginDeps) LoginResult {
	return resolveChallenge(deps.Service.InitiateAuth(ctx, username, password))
}

// RunNewPassword answers a new-password challenge.
func RunNewPassword(
	ctx context.Context,
	username string,
	pending *cognito.Challenge,
	newPassword string,
	attributes map[string]string,
	deps LoginDeps,
) LoginResult {
	return resolveChallenge(deps.Service.RespondToNewPassword(ctx, username, pending.Session, newPassword, attributes))
}

// RunMFA answers an MFA challenge with code.
func RunMFA(ctx context.Context, username string, pending *cognito.Challenge, code string, deps LoginDeps) LoginResult {
	return resolveChallenge(deps.Service.RespondToMFA(ctx, username, pending.Session, code, pending.Kind))
}

func resolveChallenge(ch *cognito.Challenge, err error) LoginResult {
	if err != nil {
		return LoginResult{
			Outcome:   LoginOutcomeError,
			ErrorCode: cognito.ErrorCode(err),
			Err:       err,
		}
	}

	switch ch.Kind {
	case cognito.ChallengeNone:
		if ch.Tokens == nil || ch.Tokens.IDToken == "" || ch.Tokens.AccessToken == "" || ch.Tokens.RefreshToken == "" {
			err := &cognito.ServiceError{Code: cognito.CodeMissingAuthentication, Message: "incomplete token set"}
			return LoginResult{Outcome: LoginOutcomeError, ErrorCode: err.Code, Err: err}
		}
		return LoginResult{Outcome: LoginOutcomeSuccess, Tokens: ch.Tokens}
	case cognito.ChallengeSMSMFA, cognito.ChallengeSoftwareTokenMFA:
		return LoginResult{Outcome: LoginOutcomeMFARequired, Pending: ch}
	case cognito.ChallengeNewPassword:
		return LoginResult{Outcome: LoginOutcomeNewPasswordRequired, Pending: ch}
	case cognito.ChallengeUnsupported:
		err := &cognito.ServiceError{Code: cognito.CodeUnsupportedChallenge, Message: ch.Name}
		return LoginResult{Outcome: LoginOutcomeError, ErrorCode: err.Code, Err: err}
	default:
		err := &cognito.ServiceError{Code: cognito.CodeUnsupportedChallenge, Message: ch.Kind.String()}
		return LoginResult{Outcome: LoginOutcomeError, ErrorCode: err.Code, Err: err}
	}
}
