package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/goCognito/cognito"
	"github.com/MrEthical07/goCognito/session"
)

// RefreshFailureKind classifies refresh flow failures for root-level mapping.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	// RefreshFailureOffline means the service was unreachable and the cached session
	// was kept.
	RefreshFailureOffline
	// RefreshFailureRejected means the provider refused the refresh token or the user.
	RefreshFailureRejected
	// RefreshFailureTransient covers cancellation, throttling, service faults and an
	// unreachable provider outside offline mode. The refresh token is still usable.
	RefreshFailureTransient
	RefreshFailureIncomplete
)

// RefreshResult carries the session to use or failure metadata.
type RefreshResult struct {
	Failure   RefreshFailureKind
	Err       error
	Session   *session.Session
	Refreshed bool
}

// SessionRefresher is the user pool subset needed by RunRefresh.
type SessionRefresher interface {
	RefreshSession(ctx context.Context, username, refreshToken string) (*cognito.Tokens, error)
}

// RefreshDeps captures refresh flow dependencies.
type RefreshDeps struct {
	Service      SessionRefresher
	Now          func() time.Time
	AllowOffline bool
}

// RunRefresh returns current when it is still valid, and otherwise exchanges its
// refresh token for a new session. The returned session always replaces current
// wholesale.
func RunRefresh(ctx context.Context, username string, current *session.Session, deps RefreshDeps) RefreshResult {
	now := deps.Now()
	if current.IsValid(now) {
		return RefreshResult{Session: current}
	}

	tokens, err := deps.Service.RefreshSession(ctx, username, current.RefreshToken)
	if err != nil {
		if deps.AllowOffline && cognito.IsNetworkError(err) {
			return RefreshResult{Failure: RefreshFailureOffline, Err: err, Session: current}
		}
		if cognito.IsRejection(err) {
			return RefreshResult{Failure: RefreshFailureRejected, Err: err}
		}
		return RefreshResult{Failure: RefreshFailureTransient, Err: err}
	}

	next, err := current.WithTokens(tokens.IDToken, tokens.AccessToken, tokens.RefreshToken, deps.Now())
	if err != nil {
		return RefreshResult{Failure: RefreshFailureIncomplete, Err: err}
	}
	return RefreshResult{Session: next, Refreshed: true}
}
