package goCognito

import (
	"errors"

	"github.com/MrEthical07/goCognito/session"
)

var (
	// ErrNoUserContext is returned when a flow needs a user handle and none was
	// supplied or cached.
	ErrNoUserContext = errors.New("no user context")
	// ErrNoPendingChallenge is returned when a completion call does not match the
	// challenge the provider issued last.
	ErrNoPendingChallenge = errors.New("no pending challenge")
	// ErrNotAuthenticated is returned by operations that need a live session on the
	// user handle.
	ErrNotAuthenticated = errors.New("user handle has no session")
	// ErrUsernameRequired is returned when a flow is started with an empty username.
	ErrUsernameRequired = errors.New("username required")
	// ErrIncompleteSession is returned by Update for a partially populated session.
	ErrIncompleteSession = session.ErrIncompleteSession
	// ErrEngineNotReady is returned when an Engine method is called on a nil or closed engine.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrBuilderUsed is returned when Build is called twice on the same Builder.
	ErrBuilderUsed = errors.New("builder already used")
	// ErrProviderDuplicate is returned when a provider name is registered twice.
	ErrProviderDuplicate = errors.New("identity provider already registered")
	// ErrProviderNotFound is returned when no provider is registered under a name.
	ErrProviderNotFound = errors.New("identity provider not found")
	// ErrInvalidConfig wraps every Config validation failure.
	ErrInvalidConfig = errors.New("invalid config")
)
