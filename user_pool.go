package goCognito

import (
	"sync"

	"github.com/MrEthical07/goCognito/cognito"
	"github.com/MrEthical07/goCognito/session"
)

// UserPool scopes user handles and cached sessions to one user pool app client.
type UserPool struct {
	region   string
	poolID   string
	clientID string
	service  cognito.UserPoolService
	cache    *session.TokenCache
}

func newUserPool(cfg UserPoolConfig, service cognito.UserPoolService, storage session.Storage) *UserPool {
	return &UserPool{
		region:   cfg.Region,
		poolID:   cfg.UserPoolID,
		clientID: cfg.ClientID,
		service:  service,
		cache:    session.NewTokenCache(storage, cfg.ClientID),
	}
}

// ID returns the user pool id.
func (p *UserPool) ID() string {
	return p.poolID
}

// ClientID returns the app client id sessions are cached under.
func (p *UserPool) ClientID() string {
	return p.clientID
}

// LoginsKey returns the identity pool logins key of this pool.
func (p *UserPool) LoginsKey() string {
	return cognito.LoginsKey(p.region, p.poolID)
}

// NewUser returns a fresh handle for username with no session.
func (p *UserPool) NewUser(username string) *User {
	return &User{username: username}
}

// User is a handle for one user pool user. It carries the session of the last
// successful exchange and the challenge the provider is waiting on, if any.
type User struct {
	username string

	mu      sync.Mutex
	session *session.Session
	pending *cognito.Challenge
}

// Username returns the handle's user name.
func (u *User) Username() string {
	if u == nil {
		return ""
	}
	return u.username
}

// Session returns the session bound to the handle, or nil.
func (u *User) Session() *session.Session {
	if u == nil {
		return nil
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.session
}

func (u *User) setSession(s *session.Session) {
	u.mu.Lock()
	u.session = s
	u.pending = nil
	u.mu.Unlock()
}

func (u *User) setPending(ch *cognito.Challenge) {
	u.mu.Lock()
	u.pending = ch
	u.mu.Unlock()
}

// pendingChallenge returns the pending challenge when it satisfies match.
func (u *User) pendingChallenge(match func(cognito.ChallengeKind) bool) (*cognito.Challenge, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.pending == nil || !match(u.pending.Kind) {
		return nil, false
	}
	return u.pending, true
}

func (u *User) accessToken() string {
	s := u.Session()
	if s == nil {
		return ""
	}
	return s.AccessToken
}
