package goCognito

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MrEthical07/goCognito/cognito"
	"github.com/MrEthical07/goCognito/internal/flows"
	"github.com/MrEthical07/goCognito/session"
	"github.com/MrEthical07/goCognito/storage"
	"golang.org/x/sync/singleflight"
)

const identityIDKeyPrefix = "aws.cognito.identity-id."

// IdentityProvider owns the current identity of one store namespace. It restores the
// cached session, refreshes it when expired and obtains service credentials when an
// identity pool is configured.
//
// GetIdentity never fails: any error while deriving the identity is logged and
// yields the unauthenticated identity.
type IdentityProvider struct {
	pool    *UserPool
	storage session.Storage
	// adapter is nil when sessions are held in process memory only.
	adapter *storage.Adapter

	credentials    cognito.CredentialsService
	identityPoolID string
	refreshWindow  time.Duration
	allowOffline   bool

	tel *telemetry
	now func() time.Time

	mu       sync.Mutex
	user     *User
	service  *cognito.ServiceCredentials
	identity *Identity

	refreshGroup singleflight.Group
	credsGroup   singleflight.Group
}

type identityProviderDeps struct {
	pool        *UserPool
	storage     session.Storage
	adapter     *storage.Adapter
	credentials cognito.CredentialsService
	telemetry   *telemetry
}

func newIdentityProvider(cfg Config, deps identityProviderDeps) *IdentityProvider {
	p := &IdentityProvider{
		pool:           deps.pool,
		storage:        deps.storage,
		adapter:        deps.adapter,
		credentials:    deps.credentials,
		identityPoolID: cfg.IdentityPool.IdentityPoolID,
		refreshWindow:  cfg.IdentityPool.CredentialsRefreshWindow,
		allowOffline:   cfg.Session.AllowOfflineRefresh,
		tel:            deps.telemetry,
		now:            time.Now,
	}
	if p.identityPoolID == "" {
		p.credentials = nil
	}
	return p
}

// UserPool returns the user pool the provider caches sessions for.
func (p *IdentityProvider) UserPool() *UserPool {
	return p.pool
}

func (p *IdentityProvider) identityIDKey() string {
	return identityIDKeyPrefix + p.identityPoolID
}

/*
====================================
READ PATH
====================================
*/

// GetIdentity derives the current identity.
func (p *IdentityProvider) GetIdentity(ctx context.Context) *Identity {
	start := p.now()
	id := p.getIdentity(ctx)
	p.tel.observe(MetricGetIdentityLatency, p.now().Sub(start))

	if id.IsAuthenticated() {
		p.tel.inc(MetricIdentityAuthenticated)
	} else {
		p.tel.inc(MetricIdentityAnonymous)
	}
	return id
}

func (p *IdentityProvider) getIdentity(ctx context.Context) *Identity {
	if p.adapter != nil {
		p.adapter.Sync(ctx)
	}

	username, ok := p.pool.cache.LastAuthUser()
	if !ok {
		p.reset()
		return anonymousIdentity()
	}

	user, current, err := p.restore(username)
	if err != nil {
		p.tel.logger.InfoContext(ctx, "no usable cached session", "username", username, "error", err)
		p.reset()
		return anonymousIdentity()
	}

	sess, ok := p.refresh(ctx, user, current)
	if !ok {
		return anonymousIdentity()
	}

	var svc *cognito.ServiceCredentials
	if p.credentials != nil {
		svc, ok = p.serviceCredentials(ctx, user, sess)
		if !ok {
			return anonymousIdentity()
		}
	}

	return p.publish(user, sess, svc)
}

// restore returns the handle for username, reusing the in-memory handle when it
// carries a session and loading the cached session otherwise.
func (p *IdentityProvider) restore(username string) (*User, *session.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.user != nil && p.user.Username() == username {
		if s := p.user.Session(); s != nil {
			return p.user, s, nil
		}
	}

	s, err := p.pool.cache.Load(username)
	if err != nil {
		return nil, nil, err
	}

	if p.user == nil || p.user.Username() != username {
		p.service = nil
		p.identity = nil
	}
	user := p.pool.NewUser(username)
	user.setSession(s)
	p.user = user
	return user, s, nil
}

func (p *IdentityProvider) refresh(ctx context.Context, user *User, current *session.Session) (*session.Session, bool) {
	if current.IsValid(p.now()) {
		return current, true
	}

	v, _, _ := p.refreshGroup.Do(current.RefreshToken, func() (any, error) {
		res := flows.RunRefresh(ctx, user.Username(), current, flows.RefreshDeps{
			Service:      p.pool.service,
			Now:          p.now,
			AllowOffline: p.allowOffline,
		})
		if res.Failure == flows.RefreshFailureNone && res.Refreshed {
			user.setSession(res.Session)
			if err := p.pool.cache.Save(user.Username(), res.Session); err != nil {
				p.tel.logger.WarnContext(ctx, "cache refreshed session failed", "username", user.Username(), "error", err)
			}
			p.tel.inc(MetricSessionRefreshSuccess)
			p.tel.emitAudit(ctx, auditEventSessionRefreshSuccess, true, user.Username(), "", nil)
		}
		return res, nil
	})
	res := v.(flows.RefreshResult)

	switch res.Failure {
	case flows.RefreshFailureNone:
		return res.Session, true
	case flows.RefreshFailureOffline:
		p.tel.logger.WarnContext(ctx, "session refresh deferred, provider unreachable",
			"username", user.Username(),
			"error_code", cognito.ErrorCode(res.Err),
		)
		return res.Session, true
	default:
		code := cognito.ErrorCode(res.Err)
		p.tel.inc(MetricSessionRefreshFailure)
		p.tel.emitAudit(ctx, auditEventSessionRefreshFailure, false, user.Username(), code, nil)
		p.tel.logger.WarnContext(ctx, "session refresh failed", "username", user.Username(), "error_code", code, "error", res.Err)

		p.reset()
		// Only a refused refresh token is discarded; any other failure leaves it cached
		// for the next read to retry.
		if res.Failure == flows.RefreshFailureRejected {
			p.pool.cache.Remove(user.Username())
		}
		return nil, false
	}
}

func (p *IdentityProvider) serviceCredentials(ctx context.Context, user *User, sess *session.Session) (*cognito.ServiceCredentials, bool) {
	p.mu.Lock()
	current := p.service
	p.mu.Unlock()

	identityID := ""
	if current != nil {
		identityID = current.IdentityID
	} else if cached, ok := p.storage.GetItem(p.identityIDKey()); ok {
		identityID = cached
	}

	v, _, _ := p.credsGroup.Do(sess.IDToken, func() (any, error) {
		return flows.RunCredentials(ctx, identityID, sess.IDToken, current, flows.CredentialsDeps{
			Service:       p.credentials,
			Now:           p.now,
			RefreshWindow: p.refreshWindow,
			LoginsKey:     p.pool.LoginsKey(),
		}), nil
	})
	res := v.(flows.CredentialsResult)

	if res.Err != nil {
		code := cognito.ErrorCode(res.Err)
		p.tel.inc(MetricServiceCredentialsFailure)
		p.tel.emitAudit(ctx, auditEventIdentityDegraded, false, user.Username(), code, nil)
		p.tel.logger.WarnContext(ctx, "service credentials unavailable", "username", user.Username(), "error_code", code, "error", res.Err)

		p.mu.Lock()
		p.service = nil
		p.identity = nil
		p.mu.Unlock()
		return nil, false
	}

	if res.Refreshed {
		p.tel.inc(MetricServiceCredentialsRefresh)
		p.mu.Lock()
		p.service = res.Credentials
		p.mu.Unlock()
		if res.Credentials.IdentityID != "" {
			p.storage.SetItem(p.identityIDKey(), res.Credentials.IdentityID)
		}
	}
	return res.Credentials, true
}

// publish returns the cached Identity while its inputs are unchanged, and builds a
// new one otherwise.
func (p *IdentityProvider) publish(user *User, sess *session.Session, svc *cognito.ServiceCredentials) *Identity {
	p.mu.Lock()
	defer p.mu.Unlock()

	if id := p.identity; id != nil && id.creds.User == user && id.creds.Session == sess && id.creds.Service == svc {
		return id
	}
	p.identity = newIdentity(user.Username(), &Credentials{
		User:    user,
		Session: sess,
		Service: svc,
	})
	return p.identity
}

func (p *IdentityProvider) reset() {
	p.mu.Lock()
	p.user = nil
	p.service = nil
	p.identity = nil
	p.mu.Unlock()
}

/*
====================================
WRITE PATH
====================================
*/

// Update binds sess to the user name and caches it, replacing whatever session the
// namespace held before. A different previous user's cached tokens are removed. The
// returned identity is derived by GetIdentity.
func (p *IdentityProvider) Update(ctx context.Context, name string, sess *session.Session) (*Identity, error) {
	if name == "" {
		return nil, ErrUsernameRequired
	}
	if !sess.Complete() {
		return nil, ErrIncompleteSession
	}

	if p.adapter != nil {
		p.adapter.Sync(ctx)
	}

	if prev, ok := p.pool.cache.LastAuthUser(); ok && prev != name {
		p.pool.cache.Remove(prev)
		p.storage.RemoveItem(p.identityIDKey())
	}

	p.mu.Lock()
	user := p.user
	if user == nil || user.Username() != name {
		user = p.pool.NewUser(name)
	}
	user.setSession(sess)
	p.user = user
	p.service = nil
	p.identity = nil
	p.mu.Unlock()

	if err := p.pool.cache.Save(name, sess); err != nil {
		return nil, err
	}

	p.tel.inc(MetricIdentityUpdate)
	p.tel.emitAudit(ctx, auditEventIdentityUpdate, true, name, "", nil)

	return p.GetIdentity(ctx), nil
}

// Clear signs the current user out and drops every cached session and credential.
// The remote sign-out is best effort. Clear is idempotent and only fails when ctx is
// already done.
func (p *IdentityProvider) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if p.adapter != nil {
		p.adapter.Sync(ctx)
	}

	p.mu.Lock()
	user := p.user
	p.user = nil
	p.service = nil
	p.identity = nil
	p.mu.Unlock()

	username, hasUser := p.pool.cache.LastAuthUser()
	accessToken := user.accessToken()
	if accessToken == "" && hasUser {
		if s, err := p.pool.cache.Load(username); err == nil {
			accessToken = s.AccessToken
		}
	}
	if username == "" {
		username = user.Username()
	}

	if accessToken != "" {
		if err := p.pool.service.GlobalSignOut(ctx, accessToken); err != nil {
			p.tel.logger.WarnContext(ctx, "remote sign-out failed", "username", username, "error_code", cognito.ErrorCode(err))
		}
	}

	if hasUser {
		p.pool.cache.Remove(username)
	}
	p.storage.RemoveItem(p.identityIDKey())
	p.storage.Clear()

	if p.adapter != nil {
		if err := p.adapter.Flush(ctx); err != nil && !errors.Is(err, storage.ErrAdapterClosed) {
			p.tel.logger.WarnContext(ctx, "flush cleared namespace failed", "store_key", p.adapter.StoreKey(), "error", err)
		}
	}

	p.tel.inc(MetricIdentityClear)
	p.tel.emitAudit(ctx, auditEventIdentityClear, true, username, "", nil)
	return nil
}
