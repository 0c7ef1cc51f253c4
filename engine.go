package goCognito

import (
	"context"
	"errors"
	"sync/atomic"

	internalaudit "github.com/MrEthical07/goCognito/internal/audit"
	"github.com/MrEthical07/goCognito/storage"
)

// Engine owns the identity provider, its storage and telemetry. It is safe for
// concurrent use.
type Engine struct {
	config     Config
	pool       *UserPool
	provider   *IdentityProvider
	registry   *ProviderRegistry
	adapter    *storage.Adapter
	audit      *internalaudit.Dispatcher
	tel        *telemetry
	classifier RegistrationClassifier

	closed atomic.Bool
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() Config {
	return e.config
}

// IdentityProvider returns the engine's identity provider.
func (e *Engine) IdentityProvider() *IdentityProvider {
	if e == nil {
		return nil
	}
	return e.provider
}

// NewAuthenticator returns an authenticator with no cached user handle.
func (e *Engine) NewAuthenticator() *Authenticator {
	return newAuthenticator(e.pool, e.classifier, e.tel, nil)
}

// AuthenticatorFor returns an authenticator bound to the user handle of the current
// identity. It returns ErrNotAuthenticated when there is no authenticated identity.
func (e *Engine) AuthenticatorFor(ctx context.Context) (*Authenticator, error) {
	if e == nil || e.closed.Load() {
		return nil, ErrEngineNotReady
	}
	id := e.provider.GetIdentity(ctx)
	if !id.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	return newAuthenticator(e.pool, e.classifier, e.tel, id.Credentials().User), nil
}

// Providers returns the registry the identity provider is registered in.
func (e *Engine) Providers() *ProviderRegistry {
	if e == nil {
		return nil
	}
	return e.registry
}

func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.tel == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.tel.metrics.Snapshot()
}

func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// Close flushes pending storage writes and drains the audit dispatcher. Close is
// idempotent.
func (e *Engine) Close(ctx context.Context) error {
	if e == nil || !e.closed.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error
	if e.adapter != nil {
		if err := e.adapter.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := e.audit.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
