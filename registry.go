package goCognito

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/MrEthical07/goCognito/session"
)

// IdentitySource is the surface a registered identity provider exposes to the host.
// *IdentityProvider implements it.
type IdentitySource interface {
	GetIdentity(ctx context.Context) *Identity
	Update(ctx context.Context, name string, sess *session.Session) (*Identity, error)
	Clear(ctx context.Context) error
}

var _ IdentitySource = (*IdentityProvider)(nil)

// ProviderRegistry holds identity sources by service name.
type ProviderRegistry struct {
	mu        sync.RWMutex
	providers map[string]IdentitySource
}

// NewProviderRegistry returns an empty registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{providers: make(map[string]IdentitySource)}
}

// AddProvider registers src under name. A name can be registered once.
func (r *ProviderRegistry) AddProvider(name string, src IdentitySource) error {
	if name == "" || src == nil {
		return fmt.Errorf("%w: provider name and source are required", ErrInvalidConfig)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[name]; ok {
		return fmt.Errorf("%w: %s", ErrProviderDuplicate, name)
	}
	r.providers[name] = src
	return nil
}

// ForService returns the source registered under name.
func (r *ProviderRegistry) ForService(name string) (IdentitySource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	src, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}
	return src, nil
}

// Names returns the registered names in sorted order.
func (r *ProviderRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
