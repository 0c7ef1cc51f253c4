package goCognito

import (
	"fmt"
	"maps"
	"sync"

	"github.com/MrEthical07/goCognito/cognito"
	"github.com/MrEthical07/goCognito/session"
)

// Identifier names computed by [Identity.Identifiers].
const (
	IdentifierSubject    = "sub"
	IdentifierUsername   = "username"
	IdentifierEmail      = "email"
	IdentifierJWT        = "jwt"
	IdentifierIdentityID = "identity_id"
)

// Credentials is the bundle an authenticated Identity carries.
type Credentials struct {
	User    *User
	Session *session.Session
	// Service is nil when no identity pool is configured.
	Service *cognito.ServiceCredentials
}

// Identity is an immutable snapshot of who is acting now. A new Identity is built
// whenever the underlying session changes.
type Identity struct {
	name  string
	creds *Credentials

	once        sync.Once
	identifiers map[string]string
}

var anonymousCredentials = &Credentials{}

func anonymousIdentity() *Identity {
	return &Identity{creds: anonymousCredentials}
}

func newIdentity(name string, creds *Credentials) *Identity {
	return &Identity{name: name, creds: creds}
}

// Name returns the user name, or "" when unauthenticated.
func (i *Identity) Name() string {
	if i == nil {
		return ""
	}
	return i.name
}

// IsAuthenticated reports whether the identity carries a user session.
func (i *Identity) IsAuthenticated() bool {
	return i != nil && i.name != "" && i.creds != nil && i.creds.Session != nil
}

// Credentials returns the credential bundle. It is empty for an unauthenticated identity.
func (i *Identity) Credentials() Credentials {
	if i == nil || i.creds == nil {
		return Credentials{}
	}
	return *i.creds
}

// Identifiers returns a copy of the claim-derived identifiers. They are computed on
// first use and then reused for the lifetime of i.
func (i *Identity) Identifiers() map[string]string {
	if i == nil {
		return map[string]string{}
	}
	i.once.Do(i.computeIdentifiers)
	return maps.Clone(i.identifiers)
}

// Identifier returns one identifier and whether it is set.
func (i *Identity) Identifier(name string) (string, bool) {
	if i == nil {
		return "", false
	}
	i.once.Do(i.computeIdentifiers)
	v, ok := i.identifiers[name]
	return v, ok
}

func (i *Identity) computeIdentifiers() {
	ids := make(map[string]string, 5)
	if !i.IsAuthenticated() {
		i.identifiers = ids
		return
	}

	s := i.creds.Session
	ids[IdentifierUsername] = i.name
	ids[IdentifierJWT] = s.IDToken
	if claims, err := s.Claims(); err == nil {
		if claims.Subject != "" {
			ids[IdentifierSubject] = claims.Subject
		}
		if claims.Email != "" {
			ids[IdentifierEmail] = claims.Email
		}
	}
	if svc := i.creds.Service; svc != nil && svc.IdentityID != "" {
		ids[IdentifierIdentityID] = svc.IdentityID
	}
	i.identifiers = ids
}

// String never includes token material.
func (i *Identity) String() string {
	if !i.IsAuthenticated() {
		return "Identity{anonymous}"
	}
	return fmt.Sprintf("Identity{name=%q}", i.name)
}
