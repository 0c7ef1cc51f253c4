// Package session provides the provider session model (identity, access and refresh tokens)
// and its synchronous persistence under SDK-compatible storage keys.
//
// # Storage contract
//
// [TokenCache] only ever talks to a [Storage], a strictly synchronous key/value interface
// shaped after browser localStorage. Backing that interface with a remote store is the
// job of package storage; [MemoryStorage] covers the purely local case.
//
// # Architecture boundaries
//
// This package owns the [Session] model and [TokenCache]. It decodes token claims only to
// learn expiry and user names. It does NOT call the remote identity service or decide
// when a refresh happens; that belongs to the identity provider.
//
// # What this package must NOT do
//
//   - Import goCognito, cognito or storage (no upward imports).
//   - Hold partially populated sessions.
//   - Log token material.
package session
