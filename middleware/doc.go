// Package middleware exposes HTTP middleware that resolves the current identity from a
// goCognito identity source and attaches it to the request context.
//
// # Guards
//
//   - [Guard]: requires an authenticated identity (401 otherwise).
//   - [Attach]: attaches whatever identity is current, never rejects.
//   - [RequireServiceCredentials]: requires identity pool credentials (403 otherwise).
//
// Each guard propagates the X-Request-ID header (or a generated id) as the correlation
// id of audit events emitted while resolving the identity.
//
// # What this package must NOT do
//
//   - Parse tokens directly; identity derivation belongs to the source.
//   - Make authorization decisions beyond authenticated or not.
package middleware
