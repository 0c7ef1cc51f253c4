// Package jwt decodes the claims of identity-provider issued tokens (id and access tokens)
// without verifying their signatures.
//
// Tokens held by a client were received directly from the provider over TLS; the client
// only needs their expiry, issue time and subject attributes to decide when to refresh and
// how to name the current identity. Signature verification is the job of the services the
// tokens are presented to.
//
// # What this package must NOT do
//
//   - Treat a decoded token as authenticated proof of identity.
//   - Log or retain raw token strings.
package jwt
