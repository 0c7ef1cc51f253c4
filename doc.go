// Package goCognito manages end-user authentication state against a Cognito-style
// remote identity provider: credential login with MFA and forced-password-change
// challenges, registration, password reset, and the lifecycle of the derived identity
// (a stable subject plus short-lived service credentials).
//
// [Engine] is built once through [Builder.Build] and hands out an [IdentityProvider]
// (the read path, [IdentityProvider.GetIdentity]) and per-flow [Authenticator] values.
// Engine, IdentityProvider and Authenticator are safe for concurrent use.
//
// # Architecture boundaries
//
// goCognito is the public surface. It exposes [Engine], [Builder], [Config], result codes
// and value types ([Identity], [LoginResult], [RegistrationResult], MetricsSnapshot).
// Session persistence lives in package session, store bridging in package storage, the
// remote service boundary in package cognito, and flow orchestration under internal/.
//
// # What this package must NOT do
//
//   - Surface errors from identity derivation; GetIdentity degrades to an
//     unauthenticated identity instead.
//   - Keep process-wide credential state; service credentials are owned by the
//     IdentityProvider that obtained them.
//   - Log token material.
package goCognito
