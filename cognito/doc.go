// Package cognito is the boundary to the remote identity service: the user pool
// (authentication, registration, password and MFA management) and the identity pool
// (service credentials for an authenticated identity).
//
// [UserPoolService] and [CredentialsService] are the consumed contracts; [Client] and
// [IdentityPool] implement them over the AWS SDK v2. Every exchange is a single
// request/response; no retries are layered on top of the SDK's own policy.
//
// All errors leaving this package are *[ServiceError] values carrying the provider's
// error code, or "NetworkingError" / "RequestCanceled" for transport and context failures.
package cognito
