// Package flows contains pure-function orchestrators for the authentication and
// identity operations.
//
// Each flow function (RunLogin, RunMFA, RunRefresh, etc.) accepts a typed
// dependency struct and returns a result value without side-effects beyond those
// dependencies. Provider challenges are mapped to outcomes by a single exhaustive
// switch so every exchange settles into exactly one outcome.
//
// # Architecture boundaries
//
// Flow functions call the remote identity service through narrow interfaces. They do
// NOT own the session cache, user handles, metrics or audit; the root package maps
// results onto those.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goCognito (to avoid import cycles).
//   - Log token material.
package flows
