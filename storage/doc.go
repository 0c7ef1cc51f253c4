// Package storage bridges the synchronous key/value contract of the token cache onto
// an asynchronous remote store.
//
// # Design
//
// An [Adapter] keeps the whole namespace of one store key in memory. Reads are served
// from memory. Mutations update memory synchronously and then schedule a background
// write of the entire current mapping; successive mutations coalesce into one write of
// the latest snapshot. [Adapter.Sync] reloads memory from the store and
// [Adapter.Flush] waits for scheduled writes, which closes the loss window of a process
// exiting before its last mutation was persisted.
//
// # Architecture boundaries
//
// This package owns namespace persistence. It knows nothing about sessions, token
// formats or the identity service.
//
// # What this package must NOT do
//
//   - Import goCognito, session or cognito.
//   - Surface store failures through GetItem/SetItem/RemoveItem/Clear.
//   - Log stored values.
package storage
