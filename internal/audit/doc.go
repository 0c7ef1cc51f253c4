// Package audit implements async event dispatching for authentication and identity
// operations.
//
// # Components
//
//   - [Sink]: interface for event consumers (channel, JSON writer, slog, no-op).
//   - [Dispatcher]: buffered async relay with drop-if-full / block-if-full semantics.
//   - [Event]: structured audit record with event id, correlation id, user and outcome.
//
// # Architecture boundaries
//
// This package owns event buffering and sink delivery. It does NOT decide which events
// to emit; the root package does.
//
// # What this package must NOT do
//
//   - Filter or suppress events based on business logic.
//   - Import goCognito or any sibling internal package.
//   - Perform network I/O beyond what a caller-supplied Sink does.
package audit
