// Package http describes, builds and performs HTTP calls.
//
// A Descriptor captures one request:
//   - Environment and endpoint URLs joined with exactly one slash
//   - Method, headers and an optional lazily encoded Body
//   - Query items, given literally or flattened from a value
//   - A timeout enforced by the Transport
//
// A Caller builds the descriptor, runs Middleware around a Transport and
// interprets the Response into the shape requested with Decode, Bytes or
// Empty. Every failure surfaces as an *Error with a Kind. Call blocks, Go
// reports through a callback and Stream delivers a single cancellable event.
package http
