// Package contracts provides the core value types and interfaces for the httpchain pipeline.
//
// This package defines the immutable snapshots that flow through the interceptor chain:
//   - Request: an application-level HTTP request
//   - Response: the response produced for a request
//   - Headers: an ordered, case-insensitive header multimap
//   - Body: a content descriptor wrapping an opaque byte stream
//   - Exchange: the handle representing a committed network connection
//
// Requests and responses are built through builders and never mutated after
// construction. Rewriting a value (as interceptors do) means converting it
// back to a builder, changing it, and building a new value.
package contracts
