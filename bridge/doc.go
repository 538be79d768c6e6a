// Package bridge implements the translation layer between application-level
// requests and wire-ready ones.
//
// The Bridge is a chain.Interceptor that sits between the caller-facing
// interceptors and the connection layer. On the way out it frames the body
// (Content-Length or chunked Transfer-Encoding, never both), defaults the
// Host, Connection and User-Agent headers, negotiates transparent gzip
// compression, and attaches cookies from the configured jar. On the way back
// it hands response headers to the jar, restores the original application
// request on the response, and — when it negotiated compression itself —
// unwraps a gzip body lazily, dropping the Content-Encoding and
// Content-Length headers because the decompressed length is unknown.
//
// The bridge never retries, caches or suppresses anything: errors from the
// rest of the chain propagate unmodified.
package bridge
