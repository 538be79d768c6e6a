// Package chain implements the interceptor chain executor for the httpchain pipeline.
//
// A call walks an ordered list of interceptors. Each dispatch step is a Chain
// snapshot: the interceptor list, the current index, the request as rewritten
// so far, the per-call timeouts, and (once a connection is committed) the
// bound Exchange. Snapshots are persistent values: every state change returns
// a new snapshot and earlier ones stay valid.
//
// A call runs in two phases. Before an exchange is bound the chain is in the
// application phase and interceptors may rewrite the request freely, adjust
// timeouts, or call Proceed more than once (a retry layer does exactly that).
// Once the network-boundary interceptor binds an exchange the chain enters
// the network phase: timeouts are frozen, the request is pinned to the
// exchange's host and port, and every non-terminal interceptor must forward
// the call exactly once. Proceed enforces all of this and reports violations
// as *ProtocolViolationError; they indicate a broken interceptor, not a
// transient transport condition.
package chain
