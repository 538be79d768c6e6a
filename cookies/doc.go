// Package cookies provides the cookie store capability consumed by the wire bridge.
//
// The Jar interface is the seam: the bridge asks it for the cookies to attach
// to an outgoing request and hands it every response's headers for
// persistence. MemoryJar is the default in-process implementation; callers
// with durable cookie requirements supply their own Jar.
//
// A Jar shared across concurrent calls must be safe for concurrent use.
// MemoryJar satisfies this with internal locking.
package cookies
