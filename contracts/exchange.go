package contracts

import (
	"net/url"
	"strconv"
)

// Connection is the opaque handle for an established network connection.
// Connections are owned by the external connection layer; the pipeline only
// exposes them for inspection.
type Connection interface {
	// RemoteAddr returns the remote endpoint in host:port form.
	RemoteAddr() string

	// Close releases the connection.
	Close() error
}

// Exchange represents a committed network connection bound to a specific
// host and port for the remainder of a call. It is created by the external
// network-boundary collaborator, never by the chain executor or the bridge.
type Exchange interface {
	// Connection returns the connection carrying this exchange.
	Connection() Connection

	// Host returns the bound hostname.
	Host() string

	// Port returns the bound port.
	Port() int
}

// PortOrDefault returns the explicit port of u, or the default port for its
// scheme (80 for http, 443 for https) when none is present.
func PortOrDefault(u *url.URL) int {
	if p := u.Port(); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			return n
		}
	}
	if u.Scheme == "https" {
		return 443
	}
	return 80
}
