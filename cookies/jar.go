package cookies

import (
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/httpchain/httpchain-go/contracts"
)

// Cookie is a single name/value pair associated with a target host.
type Cookie struct {
	Name  string
	Value string
}

// String formats the cookie as it appears on the wire.
func (c Cookie) String() string {
	return c.Name + "=" + c.Value
}

// Header formats cookies as a single Cookie header value, e.g. "a=b; c=d",
// preserving the given order.
func Header(cs []Cookie) string {
	var b strings.Builder
	for i, c := range cs {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(c.String())
	}
	return b.String()
}

// Jar is the cookie store capability.
type Jar interface {
	// Load returns the cookies to attach to a request for u, in the order
	// they should appear on the wire. An empty result means no Cookie
	// header is sent.
	Load(u *url.URL) []Cookie

	// ReceiveHeaders persists any applicable Set-Cookie entries found in
	// the response headers for u.
	ReceiveHeaders(u *url.URL, h contracts.Headers)
}

// MemoryJar is an in-process Jar keyed by hostname. Cookies keep their
// insertion order per host; setting an existing name replaces its value in
// place. Safe for use from concurrent calls.
type MemoryJar struct {
	mu     sync.RWMutex
	byHost map[string][]Cookie
}

// NewMemoryJar creates an empty in-memory cookie jar.
func NewMemoryJar() *MemoryJar {
	return &MemoryJar{byHost: make(map[string][]Cookie)}
}

// Load implements Jar.
func (j *MemoryJar) Load(u *url.URL) []Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()

	stored := j.byHost[u.Hostname()]
	if len(stored) == 0 {
		return nil
	}
	out := make([]Cookie, len(stored))
	copy(out, stored)
	return out
}

// ReceiveHeaders implements Jar.
func (j *MemoryJar) ReceiveHeaders(u *url.URL, h contracts.Headers) {
	values := h.Values("Set-Cookie")
	if len(values) == 0 {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	host := u.Hostname()
	for _, v := range values {
		c, expired, ok := parseSetCookie(v)
		if !ok {
			continue
		}
		if expired {
			j.byHost[host] = remove(j.byHost[host], c.Name)
			continue
		}
		j.byHost[host] = upsert(j.byHost[host], c)
	}
}

// parseSetCookie extracts the name/value pair from a Set-Cookie value.
// Attributes are ignored except Max-Age, where a non-positive value expires
// the cookie immediately.
func parseSetCookie(v string) (c Cookie, expired, ok bool) {
	parts := strings.Split(v, ";")
	name, value, found := strings.Cut(strings.TrimSpace(parts[0]), "=")
	name = strings.TrimSpace(name)
	if !found || name == "" {
		return Cookie{}, false, false
	}
	value = strings.TrimSpace(value)
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		value = value[1 : len(value)-1]
	}

	for _, attr := range parts[1:] {
		k, av, _ := strings.Cut(strings.TrimSpace(attr), "=")
		if strings.EqualFold(strings.TrimSpace(k), "max-age") {
			if n, err := strconv.Atoi(strings.TrimSpace(av)); err == nil && n <= 0 {
				expired = true
			}
		}
	}
	return Cookie{Name: name, Value: value}, expired, true
}

func upsert(cs []Cookie, c Cookie) []Cookie {
	for i := range cs {
		if cs[i].Name == c.Name {
			cs[i].Value = c.Value
			return cs
		}
	}
	return append(cs, c)
}

func remove(cs []Cookie, name string) []Cookie {
	kept := cs[:0]
	for _, c := range cs {
		if c.Name != name {
			kept = append(kept, c)
		}
	}
	return kept
}
