package contracts

import (
	"fmt"
	"net/url"

	"golang.org/x/net/http/httpguts"
)

// Request is an immutable application-level HTTP request.
type Request struct {
	method  string
	url     *url.URL
	headers Headers
	body    *Body
}

// Method returns the request method, e.g. "GET".
func (r *Request) Method() string {
	return r.method
}

// URL returns the request target. Callers must not mutate the returned URL.
func (r *Request) URL() *url.URL {
	return r.url
}

// Headers returns a copy of the request headers.
func (r *Request) Headers() Headers {
	return r.headers.Clone()
}

// Body returns the request body descriptor, or nil when the request has none.
func (r *Request) Body() *Body {
	return r.body
}

// ToBuilder returns a builder seeded with this request, for rewrites.
func (r *Request) ToBuilder() *RequestBuilder {
	return &RequestBuilder{
		method:  r.method,
		url:     r.url,
		headers: r.headers.Clone(),
		body:    r.body,
	}
}

// RequestBuilder assembles a Request. The zero value from NewRequestBuilder
// builds a GET request once a target URL is supplied.
type RequestBuilder struct {
	method  string
	url     *url.URL
	rawURL  string
	headers Headers
	body    *Body
}

// NewRequestBuilder creates an empty request builder.
func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{}
}

// Method sets the request method.
func (b *RequestBuilder) Method(method string) *RequestBuilder {
	b.method = method
	return b
}

// URL sets the target from a raw URL string, parsed at Build time.
func (b *RequestBuilder) URL(rawURL string) *RequestBuilder {
	b.rawURL = rawURL
	b.url = nil
	return b
}

// TargetURL sets the target from an already parsed URL.
func (b *RequestBuilder) TargetURL(u *url.URL) *RequestBuilder {
	b.url = u
	b.rawURL = ""
	return b
}

// Header sets a header, replacing any existing values for the name.
func (b *RequestBuilder) Header(name, value string) *RequestBuilder {
	b.headers.Set(name, value)
	return b
}

// AddHeader appends a header, keeping existing values for the name.
func (b *RequestBuilder) AddHeader(name, value string) *RequestBuilder {
	b.headers.Add(name, value)
	return b
}

// RemoveHeader removes every header with the given name.
func (b *RequestBuilder) RemoveHeader(name string) *RequestBuilder {
	b.headers.Del(name)
	return b
}

// Body sets the request body descriptor. A nil body means no body.
func (b *RequestBuilder) Body(body *Body) *RequestBuilder {
	b.body = body
	return b
}

// Build validates the builder state and returns an immutable Request.
func (b *RequestBuilder) Build() (*Request, error) {
	method := b.method
	if method == "" {
		method = "GET"
	}
	u := b.url
	if u == nil {
		if b.rawURL == "" {
			return nil, fmt.Errorf("request: target URL is required")
		}
		parsed, err := url.Parse(b.rawURL)
		if err != nil {
			return nil, fmt.Errorf("request: invalid target URL: %w", err)
		}
		u = parsed
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("request: unsupported scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("request: target URL has no host")
	}
	if err := validateHeaders(b.headers); err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	return &Request{
		method:  method,
		url:     u,
		headers: b.headers.Clone(),
		body:    b.body,
	}, nil
}

func validateHeaders(h Headers) error {
	for _, f := range h.Fields() {
		if !httpguts.ValidHeaderFieldName(f.Name) {
			return fmt.Errorf("invalid header field name %q", f.Name)
		}
		if !httpguts.ValidHeaderFieldValue(f.Value) {
			return fmt.Errorf("invalid value for header field %q", f.Name)
		}
	}
	return nil
}
