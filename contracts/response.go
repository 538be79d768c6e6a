package contracts

import (
	"fmt"
)

// Response is an immutable HTTP response.
//
// The recorded request is the application-level request that produced the
// response. Interceptors that rewrite requests on the way out are expected
// to restore the original request here on the way back, so callers never
// observe synthetic wire headers.
type Response struct {
	status  int
	headers Headers
	body    *Body
	request *Request
}

// Status returns the response status code.
func (r *Response) Status() int {
	return r.status
}

// Headers returns a copy of the response headers.
func (r *Response) Headers() Headers {
	return r.headers.Clone()
}

// Body returns the response body descriptor, or nil when absent.
func (r *Response) Body() *Body {
	return r.body
}

// Request returns the request this response answers.
func (r *Response) Request() *Request {
	return r.request
}

// ToBuilder returns a builder seeded with this response, for rewrites.
func (r *Response) ToBuilder() *ResponseBuilder {
	return &ResponseBuilder{
		status:  r.status,
		headers: r.headers.Clone(),
		body:    r.body,
		request: r.request,
	}
}

// ResponseBuilder assembles a Response.
type ResponseBuilder struct {
	status  int
	headers Headers
	body    *Body
	request *Request
}

// NewResponseBuilder creates an empty response builder.
func NewResponseBuilder() *ResponseBuilder {
	return &ResponseBuilder{}
}

// Status sets the response status code.
func (b *ResponseBuilder) Status(status int) *ResponseBuilder {
	b.status = status
	return b
}

// Header sets a header, replacing any existing values for the name.
func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers.Set(name, value)
	return b
}

// AddHeader appends a header, keeping existing values for the name.
func (b *ResponseBuilder) AddHeader(name, value string) *ResponseBuilder {
	b.headers.Add(name, value)
	return b
}

// RemoveHeader removes every header with the given name.
func (b *ResponseBuilder) RemoveHeader(name string) *ResponseBuilder {
	b.headers.Del(name)
	return b
}

// Body sets the response body descriptor.
func (b *ResponseBuilder) Body(body *Body) *ResponseBuilder {
	b.body = body
	return b
}

// Request records the request this response answers.
func (b *ResponseBuilder) Request(req *Request) *ResponseBuilder {
	b.request = req
	return b
}

// Build validates the builder state and returns an immutable Response.
func (b *ResponseBuilder) Build() (*Response, error) {
	if b.status < 100 || b.status > 599 {
		return nil, fmt.Errorf("response: status code %d out of range", b.status)
	}
	if b.request == nil {
		return nil, fmt.Errorf("response: originating request is required")
	}
	if err := validateHeaders(b.headers); err != nil {
		return nil, fmt.Errorf("response: %w", err)
	}
	return &Response{
		status:  b.status,
		headers: b.headers.Clone(),
		body:    b.body,
		request: b.request,
	}, nil
}
