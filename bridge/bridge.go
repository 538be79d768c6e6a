package bridge

import (
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/idna"

	"github.com/httpchain/httpchain-go/chain"
	"github.com/httpchain/httpchain-go/contracts"
	"github.com/httpchain/httpchain-go/cookies"
)

const defaultUserAgent = "httpchain/1.1"

// Bridge adapts an application-level request into wire-ready form and
// inverts that adaptation on the response. It implements chain.Interceptor.
type Bridge struct {
	jar       cookies.Jar
	userAgent string
	logger    *slog.Logger
}

// Option configures the bridge.
type Option func(*Bridge)

// WithUserAgent sets the default User-Agent header value.
func WithUserAgent(ua string) Option {
	return func(b *Bridge) {
		b.userAgent = ua
	}
}

// WithLogger sets the logger used for cookie and compression events.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		b.logger = logger
	}
}

// New creates a bridge backed by the given cookie jar.
func New(jar cookies.Jar, opts ...Option) (*Bridge, error) {
	if jar == nil {
		return nil, fmt.Errorf("bridge: cookie jar cannot be nil")
	}
	b := &Bridge{
		jar:       jar,
		userAgent: defaultUserAgent,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Name implements chain.Interceptor
func (b *Bridge) Name() string {
	return "BridgeInterceptor"
}

// Intercept implements chain.Interceptor. It rewrites the outbound request,
// forwards it exactly once, and rewrites the inbound response so the caller
// never observes the synthetic wire headers.
func (b *Bridge) Intercept(c *chain.Chain) (*contracts.Response, error) {
	userReq := c.Request()
	wire := userReq.ToBuilder()
	userHeaders := userReq.Headers()

	if body := userReq.Body(); body != nil {
		if ct := body.ContentType(); ct != "" {
			wire.Header("Content-Type", ct)
		}
		if cl := body.ContentLength(); cl != contracts.LengthUnknown {
			wire.Header("Content-Length", strconv.FormatInt(cl, 10))
			wire.RemoveHeader("Transfer-Encoding")
		} else {
			wire.Header("Transfer-Encoding", "chunked")
			wire.RemoveHeader("Content-Length")
		}
	}

	if !userHeaders.Has("Host") {
		wire.Header("Host", hostHeader(userReq.URL()))
	}
	if !userHeaders.Has("Connection") {
		wire.Header("Connection", "keep-alive")
	}

	// When the caller asks for a specific encoding or a byte range, the
	// response must reach it untouched, so decompression stays the
	// caller's problem.
	transparentGzip := false
	if !userHeaders.Has("Accept-Encoding") && !userHeaders.Has("Range") {
		transparentGzip = true
		wire.Header("Accept-Encoding", "gzip")
	}

	if cs := b.jar.Load(userReq.URL()); len(cs) > 0 {
		wire.Header("Cookie", cookies.Header(cs))
	}

	if !userHeaders.Has("User-Agent") {
		wire.Header("User-Agent", b.userAgent)
	}

	wireReq, err := wire.Build()
	if err != nil {
		return nil, fmt.Errorf("bridge: building wire request: %w", err)
	}

	resp, err := c.Proceed(wireReq)
	if err != nil {
		return nil, err
	}

	b.jar.ReceiveHeaders(userReq.URL(), resp.Headers())

	out := resp.ToBuilder().Request(userReq)

	if transparentGzip &&
		strings.EqualFold(resp.Headers().Get("Content-Encoding"), "gzip") &&
		permitsBody(userReq, resp) &&
		resp.Body() != nil {
		b.logger.Debug("unwrapping gzip response body",
			"url", userReq.URL().String(),
			"status", resp.Status(),
		)
		out.RemoveHeader("Content-Encoding")
		out.RemoveHeader("Content-Length")
		out.Body(contracts.NewBody(
			resp.Body().ContentType(),
			contracts.LengthUnknown,
			newGzipBody(resp.Body().Source()),
		))
	}

	return out.Build()
}

// hostHeader derives the Host header value from the target authority. The
// port appears only when it differs from the scheme default.
func hostHeader(u *url.URL) string {
	host := u.Hostname()
	if ascii, err := idna.ToASCII(host); err == nil && ascii != "" {
		host = ascii
	}
	if p := u.Port(); p != "" {
		def := 80
		if u.Scheme == "https" {
			def = 443
		}
		if n, err := strconv.Atoi(p); err == nil && n != def {
			return host + ":" + p
		}
	}
	return host
}

// permitsBody reports whether an exchange may carry a response body: HEAD
// requests and 1xx, 204 and 304 responses never do.
func permitsBody(req *contracts.Request, resp *contracts.Response) bool {
	if req.Method() == "HEAD" {
		return false
	}
	code := resp.Status()
	if code >= 100 && code < 200 {
		return false
	}
	return code != 204 && code != 304
}
