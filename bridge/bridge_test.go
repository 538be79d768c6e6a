package bridge

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/httpchain/httpchain-go/chain"
	"github.com/httpchain/httpchain-go/contracts"
	"github.com/httpchain/httpchain-go/cookies"
)

// Mock cookie jar
type mockJar struct {
	mock.Mock
}

func (m *mockJar) Load(u *url.URL) []cookies.Cookie {
	args := m.Called(u)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]cookies.Cookie)
}

func (m *mockJar) ReceiveHeaders(u *url.URL, h contracts.Headers) {
	m.Called(u, h)
}

func emptyJar() *mockJar {
	jar := &mockJar{}
	jar.On("Load", mock.Anything).Return(nil)
	jar.On("ReceiveHeaders", mock.Anything, mock.Anything).Return()
	return jar
}

// capturingTerminal records the wire request and answers with a canned
// response built by respond.
type capturingTerminal struct {
	wireRequest *contracts.Request
	respond     func(req *contracts.Request) (*contracts.Response, error)
}

func (c *capturingTerminal) Intercept(ch *chain.Chain) (*contracts.Response, error) {
	c.wireRequest = ch.Request()
	return c.respond(ch.Request())
}

func (c *capturingTerminal) Name() string {
	return "terminal"
}

func respondOK(req *contracts.Request) (*contracts.Response, error) {
	return contracts.NewResponseBuilder().
		Status(200).
		Body(contracts.EmptyBody()).
		Request(req).
		Build()
}

func execute(t *testing.T, b *Bridge, terminal *capturingTerminal, req *contracts.Request) (*contracts.Response, error) {
	t.Helper()
	c, err := chain.New([]chain.Interceptor{b, terminal}, req)
	assert.NoError(t, err)
	return c.Proceed(req)
}

func mustRequest(t *testing.T, b *contracts.RequestBuilder) *contracts.Request {
	t.Helper()
	req, err := b.Build()
	assert.NoError(t, err)
	return req
}

func gzipped(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(s))
	assert.NoError(t, err)
	assert.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestNew(t *testing.T) {
	t.Run("requires a cookie jar", func(t *testing.T) {
		_, err := New(nil)
		assert.Error(t, err)
	})

	t.Run("options apply", func(t *testing.T) {
		b, err := New(cookies.NewMemoryJar(), WithUserAgent("custom/2.0"))
		assert.NoError(t, err)
		assert.Equal(t, "custom/2.0", b.userAgent)
	})
}

func TestOutboundDefaults(t *testing.T) {
	t.Run("bare request gains the wire defaults", func(t *testing.T) {
		jar := emptyJar()
		b, _ := New(jar)
		terminal := &capturingTerminal{respond: respondOK}
		req := mustRequest(t, contracts.NewRequestBuilder().URL("https://example.com/"))

		_, err := execute(t, b, terminal, req)
		assert.NoError(t, err)

		h := terminal.wireRequest.Headers()
		assert.Equal(t, "example.com", h.Get("Host"))
		assert.Equal(t, "keep-alive", h.Get("Connection"))
		assert.Equal(t, "gzip", h.Get("Accept-Encoding"))
		assert.Equal(t, defaultUserAgent, h.Get("User-Agent"))
		assert.False(t, h.Has("Cookie"))
		jar.AssertCalled(t, "Load", req.URL())
	})

	t.Run("caller-set headers survive", func(t *testing.T) {
		b, _ := New(emptyJar())
		terminal := &capturingTerminal{respond: respondOK}
		req := mustRequest(t, contracts.NewRequestBuilder().
			URL("https://example.com/").
			Header("Host", "override.example").
			Header("Connection", "close").
			Header("User-Agent", "caller/1.0"))

		_, err := execute(t, b, terminal, req)
		assert.NoError(t, err)

		h := terminal.wireRequest.Headers()
		assert.Equal(t, "override.example", h.Get("Host"))
		assert.Equal(t, "close", h.Get("Connection"))
		assert.Equal(t, "caller/1.0", h.Get("User-Agent"))
	})

	t.Run("Host carries a non-default port", func(t *testing.T) {
		b, _ := New(emptyJar())
		terminal := &capturingTerminal{respond: respondOK}
		req := mustRequest(t, contracts.NewRequestBuilder().URL("http://example.com:8080/x"))

		_, err := execute(t, b, terminal, req)
		assert.NoError(t, err)
		assert.Equal(t, "example.com:8080", terminal.wireRequest.Headers().Get("Host"))
	})

	t.Run("Host omits the scheme default port", func(t *testing.T) {
		b, _ := New(emptyJar())
		terminal := &capturingTerminal{respond: respondOK}
		req := mustRequest(t, contracts.NewRequestBuilder().URL("https://example.com:443/"))

		_, err := execute(t, b, terminal, req)
		assert.NoError(t, err)
		assert.Equal(t, "example.com", terminal.wireRequest.Headers().Get("Host"))
	})
}

func TestOutboundBodyFraming(t *testing.T) {
	t.Run("known length sets Content-Length, never chunked", func(t *testing.T) {
		b, _ := New(emptyJar())
		terminal := &capturingTerminal{respond: respondOK}
		req := mustRequest(t, contracts.NewRequestBuilder().
			Method("POST").
			URL("https://example.com/upload").
			Body(contracts.BytesBody("application/octet-stream", bytes.Repeat([]byte{0xAB}, 42))))

		_, err := execute(t, b, terminal, req)
		assert.NoError(t, err)

		h := terminal.wireRequest.Headers()
		assert.Equal(t, "42", h.Get("Content-Length"))
		assert.False(t, h.Has("Transfer-Encoding"))
		assert.Equal(t, "application/octet-stream", h.Get("Content-Type"))
	})

	t.Run("unknown length sets chunked, never Content-Length", func(t *testing.T) {
		b, _ := New(emptyJar())
		terminal := &capturingTerminal{respond: respondOK}
		req := mustRequest(t, contracts.NewRequestBuilder().
			Method("POST").
			URL("https://example.com/upload").
			Body(contracts.NewBody("text/plain", contracts.LengthUnknown, strings.NewReader("stream"))))

		_, err := execute(t, b, terminal, req)
		assert.NoError(t, err)

		h := terminal.wireRequest.Headers()
		assert.Equal(t, "chunked", h.Get("Transfer-Encoding"))
		assert.False(t, h.Has("Content-Length"))
	})

	t.Run("no body means no framing headers", func(t *testing.T) {
		b, _ := New(emptyJar())
		terminal := &capturingTerminal{respond: respondOK}
		req := mustRequest(t, contracts.NewRequestBuilder().URL("https://example.com/"))

		_, err := execute(t, b, terminal, req)
		assert.NoError(t, err)

		h := terminal.wireRequest.Headers()
		assert.False(t, h.Has("Content-Length"))
		assert.False(t, h.Has("Transfer-Encoding"))
		assert.False(t, h.Has("Content-Type"))
	})
}

func TestCookies(t *testing.T) {
	t.Run("jar entries become one Cookie header in store order", func(t *testing.T) {
		jar := &mockJar{}
		jar.On("Load", mock.Anything).Return([]cookies.Cookie{
			{Name: "a", Value: "b"},
			{Name: "c", Value: "d"},
		})
		jar.On("ReceiveHeaders", mock.Anything, mock.Anything).Return()
		b, _ := New(jar)
		terminal := &capturingTerminal{respond: respondOK}
		req := mustRequest(t, contracts.NewRequestBuilder().URL("https://example.com/"))

		_, err := execute(t, b, terminal, req)
		assert.NoError(t, err)
		assert.Equal(t, []string{"a=b; c=d"}, terminal.wireRequest.Headers().Values("Cookie"))
	})

	t.Run("response headers always reach the jar", func(t *testing.T) {
		jar := emptyJar()
		b, _ := New(jar)
		terminal := &capturingTerminal{respond: func(req *contracts.Request) (*contracts.Response, error) {
			return contracts.NewResponseBuilder().
				Status(200).
				AddHeader("Set-Cookie", "session=xyz").
				Body(contracts.EmptyBody()).
				Request(req).
				Build()
		}}
		req := mustRequest(t, contracts.NewRequestBuilder().URL("https://example.com/"))

		_, err := execute(t, b, terminal, req)
		assert.NoError(t, err)

		jar.AssertCalled(t, "ReceiveHeaders", req.URL(), mock.MatchedBy(func(h contracts.Headers) bool {
			return h.Get("Set-Cookie") == "session=xyz"
		}))
	})
}

func TestInboundResponse(t *testing.T) {
	t.Run("response records the original application request", func(t *testing.T) {
		b, _ := New(emptyJar())
		terminal := &capturingTerminal{respond: respondOK}
		req := mustRequest(t, contracts.NewRequestBuilder().URL("https://example.com/"))

		resp, err := execute(t, b, terminal, req)
		assert.NoError(t, err)

		// The caller sees its own request, not the wire rewrite.
		assert.Same(t, req, resp.Request())
		assert.False(t, resp.Request().Headers().Has("Accept-Encoding"))
		assert.True(t, terminal.wireRequest.Headers().Has("Accept-Encoding"))
	})

	t.Run("negotiated gzip is unwrapped and framing headers dropped", func(t *testing.T) {
		b, _ := New(emptyJar())
		payload := gzipped(t, "hello gzip world")
		terminal := &capturingTerminal{respond: func(req *contracts.Request) (*contracts.Response, error) {
			return contracts.NewResponseBuilder().
				Status(200).
				Header("Content-Encoding", "gzip").
				Header("Content-Length", "36").
				Body(contracts.BytesBody("text/plain", payload)).
				Request(req).
				Build()
		}}
		req := mustRequest(t, contracts.NewRequestBuilder().URL("https://example.com/"))

		resp, err := execute(t, b, terminal, req)
		assert.NoError(t, err)

		assert.False(t, resp.Headers().Has("Content-Encoding"))
		assert.False(t, resp.Headers().Has("Content-Length"))
		assert.Equal(t, contracts.LengthUnknown, resp.Body().ContentLength())

		data, err := io.ReadAll(resp.Body().Source())
		assert.NoError(t, err)
		assert.Equal(t, "hello gzip world", string(data))
		assert.NoError(t, resp.Body().Source().Close())
	})

	t.Run("caller-set Accept-Encoding disables transparent gzip", func(t *testing.T) {
		b, _ := New(emptyJar())
		payload := gzipped(t, "still compressed")
		terminal := &capturingTerminal{respond: func(req *contracts.Request) (*contracts.Response, error) {
			return contracts.NewResponseBuilder().
				Status(200).
				Header("Content-Encoding", "gzip").
				Body(contracts.BytesBody("", payload)).
				Request(req).
				Build()
		}}
		req := mustRequest(t, contracts.NewRequestBuilder().
			URL("https://example.com/").
			Header("Accept-Encoding", "br"))

		resp, err := execute(t, b, terminal, req)
		assert.NoError(t, err)

		assert.Equal(t, "br", terminal.wireRequest.Headers().Get("Accept-Encoding"))
		assert.True(t, resp.Headers().Has("Content-Encoding"))

		data, err := io.ReadAll(resp.Body().Source())
		assert.NoError(t, err)
		assert.Equal(t, payload, data)
	})

	t.Run("Range requests disable gzip negotiation", func(t *testing.T) {
		b, _ := New(emptyJar())
		terminal := &capturingTerminal{respond: respondOK}
		req := mustRequest(t, contracts.NewRequestBuilder().
			URL("https://example.com/video").
			Header("Range", "bytes=0-1023"))

		_, err := execute(t, b, terminal, req)
		assert.NoError(t, err)
		assert.False(t, terminal.wireRequest.Headers().Has("Accept-Encoding"))
	})

	t.Run("no gzip unwrap for bodyless statuses", func(t *testing.T) {
		b, _ := New(emptyJar())
		terminal := &capturingTerminal{respond: func(req *contracts.Request) (*contracts.Response, error) {
			return contracts.NewResponseBuilder().
				Status(304).
				Header("Content-Encoding", "gzip").
				Body(contracts.EmptyBody()).
				Request(req).
				Build()
		}}
		req := mustRequest(t, contracts.NewRequestBuilder().URL("https://example.com/"))

		resp, err := execute(t, b, terminal, req)
		assert.NoError(t, err)
		assert.True(t, resp.Headers().Has("Content-Encoding"))
	})

	t.Run("no gzip unwrap for HEAD requests", func(t *testing.T) {
		b, _ := New(emptyJar())
		terminal := &capturingTerminal{respond: func(req *contracts.Request) (*contracts.Response, error) {
			return contracts.NewResponseBuilder().
				Status(200).
				Header("Content-Encoding", "gzip").
				Body(contracts.EmptyBody()).
				Request(req).
				Build()
		}}
		req := mustRequest(t, contracts.NewRequestBuilder().
			Method("HEAD").
			URL("https://example.com/"))

		resp, err := execute(t, b, terminal, req)
		assert.NoError(t, err)
		assert.True(t, resp.Headers().Has("Content-Encoding"))
	})
}

func TestErrorPropagation(t *testing.T) {
	t.Run("transport failures pass through unmodified", func(t *testing.T) {
		jar := &mockJar{}
		jar.On("Load", mock.Anything).Return(nil)
		b, _ := New(jar)
		transportErr := errors.New("dial tcp: i/o timeout")
		terminal := &capturingTerminal{respond: func(req *contracts.Request) (*contracts.Response, error) {
			return nil, transportErr
		}}
		req := mustRequest(t, contracts.NewRequestBuilder().URL("https://example.com/"))

		_, err := execute(t, b, terminal, req)
		assert.Equal(t, transportErr, err)

		// A failed exchange never reaches the jar's persistence path.
		jar.AssertNotCalled(t, "ReceiveHeaders", mock.Anything, mock.Anything)
	})
}

func TestLazyGzip(t *testing.T) {
	t.Run("nothing is read from the source until the first Read", func(t *testing.T) {
		src := &countingReader{data: bytes.NewReader(gzipped(t, "lazy"))}
		g := newGzipBody(src)

		assert.Zero(t, src.reads)

		data, err := io.ReadAll(g)
		assert.NoError(t, err)
		assert.Equal(t, "lazy", string(data))
		assert.NotZero(t, src.reads)
		assert.NoError(t, g.Close())
		assert.True(t, src.closed)
	})

	t.Run("Close without Read closes the source", func(t *testing.T) {
		src := &countingReader{data: bytes.NewReader(nil)}
		g := newGzipBody(src)

		assert.NoError(t, g.Close())
		assert.True(t, src.closed)
		assert.Zero(t, src.reads)
	})

	t.Run("corrupt stream surfaces on Read, not on wrap", func(t *testing.T) {
		src := &countingReader{data: bytes.NewReader([]byte("not gzip at all"))}
		g := newGzipBody(src)

		_, err := io.ReadAll(g)
		assert.Error(t, err)
	})
}

type countingReader struct {
	data   *bytes.Reader
	reads  int
	closed bool
}

func (r *countingReader) Read(p []byte) (int, error) {
	r.reads++
	return r.data.Read(p)
}

func (r *countingReader) Close() error {
	r.closed = true
	return nil
}
