package chain

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/httpchain/httpchain-go/contracts"
)

func TestInterceptorFunc(t *testing.T) {
	t.Run("adapts a function and exposes its name", func(t *testing.T) {
		called := false
		i := NewInterceptorFunc("probe", func(c *Chain) (*contracts.Response, error) {
			called = true
			return okResponse(t, c.Request()), nil
		})

		assert.Equal(t, "probe", i.Name())

		c, _ := New([]Interceptor{i}, mustRequest(t, "https://example.com/"))
		_, err := c.Proceed(c.Request())

		assert.NoError(t, err)
		assert.True(t, called)
	})
}

func TestLoggingInterceptor(t *testing.T) {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("nil logger falls back to the default", func(t *testing.T) {
		i := NewLoggingInterceptor(nil)
		assert.NotNil(t, i.logger)
		assert.Equal(t, "LoggingInterceptor", i.Name())
	})

	t.Run("forwards the request and returns the response", func(t *testing.T) {
		c, _ := New([]Interceptor{NewLoggingInterceptor(quiet), terminalOK(t)},
			mustRequest(t, "https://example.com/"))

		resp, err := c.Proceed(c.Request())
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Status())
	})

	t.Run("passes errors through unmodified", func(t *testing.T) {
		c, _ := New([]Interceptor{NewLoggingInterceptor(quiet)},
			mustRequest(t, "https://example.com/"))

		// Nothing after the logger: its Proceed hits the end of the chain.
		_, err := c.Proceed(c.Request())
		assert.ErrorIs(t, err, ErrChainExhausted)
	})
}
