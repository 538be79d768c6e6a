package chain

import (
	"log/slog"
	"time"

	"github.com/httpchain/httpchain-go/contracts"
)

// Interceptor observes and transforms a request and its eventual response.
// An interceptor receives the chain snapshot for its frame and usually calls
// c.Proceed with the (possibly rewritten) request, but it may also
// short-circuit in the application phase by producing a response itself.
type Interceptor interface {
	// Intercept processes the request carried by c and produces a response.
	Intercept(c *Chain) (*contracts.Response, error)

	// Name returns the interceptor name for logging and debugging
	Name() string
}

// InterceptorFunc is a function adapter for Interceptor
type InterceptorFunc struct {
	name string
	fn   func(c *Chain) (*contracts.Response, error)
}

// NewInterceptorFunc creates a new function-based interceptor
func NewInterceptorFunc(name string, fn func(c *Chain) (*contracts.Response, error)) *InterceptorFunc {
	return &InterceptorFunc{name: name, fn: fn}
}

// Intercept implements Interceptor
func (i *InterceptorFunc) Intercept(c *Chain) (*contracts.Response, error) {
	return i.fn(c)
}

// Name implements Interceptor
func (i *InterceptorFunc) Name() string {
	return i.name
}

// LoggingInterceptor logs request dispatch and response timing
type LoggingInterceptor struct {
	logger *slog.Logger
}

// NewLoggingInterceptor creates a new logging interceptor
func NewLoggingInterceptor(logger *slog.Logger) *LoggingInterceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return &LoggingInterceptor{logger: logger}
}

// Intercept implements Interceptor
func (i *LoggingInterceptor) Intercept(c *Chain) (*contracts.Response, error) {
	req := c.Request()
	start := time.Now()

	i.logger.Info("dispatching request",
		"method", req.Method(),
		"url", req.URL().String(),
		"phase", c.Phase().String(),
	)

	resp, err := c.Proceed(req)
	duration := time.Since(start)

	if err != nil {
		i.logger.Error("request failed",
			"method", req.Method(),
			"url", req.URL().String(),
			"duration", duration,
			"error", err,
		)
		return nil, err
	}

	i.logger.Info("response received",
		"method", req.Method(),
		"url", req.URL().String(),
		"status", resp.Status(),
		"duration", duration,
	)

	return resp, nil
}

// Name implements Interceptor
func (i *LoggingInterceptor) Name() string {
	return "LoggingInterceptor"
}
