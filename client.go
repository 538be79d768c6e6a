// Package httpchain assembles the request/response interceptor pipeline of
// an HTTP client: application interceptors, the wire bridge, and an injected
// terminal interceptor that performs the actual network call.
package httpchain

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/httpchain/httpchain-go/bridge"
	"github.com/httpchain/httpchain-go/chain"
	"github.com/httpchain/httpchain-go/contracts"
	"github.com/httpchain/httpchain-go/cookies"
)

// Client provides the main entry point for httpchain. It owns the ordering
// of the pipeline for every call: caller-registered interceptors run first,
// then the wire bridge, then the terminal interceptor supplied at
// construction, which commits a connection and performs the exchange.
type Client struct {
	interceptors []chain.Interceptor
	terminal     chain.Interceptor
	bridge       *bridge.Bridge
	jar          cookies.Jar
	logger       *slog.Logger
	verbose      bool

	connectTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
}

// NewClient creates a client around the given terminal interceptor. The
// terminal interceptor is the external network-boundary collaborator: it
// binds the exchange and produces the wire response.
func NewClient(terminal chain.Interceptor, options ...ClientOption) (*Client, error) {
	if terminal == nil {
		return nil, fmt.Errorf("httpchain: terminal interceptor cannot be nil")
	}

	cfg := &clientConfig{
		logger:         slog.Default(),
		jar:            cookies.NewMemoryJar(),
		connectTimeout: 10 * time.Second,
		readTimeout:    10 * time.Second,
		writeTimeout:   10 * time.Second,
	}

	for _, opt := range options {
		opt(cfg)
	}

	bridgeOpts := []bridge.Option{bridge.WithLogger(cfg.logger)}
	if cfg.userAgent != "" {
		bridgeOpts = append(bridgeOpts, bridge.WithUserAgent(cfg.userAgent))
	}
	br, err := bridge.New(cfg.jar, bridgeOpts...)
	if err != nil {
		return nil, fmt.Errorf("httpchain: failed to create bridge: %w", err)
	}

	return &Client{
		interceptors:   cfg.interceptors,
		terminal:       terminal,
		bridge:         br,
		jar:            cfg.jar,
		logger:         cfg.logger,
		verbose:        cfg.verbose,
		connectTimeout: cfg.connectTimeout,
		readTimeout:    cfg.readTimeout,
		writeTimeout:   cfg.writeTimeout,
	}, nil
}

// Do executes one call through the full pipeline.
func (c *Client) Do(req *contracts.Request) (*contracts.Response, error) {
	if req == nil {
		return nil, fmt.Errorf("httpchain: request cannot be nil")
	}

	callID := uuid.New().String()

	ics := make([]chain.Interceptor, 0, len(c.interceptors)+3)
	ics = append(ics, c.interceptors...)
	if c.verbose {
		ics = append(ics, chain.NewLoggingInterceptor(c.logger))
	}
	ics = append(ics, c.bridge, c.terminal)

	ch, err := chain.New(ics, req,
		chain.WithTimeouts(c.connectTimeout, c.readTimeout, c.writeTimeout))
	if err != nil {
		return nil, err
	}

	c.logger.Debug("starting call",
		"callId", callID,
		"method", req.Method(),
		"url", req.URL().String(),
	)

	start := time.Now()
	resp, err := ch.Proceed(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.Debug("call failed",
			"callId", callID,
			"duration", duration,
			"error", err,
		)
		return nil, err
	}

	c.logger.Debug("call finished",
		"callId", callID,
		"status", resp.Status(),
		"duration", duration,
	)
	return resp, nil
}

// CookieJar returns the cookie jar shared by all calls of this client.
func (c *Client) CookieJar() cookies.Jar {
	return c.jar
}

// clientConfig holds client configuration
type clientConfig struct {
	interceptors   []chain.Interceptor
	jar            cookies.Jar
	logger         *slog.Logger
	verbose        bool
	userAgent      string
	connectTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
}

// ClientOption configures the client
type ClientOption func(*clientConfig)

// WithLogger sets the logger for all pipeline components
func WithLogger(logger *slog.Logger) ClientOption {
	return func(cfg *clientConfig) {
		cfg.logger = logger
	}
}

// WithCookieJar sets the cookie store consulted by the wire bridge
func WithCookieJar(jar cookies.Jar) ClientOption {
	return func(cfg *clientConfig) {
		cfg.jar = jar
	}
}

// WithInterceptors registers application interceptors, run in the given
// order before the wire bridge
func WithInterceptors(ics ...chain.Interceptor) ClientOption {
	return func(cfg *clientConfig) {
		cfg.interceptors = append(cfg.interceptors, ics...)
	}
}

// WithUserAgent sets the default User-Agent header for outgoing requests
func WithUserAgent(ua string) ClientOption {
	return func(cfg *clientConfig) {
		cfg.userAgent = ua
	}
}

// WithVerbose enables per-request logging via a LoggingInterceptor
func WithVerbose(enabled bool) ClientOption {
	return func(cfg *clientConfig) {
		cfg.verbose = enabled
	}
}

// WithConnectTimeout sets the initial connect timeout for every call
func WithConnectTimeout(d time.Duration) ClientOption {
	return func(cfg *clientConfig) {
		cfg.connectTimeout = d
	}
}

// WithReadTimeout sets the initial read timeout for every call
func WithReadTimeout(d time.Duration) ClientOption {
	return func(cfg *clientConfig) {
		cfg.readTimeout = d
	}
}

// WithWriteTimeout sets the initial write timeout for every call
func WithWriteTimeout(d time.Duration) ClientOption {
	return func(cfg *clientConfig) {
		cfg.writeTimeout = d
	}
}
