package chain

import (
	"fmt"
	"math"
	"time"

	"github.com/httpchain/httpchain-go/contracts"
)

// Phase identifies which side of the connection boundary a snapshot is on.
type Phase int

const (
	// PhaseApplication covers every frame before an exchange is bound.
	PhaseApplication Phase = iota
	// PhaseNetwork covers every frame after an exchange is bound.
	PhaseNetwork
)

func (p Phase) String() string {
	if p == PhaseNetwork {
		return "network"
	}
	return "application"
}

const defaultTimeout = 10 * time.Second

// Chain is one immutable dispatch frame of an interceptor sequence.
//
// Every mutator returns a new snapshot; prior snapshots remain valid and can
// be inspected concurrently without locking. The only mutable state is the
// invocation counter, which records how many times Proceed has run on this
// specific snapshot and exists solely for the exactly-once enforcement in
// the network phase.
type Chain struct {
	interceptors []Interceptor
	index        int
	exchange     contracts.Exchange
	request      *contracts.Request

	connectTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration

	calls int
}

// Option configures the initial chain snapshot.
type Option func(*Chain)

// WithTimeouts sets the initial connect, read and write timeouts.
func WithTimeouts(connect, read, write time.Duration) Option {
	return func(c *Chain) {
		c.connectTimeout = connect
		c.readTimeout = read
		c.writeTimeout = write
	}
}

// New creates the initial chain snapshot: index 0, application phase, and
// default timeouts of 10 seconds each unless overridden.
func New(interceptors []Interceptor, req *contracts.Request, opts ...Option) (*Chain, error) {
	if req == nil {
		return nil, fmt.Errorf("chain: request cannot be nil")
	}
	c := &Chain{
		interceptors:   interceptors,
		request:        req,
		connectTimeout: defaultTimeout,
		readTimeout:    defaultTimeout,
		writeTimeout:   defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	for _, d := range []time.Duration{c.connectTimeout, c.readTimeout, c.writeTimeout} {
		if err := checkTimeout(d); err != nil {
			return nil, &ConfigurationError{Op: "New", Reason: err.Error(), Err: ErrTimeoutOutOfRange}
		}
	}
	return c, nil
}

// Request returns the request carried by this snapshot.
func (c *Chain) Request() *contracts.Request {
	return c.request
}

// Exchange returns the bound exchange, or nil during the application phase.
func (c *Chain) Exchange() contracts.Exchange {
	return c.exchange
}

// Connection returns the connection of the bound exchange, or nil when no
// exchange is bound yet.
func (c *Chain) Connection() contracts.Connection {
	if c.exchange == nil {
		return nil
	}
	return c.exchange.Connection()
}

// Phase reports whether this snapshot is before or after the connection
// boundary. Phase is derived from exchange presence, never stored.
func (c *Chain) Phase() Phase {
	if c.exchange != nil {
		return PhaseNetwork
	}
	return PhaseApplication
}

// ConnectTimeout returns the connect timeout carried by this snapshot.
func (c *Chain) ConnectTimeout() time.Duration {
	return c.connectTimeout
}

// ReadTimeout returns the read timeout carried by this snapshot.
func (c *Chain) ReadTimeout() time.Duration {
	return c.readTimeout
}

// WriteTimeout returns the write timeout carried by this snapshot.
func (c *Chain) WriteTimeout() time.Duration {
	return c.writeTimeout
}

// WithConnectTimeout returns a new snapshot with the connect timeout
// replaced. Fails during the network phase or for out-of-range values.
func (c *Chain) WithConnectTimeout(d time.Duration) (*Chain, error) {
	if err := c.checkTimeoutMutation("WithConnectTimeout", d); err != nil {
		return nil, err
	}
	n := c.copy(c.index, c.request)
	n.connectTimeout = d
	return n, nil
}

// WithReadTimeout returns a new snapshot with the read timeout replaced.
// Fails during the network phase or for out-of-range values.
func (c *Chain) WithReadTimeout(d time.Duration) (*Chain, error) {
	if err := c.checkTimeoutMutation("WithReadTimeout", d); err != nil {
		return nil, err
	}
	n := c.copy(c.index, c.request)
	n.readTimeout = d
	return n, nil
}

// WithWriteTimeout returns a new snapshot with the write timeout replaced.
// Fails during the network phase or for out-of-range values.
func (c *Chain) WithWriteTimeout(d time.Duration) (*Chain, error) {
	if err := c.checkTimeoutMutation("WithWriteTimeout", d); err != nil {
		return nil, err
	}
	n := c.copy(c.index, c.request)
	n.writeTimeout = d
	return n, nil
}

// WithExchange returns a new snapshot with the exchange bound, flipping all
// later frames into the network phase. Binding happens exactly once per
// call, by the external network-boundary interceptor.
func (c *Chain) WithExchange(ex contracts.Exchange) (*Chain, error) {
	if ex == nil {
		return nil, &ConfigurationError{Op: "WithExchange", Reason: "exchange cannot be nil"}
	}
	if c.exchange != nil {
		return nil, &ProtocolViolationError{
			Interceptor: c.callerName(),
			Reason:      "exchange is already bound for this call",
			Err:         ErrExchangeRebound,
		}
	}
	n := c.copy(c.index, c.request)
	n.exchange = ex
	return n, nil
}

// Proceed dispatches req to the interceptor at this snapshot's index and
// returns the response it produces. It enforces the chain contract: index
// bounds, host/port pinning and exactly-once forwarding in the network
// phase, and the requirement that every response carries a body. Errors from
// interceptors, including transport failures from the terminal one,
// propagate unmodified.
func (c *Chain) Proceed(req *contracts.Request) (*contracts.Response, error) {
	if c.index >= len(c.interceptors) {
		return nil, &ProtocolViolationError{
			Interceptor: c.callerName(),
			Reason:      "chain exhausted, no interceptor left to dispatch",
			Err:         ErrChainExhausted,
		}
	}

	c.calls++

	if c.exchange != nil {
		// A committed connection is pinned to its host and port.
		if !sameRoute(req, c.exchange) {
			return nil, &ProtocolViolationError{
				Interceptor: c.callerName(),
				Reason: fmt.Sprintf("request target %s:%d does not match the bound exchange %s:%d",
					req.URL().Hostname(), contracts.PortOrDefault(req.URL()), c.exchange.Host(), c.exchange.Port()),
				Err: ErrHostChanged,
			}
		}
		if c.calls > 1 {
			return nil, &ProtocolViolationError{
				Interceptor: c.callerName(),
				Reason:      "Proceed called more than once at a network-phase frame",
				Err:         ErrMultipleProceed,
			}
		}
	}

	next := c.copy(c.index+1, req)
	ic := c.interceptors[c.index]

	resp, err := ic.Intercept(next)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, &ProtocolViolationError{
			Interceptor: ic.Name(),
			Reason:      "interceptor returned no response",
			Err:         ErrNoResponse,
		}
	}
	if c.exchange != nil && c.index+1 < len(c.interceptors) && next.calls != 1 {
		return nil, &ProtocolViolationError{
			Interceptor: ic.Name(),
			Reason:      "network-phase interceptor must call Proceed exactly once",
			Err:         ErrProceedSkipped,
		}
	}
	if resp.Body() == nil {
		return nil, &ProtocolViolationError{
			Interceptor: ic.Name(),
			Reason:      "interceptor returned a response with no body",
			Err:         ErrNoResponseBody,
		}
	}
	return resp, nil
}

// copy constructs the successor snapshot. The invocation counter starts at
// zero; everything else is carried over.
func (c *Chain) copy(index int, req *contracts.Request) *Chain {
	return &Chain{
		interceptors:   c.interceptors,
		index:          index,
		exchange:       c.exchange,
		request:        req,
		connectTimeout: c.connectTimeout,
		readTimeout:    c.readTimeout,
		writeTimeout:   c.writeTimeout,
	}
}

// callerName names the interceptor that holds this snapshot. The snapshot at
// index i is held by the interceptor at i-1; index 0 is the call entry point.
func (c *Chain) callerName() string {
	if c.index >= 1 && c.index-1 < len(c.interceptors) {
		return c.interceptors[c.index-1].Name()
	}
	return ""
}

func (c *Chain) checkTimeoutMutation(op string, d time.Duration) error {
	if c.exchange != nil {
		return &ConfigurationError{
			Op:     op,
			Reason: "timeouts are frozen once an exchange is bound",
			Err:    ErrNetworkPhase,
		}
	}
	if err := checkTimeout(d); err != nil {
		return &ConfigurationError{Op: op, Reason: err.Error(), Err: ErrTimeoutOutOfRange}
	}
	return nil
}

// checkTimeout rejects values that cannot survive the conversion to the
// millisecond precision used by the connection layer.
func checkTimeout(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("timeout %v is negative", d)
	}
	if d.Milliseconds() > math.MaxInt32 {
		return fmt.Errorf("timeout %v is too large", d)
	}
	return nil
}

func sameRoute(req *contracts.Request, ex contracts.Exchange) bool {
	u := req.URL()
	return u.Hostname() == ex.Host() && contracts.PortOrDefault(u) == ex.Port()
}
