package chain

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrNetworkPhase      = errors.New("chain: timeouts cannot change once an exchange is bound")
	ErrTimeoutOutOfRange = errors.New("chain: timeout value out of range")

	// Protocol violations
	ErrChainExhausted  = errors.New("chain: chain exhausted")
	ErrHostChanged     = errors.New("chain: request host or port differs from the bound exchange")
	ErrMultipleProceed = errors.New("chain: network interceptor must call Proceed exactly once")
	ErrProceedSkipped  = errors.New("chain: network interceptor must forward the call")
	ErrNoResponse      = errors.New("chain: interceptor returned no response")
	ErrNoResponseBody  = errors.New("chain: interceptor returned a response with no body")
	ErrExchangeRebound = errors.New("chain: exchange is already bound")
)

// ConfigurationError reports local misuse of the chain API, such as mutating
// timeouts during the network phase or supplying an out-of-range value. It is
// surfaced synchronously to the caller that made the illegal call and is
// never retryable.
type ConfigurationError struct {
	Op     string // Operation that was misused
	Reason string // Human-readable explanation
	Err    error  // Sentinel categorizing the misuse
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("chain configuration error: %s: %s", e.Op, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ProtocolViolationError reports a broken interceptor implementation: host or
// port drift after an exchange is bound, a double or missing Proceed call in
// the network phase, an absent response, or a bodyless response. Violations
// abort the in-flight call immediately and must never be interpreted as
// transport failures.
type ProtocolViolationError struct {
	Interceptor string // Name of the offending interceptor, if known
	Reason      string // Human-readable explanation
	Err         error  // Sentinel categorizing the violation
}

func (e *ProtocolViolationError) Error() string {
	if e.Interceptor != "" {
		return fmt.Sprintf("chain protocol violation: interceptor %s: %s", e.Interceptor, e.Reason)
	}
	return fmt.Sprintf("chain protocol violation: %s", e.Reason)
}

func (e *ProtocolViolationError) Unwrap() error {
	return e.Err
}

// IsProtocolViolation reports whether err is (or wraps) a protocol violation.
func IsProtocolViolation(err error) bool {
	var pv *ProtocolViolationError
	return errors.As(err, &pv)
}

// IsConfigurationError reports whether err is (or wraps) a configuration error.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
