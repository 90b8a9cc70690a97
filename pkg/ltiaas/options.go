package ltiaas

import (
	"time"

	"github.com/samvad-hq/ltiaas-client/pkg/httpclient"
)

// Operation labels a request for observers.
type Operation string

const (
	OperationIDToken     Operation = "idtoken"
	OperationMemberships Operation = "memberships"
	OperationRequest     Operation = "request"
)

// RequestInfo describes one completed round trip. StatusCode is zero when the
// request failed before a response arrived.
type RequestInfo struct {
	Operation  Operation
	Method     RequestMethod
	StatusCode int
	Elapsed    time.Duration
	Err        error
}

// Observer receives a RequestInfo after every request.
type Observer interface {
	ObserveRequest(info RequestInfo)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(info RequestInfo)

func (f ObserverFunc) ObserveRequest(info RequestInfo) { f(info) }

// Option customises a Client at construction.
type Option func(*Client)

// WithHTTPClient replaces the default resty transport.
func WithHTTPClient(h httpclient.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithTimeout builds the default transport with the given timeout.
// Ignored when WithHTTPClient is also supplied.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger used for debug request tracing.
func WithLogger(l Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithObserver registers a hook called after every request.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}
