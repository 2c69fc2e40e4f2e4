// Package apiclient calls HTTP services that answer with the standard
// envelope body (data, success, message, messageType, statusCode).
package apiclient

import (
	"github.com/go-playground/validator/v10"
	"github.com/samvad-hq/envelope-client/pkg/httpclient"
)

// Logger defines the logging surface the client relies on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) InfoObj(string, string, interface{})  {}
func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}
func (noopLogger) ErrorObj(string, string, interface{}) {}

// Client sends envelope calls through an injected transport. It holds no
// mutable state and is safe for concurrent use when the transport is.
type Client struct {
	transport httpclient.Client
	log       Logger
	validate  *validator.Validate
	headers   map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for call tracing.
func WithLogger(log Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithValidator enables pre-flight validation of struct payloads carrying
// `validate` tags. A failing payload is answered locally with the same
// envelope a server-side model validation failure produces.
func WithValidator(v *validator.Validate) Option {
	return func(c *Client) {
		c.validate = v
	}
}

// WithHeaders adds headers sent with every call. Per-call headers win.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		if len(headers) == 0 {
			return
		}
		if c.headers == nil {
			c.headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

// New wraps an already configured transport.
func New(transport httpclient.Client, opts ...Option) *Client {
	c := &Client{
		transport: transport,
		log:       noopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}
