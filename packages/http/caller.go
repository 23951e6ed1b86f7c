package http

import (
	"context"

	"go.uber.org/zap"
)

// Caller runs descriptors through middleware, a Transport and Interpret. It
// holds no per-call state and is safe for concurrent use.
type Caller struct {
	transport  Transport
	serializer Serializer
	middleware []Middleware
	logger     *zap.Logger
}

type CallerOption func(*Caller)

// WithTransport sets the transport. Defaults to NewClient().
func WithTransport(t Transport) CallerOption {
	return func(c *Caller) {
		c.transport = t
	}
}

// WithSerializer sets the serializer used to decode responses. Defaults to
// DefaultSerializer.
func WithSerializer(s Serializer) CallerOption {
	return func(c *Caller) {
		c.serializer = s
	}
}

// WithMiddleware appends middleware. Hooks run in the order registered.
func WithMiddleware(middleware ...Middleware) CallerOption {
	return func(c *Caller) {
		c.middleware = append(c.middleware, middleware...)
	}
}

// WithLogger sets the logger. Defaults to zap.L().
func WithLogger(logger *zap.Logger) CallerOption {
	return func(c *Caller) {
		c.logger = logger
	}
}

func NewCaller(opts ...CallerOption) *Caller {
	c := &Caller{}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = NewClient()
	}
	if c.serializer == nil {
		c.serializer = DefaultSerializer
	}
	if c.logger == nil {
		c.logger = zap.L()
	}
	return c
}

func (c *Caller) Serializer() Serializer {
	return c.serializer
}

// Call builds d, runs it and interprets the response as want. Rejected
// responses are decoded with errBody when it is not nil. Every error returned
// is an *Error.
func Call[T any](ctx context.Context, c *Caller, d *Descriptor, want Expect[T], errBody ErrorDecoder) (T, error) {
	out := execute(ctx, c, d.Build, want, errBody, runHook)
	return out.value, out.err
}

// CallRequest runs a request that was already built. req is cloned, so
// middleware changes do not leak back to the caller.
func CallRequest[T any](ctx context.Context, c *Caller, req *Request, want Expect[T], errBody ErrorDecoder) (T, error) {
	build := func() (*Request, error) { return req.Clone(), nil }
	out := execute(ctx, c, build, want, errBody, runHook)
	return out.value, out.err
}

// Go runs Call on a new goroutine and invokes done exactly once with the
// result.
func Go[T any](ctx context.Context, c *Caller, d *Descriptor, want Expect[T], errBody ErrorDecoder, done func(T, error)) {
	go func() {
		done(Call(ctx, c, d, want, errBody))
	}()
}

// gate runs a hook and reports true, or reports false without running it once
// the call has been cancelled.
type gate func(hook func()) bool

func runHook(hook func()) bool {
	hook()
	return true
}

type outcome[T any] struct {
	value T
	err   error
	// live is false when a gate suppressed the call; nothing may be delivered.
	live bool
}

func execute[T any](ctx context.Context, c *Caller, build func() (*Request, error), want Expect[T], errBody ErrorDecoder, g gate) outcome[T] {
	req, err := build()
	if err != nil {
		return fail[T](c, err, nil, g)
	}

	for _, mw := range c.middleware {
		var hookErr error
		if !g(func() { hookErr = mw.OnRequest(ctx, req) }) {
			return outcome[T]{}
		}
		if hookErr != nil {
			return fail[T](c, hookErr, req, g)
		}
	}

	c.logger.Debug("performing request",
		zap.String("method", req.Method.String()),
		zap.Stringer("url", req.URL),
		zap.Stringer("expect", want.shape))

	resp, err := c.transport.Perform(ctx, req)
	if err != nil {
		return fail[T](c, err, req, g)
	}

	value, err := Interpret(c.serializer, resp, want, errBody)
	if err != nil {
		return fail[T](c, err, req, g)
	}

	for _, mw := range c.middleware {
		if !g(func() { mw.OnResponse(req, resp) }) {
			return outcome[T]{}
		}
	}

	c.logger.Debug("request succeeded",
		zap.String("method", req.Method.String()),
		zap.Stringer("url", req.URL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", resp.Duration))

	return outcome[T]{value: value, live: true}
}

func fail[T any](c *Caller, err error, req *Request, g gate) outcome[T] {
	e := mapError(err)

	fields := []zap.Field{zap.Stringer("kind", e.Kind), zap.Error(e)}
	if req != nil {
		fields = append(fields, zap.String("method", req.Method.String()), zap.Stringer("url", req.URL))
	}
	c.logger.Debug("request failed", fields...)

	for _, mw := range c.middleware {
		if !g(func() { mw.OnError(e, req) }) {
			return outcome[T]{}
		}
	}
	return outcome[T]{err: e, live: true}
}
