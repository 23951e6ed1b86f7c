package http

import "context"

// Middleware intercepts the lifecycle of a call. Hooks of one call never run
// concurrently with each other.
type Middleware interface {
	// OnRequest runs before the transport in registration order. It may modify
	// req. A returned error aborts the remaining pre-hooks and the transport.
	OnRequest(ctx context.Context, req *Request) error
	// OnResponse runs after a response was interpreted successfully.
	OnResponse(req *Request, resp *Response)
	// OnError runs with the final error of a failed call. req is nil when the
	// request could not be built.
	OnError(err *Error, req *Request)
}

// BaseMiddleware provides no-op hooks. Embed it to implement only the hooks
// you need.
type BaseMiddleware struct{}

func (BaseMiddleware) OnRequest(context.Context, *Request) error { return nil }
func (BaseMiddleware) OnResponse(*Request, *Response)            {}
func (BaseMiddleware) OnError(*Error, *Request)                  {}

// Hooks adapts plain functions to Middleware. Nil fields are skipped.
type Hooks struct {
	Request  func(ctx context.Context, req *Request) error
	Response func(req *Request, resp *Response)
	Error    func(err *Error, req *Request)
}

func (h Hooks) OnRequest(ctx context.Context, req *Request) error {
	if h.Request == nil {
		return nil
	}
	return h.Request(ctx, req)
}

func (h Hooks) OnResponse(req *Request, resp *Response) {
	if h.Response != nil {
		h.Response(req, resp)
	}
}

func (h Hooks) OnError(err *Error, req *Request) {
	if h.Error != nil {
		h.Error(err, req)
	}
}
