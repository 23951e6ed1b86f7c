package http

import (
	"context"
	"sync"
	"sync/atomic"
)

// Result is the single event a Subscription delivers.
type Result[T any] struct {
	Value T
	Err   error
}

// Stream is a cold producer of one call. Nothing happens until Subscribe, and
// every subscription performs a fresh call.
type Stream[T any] struct {
	caller  *Caller
	build   func() (*Request, error)
	want    Expect[T]
	errBody ErrorDecoder
}

func NewStream[T any](c *Caller, d *Descriptor, want Expect[T], errBody ErrorDecoder) *Stream[T] {
	return &Stream[T]{caller: c, build: d.Build, want: want, errBody: errBody}
}

// Subscribe starts the call on a new goroutine.
func (s *Stream[T]) Subscribe(ctx context.Context) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription[T]{
		events: make(chan Result[T], 1),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go sub.run(ctx, s)
	return sub
}

// Subscription is one running call of a Stream.
type Subscription[T any] struct {
	events chan Result[T]
	done   chan struct{}
	cancel context.CancelFunc

	// mu is held while a hook runs.
	mu        sync.Mutex
	cancelled atomic.Bool
}

// Events yields at most one Result and is closed when the call ends.
func (s *Subscription[T]) Events() <-chan Result[T] {
	return s.events
}

// Cancel aborts the in-flight call, including a hook waiting on the context.
// Once Cancel returns no hook runs and no Result is sent. Cancel must not be
// called from a middleware hook.
func (s *Subscription[T]) Cancel() {
	s.cancelled.Store(true)
	s.cancel()
	// Wait out a hook that is still running.
	s.mu.Lock()
	s.mu.Unlock()
}

// Wait blocks until the call has ended.
func (s *Subscription[T]) Wait() {
	<-s.done
}

func (s *Subscription[T]) gate(hook func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled.Load() {
		return false
	}
	hook()
	return true
}

func (s *Subscription[T]) run(ctx context.Context, stream *Stream[T]) {
	defer close(s.done)
	defer close(s.events)
	defer s.cancel()

	out := execute(ctx, stream.caller, stream.build, stream.want, stream.errBody, s.gate)
	if !out.live {
		return
	}
	s.gate(func() {
		s.events <- Result[T]{Value: out.value, Err: out.err}
	})
}
