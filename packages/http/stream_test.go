package http

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect[T any](t *testing.T, sub *Subscription[T]) []Result[T] {
	t.Helper()
	var results []Result[T]
	timeout := time.After(time.Second)
	for {
		select {
		case r, ok := <-sub.Events():
			if !ok {
				return results
			}
			results = append(results, r)
		case <-timeout:
			t.Fatal("subscription did not finish")
			return nil
		}
	}
}

func TestStream_IsColdAndSingleShot(t *testing.T) {
	var calls int32
	caller := NewCaller(WithTransport(staticTransport(200, `{"id":3}`, &calls)))

	stream := NewStream(caller, testDescriptor(), Decode[user](), nil)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	results := collect(t, stream.Subscribe(context.Background()))
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, 3, results[0].Value.ID)

	results = collect(t, stream.Subscribe(context.Background()))
	require.Len(t, results, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestStream_DeliversErrors(t *testing.T) {
	caller := NewCaller(WithTransport(staticTransport(404, `{"message":"gone"}`, nil)))
	stream := NewStream(caller, testDescriptor(), Decode[user](), ErrorBody[apiError]())

	results := collect(t, stream.Subscribe(context.Background()))

	require.Len(t, results, 1)
	domain, ok := DomainError[apiError](results[0].Err)
	require.True(t, ok)
	assert.Equal(t, "gone", domain.Message)
}

func TestStream_CancelBeforeTransportResolves(t *testing.T) {
	entered := make(chan struct{})
	transport := TransportFunc(func(ctx context.Context, req *Request) (*Response, error) {
		close(entered)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	mws, events := newRecorders("only")
	caller := NewCaller(WithTransport(transport), WithMiddleware(mws[0]))

	sub := NewStream(caller, testDescriptor(), Decode[user](), nil).Subscribe(context.Background())

	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("transport was not called")
	}
	sub.Cancel()
	sub.Wait()

	assert.Empty(t, collect(t, sub))
	assert.Equal(t, []string{"only:request"}, *events)
}

func TestStream_CancelInterruptsPreHook(t *testing.T) {
	entered := make(chan struct{})
	var performed int32
	transport := TransportFunc(func(ctx context.Context, req *Request) (*Response, error) {
		atomic.AddInt32(&performed, 1)
		return &Response{StatusCode: 200, Body: []byte(`{"id":1}`)}, nil
	})
	waiting := Hooks{
		Request: func(ctx context.Context, req *Request) error {
			close(entered)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
				return nil
			}
		},
	}
	caller := NewCaller(WithTransport(transport), WithMiddleware(waiting))

	sub := NewStream(caller, testDescriptor(), Decode[user](), nil).Subscribe(context.Background())

	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("pre-hook was not called")
	}
	start := time.Now()
	sub.Cancel()
	assert.Less(t, time.Since(start), time.Second)

	sub.Wait()
	assert.Empty(t, collect(t, sub))
	assert.Equal(t, int32(0), atomic.LoadInt32(&performed))
}

func TestStream_CancelWithoutMiddleware(t *testing.T) {
	release := make(chan struct{})
	transport := TransportFunc(func(ctx context.Context, req *Request) (*Response, error) {
		<-release
		return &Response{StatusCode: 200, Body: []byte(`{"id":1}`)}, nil
	})
	caller := NewCaller(WithTransport(transport))

	sub := NewStream(caller, testDescriptor(), Decode[user](), nil).Subscribe(context.Background())
	sub.Cancel()
	close(release)
	sub.Wait()

	assert.Empty(t, collect(t, sub))
}

func TestStream_CancelAfterDelivery(t *testing.T) {
	caller := NewCaller(WithTransport(staticTransport(204, "", nil)))
	sub := NewStream(caller, testDescriptor(), Empty(), nil).Subscribe(context.Background())

	sub.Wait()
	sub.Cancel()

	results := collect(t, sub)
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
}

func TestStream_BuildFailureIsDelivered(t *testing.T) {
	caller := NewCaller(WithTransport(staticTransport(200, `{}`, nil)))
	d := NewDescriptor(StaticURL("::"), StaticURL("x"), MethodGet)

	results := collect(t, NewStream(caller, d, Decode[user](), nil).Subscribe(context.Background()))

	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, ErrBuildingURL)
}
