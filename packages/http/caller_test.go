package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recorder logs every hook it sees as "<name>:<hook>".
type recorder struct {
	name   string
	mu     *sync.Mutex
	events *[]string
	fail   error
	errs   []*Error
	reqs   []*Request
}

func newRecorders(names ...string) ([]*recorder, *[]string) {
	mu := &sync.Mutex{}
	events := &[]string{}
	out := make([]*recorder, len(names))
	for i, name := range names {
		out[i] = &recorder{name: name, mu: mu, events: events}
	}
	return out, events
}

func (r *recorder) record(hook string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.events = append(*r.events, r.name+":"+hook)
}

func (r *recorder) OnRequest(ctx context.Context, req *Request) error {
	r.record("request")
	return r.fail
}

func (r *recorder) OnResponse(req *Request, resp *Response) {
	r.record("response")
}

func (r *recorder) OnError(err *Error, req *Request) {
	r.record("error")
	r.errs = append(r.errs, err)
	r.reqs = append(r.reqs, req)
}

func staticTransport(status int, body string, calls *int32) Transport {
	return TransportFunc(func(ctx context.Context, req *Request) (*Response, error) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		return &Response{StatusCode: status, Body: []byte(body)}, nil
	})
}

func testDescriptor() *Descriptor {
	return NewDescriptor(testEnvironment, StaticURL("users/1"), MethodGet)
}

func TestCall_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/1", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"id":1,"name":"ada"}`))
	}))
	defer server.Close()

	caller := NewCaller(WithLogger(zap.NewNop()))
	d := NewDescriptor(StaticURL(server.URL), StaticURL("users/1"), MethodGet)

	got, err := Call(context.Background(), caller, d, Decode[user](), nil)

	require.NoError(t, err)
	assert.Equal(t, user{ID: 1, Name: "ada"}, got)
}

func TestCall_MiddlewareOrder(t *testing.T) {
	mws, events := newRecorders("first", "second")
	caller := NewCaller(
		WithTransport(staticTransport(200, `{"id":1}`, nil)),
		WithMiddleware(mws[0], mws[1]),
	)

	_, err := Call(context.Background(), caller, testDescriptor(), Decode[user](), nil)

	require.NoError(t, err)
	assert.Equal(t, []string{
		"first:request", "second:request",
		"first:response", "second:response",
	}, *events)
}

func TestCall_MiddlewareCanModifyRequest(t *testing.T) {
	var seen string
	transport := TransportFunc(func(ctx context.Context, req *Request) (*Response, error) {
		seen = req.HeaderValue("X-Trace")
		return &Response{StatusCode: 204}, nil
	})
	caller := NewCaller(WithTransport(transport), WithMiddleware(Hooks{
		Request: func(ctx context.Context, req *Request) error {
			req.SetHeader("X-Trace", "abc")
			return nil
		},
	}))

	_, err := Call(context.Background(), caller, testDescriptor(), Empty(), nil)

	require.NoError(t, err)
	assert.Equal(t, "abc", seen)
}

func TestCall_PreHookFailureSkipsTransport(t *testing.T) {
	var calls int32
	mws, events := newRecorders("first", "second", "third")
	mws[1].fail = errors.New("quota exhausted")
	caller := NewCaller(
		WithTransport(staticTransport(200, `{}`, &calls)),
		WithMiddleware(mws[0], mws[1], mws[2]),
	)

	_, err := Call(context.Background(), caller, testDescriptor(), Decode[user](), nil)

	assert.ErrorIs(t, err, ErrUnknown)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
	assert.Equal(t, []string{
		"first:request", "second:request",
		"first:error", "second:error", "third:error",
	}, *events)
}

func TestCall_PreHookKindedErrorPassesThrough(t *testing.T) {
	caller := NewCaller(
		WithTransport(staticTransport(200, `{}`, nil)),
		WithMiddleware(Hooks{Request: func(context.Context, *Request) error {
			return encodingError(errors.New("signing payload"))
		}}),
	)

	_, err := Call(context.Background(), caller, testDescriptor(), Decode[user](), nil)

	assert.ErrorIs(t, err, ErrEncoding)
}

func TestCall_BuildFailure(t *testing.T) {
	var calls int32
	mws, events := newRecorders("only")
	caller := NewCaller(
		WithTransport(staticTransport(200, `{}`, &calls)),
		WithMiddleware(mws[0]),
	)
	d := NewDescriptor(StaticURL("no-scheme"), StaticURL("users"), MethodGet)

	_, err := Call(context.Background(), caller, d, Decode[user](), nil)

	assert.ErrorIs(t, err, ErrBuildingURL)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
	assert.Equal(t, []string{"only:error"}, *events)
	require.Len(t, mws[0].reqs, 1)
	assert.Nil(t, mws[0].reqs[0])
	assert.Equal(t, KindBuildingURL, mws[0].errs[0].Kind)
}

func TestCall_TransportFailure(t *testing.T) {
	mws, events := newRecorders("only")
	cause := errors.New("connection reset")
	caller := NewCaller(
		WithTransport(TransportFunc(func(context.Context, *Request) (*Response, error) {
			return nil, cause
		})),
		WithMiddleware(mws[0]),
	)

	_, err := Call(context.Background(), caller, testDescriptor(), Decode[user](), nil)

	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindUnknown, e.Kind)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, []string{"only:request", "only:error"}, *events)
	assert.NotNil(t, mws[0].reqs[0])
}

func TestCall_Rejected(t *testing.T) {
	mws, events := newRecorders("only")
	caller := NewCaller(
		WithTransport(staticTransport(400, `{"message":"bad"}`, nil)),
		WithMiddleware(mws[0]),
	)

	_, err := Call(context.Background(), caller, testDescriptor(), Decode[user](), ErrorBody[apiError]())

	domain, ok := DomainError[apiError](err)
	require.True(t, ok)
	assert.Equal(t, "bad", domain.Message)
	assert.Equal(t, []string{"only:request", "only:error"}, *events)
	assert.Equal(t, StatusBadRequest, mws[0].errs[0].Status)
}

func TestCall_DecodingFailureSkipsResponseHooks(t *testing.T) {
	mws, events := newRecorders("only")
	caller := NewCaller(
		WithTransport(staticTransport(200, `{"unexpected":true}`, nil)),
		WithMiddleware(mws[0]),
	)

	_, err := Call(context.Background(), caller, testDescriptor(), Empty(), nil)

	assert.ErrorIs(t, err, ErrDecoding)
	assert.Equal(t, []string{"only:request", "only:error"}, *events)
}

func TestCall_DescriptorTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	d := NewDescriptor(StaticURL(server.URL), StaticURL("slow"), MethodGet, WithTimeout(20*time.Millisecond))

	_, err := Call(context.Background(), NewCaller(), d, Bytes(), nil)

	assert.ErrorIs(t, err, ErrUnknown)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCallRequest_DoesNotMutateInput(t *testing.T) {
	req, err := testDescriptor().Build()
	require.NoError(t, err)

	caller := NewCaller(
		WithTransport(staticTransport(200, "raw", nil)),
		WithMiddleware(Hooks{Request: func(ctx context.Context, r *Request) error {
			r.SetHeader("X-Added", "1")
			return nil
		}}),
	)

	got, err := CallRequest(context.Background(), caller, req, Bytes(), nil)

	require.NoError(t, err)
	assert.Equal(t, "raw", string(got))
	assert.Empty(t, req.HeaderValue("X-Added"))
}

func TestGo_DeliversOnce(t *testing.T) {
	var calls int32
	caller := NewCaller(WithTransport(staticTransport(200, `{"id":9}`, nil)))

	done := make(chan user, 2)
	Go(context.Background(), caller, testDescriptor(), Decode[user](), nil, func(u user, err error) {
		atomic.AddInt32(&calls, 1)
		assert.NoError(t, err)
		done <- u
	})

	select {
	case u := <-done:
		assert.Equal(t, 9, u.ID)
	case <-time.After(time.Second):
		t.Fatal("callback was not invoked")
	}
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
