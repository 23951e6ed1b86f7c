package resty

import (
	"context"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/netrequester/packages/http"
)

type item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestTransport_Call(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/items", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("draft"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, []string{"a,b"}, r.Header.Values("X-Tag"))
		w.WriteHeader(nethttp.StatusCreated)
		_, _ = w.Write([]byte(`{"id":5,"name":"widget"}`))
	}))
	defer server.Close()

	caller := http.NewCaller(http.WithTransport(New()))
	d := http.NewDescriptor(http.StaticURL(server.URL), http.StaticURL("items"), http.MethodPost,
		http.WithBody(http.JSONBody(item{Name: "widget"})),
		http.WithQuery(http.QueryItems(http.Param("draft", "1"))),
		http.WithHeaders(http.Header{Name: "X-Tag", Value: "a"}, http.Header{Name: "X-Tag", Value: "b"}),
	)

	got, err := http.Call(context.Background(), caller, d, http.Decode[item](), nil)

	require.NoError(t, err)
	assert.Equal(t, item{ID: 5, Name: "widget"}, got)
}

func TestTransport_Rejected(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"exists"}`))
	}))
	defer server.Close()

	caller := http.NewCaller(http.WithTransport(New()))
	d := http.NewDescriptor(http.StaticURL(server.URL), http.StaticURL("items"), http.MethodPut)

	_, err := http.Call(context.Background(), caller, d, http.Empty(), nil)

	e, ok := http.AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.KindRejected, e.Kind)
	assert.Equal(t, http.StatusConflict, e.Status)
}

func TestTransport_Timeout(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	req := &http.Request{Method: http.MethodGet, Timeout: 20 * time.Millisecond}
	d := http.NewDescriptor(http.StaticURL(server.URL), http.StaticURL("slow"), http.MethodGet)
	built, err := d.Build()
	require.NoError(t, err)
	req.URL = built.URL

	_, err = New().Perform(context.Background(), req)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTransport_Redirects(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.URL.Path == "/final" {
			_, _ = w.Write([]byte("final"))
			return
		}
		nethttp.Redirect(w, r, "/final", nethttp.StatusFound)
	}))
	defer server.Close()

	d := http.NewDescriptor(http.StaticURL(server.URL), http.StaticURL("start"), http.MethodGet)
	req, err := d.Build()
	require.NoError(t, err)

	resp, err := New().Perform(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "final", resp.BodyString())

	resp, err = New(WithoutRedirects()).Perform(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 302, resp.StatusCode)
}
