package http

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEnvironment = StaticURL("https://api.example.com")

func TestDescriptor_Build(t *testing.T) {
	d := NewDescriptor(testEnvironment, StaticURL("/users"), MethodPost,
		WithBody(JSONBody(map[string]string{"name": "ada"})),
		WithQuery(QueryItems(Param("notify", "true"))),
		WithHeaders(BearerAuthorization("secret")),
	)

	req, err := d.Build()
	require.NoError(t, err)

	assert.Equal(t, MethodPost, req.Method)
	assert.Equal(t, "https://api.example.com/users?notify=true", req.URL.String())
	assert.JSONEq(t, `{"name":"ada"}`, string(req.Body))
	assert.Equal(t, "Bearer secret", req.HeaderValue("Authorization"))
	assert.Equal(t, ContentTypeJSON, req.HeaderValue("Content-Type"))
	assert.Equal(t, DefaultTimeout, req.Timeout)
}

func TestDescriptor_BuildIsRepeatable(t *testing.T) {
	d := NewDescriptor(testEnvironment, StaticURL("items"), MethodGet,
		WithQuery(QueryItems(Param("page", "1"))),
		WithTimeout(5*time.Second),
	)

	first, err := d.Build()
	require.NoError(t, err)
	first.AddHeader("X-Mutated", "yes")

	second, err := d.Build()
	require.NoError(t, err)

	assert.Empty(t, second.HeaderValue("X-Mutated"))
	assert.Equal(t, first.URL, second.URL)
	assert.Equal(t, 5*time.Second, second.Timeout)
}

func TestDescriptor_ContentType(t *testing.T) {
	tests := []struct {
		name     string
		headers  []Header
		expected string
	}{
		{
			name:     "defaults to json",
			expected: "application/json",
		},
		{
			name:     "caller value wins",
			headers:  []Header{{Name: "Content-Type", Value: "text/plain"}},
			expected: "text/plain",
		},
		{
			name:     "name is case-insensitive",
			headers:  []Header{{Name: "content-type", Value: "application/xml"}},
			expected: "application/xml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDescriptor(testEnvironment, StaticURL("x"), MethodGet, WithHeaders(tt.headers...))
			req, err := d.Build()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, req.HeaderValue("Content-Type"))
		})
	}
}

func TestDescriptor_DuplicateHeadersOnTheWire(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, []string{"a,b"}, r.Header.Values("X-Tag"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := NewDescriptor(StaticURL(server.URL), StaticURL("tags"), MethodGet, WithHeaders(
		Header{Name: "X-Tag", Value: "a"},
		Header{Name: "X-Tag", Value: "b"},
		Header{Name: "X-Tag", Value: "a"},
	))

	req, err := d.Build()
	require.NoError(t, err)
	assert.Equal(t, "a,b", req.HeaderValue("X-Tag"))

	resp, err := NewClient().Perform(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestDescriptor_BuildFailures(t *testing.T) {
	tests := []struct {
		name string
		d    *Descriptor
		kind Kind
	}{
		{
			name: "environment without scheme",
			d:    NewDescriptor(StaticURL("api.example.com"), StaticURL("users"), MethodGet),
			kind: KindBuildingURL,
		},
		{
			name: "query value cannot be serialized",
			d: NewDescriptor(testEnvironment, StaticURL("users"), MethodGet,
				WithQuery(QueryValue(map[string]float64{"x": math.NaN()}, nil))),
			kind: KindBuildingURL,
		},
		{
			name: "body cannot be serialized",
			d: NewDescriptor(testEnvironment, StaticURL("users"), MethodPost,
				WithBody(JSONBody(math.Inf(-1)))),
			kind: KindEncoding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := tt.d.Build()
			assert.Nil(t, req)
			e, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, e.Kind)
		})
	}
}

func TestDescriptor_Accessors(t *testing.T) {
	d := NewDescriptor(testEnvironment, StaticURL("users"), MethodGet,
		WithQuery(QueryItems(Param("a", "1"))))

	assert.Equal(t, "https://api.example.com", d.Environment())
	assert.Equal(t, "users", d.Endpoint())
	assert.Equal(t, MethodGet, d.Method())
	assert.Equal(t, "https://api.example.com/users?a=1", d.URL())
	assert.Equal(t, []QueryItem{Param("a", "1")}, d.QueryParameters())

	_, ok := d.Body()
	assert.False(t, ok)
}

func TestDescriptor_AccessorFallbacks(t *testing.T) {
	d := NewDescriptor(StaticURL("not a url"), StaticURL("users"), MethodGet,
		WithQuery(QueryValue(math.Inf(1), nil)))

	assert.Equal(t, "", d.URL())
	assert.Equal(t, []QueryItem{}, d.QueryParameters())
}

func TestRequest_Clone(t *testing.T) {
	d := NewDescriptor(testEnvironment, StaticURL("users"), MethodPut,
		WithBody(RawBody([]byte("payload"))))
	req, err := d.Build()
	require.NoError(t, err)

	clone := req.Clone()
	clone.SetHeader("Content-Type", "text/plain")
	clone.Body[0] = 'P'
	clone.URL.Path = "/other"

	assert.Equal(t, ContentTypeJSON, req.HeaderValue("Content-Type"))
	assert.Equal(t, "payload", string(req.Body))
	assert.Equal(t, "/users", req.URL.Path)
}

func TestRequest_HTTPRequest(t *testing.T) {
	d := NewDescriptor(testEnvironment, StaticURL("users"), MethodPost,
		WithBody(RawBody([]byte("hi"))),
		WithHeaders(Header{Name: "Host", Value: "virtual.example.com"}))
	req, err := d.Build()
	require.NoError(t, err)

	httpReq, err := req.HTTPRequest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "POST", httpReq.Method)
	assert.Equal(t, "virtual.example.com", httpReq.Host)
	assert.Empty(t, httpReq.Header.Get("Host"))
	assert.Equal(t, int64(2), httpReq.ContentLength)
}
