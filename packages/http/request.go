package http

import (
	"bytes"
	"context"
	"net/http"
	neturl "net/url"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 30 * time.Second
)

// EnvironmentProvider supplies the base URL of a request, such as
// "https://api.example.com".
type EnvironmentProvider interface {
	URL() string
}

// EndpointProvider supplies the path of a request relative to its environment.
type EndpointProvider interface {
	URL() string
}

// StaticURL is a fixed environment or endpoint.
type StaticURL string

func (s StaticURL) URL() string {
	return string(s)
}

// Descriptor is an immutable description of one request. Build realizes it
// into a Request and may be called any number of times.
type Descriptor struct {
	environment string
	endpoint    string
	method      Method
	headers     HeaderSet
	body        *Body
	query       QuerySource
	timeout     time.Duration
}

// DescriptorOption configures a Descriptor at construction.
type DescriptorOption func(*Descriptor)

// WithHeaders adds headers to the descriptor.
func WithHeaders(headers ...Header) DescriptorOption {
	return func(d *Descriptor) {
		for _, h := range headers {
			d.headers = d.headers.With(h)
		}
	}
}

// WithBody sets the payload source.
func WithBody(body Body) DescriptorOption {
	return func(d *Descriptor) {
		d.body = &body
	}
}

// WithQuery sets the query parameter source.
func WithQuery(query QuerySource) DescriptorOption {
	return func(d *Descriptor) {
		d.query = query
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(timeout time.Duration) DescriptorOption {
	return func(d *Descriptor) {
		d.timeout = timeout
	}
}

// NewDescriptor captures the environment and endpoint URLs at construction.
// It never fails; invalid input is reported by Build.
func NewDescriptor(environment EnvironmentProvider, endpoint EndpointProvider, method Method, opts ...DescriptorOption) *Descriptor {
	d := &Descriptor{
		method:  method,
		timeout: DefaultTimeout,
	}
	if environment != nil {
		d.environment = environment.URL()
	}
	if endpoint != nil {
		d.endpoint = endpoint.URL()
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Descriptor) Environment() string    { return d.environment }
func (d *Descriptor) Endpoint() string       { return d.endpoint }
func (d *Descriptor) Method() Method         { return d.method }
func (d *Descriptor) Headers() HeaderSet     { return d.headers }
func (d *Descriptor) Timeout() time.Duration { return d.timeout }

// Body returns the payload source, if any.
func (d *Descriptor) Body() (Body, bool) {
	if d.body == nil {
		return Body{}, false
	}
	return *d.body, true
}

// QueryParameters returns the resolved query items, or an empty list when the
// source fails.
func (d *Descriptor) QueryParameters() []QueryItem {
	items, err := d.queryItems()
	if err != nil {
		return []QueryItem{}
	}
	return items
}

// URL returns the composed URL, or "" when it cannot be composed.
func (d *Descriptor) URL() string {
	u, err := d.composeURL()
	if err != nil {
		return ""
	}
	return u.String()
}

func (d *Descriptor) queryItems() ([]QueryItem, error) {
	if d.query == nil {
		return []QueryItem{}, nil
	}
	return d.query.Items()
}

func (d *Descriptor) composeURL() (*neturl.URL, error) {
	items, err := d.queryItems()
	if err != nil {
		return nil, err
	}
	return ComposeURL(d.environment, d.endpoint, items)
}

// Build produces a transport-ready Request. URL and query failures are
// KindBuildingURL, body failures KindEncoding. The descriptor is not modified.
func (d *Descriptor) Build() (*Request, error) {
	u, err := d.composeURL()
	if err != nil {
		return nil, err
	}

	req := &Request{
		Method:  d.method,
		URL:     u,
		Header:  make(http.Header),
		Timeout: d.timeout,
	}

	if d.body != nil {
		data, err := d.body.Data()
		if err != nil {
			return nil, err
		}
		req.Body = data
	}

	for _, h := range d.headers.Headers() {
		req.AddHeader(h.Name, h.Value)
	}
	if !d.headers.Has(HeaderContentType) {
		req.AddHeader(JSONHeader.Name, JSONHeader.Value)
	}

	return req, nil
}

// Request is a realized request. Middleware may modify it before it reaches the
// transport.
type Request struct {
	Method  Method
	URL     *neturl.URL
	Header  http.Header
	Body    []byte
	Timeout time.Duration
}

// AddHeader appends a value under name. Values sharing a name are sent as one
// comma-joined line.
func (r *Request) AddHeader(name, value string) *Request {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	r.Header.Add(name, value)
	return r
}

// SetHeader replaces every value under name.
func (r *Request) SetHeader(name, value string) *Request {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	r.Header.Set(name, value)
	return r
}

// HeaderValue returns the wire form of the header: all values joined by ",".
func (r *Request) HeaderValue(name string) string {
	return strings.Join(r.Header.Values(name), ",")
}

// Clone returns a deep copy of the request.
func (r *Request) Clone() *Request {
	clone := *r
	if r.URL != nil {
		u := *r.URL
		clone.URL = &u
	}
	clone.Header = r.Header.Clone()
	clone.Body = bytes.Clone(r.Body)
	return &clone
}

// HTTPRequest converts the request into a *net/http.Request bound to ctx.
func (r *Request) HTTPRequest(ctx context.Context) (*http.Request, error) {
	var body *bytes.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}

	target := ""
	if r.URL != nil {
		target = r.URL.String()
	}

	var httpReq *http.Request
	var err error
	if body != nil {
		httpReq, err = http.NewRequestWithContext(ctx, r.Method.String(), target, body)
	} else {
		httpReq, err = http.NewRequestWithContext(ctx, r.Method.String(), target, nil)
	}
	if err != nil {
		return nil, err
	}

	for name, values := range r.Header {
		if http.CanonicalHeaderKey(name) == "Host" {
			httpReq.Host = strings.Join(values, ",")
			continue
		}
		httpReq.Header.Set(name, strings.Join(values, ","))
	}
	return httpReq, nil
}
