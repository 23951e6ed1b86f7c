// Package resty adapts go-resty to the http.Transport contract.
package resty

import (
	"context"
	"crypto/tls"
	nethttp "net/http"
	"strings"
	"time"

	restyclient "github.com/go-resty/resty/v2"

	"github.com/abdul-hamid-achik/netrequester/packages/http"
)

// Transport performs requests through a resty client.
type Transport struct {
	client *restyclient.Client
}

type Option func(*restyclient.Client)

// WithRetries retries failed exchanges count times with wait between attempts.
// Only transport errors are retried; any HTTP status is returned as is.
func WithRetries(count int, wait time.Duration) Option {
	return func(c *restyclient.Client) {
		c.SetRetryCount(count)
		c.SetRetryWaitTime(wait)
	}
}

func WithMaxRedirects(max int) Option {
	return func(c *restyclient.Client) {
		c.SetRedirectPolicy(redirectPolicy(max))
	}
}

// WithoutRedirects returns 3xx responses to the caller instead of following
// them.
func WithoutRedirects() Option {
	return WithMaxRedirects(0)
}

func WithValidateSSL(validate bool) Option {
	return func(c *restyclient.Client) {
		if !validate {
			c.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
		}
	}
}

func WithProxy(proxyURL string) Option {
	return func(c *restyclient.Client) {
		if proxyURL != "" {
			c.SetProxy(proxyURL)
		}
	}
}

// New creates a Transport backed by a fresh resty client.
func New(opts ...Option) *Transport {
	c := restyclient.New()
	c.SetRedirectPolicy(redirectPolicy(http.DefaultMaxRedirects))
	for _, opt := range opts {
		opt(c)
	}
	return &Transport{client: c}
}

// NewWithClient wraps an existing resty client.
func NewWithClient(c *restyclient.Client) *Transport {
	return &Transport{client: c}
}

func (t *Transport) Perform(ctx context.Context, req *http.Request) (*http.Response, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	r := t.client.R().SetContext(ctx)
	for name, values := range req.Header {
		r.SetHeader(name, strings.Join(values, ","))
	}
	if req.Body != nil {
		r.SetBody(req.Body)
	}

	target := ""
	if req.URL != nil {
		target = req.URL.String()
	}

	resp, err := r.Execute(req.Method.String(), target)
	if err != nil {
		return nil, err
	}

	return &http.Response{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Header:     resp.Header(),
		Body:       resp.Body(),
		Duration:   resp.Time(),
	}, nil
}

func redirectPolicy(max int) restyclient.RedirectPolicy {
	return restyclient.RedirectPolicyFunc(func(_ *nethttp.Request, via []*nethttp.Request) error {
		if len(via) >= max {
			return nethttp.ErrUseLastResponse
		}
		return nil
	})
}
