package http

import (
	"net/http"
	"strings"
	"time"
)

// Response is the raw outcome of one exchange as reported by a Transport.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
	Duration   time.Duration
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

func (r *Response) HeaderValue(key string) string {
	return strings.Join(r.Header.Values(key), ",")
}

func (r *Response) ContentType() string {
	return r.Header.Get(HeaderContentType)
}

func (r *Response) IsJSON() bool {
	return strings.Contains(r.ContentType(), ContentTypeJSON)
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500
}

func (r *Response) DurationMs() int64 {
	return r.Duration.Milliseconds()
}
