package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/abdul-hamid-achik/netrequester/packages/http"
)

const DefaultRequestIDHeader = "X-Request-ID"

// RequestID tags requests with a random UUID under header unless the request
// already carries one. An empty header means DefaultRequestIDHeader.
func RequestID(header string) http.Middleware {
	if header == "" {
		header = DefaultRequestIDHeader
	}
	return http.Hooks{
		Request: func(_ context.Context, req *http.Request) error {
			if req.HeaderValue(header) == "" {
				req.SetHeader(header, uuid.NewString())
			}
			return nil
		},
	}
}
