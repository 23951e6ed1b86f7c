package middleware

import (
	"context"
	"encoding/base64"

	"github.com/abdul-hamid-achik/netrequester/packages/http"
)

// Bearer sets "Authorization: Bearer <token>".
func Bearer(token string) http.Middleware {
	return setHeader(http.BearerAuthorization(token))
}

// Basic sets HTTP basic credentials.
func Basic(username, password string) http.Middleware {
	creds := username + ":" + password
	encoded := base64.StdEncoding.EncodeToString([]byte(creds))
	return setHeader(http.Authorization("Basic " + encoded))
}

// APIKeyHeader sends an API key in the named header.
func APIKeyHeader(name, value string) http.Middleware {
	return setHeader(http.Header{Name: name, Value: value})
}

// APIKeyQuery appends an API key to the query string.
func APIKeyQuery(name, value string) http.Middleware {
	item := http.Param(name, value)
	return http.Hooks{
		Request: func(_ context.Context, req *http.Request) error {
			if req.URL == nil {
				return nil
			}
			if req.URL.RawQuery != "" {
				req.URL.RawQuery += "&"
			}
			req.URL.RawQuery += item.String()
			return nil
		},
	}
}

// setHeader replaces any value the request already carries under h.Name.
func setHeader(h http.Header) http.Middleware {
	return http.Hooks{
		Request: func(_ context.Context, req *http.Request) error {
			req.SetHeader(h.Name, h.Value)
			return nil
		},
	}
}
