package middleware

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/abdul-hamid-achik/netrequester/packages/http"
)

// RateLimit blocks each request until limiter grants a token. If ctx ends
// first the call fails and the transport is never reached.
func RateLimit(limiter *rate.Limiter) http.Middleware {
	return http.Hooks{
		Request: func(ctx context.Context, _ *http.Request) error {
			return limiter.Wait(ctx)
		},
	}
}

// PerSecond builds a limiter allowing rps requests per second with a burst of
// one. A non-positive rps disables limiting.
func PerSecond(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}
