// Package middleware provides ready-made interceptors for an http.Caller.
//
// Auth middleware decorates outgoing requests with credentials. Logging,
// Metrics, Latency and RequestID observe the exchange. RateLimit delays
// requests until its limiter allows them.
package middleware
