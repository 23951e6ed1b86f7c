package middleware

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/abdul-hamid-achik/netrequester/packages/http"
)

// Metrics exports Prometheus metrics for every call. It is safe for
// concurrent use.
type Metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight *prometheus.GaugeVec
	errorsTotal      *prometheus.CounterVec

	// started maps in-flight requests to their start time.
	started sync.Map
	now     func() time.Time
}

// NewMetrics registers the collectors on registry, or on the default
// registerer when nil.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netrequester_requests_total",
				Help: "Total number of HTTP requests that received a response",
			},
			[]string{"method", "status_code", "endpoint"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "netrequester_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "status_code", "endpoint"},
		),
		requestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "netrequester_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
			[]string{"method", "endpoint"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netrequester_errors_total",
				Help: "Total number of failed calls by error kind",
			},
			[]string{"kind", "method", "endpoint"},
		),
		now: time.Now,
	}
}

func (m *Metrics) OnRequest(_ context.Context, req *http.Request) error {
	m.started.Store(req, m.now())
	m.requestsInFlight.WithLabelValues(req.Method.String(), endpoint(req)).Inc()
	return nil
}

func (m *Metrics) OnResponse(req *http.Request, resp *http.Response) {
	m.finish(req)
	m.record(req, resp.StatusCode, resp.Duration)
}

func (m *Metrics) OnError(err *http.Error, req *http.Request) {
	method, ep := "", ""
	if req != nil {
		method, ep = req.Method.String(), endpoint(req)
		start, ok := m.finish(req)
		if ok && err.Kind == http.KindRejected {
			m.record(req, err.Status.Code(), m.now().Sub(start))
		}
	}
	m.errorsTotal.WithLabelValues(err.Kind.String(), method, ep).Inc()
}

// finish releases the in-flight slot taken by OnRequest, if any.
func (m *Metrics) finish(req *http.Request) (time.Time, bool) {
	v, ok := m.started.LoadAndDelete(req)
	if !ok {
		return time.Time{}, false
	}
	m.requestsInFlight.WithLabelValues(req.Method.String(), endpoint(req)).Dec()
	return v.(time.Time), true
}

func (m *Metrics) record(req *http.Request, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	ep := endpoint(req)
	m.requestsTotal.WithLabelValues(req.Method.String(), status, ep).Inc()
	m.requestDuration.WithLabelValues(req.Method.String(), status, ep).Observe(duration.Seconds())
}

func endpoint(req *http.Request) string {
	if req.URL == nil {
		return ""
	}
	if req.URL.Path == "" {
		return "/"
	}
	return req.URL.Path
}
