// Package metrics holds the Prometheus collectors of the API server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	gatherer prometheus.Gatherer

	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	uploadedBytes prometheus.Counter
	fileOps       *prometheus.CounterVec
}

// New registers the collectors on a fresh registry, so several instances
// (one per test) can coexist.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		gatherer: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fileshelf_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fileshelf_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		uploadedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fileshelf_uploaded_bytes_total",
			Help: "Bytes stored by successful uploads.",
		}),
		fileOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fileshelf_file_operations_total",
			Help: "File operations by kind and outcome.",
		}, []string{"op", "outcome"}),
	}

	reg.MustRegister(
		m.requests, m.duration, m.uploadedBytes, m.fileOps,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware records request count and latency by chi route pattern, so
// file names never become label values.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// FileOp counts a file operation; err == nil is a success.
func (m *Metrics) FileOp(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.fileOps.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) Uploaded(n int64) {
	m.uploadedBytes.Add(float64(n))
}
