// Copyright (c) 2026 Centinela. All rights reserved.

/*
Package obs provides Prometheus instrumentation for the HTTP surface.

It exposes the standard trio of transport metrics (in-flight gauge, request
counter, latency histogram) plus a build-info gauge, and the /metrics handler
that serves them.

Registration happens once per process via [Init]; the middleware returned by
[Instrument] is mounted early in the chain so that even rejected requests are
counted.
*/
package obs

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// # Metric Definitions

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)

	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "build_info",
			Help: "Centinela API build information.",
		},
		[]string{"version"},
	)

	initOnce sync.Once
)

// # Registration

// Init registers all metrics with the default Prometheus registry.
// Safe to call multiple times; registration happens once.
func Init(version string) {
	initOnce.Do(func() {
		prometheus.MustRegister(httpInFlight, httpRequestsTotal, httpRequestDuration, buildInfo)
	})
	buildInfo.WithLabelValues(version).Set(1)
}

// Handler returns the /metrics scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// # Instrumentation Middleware

type metricsRecorder struct {
	http.ResponseWriter
	status int
}

func (recorder *metricsRecorder) WriteHeader(code int) {
	recorder.status = code
	recorder.ResponseWriter.WriteHeader(code)
}

// Instrument measures request rate, latency, and in-flight count.
//
// # Cardinality
//
// Labels are method+status only. Paths contain opaque identifiers and would
// explode label cardinality, so they are deliberately excluded.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		startTime := time.Now()
		wrappedWriter := &metricsRecorder{ResponseWriter: writer, status: http.StatusOK}

		next.ServeHTTP(wrappedWriter, request)

		status := strconv.Itoa(wrappedWriter.status)
		httpRequestsTotal.WithLabelValues(request.Method, status).Inc()
		httpRequestDuration.WithLabelValues(request.Method, status).Observe(time.Since(startTime).Seconds())
	})
}
