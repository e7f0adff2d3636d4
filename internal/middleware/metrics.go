package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailcanvas_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mailcanvas_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	rateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mailcanvas_http_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
	panicsRecovered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mailcanvas_http_panics_recovered_total",
			Help: "Handler panics turned into 500 responses",
		},
	)
)

// RegisterMetrics registers the HTTP metrics. Call once from main.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(httpRequestsTotal, httpRequestDuration, rateLimited, panicsRecovered)
}

// Metrics records request counts and latencies per chi route pattern.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r)

		// The route pattern is only complete after routing has run.
		route := routePattern(r)
		httpRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(ww.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
