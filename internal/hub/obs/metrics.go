package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

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
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	tokensIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accesshub_tokens_issued_total",
			Help: "Token pairs issued, by flow (login, refresh).",
		},
		[]string{"flow"},
	)

	tokensRevokedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "accesshub_tokens_revoked_total",
		Help: "Access tokens blacklisted via logout.",
	})

	blacklistSweptTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "accesshub_blacklist_swept_total",
		Help: "Expired blacklist entries removed by housekeeping.",
	})

	endpointSyncRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accesshub_endpoint_sync_runs_total",
			Help: "Endpoint sync batches processed, by outcome.",
		},
		[]string{"outcome"},
	)
)

// Init registers the metrics with the default registry.
func Init() {
	prometheus.MustRegister(
		httpInFlight, httpRequestsTotal, httpRequestDuration,
		tokensIssuedTotal, tokensRevokedTotal, blacklistSweptTotal,
		endpointSyncRuns,
	)
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

func TokenIssued(flow string) { tokensIssuedTotal.WithLabelValues(flow).Inc() }
func TokenRevoked()           { tokensRevokedTotal.Inc() }
func BlacklistSwept(n int)    { blacklistSweptTotal.Add(float64(n)) }
func SyncRun(outcome string)  { endpointSyncRuns.WithLabelValues(outcome).Inc() }

// Instrument measures RPS, latency, and in-flight requests around a handler.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// statusWriter records the response code for labelling.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
