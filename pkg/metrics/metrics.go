// Package metrics provides Prometheus instrumentation for the admin console.
//
// The client side records every outgoing KU-MAN API call, every poll tick,
// chat traffic and session transitions. The dashboard feed server exposes
// them on GET /metrics together with its own HTTP metrics:
//
//	r.Use(metrics.Middleware())
//	r.Get("/metrics", "metrics", metrics.Handler())
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kuman"

// ─────────────────────────────────────────────
// Client metrics
// ─────────────────────────────────────────────

var (
	// APICallDuration tracks outgoing KU-MAN API latency by endpoint name.
	APICallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "call_duration_seconds",
			Help:      "Duration of outgoing KU-MAN API calls in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// APICallTotal counts outgoing API calls; status is the HTTP code or "error".
	APICallTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "calls_total",
			Help:      "Total outgoing KU-MAN API calls.",
		},
		[]string{"endpoint", "method", "status"},
	)

	// PollTicks counts poll ticks by poller name and result.
	PollTicks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poll",
			Name:      "ticks_total",
			Help:      "Poll ticks by poller and result.",
		},
		[]string{"poller", "result"}, // "ok" | "error" | "stale" | "skipped"
	)

	// ChatMessages counts chat messages by direction.
	ChatMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "messages_total",
			Help:      "Chat messages sent and received.",
		},
		[]string{"direction"}, // "in" | "out"
	)

	// SessionTransitions counts authentication state changes.
	SessionTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "transitions_total",
			Help:      "Session transitions by cause.",
		},
		[]string{"cause"}, // "login" | "logout" | "timeout"
	)

	// ─── feed server ───

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of dashboard feed requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Number of dashboard feed requests currently being served.",
	})
)

// DefaultRegistry is the Prometheus registry used by the console.
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(collectors.NewGoCollector())
	DefaultRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	DefaultRegistry.MustRegister(
		APICallDuration,
		APICallTotal,
		PollTicks,
		ChatMessages,
		SessionTransitions,
		RequestDuration,
		RequestInFlight,
	)
}

// ObserveAPICall records one outgoing API call:
//
//	start := time.Now()
//	...
//	metrics.ObserveAPICall("orders", "GET", "200", start)
func ObserveAPICall(endpoint, method, status string, start time.Time) {
	APICallDuration.WithLabelValues(endpoint, method, status).Observe(time.Since(start).Seconds())
	APICallTotal.WithLabelValues(endpoint, method, status).Inc()
}

// RecordPoll records one poll tick result.
func RecordPoll(poller, result string) {
	PollTicks.WithLabelValues(poller, result).Inc()
}

// RecordChat records one chat message.
func RecordChat(direction string) {
	ChatMessages.WithLabelValues(direction).Inc()
}

// RecordSession records one session transition.
func RecordSession(cause string) {
	SessionTransitions.WithLabelValues(cause).Inc()
}

// ─────────────────────────────────────────────
// HTTP middleware
// ─────────────────────────────────────────────

// responseRecorder wraps http.ResponseWriter to capture the status code.
// Flush is forwarded so SSE streams keep working behind the middleware.
type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Middleware records duration and in-flight metrics for every feed request.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			RequestInFlight.Inc()
			defer RequestInFlight.Dec()

			rr := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rr, r)

			RequestDuration.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(rr.status)).
				Observe(time.Since(start).Seconds())
		})
	}
}

// Handler returns an http.HandlerFunc that exposes the Prometheus metrics page.
func Handler() http.HandlerFunc {
	h := promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	return h.ServeHTTP
}
