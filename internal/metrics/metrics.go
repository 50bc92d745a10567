// Package metrics exposes Prometheus collectors for the HTTP surface, the
// kanban move path, the quality advisor and the snapshot ledger.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chronos"

// Outcome labels shared by the move path and the advisor.
const (
	OutcomeOK       = "ok"
	OutcomeConflict = "conflict"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
	OutcomeCached   = "cached"
	OutcomeFallback = "fallback"
)

// Metrics is safe to use as a nil pointer; every recorder is then a no-op.
type Metrics struct {
	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	moves       *prometheus.CounterVec
	moveRetries *prometheus.CounterVec
	advice      *prometheus.CounterVec
	snapshots   *prometheus.CounterVec
}

// MustNewMetrics registers the collectors with reg and panics on a clash, the
// way promauto does. Tests pass a fresh prometheus.NewRegistry().
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route pattern, method and status code.",
		}, []string{"route", "method", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "board",
			Name:      "moves_total",
			Help:      "Kanban moves and repositions by outcome.",
		}, []string{"op", "outcome"}),
		moveRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "board",
			Name:      "move_retries_total",
			Help:      "Retries after a column generation conflict.",
		}, []string{"op"}),
		advice: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quality",
			Name:      "advice_requests_total",
			Help:      "Advisor lookups by outcome.",
		}, []string{"outcome"}),
		snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "progress",
			Name:      "snapshots_written_total",
			Help:      "Progress snapshots appended to the ledger.",
		}, []string{"entity_type"}),
	}
	reg.MustRegister(m.requests, m.latency, m.moves, m.moveRetries, m.advice, m.snapshots)
	return m
}

func (m *Metrics) Move(op, outcome string) {
	if m == nil {
		return
	}
	m.moves.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) MoveRetry(op string) {
	if m == nil {
		return
	}
	m.moveRetries.WithLabelValues(op).Inc()
}

func (m *Metrics) Advice(outcome string) {
	if m == nil {
		return
	}
	m.advice.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Snapshot(entityType string) {
	if m == nil {
		return
	}
	m.snapshots.WithLabelValues(entityType).Inc()
}

// Middleware records every request under its chi route pattern, so path
// parameters do not explode the label space.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.latency.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the registry in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
