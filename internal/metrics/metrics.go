package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "program_matcher"

// Metrics owns a private registry with the matcher collectors. It satisfies the cache
// and augmentation observer interfaces.
type Metrics struct {
	registry *prometheus.Registry

	cacheLookups     *prometheus.CounterVec
	cacheWrites      *prometheus.CounterVec
	analysesTotal    *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec
	matchTotal       *prometheus.CounterVec
	matchDuration    prometheus.Histogram
	matchResults     prometheus.Histogram
	requestTotal     *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestInFlight  prometheus.Gauge
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	cacheLookups := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ai_cache",
			Name:      "lookups_total",
			Help:      "AI analysis cache lookups by result.",
		},
		[]string{"result"},
	)
	cacheWrites := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ai_cache",
			Name:      "writes_total",
			Help:      "AI analysis cache writes by result.",
		},
		[]string{"result"},
	)
	analysesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "analyses_total",
			Help:      "Augmented programs by outcome.",
		},
		[]string{"outcome"},
	)
	analysisDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "analysis_duration_seconds",
			Help:      "Time spent obtaining one AI analysis, cache included.",
			Buckets:   []float64{0.005, 0.05, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"outcome"},
	)
	matchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "match",
			Name:      "requests_total",
			Help:      "Match requests by status.",
		},
		[]string{"status"},
	)
	matchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "match",
			Name:      "duration_seconds",
			Help:      "Match request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	matchResults := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "match",
			Name:      "ranked_programs",
			Help:      "Programs left after ranking per match request.",
			Buckets:   []float64{0, 1, 5, 10, 20, 50, 100, 200, 500},
		},
	)
	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
		},
	)

	registry.MustRegister(
		cacheLookups,
		cacheWrites,
		analysesTotal,
		analysisDuration,
		matchTotal,
		matchDuration,
		matchResults,
		requestTotal,
		requestDuration,
		requestInFlight,
	)

	return &Metrics{
		registry:         registry,
		cacheLookups:     cacheLookups,
		cacheWrites:      cacheWrites,
		analysesTotal:    analysesTotal,
		analysisDuration: analysisDuration,
		matchTotal:       matchTotal,
		matchDuration:    matchDuration,
		matchResults:     matchResults,
		requestTotal:     requestTotal,
		requestDuration:  requestDuration,
		requestInFlight:  requestInFlight,
	}
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveCacheLookup(result string) {
	m.cacheLookups.WithLabelValues(orUnknown(result)).Inc()
}

func (m *Metrics) ObserveCacheWrite(result string) {
	m.cacheWrites.WithLabelValues(orUnknown(result)).Inc()
}

func (m *Metrics) ObserveAnalysis(outcome string, elapsed time.Duration) {
	outcome = orUnknown(outcome)
	m.analysesTotal.WithLabelValues(outcome).Inc()
	if elapsed >= 0 {
		m.analysisDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	}
}

// ObserveMatch records one match request. ranked is ignored for failed requests.
func (m *Metrics) ObserveMatch(status string, ranked int, elapsed time.Duration) {
	m.matchTotal.WithLabelValues(orUnknown(status)).Inc()
	m.matchDuration.Observe(elapsed.Seconds())
	if ranked >= 0 {
		m.matchResults.Observe(float64(ranked))
	}
}

func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(r.Method, path, strconv.Itoa(recorder.statusCode)).Inc()
		m.requestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/programs/") && strings.HasSuffix(path, "/analysis"):
		return "/v1/programs/{id}/analysis"
	default:
		return path
	}
}

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
