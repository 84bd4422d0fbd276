// Package metrics exposes Prometheus collectors for search, duty resolution,
// classification turns, the oracle and the HTTP transport.
package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/Veraticus/hts-classify/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hts"

// Metrics owns a private registry so tests and multiple servers never collide.
type Metrics struct {
	registry        *prometheus.Registry
	stageResults    *prometheus.CounterVec
	searchDuration  prometheus.Histogram
	searchResults   prometheus.Histogram
	emptySearches   prometheus.Counter
	turns           *prometheus.CounterVec
	fallbacks       *prometheus.CounterVec
	resolutions     *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	scheduleEntries prometheus.Gauge
}

// Option configures Metrics.
type Option func(*options)

type options struct {
	runtime bool
}

// WithRuntimeCollectors adds the Go runtime and process collectors.
func WithRuntimeCollectors() Option {
	return func(o *options) { o.runtime = true }
}

// New creates and registers all collectors.
func New(opts ...Option) *Metrics {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		stageResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "stage_results_total",
			Help:      "Candidates contributed by each match stage.",
		}, []string{"stage"}),
		searchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Time spent ranking one query.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		searchResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "results",
			Help:      "Candidates returned per query.",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 15},
		}),
		emptySearches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "empty_total",
			Help:      "Queries that produced no candidates.",
		}),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "classification",
			Name:      "turns_total",
			Help:      "Classification turns by resulting session status.",
		}, []string{"status"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "fallbacks_total",
			Help:      "Oracle calls replaced by the local fallback.",
		}, []string{"operation"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "duty",
			Name:      "resolutions_total",
			Help:      "Duty resolutions by rate source.",
		}, []string{"source"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		scheduleEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "schedule",
			Name:      "entries",
			Help:      "Tariff schedule lines loaded into the index.",
		}),
	}

	m.registry.MustRegister(
		m.stageResults, m.searchDuration, m.searchResults, m.emptySearches,
		m.turns, m.fallbacks, m.resolutions,
		m.httpRequests, m.httpDuration, m.scheduleEntries,
	)
	if o.runtime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// ObserveStage records how many candidates a match stage kept.
func (m *Metrics) ObserveStage(stage model.MatchType, kept int) {
	m.stageResults.WithLabelValues(string(stage)).Add(float64(kept))
}

// ObserveSearch records one completed search.
func (m *Metrics) ObserveSearch(elapsed time.Duration, results int) {
	m.searchDuration.Observe(elapsed.Seconds())
	m.searchResults.Observe(float64(results))
	if results == 0 {
		m.emptySearches.Inc()
	}
}

// ObserveTurn records one classification turn.
func (m *Metrics) ObserveTurn(status model.SessionStatus) {
	m.turns.WithLabelValues(string(status)).Inc()
}

// ObserveFallback records an oracle call answered locally.
func (m *Metrics) ObserveFallback(operation string) {
	m.fallbacks.WithLabelValues(operation).Inc()
}

// ObserveResolution records the source of a resolved duty rate.
func (m *Metrics) ObserveResolution(source model.RateSource) {
	m.resolutions.WithLabelValues(string(source)).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// SetScheduleEntries records the size of the loaded schedule.
func (m *Metrics) SetScheduleEntries(n int) {
	m.scheduleEntries.Set(float64(n))
}

// RegisterDB exports connection pool statistics for db.
func (m *Metrics) RegisterDB(db *sql.DB, name string) error {
	return m.registry.Register(collectors.NewDBStatsCollector(db, name))
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
