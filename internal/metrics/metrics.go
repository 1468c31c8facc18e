// Package metrics wraps prometheus/client_golang with a small, typed
// registry for the analysis pipeline's own counters and gauges -
// events ingested per adapter, incidents grouped, analyses run, LLM
// fallbacks, circuit-breaker state, and cache hit rates. New takes a
// prometheus.Registerer and Unregister removes every collector from that
// same Registerer, so a caller can stand up and tear down one Registry
// per pipeline run without leaking collectors between runs.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// CircuitState mirrors llm.CircuitBreaker's three states as a gauge
// value: 0 CLOSED, 1 HALF_OPEN, 2 OPEN.
type CircuitState float64

const (
	CircuitClosed   CircuitState = 0
	CircuitHalfOpen CircuitState = 1
	CircuitOpen     CircuitState = 2
)

// Registry holds every Prometheus collector the pipeline registers.
type Registry struct {
	EventsIngested    *prometheus.CounterVec // labeled by adapter format tag
	EventsSkipped     *prometheus.CounterVec // labeled by adapter format tag
	IncidentsGrouped  prometheus.Counter
	AnalysesRun       prometheus.Counter
	LLMFallbacks      prometheus.Counter
	CircuitState      prometheus.Gauge
	ParseCacheHitRate prometheus.Gauge
	QueryCacheHitRate prometheus.Gauge

	collectors []prometheus.Collector
	registerer prometheus.Registerer
}

// New creates and registers the pipeline's collectors against reg.
func New(reg prometheus.Registerer) *Registry {
	eventsIngested := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "corelens_ingest_events_total",
		Help: "Total number of events successfully ingested, by adapter format tag.",
	}, []string{"format"})

	eventsSkipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "corelens_ingest_events_skipped_total",
		Help: "Total number of raw records skipped during normalization, by adapter format tag.",
	}, []string{"format"})

	incidentsGrouped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "corelens_incidents_grouped_total",
		Help: "Total number of incident groups produced by the grouping engine.",
	})

	analysesRun := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "corelens_analyses_run_total",
		Help: "Total number of analysis runs completed.",
	})

	llmFallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "corelens_llm_fallbacks_total",
		Help: "Total number of analyses that fell back to the heuristic analyzer after an LLM failure.",
	})

	circuitState := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "corelens_llm_circuit_state",
		Help: "Current LLM circuit breaker state (0=closed, 1=half-open, 2=open).",
	})

	parseCacheHitRate := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "corelens_timestamp_parse_cache_hit_rate",
		Help: "Lifetime hit rate of the shared timestamp parse cache.",
	})

	queryCacheHitRate := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "corelens_store_query_cache_hit_rate",
		Help: "Lifetime hit rate of the FalkorDB store's analysis-result read cache.",
	})

	collectors := []prometheus.Collector{
		eventsIngested, eventsSkipped, incidentsGrouped, analysesRun,
		llmFallbacks, circuitState, parseCacheHitRate, queryCacheHitRate,
	}
	reg.MustRegister(collectors...)

	return &Registry{
		EventsIngested:    eventsIngested,
		EventsSkipped:     eventsSkipped,
		IncidentsGrouped:  incidentsGrouped,
		AnalysesRun:       analysesRun,
		LLMFallbacks:      llmFallbacks,
		CircuitState:      circuitState,
		ParseCacheHitRate: parseCacheHitRate,
		QueryCacheHitRate: queryCacheHitRate,
		collectors:        collectors,
		registerer:        reg,
	}
}

// Unregister removes every collector this registry owns. Callers
// must do this before creating a second Registry against the same
// prometheus.Registerer, to avoid a duplicate-registration panic.
func (r *Registry) Unregister() {
	if r.registerer == nil {
		return
	}
	for _, c := range r.collectors {
		r.registerer.Unregister(c)
	}
}
