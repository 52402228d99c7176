// Package metrics owns the Prometheus collectors of the readiness service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "skill_readiness"

// Toggle outcomes.
const (
	ResultCompleted   = "completed"
	ResultUncompleted = "uncompleted"
	ResultRolledBack  = "rolled_back"
	ResultNotFound    = "not_found"
)

type Manager struct {
	registry *prometheus.Registry

	roadmapToggles      *prometheus.CounterVec
	persistFailures     prometheus.Counter
	persistDropped      prometheus.Counter
	persistSaved        prometheus.Counter
	rankCache           *prometheus.CounterVec
	readinessScore      prometheus.Histogram
	activeLearnerStates prometheus.Gauge
}

type Option func(*Manager)

// WithGoCollectors adds process and runtime collectors; off by default so
// tests get a clean registry.
func WithGoCollectors() Option {
	return func(m *Manager) {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
}

func New(opts ...Option) *Manager {
	m := &Manager{registry: prometheus.NewRegistry()}

	m.roadmapToggles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "roadmap_toggles_total",
		Help:      "Roadmap item toggles by outcome.",
	}, []string{"result"})
	m.persistFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "persistence_failures_total",
		Help:      "Background saves that failed after all retries.",
	})
	m.persistDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "persistence_dropped_total",
		Help:      "Background saves dropped because the queue was full.",
	})
	m.persistSaved = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "persistence_saved_total",
		Help:      "Background saves that succeeded.",
	})
	m.rankCache = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "job_rank_cache_total",
		Help:      "Ranked job page cache lookups by result.",
	}, []string{"result"})
	m.readinessScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "readiness_score",
		Help:      "Readiness scores produced by analyses.",
		Buckets:   prometheus.LinearBuckets(0, 10, 11),
	})
	m.activeLearnerStates = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_learner_states",
		Help:      "Learner states held in memory.",
	})

	m.registry.MustRegister(
		m.roadmapToggles,
		m.persistFailures,
		m.persistDropped,
		m.persistSaved,
		m.rankCache,
		m.readinessScore,
		m.activeLearnerStates,
	)

	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Manager) RoadmapToggle(result string) {
	if m == nil {
		return
	}
	m.roadmapToggles.WithLabelValues(result).Inc()
}

func (m *Manager) PersistenceFailed() {
	if m == nil {
		return
	}
	m.persistFailures.Inc()
}

func (m *Manager) PersistenceDropped() {
	if m == nil {
		return
	}
	m.persistDropped.Inc()
}

func (m *Manager) PersistenceSaved() {
	if m == nil {
		return
	}
	m.persistSaved.Inc()
}

func (m *Manager) RankCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.rankCache.WithLabelValues("hit").Inc()
		return
	}
	m.rankCache.WithLabelValues("miss").Inc()
}

func (m *Manager) ObserveReadiness(score int) {
	if m == nil {
		return
	}
	m.readinessScore.Observe(float64(score))
}

func (m *Manager) SetActiveLearnerStates(n int) {
	if m == nil {
		return
	}
	m.activeLearnerStates.Set(float64(n))
}
