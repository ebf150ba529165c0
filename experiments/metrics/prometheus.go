package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "chessmcts"

// Prometheus holds the process-wide search metrics. Each search gets its own
// Collector from NewCollector, which records into both a per-search summary
// and the shared Prometheus series.
type Prometheus struct {
	searches prometheus.Counter
	episodes prometheus.Counter
	playouts *prometheus.CounterVec
	defects  prometheus.Counter
	duration prometheus.Histogram
	treeSize prometheus.Histogram
}

func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		searches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "completed_total",
			Help:      "Number of completed move searches.",
		}),
		episodes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "episodes_total",
			Help:      "Number of completed select/expand/rollout/backpropagate iterations.",
		}),
		playouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "playouts_total",
			Help:      "Number of rollouts by result.",
		}, []string{"result"}),
		defects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "defects_total",
			Help:      "Number of iterations abandoned because the rules rejected a listed move.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Wall time of a move search.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		treeSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "tree_nodes",
			Help:      "Number of nodes in the search tree at the end of a search.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
	}

	for _, c := range []prometheus.Collector{p.searches, p.episodes, p.playouts, p.defects, p.duration, p.treeSize} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register search metrics: %w", err)
		}
	}
	return p, nil
}

func (p *Prometheus) NewCollector() Collector {
	return &promCollector{Collector: NewCollector(), metrics: p}
}

type promCollector struct {
	Collector
	metrics *Prometheus
}

func (m *promCollector) AddEpisode() {
	m.Collector.AddEpisode()
	m.metrics.episodes.Inc()
}

func (m *promCollector) AddPlayout(result Playout) {
	m.Collector.AddPlayout(result)
	m.metrics.playouts.WithLabelValues(result.String()).Inc()
}

func (m *promCollector) AddDefect() {
	m.Collector.AddDefect()
	m.metrics.defects.Inc()
}

func (m *promCollector) Complete() SearchMetric {
	metric := m.Collector.Complete()
	m.metrics.searches.Inc()
	m.metrics.duration.Observe(metric.Duration.Seconds())
	m.metrics.treeSize.Observe(float64(metric.TreeSize))
	return metric
}
