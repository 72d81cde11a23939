package neat

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exports population progress to Prometheus. A nil *Metrics records
// nothing.
type Metrics struct {
	generations        prometheus.Counter
	mutations          *prometheus.CounterVec
	generationDuration prometheus.Histogram
	nextInnovation     prometheus.Gauge
	meanNeurons        prometheus.Gauge
	meanConnections    prometheus.Gauge
	enabledRatio       prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		generations: f.NewCounter(prometheus.CounterOpts{
			Namespace: "neat",
			Name:      "generations_total",
			Help:      "Generations run by the population",
		}),
		mutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "neat",
			Name:      "mutations_total",
			Help:      "Mutation operators that changed a genome",
		}, []string{"operator"}),
		generationDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "neat",
			Name:      "generation_duration_seconds",
			Help:      "Time to mutate every genome once",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		nextInnovation: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "neat",
			Name:      "next_innovation",
			Help:      "Next marking the innovation counter will issue",
		}),
		meanNeurons: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "neat",
			Name:      "genome_neurons_mean",
			Help:      "Mean neuron genes per genome",
		}),
		meanConnections: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "neat",
			Name:      "genome_connections_mean",
			Help:      "Mean connection genes per genome",
		}),
		enabledRatio: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "neat",
			Name:      "connections_enabled_ratio",
			Help:      "Enabled connections over all connections",
		}),
	}
}

// WithMetrics makes a population report to m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func (m *Metrics) observeMutations(applied []string) {
	if m == nil {
		return
	}
	for _, op := range applied {
		m.mutations.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) observeGeneration(p *Population, s Summary, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.generations.Inc()
	m.generationDuration.Observe(elapsed.Seconds())
	m.nextInnovation.Set(float64(p.Counter.Next()))
	m.meanNeurons.Set(s.Neurons.Mean)
	m.meanConnections.Set(s.Connections.Mean)
	m.enabledRatio.Set(s.EnabledRatio)
}
