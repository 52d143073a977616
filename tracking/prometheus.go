package tracking

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics namespace shared by all gauges this package registers.
const (
	MetricsNamespace = "grove"
	MetricsSubsystem = "pipeline"
)

// PrometheusSink exposes pipeline metrics as a labeled gauge so a
// scraper can pick up the latest run's parameters and scores.
type PrometheusSink struct {
	gauge *prometheus.GaugeVec
}

// NewPrometheusSink registers the pipeline gauge on registerer. Passing
// prometheus.DefaultRegisterer wires it to the default scrape endpoint.
func NewPrometheusSink(registerer prometheus.Registerer) *PrometheusSink {
	return &PrometheusSink{
		gauge: promauto.With(registerer).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Subsystem: MetricsSubsystem,
			Name:      "metric_value",
			Help:      "Gauge of the latest training pipeline parameters and evaluation scores.",
		}, []string{"metric"}),
	}
}

func (s *PrometheusSink) Log(name string, value float64) {
	s.gauge.WithLabelValues(name).Set(value)
}
