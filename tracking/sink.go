// Package tracking records pipeline parameters and evaluation metrics
// to pluggable sinks: process logs, an in-memory store for tests, or a
// Prometheus registry.
package tracking

import (
	"sync"

	"github.com/YuminosukeSato/grove/pkg/log"
)

// MetricsSink receives named scalar values produced by a pipeline run.
// Implementations must be safe for concurrent use.
type MetricsSink interface {
	Log(name string, value float64)
}

// LogSink writes each metric as a structured log line.
type LogSink struct {
	Logger log.Logger
}

// NewLogSink creates a sink over logger, falling back to the process
// logger when logger is nil.
func NewLogSink(logger log.Logger) *LogSink {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &LogSink{Logger: logger}
}

func (s *LogSink) Log(name string, value float64) {
	s.Logger.Info("metric recorded",
		log.ComponentKey, "tracking",
		"metric", name,
		"value", value,
	)
}

// MemorySink stores metrics in memory. Repeated logs of the same name
// overwrite the previous value, mirroring experiment trackers that keep
// the latest value per key.
type MemorySink struct {
	mu     sync.Mutex
	values map[string]float64
	order  []string
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{values: make(map[string]float64)}
}

func (s *MemorySink) Log(name string, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.values[name]; !seen {
		s.order = append(s.order, name)
	}
	s.values[name] = value
}

// Get returns the recorded value for name.
func (s *MemorySink) Get(name string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[name]
	return v, ok
}

// Names lists recorded metric names in first-log order.
func (s *MemorySink) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// MultiSink fans each metric out to every wrapped sink.
type MultiSink []MetricsSink

func (m MultiSink) Log(name string, value float64) {
	for _, sink := range m {
		sink.Log(name, value)
	}
}
