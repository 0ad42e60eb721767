// Package metrics records conversion run metrics.
// Parsers report through the Collector interface; the CLI picks the backend
// (Prometheus for --metrics-file, no-op otherwise).
package metrics

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// Metrics Interface
// =============================================================================

// Collector is the interface for collecting run metrics.
// Labels are passed as name/value pairs.
type Collector interface {
	// Counter operations
	CounterInc(name string, labels ...string)
	CounterAdd(name string, value float64, labels ...string)

	// Gauge operations
	GaugeSet(name string, value float64, labels ...string)

	// Histogram operations
	HistogramObserve(name string, value float64, labels ...string)
}

// =============================================================================
// Metric Types
// =============================================================================

// MetricType represents the type of metric.
type MetricType string

const (
	MetricTypeCounter   MetricType = "counter"
	MetricTypeGauge     MetricType = "gauge"
	MetricTypeHistogram MetricType = "histogram"
)

// MetricDefinition defines a metric with its metadata.
type MetricDefinition struct {
	Name    string     `json:"name"`
	Type    MetricType `json:"type"`
	Help    string     `json:"help"`
	Labels  []string   `json:"labels,omitempty"`
	Buckets []float64  `json:"buckets,omitempty"` // For histograms
}

// =============================================================================
// Converter Metrics
// =============================================================================

var (
	BlocksTotal = MetricDefinition{
		Name:   "nessus_convert_blocks_total",
		Type:   MetricTypeCounter,
		Help:   "Vulnerability blocks processed, by outcome",
		Labels: []string{"outcome"},
	}
	FindingsTotal = MetricDefinition{
		Name:   "nessus_convert_findings_total",
		Type:   MetricTypeCounter,
		Help:   "Findings emitted, by severity",
		Labels: []string{"severity"},
	}
	DiagnosticsTotal = MetricDefinition{
		Name:   "nessus_convert_diagnostics_total",
		Type:   MetricTypeCounter,
		Help:   "Diagnostics recorded, by kind",
		Labels: []string{"kind"},
	}
	TruncatedBlocksTotal = MetricDefinition{
		Name: "nessus_convert_truncated_blocks_total",
		Type: MetricTypeCounter,
		Help: "Blocks whose host list was cut short by the report generator",
	}
	AnchorsLocated = MetricDefinition{
		Name:   "nessus_convert_anchors_located",
		Type:   MetricTypeGauge,
		Help:   "Vulnerability header anchors located in the last document parsed",
		Labels: []string{"parser"},
	}
	ParseDuration = MetricDefinition{
		Name:    "nessus_convert_parse_duration_seconds",
		Type:    MetricTypeHistogram,
		Help:    "Time spent extracting findings from one document",
		Labels:  []string{"parser"},
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	}
)

// Definitions returns every converter metric.
func Definitions() []MetricDefinition {
	return []MetricDefinition{
		BlocksTotal,
		FindingsTotal,
		DiagnosticsTotal,
		TruncatedBlocksTotal,
		AnchorsLocated,
		ParseDuration,
	}
}

// =============================================================================
// NopCollector - No-operation implementation
// =============================================================================

// NopCollector discards all metrics.
type NopCollector struct{}

func (c *NopCollector) CounterInc(name string, labels ...string)                      {}
func (c *NopCollector) CounterAdd(name string, value float64, labels ...string)       {}
func (c *NopCollector) GaugeSet(name string, value float64, labels ...string)         {}
func (c *NopCollector) HistogramObserve(name string, value float64, labels ...string) {}

// =============================================================================
// InMemoryCollector - Simple in-memory implementation for testing
// =============================================================================

// InMemoryCollector stores metrics in memory for testing purposes.
type InMemoryCollector struct {
	mu         sync.RWMutex
	counters   map[string]float64
	gauges     map[string]float64
	histograms map[string][]float64
}

// NewInMemoryCollector creates a new in-memory metrics collector.
func NewInMemoryCollector() *InMemoryCollector {
	return &InMemoryCollector{
		counters:   make(map[string]float64),
		gauges:     make(map[string]float64),
		histograms: make(map[string][]float64),
	}
}

func (c *InMemoryCollector) key(name string, labels []string) string {
	var b strings.Builder
	b.WriteString(name)
	for i := 0; i+1 < len(labels); i += 2 {
		b.WriteString(",")
		b.WriteString(labels[i])
		b.WriteString("=")
		b.WriteString(labels[i+1])
	}
	return b.String()
}

func (c *InMemoryCollector) CounterInc(name string, labels ...string) {
	c.CounterAdd(name, 1, labels...)
}

func (c *InMemoryCollector) CounterAdd(name string, value float64, labels ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[c.key(name, labels)] += value
}

func (c *InMemoryCollector) GaugeSet(name string, value float64, labels ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gauges[c.key(name, labels)] = value
}

func (c *InMemoryCollector) HistogramObserve(name string, value float64, labels ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.key(name, labels)
	c.histograms[key] = append(c.histograms[key], value)
}

// Reset clears all metrics.
func (c *InMemoryCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters = make(map[string]float64)
	c.gauges = make(map[string]float64)
	c.histograms = make(map[string][]float64)
}

// GetCounter returns the value of a counter.
func (c *InMemoryCollector) GetCounter(name string, labels ...string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.counters[c.key(name, labels)]
}

// GetGauge returns the value of a gauge.
func (c *InMemoryCollector) GetGauge(name string, labels ...string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gauges[c.key(name, labels)]
}

// GetHistogram returns all observations of a histogram.
func (c *InMemoryCollector) GetHistogram(name string, labels ...string) []float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.histograms[c.key(name, labels)]
}

// CounterKeys lists recorded counter keys, sorted. Useful in test failure output.
func (c *InMemoryCollector) CounterKeys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.counters))
	for k := range c.counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// =============================================================================
// Timer - Helper for timing operations
// =============================================================================

// Timer is a helper for timing operations and recording to histograms.
type Timer struct {
	start     time.Time
	collector Collector
	name      string
	labels    []string
}

// NewTimer creates a new timer that will record to the given histogram.
func NewTimer(collector Collector, name string, labels ...string) *Timer {
	return &Timer{
		start:     time.Now(),
		collector: collector,
		name:      name,
		labels:    labels,
	}
}

// ObserveDuration records the duration since the timer was created.
func (t *Timer) ObserveDuration() time.Duration {
	d := time.Since(t.start)
	t.collector.HistogramObserve(t.name, d.Seconds(), t.labels...)
	return d
}

// =============================================================================
// Interface compliance
// =============================================================================

var (
	_ Collector = (*NopCollector)(nil)
	_ Collector = (*InMemoryCollector)(nil)
)
