package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// =============================================================================
// Prometheus Collector
// =============================================================================

// PrometheusCollector implements Collector on a private Prometheus registry.
// Metrics must be registered before use; unknown names are ignored.
type PrometheusCollector struct {
	mu sync.RWMutex

	registry *prometheus.Registry

	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
}

// NewPrometheusCollector creates a collector with the converter metrics registered.
func NewPrometheusCollector() (*PrometheusCollector, error) {
	c := &PrometheusCollector{
		registry:   prometheus.NewRegistry(),
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
	for _, def := range Definitions() {
		if err := c.Register(def); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Register registers one metric definition.
func (c *PrometheusCollector) Register(def MetricDefinition) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch def.Type {
	case MetricTypeCounter:
		if _, exists := c.counters[def.Name]; exists {
			return nil
		}
		vec := prometheus.NewCounterVec(prometheus.CounterOpts{Name: def.Name, Help: def.Help}, def.Labels)
		if err := c.registry.Register(vec); err != nil {
			return err
		}
		c.counters[def.Name] = vec
	case MetricTypeGauge:
		if _, exists := c.gauges[def.Name]; exists {
			return nil
		}
		vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: def.Name, Help: def.Help}, def.Labels)
		if err := c.registry.Register(vec); err != nil {
			return err
		}
		c.gauges[def.Name] = vec
	case MetricTypeHistogram:
		if _, exists := c.histograms[def.Name]; exists {
			return nil
		}
		buckets := def.Buckets
		if len(buckets) == 0 {
			buckets = prometheus.DefBuckets
		}
		vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    def.Name,
			Help:    def.Help,
			Buckets: buckets,
		}, def.Labels)
		if err := c.registry.Register(vec); err != nil {
			return err
		}
		c.histograms[def.Name] = vec
	default:
		return fmt.Errorf("metrics: unsupported metric type %q for %s", def.Type, def.Name)
	}
	return nil
}

func (c *PrometheusCollector) CounterInc(name string, labels ...string) {
	c.CounterAdd(name, 1, labels...)
}

func (c *PrometheusCollector) CounterAdd(name string, value float64, labels ...string) {
	c.mu.RLock()
	counter, ok := c.counters[name]
	c.mu.RUnlock()
	if !ok {
		return
	}
	counter.WithLabelValues(labelsToValues(labels)...).Add(value)
}

func (c *PrometheusCollector) GaugeSet(name string, value float64, labels ...string) {
	c.mu.RLock()
	gauge, ok := c.gauges[name]
	c.mu.RUnlock()
	if !ok {
		return
	}
	gauge.WithLabelValues(labelsToValues(labels)...).Set(value)
}

func (c *PrometheusCollector) HistogramObserve(name string, value float64, labels ...string) {
	c.mu.RLock()
	histogram, ok := c.histograms[name]
	c.mu.RUnlock()
	if !ok {
		return
	}
	histogram.WithLabelValues(labelsToValues(labels)...).Observe(value)
}

// Registry returns the underlying Prometheus registry.
func (c *PrometheusCollector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteTextfile writes the registry in Prometheus text format, for the
// node-exporter textfile collector. The write is atomic.
func (c *PrometheusCollector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}

// labelsToValues converts label pairs to values only.
// Input: ["label1", "value1", "label2", "value2"]
// Output: ["value1", "value2"]
func labelsToValues(labels []string) []string {
	if len(labels) == 0 {
		return nil
	}

	values := make([]string, 0, len(labels)/2)
	for i := 1; i < len(labels); i += 2 {
		values = append(values, labels[i])
	}
	return values
}

var _ Collector = (*PrometheusCollector)(nil)
