package prometheus

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/micro/go-pool/metrics"
)

// metricFamily lazily creates and caches one vector per metric name.
// Prometheus requires every metric to be registered exactly once, so the
// maps are guarded against concurrent reporters.
type metricFamily struct {
	mu       sync.Mutex
	registry *prometheus.Registry
	options  metrics.Options

	counters map[string]*prometheus.CounterVec
	gauges   map[string]*prometheus.GaugeVec
	timings  map[string]*prometheus.SummaryVec
}

func newMetricFamily(registry *prometheus.Registry, options metrics.Options) *metricFamily {
	return &metricFamily{
		registry: registry,
		options:  options,
		counters: make(map[string]*prometheus.CounterVec),
		gauges:   make(map[string]*prometheus.GaugeVec),
		timings:  make(map[string]*prometheus.SummaryVec),
	}
}

func (mf *metricFamily) getCounter(name string, labelNames []string) *prometheus.CounterVec {
	mf.mu.Lock()
	defer mf.mu.Unlock()

	counter, ok := mf.counters[name]
	if !ok {
		counter = prometheus.NewCounterVec(prometheus.CounterOpts{Name: name}, labelNames)
		mf.registry.MustRegister(counter)
		mf.counters[name] = counter
	}
	return counter
}

func (mf *metricFamily) getGauge(name string, labelNames []string) *prometheus.GaugeVec {
	mf.mu.Lock()
	defer mf.mu.Unlock()

	gauge, ok := mf.gauges[name]
	if !ok {
		gauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name}, labelNames)
		mf.registry.MustRegister(gauge)
		mf.gauges[name] = gauge
	}
	return gauge
}

func (mf *metricFamily) getTiming(name string, labelNames []string) *prometheus.SummaryVec {
	mf.mu.Lock()
	defer mf.mu.Unlock()

	timing, ok := mf.timings[name]
	if !ok {
		timing = prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name:       name,
			Objectives: mf.options.TimingObjectives,
		}, labelNames)
		mf.registry.MustRegister(timing)
		mf.timings[name] = timing
	}
	return timing
}
