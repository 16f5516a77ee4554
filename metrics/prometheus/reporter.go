// Package prometheus reports pool metrics through a private prometheus
// registry. The scrape endpoint is exposed as an http.Handler so the caller
// decides where to mount it.
package prometheus

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/micro/go-pool/metrics"
)

// ErrPrometheusPanic is a catch-all for the panics which can be thrown by the Prometheus client:
var ErrPrometheusPanic = errors.New("the prometheus client panicked, did you change the tag cardinality or the type of a metric?")

// Reporter is an implementation of metrics.Reporter:
type Reporter struct {
	options  metrics.Options
	registry *prometheus.Registry
	metrics  *metricFamily
}

// New returns a configured prometheus reporter:
func New(opts ...metrics.Option) *Reporter {
	options := metrics.NewOptions(opts...)
	registry := prometheus.NewRegistry()

	return &Reporter{
		options:  options,
		registry: registry,
		metrics:  newMetricFamily(registry, options),
	}
}

// Handler returns the scrape endpoint for this reporter's registry:
func (r *Reporter) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{ErrorHandling: promhttp.ContinueOnError})
}

// Count is a counter with key/value tags:
// New values are added to any previous one (eg "number of timeouts")
func (r *Reporter) Count(name string, value int64, tags metrics.Tags) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = ErrPrometheusPanic
		}
	}()

	tags = r.mergeTags(tags)
	counter := r.metrics.getCounter(stripUnsupportedCharacters(name), listTagKeys(tags))
	metric, err := counter.GetMetricWith(r.convertTags(tags))
	if err != nil {
		return err
	}

	metric.Add(float64(value))
	return err
}

// Gauge is a register with key/value tags:
// New values simply override any previous one (eg "current connections")
func (r *Reporter) Gauge(name string, value float64, tags metrics.Tags) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = ErrPrometheusPanic
		}
	}()

	tags = r.mergeTags(tags)
	gauge := r.metrics.getGauge(stripUnsupportedCharacters(name), listTagKeys(tags))
	metric, err := gauge.GetMetricWith(r.convertTags(tags))
	if err != nil {
		return err
	}

	metric.Set(value)
	return err
}

// Timing is a summary with key/value tags:
// New values are added into a series of aggregations
func (r *Reporter) Timing(name string, value time.Duration, tags metrics.Tags) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = ErrPrometheusPanic
		}
	}()

	tags = r.mergeTags(tags)
	timing := r.metrics.getTiming(stripUnsupportedCharacters(name), listTagKeys(tags))
	metric, err := timing.GetMetricWith(r.convertTags(tags))
	if err != nil {
		return err
	}

	metric.Observe(value.Seconds())
	return err
}

// mergeTags folds the configured default tags into each metric:
func (r *Reporter) mergeTags(tags metrics.Tags) metrics.Tags {
	merged := make(metrics.Tags, len(tags)+len(r.options.DefaultTags))
	for key, value := range r.options.DefaultTags {
		merged[key] = value
	}
	for key, value := range tags {
		merged[key] = value
	}
	return merged
}

// convertTags turns Tags into prometheus labels:
func (r *Reporter) convertTags(tags metrics.Tags) prometheus.Labels {
	labels := prometheus.Labels{}
	for key, value := range tags {
		labels[key] = stripUnsupportedCharacters(value)
	}
	return labels
}

// listTagKeys returns a list of tag keys (we need to provide this to the Prometheus client):
func listTagKeys(tags metrics.Tags) (labelKeys []string) {
	for key := range tags {
		labelKeys = append(labelKeys, key)
	}
	return
}

// stripUnsupportedCharacters cleans up a metrics key or value:
func stripUnsupportedCharacters(metricName string) string {
	valueWithoutDots := strings.Replace(metricName, ".", "_", -1)
	valueWithoutCommas := strings.Replace(valueWithoutDots, ",", "_", -1)
	return strings.Replace(valueWithoutCommas, " ", "", -1)
}
