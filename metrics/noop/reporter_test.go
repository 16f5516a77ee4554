package noop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/micro/go-pool/metrics"
)

func TestNoopReporter(t *testing.T) {

	// Make a Reporter:
	reporter := New(metrics.DefaultTags(map[string]string{"pool": "noop"}))
	assert.NotNil(t, reporter)
	assert.Equal(t, "noop", reporter.options.DefaultTags["pool"])

	// Check that our implementation is valid:
	assert.Implements(t, new(metrics.Reporter), reporter)

	assert.NoError(t, reporter.Count("c", 1, nil))
	assert.NoError(t, reporter.Gauge("g", 1, nil))
	assert.NoError(t, reporter.Timing("t", time.Second, nil))
}
