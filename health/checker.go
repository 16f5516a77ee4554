package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/micro/go-pool/logger"
	"github.com/micro/go-pool/metrics"
	"github.com/micro/go-pool/pool"
)

// Checker periodically observes a pool, publishes its gauges through a
// metrics reporter and retires stale idle connections.
type Checker struct {
	opts Options
	pool pool.Pool
	log  *logger.Helper
}

// NewChecker returns a checker for the given pool. Run must be called to
// start the periodic loop; Report and Handler work without it.
func NewChecker(p pool.Pool, opts ...Option) *Checker {
	options := newOptions(opts...)

	return &Checker{
		opts: options,
		pool: p,
		log:  logger.NewHelper(options.Logger),
	}
}

// Report takes one observation of the pool.
func (c *Checker) Report() Report {
	return Observe(c.pool.Stats())
}

// Run observes the pool every interval until ctx is done.
func (c *Checker) Run(ctx context.Context) {
	ticker := time.NewTicker(c.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.observe(ctx)
		}
	}
}

func (c *Checker) observe(ctx context.Context) {
	report := c.Report()
	c.publish(report)

	if !c.opts.Cleanup {
		return
	}

	removed, err := c.pool.CleanupStale(ctx)
	if err != nil {
		c.log.Errorf("health %s: cleanup: %v", c.pool.String(), err)
		return
	}
	if removed > 0 {
		c.log.Debugf("health %s: retired %d stale connections", c.pool.String(), removed)
	}
}

func (c *Checker) publish(report Report) {
	tags := metrics.Tags{"pool": report.Pool.Name}
	r := c.opts.Reporter

	r.Gauge("pool.connections.total", float64(report.Pool.Total), tags)   // nolint
	r.Gauge("pool.connections.idle", float64(report.Pool.Idle), tags)     // nolint
	r.Gauge("pool.connections.in_use", float64(report.Pool.InUse), tags)  // nolint
	r.Gauge("pool.waiters", float64(report.Pool.Waiters), tags)           // nolint
	r.Gauge("pool.connections.stale", float64(report.Statistics.StaleCount), tags) // nolint
	r.Gauge("pool.utilization", report.Statistics.Utilization, tags)      // nolint
	r.Gauge("pool.connections.created", float64(report.Pool.Created), tags) // nolint
	r.Gauge("pool.connections.retired", float64(report.Pool.Retired), tags) // nolint
	r.Gauge("pool.timeouts", float64(report.Pool.Timeouts), tags)           // nolint
	r.Timing("pool.idle_time.avg", report.Statistics.AvgIdleTime, tags)     // nolint
}

// HealthHandler serves the verdict: 200 unless the pool is critical.
func (c *Checker) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := c.Report()

		status := http.StatusOK
		if report.Verdict == Critical {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]Verdict{"verdict": report.Verdict}) // nolint
	}
}

// StatsHandler serves the full report.
func (c *Checker) StatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(c.Report()) // nolint
	}
}

// RegisterHandlers mounts /health and /stats on the given mux.
func (c *Checker) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/health", c.HealthHandler())
	mux.HandleFunc("/stats", c.StatsHandler())
}
