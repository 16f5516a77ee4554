// Package health derives pool health verdicts and aggregate statistics
// from pool snapshots, and exposes them over HTTP.
package health

import (
	"time"

	"github.com/micro/go-pool/pool"
)

// Verdict represents the health status of a pool.
type Verdict string

const (
	// Healthy means connections are available and none are stale.
	Healthy Verdict = "HEALTHY"
	// Degraded means the pool works but carries stale connections.
	Degraded Verdict = "DEGRADED"
	// Critical means no connection is currently available.
	Critical Verdict = "CRITICAL"
)

// PoolMetrics are the pool-level counters and configured limits.
type PoolMetrics struct {
	Name     string `json:"name"`
	MinSize  int    `json:"min_size"`
	MaxSize  int    `json:"max_size"`
	Total    int    `json:"total"`
	Idle     int    `json:"idle"`
	InUse    int    `json:"in_use"`
	Waiters  int    `json:"waiters"`
	Created  uint64 `json:"created"`
	Retired  uint64 `json:"retired"`
	Timeouts uint64 `json:"timeouts"`
	Closed   bool   `json:"closed"`
}

// ConnMetrics is the per-connection view.
type ConnMetrics struct {
	Id       string        `json:"id"`
	IdleTime time.Duration `json:"idle_time"`
	Lifetime time.Duration `json:"lifetime"`
	InUse    bool          `json:"in_use"`
	Stale    bool          `json:"stale"`
}

// Statistics are aggregates computed over the per-connection views.
type Statistics struct {
	AvgIdleTime time.Duration `json:"avg_idle_time"`
	AvgLifetime time.Duration `json:"avg_lifetime"`
	StaleCount  int           `json:"stale_count"`
	// Utilization is in-use connections over total, 0 when the pool is empty.
	Utilization float64 `json:"utilization"`
}

// Report is one full observation of a pool.
type Report struct {
	Verdict    Verdict       `json:"verdict"`
	Pool       PoolMetrics   `json:"pool"`
	Conns      []ConnMetrics `json:"connections,omitempty"`
	Statistics Statistics    `json:"statistics"`
}

// Observe derives a Report from a pool snapshot.
func Observe(stats pool.Stats) Report {
	report := Report{
		Pool: PoolMetrics{
			Name:     stats.Name,
			MinSize:  stats.MinSize,
			MaxSize:  stats.MaxSize,
			Total:    stats.Total,
			Idle:     stats.Idle,
			InUse:    stats.InUse,
			Waiters:  stats.Waiters,
			Created:  stats.Created,
			Retired:  stats.Retired,
			Timeouts: stats.Timeouts,
			Closed:   stats.Closed,
		},
	}

	var idleSum, lifeSum time.Duration
	for _, cs := range stats.Conns {
		cm := ConnMetrics{
			Id:       cs.Id,
			IdleTime: cs.IdleTime,
			Lifetime: cs.Lifetime,
			InUse:    cs.InUse,
			Stale:    cs.Stale,
		}
		report.Conns = append(report.Conns, cm)

		idleSum += cs.IdleTime
		lifeSum += cs.Lifetime
		if cs.Stale {
			report.Statistics.StaleCount++
		}
	}

	if n := len(stats.Conns); n > 0 {
		report.Statistics.AvgIdleTime = idleSum / time.Duration(n)
		report.Statistics.AvgLifetime = lifeSum / time.Duration(n)
	}
	if stats.Total > 0 {
		report.Statistics.Utilization = float64(stats.InUse) / float64(stats.Total)
	}

	report.Verdict = verdict(stats, report.Statistics.StaleCount)

	return report
}

// verdict classifies a snapshot. Unavailability outranks staleness: a
// closed pool serves nothing, as does an exhausted one.
func verdict(stats pool.Stats, staleCount int) Verdict {
	if stats.Closed {
		return Critical
	}
	if stats.Idle == 0 && stats.Total+stats.Creating >= stats.MaxSize {
		return Critical
	}
	if staleCount > 0 {
		return Degraded
	}
	return Healthy
}
