// Package backoff provides backoff functionality
package backoff

import (
	"math"
	"time"
)

// Exponential returns the delay before retry attempt number attempt:
// base * factor^attempt, capped at max. Attempt numbering starts at zero.
func Exponential(attempt int, base, max time.Duration, factor float64) time.Duration {
	if base <= 0 {
		return 0
	}
	if factor < 1 {
		factor = 1
	}

	d := time.Duration(float64(base) * math.Pow(factor, float64(attempt)))
	if max > 0 && (d > max || d < 0) {
		// d < 0 guards against overflow on large attempt counts
		d = max
	}
	return d
}
