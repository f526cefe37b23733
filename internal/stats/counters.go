// Package stats holds the tiny atomic counter helpers shared by the
// Delimiter Cache, Fast-Path Engine, and Plugin Manager statistics surfaces
// (spec §4.G). Each owning package defines its own exported stats struct;
// this package only centralizes the hit-rate arithmetic so it is computed
// identically everywhere.
package stats

import "sync/atomic"

// Counter is a simple atomic monotonic counter.
type Counter struct {
	v int64
}

// Inc increments the counter by one and returns the new value.
func (c *Counter) Inc() int64 { return atomic.AddInt64(&c.v, 1) }

// Add increments the counter by n and returns the new value.
func (c *Counter) Add(n int64) int64 { return atomic.AddInt64(&c.v, n) }

// Load returns the current value.
func (c *Counter) Load() int64 { return atomic.LoadInt64(&c.v) }

// Reset sets the counter back to zero.
func (c *Counter) Reset() { atomic.StoreInt64(&c.v, 0) }

// HitRate computes hits / (hits + misses), returning 0 when both are zero.
func HitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
