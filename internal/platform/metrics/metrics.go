package metrics

import (
	"sync/atomic"
	"time"
)

// Collector aggregates request counters for the /metrics endpoint. All
// methods are safe for concurrent use.
type Collector struct {
	startedAt time.Time

	total       atomic.Uint64
	clientErrs  atomic.Uint64
	serverErrs  atomic.Uint64
	denied      atomic.Uint64
	rateLimited atomic.Uint64
	totalMs     atomic.Uint64
	maxMs       atomic.Uint64
}

func New() *Collector {
	return &Collector{startedAt: time.Now()}
}

func (c *Collector) Record(status int, duration time.Duration) {
	c.total.Add(1)
	switch {
	case status >= 500:
		c.serverErrs.Add(1)
	case status >= 400:
		c.clientErrs.Add(1)
	}
	switch status {
	case 401, 403:
		c.denied.Add(1)
	case 429:
		c.rateLimited.Add(1)
	}

	ms := uint64(duration.Milliseconds())
	c.totalMs.Add(ms)
	for {
		current := c.maxMs.Load()
		if ms <= current || c.maxMs.CompareAndSwap(current, ms) {
			break
		}
	}
}

func (c *Collector) Snapshot() map[string]any {
	total := c.total.Load()
	totalMs := c.totalMs.Load()
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":     total,
		"clientErrorsTotal": c.clientErrs.Load(),
		"errorsTotal":       c.serverErrs.Load(),
		"deniedTotal":       c.denied.Load(),
		"rateLimitedTotal":  c.rateLimited.Load(),
		"avgDurationMs":     avg,
		"maxDurationMs":     c.maxMs.Load(),
		"totalDurationMs":   totalMs,
		"uptimeSeconds":     int64(time.Since(c.startedAt).Seconds()),
	}
}
