package perf

import (
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the number of requests kept for latency stats.
const DefaultRingSize = 4096

// Sample is one completed HTTP request.
type Sample struct {
	Route      string // "METHOD /pattern"
	Status     int
	DurationMs float64
	At         time.Time
}

// Collector keeps the most recent samples in a ring. Old samples are overwritten.
type Collector struct {
	mu      sync.Mutex
	samples []Sample
	next    int
	total   atomic.Int64
}

// NewCollector creates a collector holding size samples.
// PRE: none
// POST: a non-positive size selects DefaultRingSize
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{samples: make([]Sample, size)}
}

// Record stores s, overwriting the oldest sample when full.
func (c *Collector) Record(s Sample) {
	c.mu.Lock()
	c.samples[c.next] = s
	c.next = (c.next + 1) % len(c.samples)
	c.mu.Unlock()
	c.total.Add(1)
}

// Total returns the number of samples ever recorded.
func (c *Collector) Total() int64 {
	return c.total.Load()
}

// RouteStat aggregates one route.
type RouteStat struct {
	Route     string  `json:"route"`
	Count     int     `json:"count"`
	Errors    int     `json:"errors"`
	Conflicts int     `json:"conflicts"`
	AvgMs     float64 `json:"avg_ms"`
	MaxMs     float64 `json:"max_ms"`
}

// Snapshot is the aggregated view served to admins.
type Snapshot struct {
	Total  int64       `json:"total"`
	P50Ms  float64     `json:"p50_ms"`
	P95Ms  float64     `json:"p95_ms"`
	P99Ms  float64     `json:"p99_ms"`
	Routes []RouteStat `json:"routes"`
}

// Snapshot aggregates samples recorded at or after since.
// Routes are ordered slowest average first and truncated to topN.
// Errors count 5xx responses; Conflicts count 409s.
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := slices.Clone(c.samples)
	c.mu.Unlock()

	var durations []float64
	byRoute := make(map[string]*RouteStat)
	for _, s := range buf {
		if s.At.IsZero() || s.At.Before(since) {
			continue
		}
		durations = append(durations, s.DurationMs)
		st, ok := byRoute[s.Route]
		if !ok {
			st = &RouteStat{Route: s.Route}
			byRoute[s.Route] = st
		}
		st.Count++
		st.AvgMs += s.DurationMs
		st.MaxMs = math.Max(st.MaxMs, s.DurationMs)
		switch {
		case s.Status >= 500:
			st.Errors++
		case s.Status == 409:
			st.Conflicts++
		}
	}

	routes := make([]RouteStat, 0, len(byRoute))
	for _, st := range byRoute {
		st.AvgMs /= float64(st.Count)
		routes = append(routes, *st)
	}
	slices.SortFunc(routes, func(a, b RouteStat) int {
		if a.AvgMs != b.AvgMs {
			if a.AvgMs > b.AvgMs {
				return -1
			}
			return 1
		}
		if a.Route < b.Route {
			return -1
		}
		return 1
	})
	if topN > 0 && len(routes) > topN {
		routes = routes[:topN]
	}

	snap := Snapshot{Total: c.Total(), Routes: routes}
	if len(durations) > 0 {
		slices.Sort(durations)
		snap.P50Ms = percentile(durations, 50)
		snap.P95Ms = percentile(durations, 95)
		snap.P99Ms = percentile(durations, 99)
	}
	return snap
}

// percentile interpolates the p-th percentile of sorted.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lo, hi := int(math.Floor(idx)), int(math.Ceil(idx))
	if lo == hi {
		return sorted[lo]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
