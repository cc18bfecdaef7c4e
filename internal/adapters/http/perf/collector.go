// Package perf keeps a bounded in-memory window of request and SQL timings
// for the admin dashboard.
package perf

import (
	"cmp"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the capacity used when NewCollector is given a non-positive size.
const DefaultRingSize = 10000

// EntryKind distinguishes HTTP requests from SQL statements.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindQuery
)

// Entry is one timing sample.
type Entry struct {
	Kind       EntryKind
	Path       string // "METHOD /path" for requests, "VERB table" for statements
	StatusCode int    // zero for statements
	DurationMs float64
	Timestamp  time.Time
}

// Collector stores the most recent entries in a ring. Once full, new entries
// replace the oldest. All aggregation is deferred to Snapshot.
type Collector struct {
	mu      sync.Mutex
	ring    []Entry
	next    int
	filled  int
	written atomic.Int64
}

// NewCollector allocates a collector holding up to size entries.
// POST: the ring is pre-allocated; Record never allocates
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{ring: make([]Entry, size)}
}

// Record stores e, overwriting the oldest entry when the ring is full.
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.ring[c.next] = e
	c.next = (c.next + 1) % len(c.ring)
	if c.filled < len(c.ring) {
		c.filled++
	}
	c.mu.Unlock()
	c.written.Add(1)
}

// TotalRecorded returns how many entries were ever recorded, including overwritten ones.
func (c *Collector) TotalRecorded() int64 {
	return c.written.Load()
}

// PathStat aggregates the samples sharing one Path.
type PathStat struct {
	Path    string
	AvgMs   float64
	MaxMs   float64
	Count   int
	TotalMs float64
	Errors  int // responses with status >= 500
}

// Snapshot is the aggregated view of a time window.
type Snapshot struct {
	TotalRequests  int64
	RequestP50Ms   float64
	RequestP95Ms   float64
	RequestP99Ms   float64
	SlowestPaths   []PathStat
	SlowestQueries []PathStat
}

// Snapshot aggregates the entries recorded at or after since. The two top-N
// lists are ordered by average duration, slowest first.
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	window := make([]Entry, c.filled)
	copy(window, c.ring[:c.filled])
	c.mu.Unlock()

	requests := make(map[string]*PathStat)
	queries := make(map[string]*PathStat)
	var durations []float64
	for _, e := range window {
		if e.Timestamp.Before(since) {
			continue
		}
		target := queries
		if e.Kind == KindRequest {
			target = requests
			durations = append(durations, e.DurationMs)
		}
		accumulate(target, e)
	}

	snap := Snapshot{
		TotalRequests:  int64(len(durations)),
		SlowestPaths:   slowest(requests, topN),
		SlowestQueries: slowest(queries, topN),
	}
	if len(durations) > 0 {
		slices.Sort(durations)
		snap.RequestP50Ms = percentile(durations, 50)
		snap.RequestP95Ms = percentile(durations, 95)
		snap.RequestP99Ms = percentile(durations, 99)
	}
	return snap
}

func accumulate(stats map[string]*PathStat, e Entry) {
	s := stats[e.Path]
	if s == nil {
		s = &PathStat{Path: e.Path}
		stats[e.Path] = s
	}
	s.Count++
	s.TotalMs += e.DurationMs
	s.MaxMs = max(s.MaxMs, e.DurationMs)
	if e.StatusCode >= 500 {
		s.Errors++
	}
}

func slowest(stats map[string]*PathStat, n int) []PathStat {
	out := make([]PathStat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.TotalMs / float64(s.Count)
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b PathStat) int {
		if c := cmp.Compare(b.AvgMs, a.AvgMs); c != 0 {
			return c
		}
		return cmp.Compare(a.Path, b.Path)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// percentile interpolates linearly between the closest ranks of a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	rank := p / 100 * float64(len(sorted)-1)
	lo, hi := int(math.Floor(rank)), int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
