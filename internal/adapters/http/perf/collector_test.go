package perf

import (
	"sync"
	"testing"
	"time"
)

// TestCollector_Snapshot verifies requests and statements are aggregated separately.
func TestCollector_Snapshot(t *testing.T) {
	c := NewCollector(100)
	now := time.Now()

	c.Record(Entry{Kind: KindRequest, Path: "GET /calendar", StatusCode: 200, DurationMs: 10, Timestamp: now})
	c.Record(Entry{Kind: KindRequest, Path: "GET /calendar", StatusCode: 500, DurationMs: 30, Timestamp: now})
	c.Record(Entry{Kind: KindRequest, Path: "GET /leads", StatusCode: 200, DurationMs: 2, Timestamp: now})
	c.Record(Entry{Kind: KindQuery, Path: "SELECT calendar_event", DurationMs: 5, Timestamp: now})

	snap := c.Snapshot(now.Add(-time.Minute), 10)
	if snap.TotalRequests != 3 {
		t.Errorf("TotalRequests = %d, want 3", snap.TotalRequests)
	}
	if len(snap.SlowestPaths) != 2 {
		t.Fatalf("SlowestPaths len = %d, want 2", len(snap.SlowestPaths))
	}
	top := snap.SlowestPaths[0]
	if top.Path != "GET /calendar" || top.AvgMs != 20 || top.MaxMs != 30 || top.Errors != 1 {
		t.Errorf("slowest path = %+v", top)
	}
	if len(snap.SlowestQueries) != 1 || snap.SlowestQueries[0].Path != "SELECT calendar_event" {
		t.Fatalf("SlowestQueries = %+v", snap.SlowestQueries)
	}
}

// TestCollector_TopN verifies the lists are truncated.
func TestCollector_TopN(t *testing.T) {
	c := NewCollector(100)
	now := time.Now()
	for i, p := range []string{"GET /a", "GET /b", "GET /c"} {
		c.Record(Entry{Kind: KindRequest, Path: p, DurationMs: float64(i), Timestamp: now})
	}
	snap := c.Snapshot(now.Add(-time.Minute), 2)
	if len(snap.SlowestPaths) != 2 || snap.SlowestPaths[0].Path != "GET /c" {
		t.Fatalf("SlowestPaths = %+v", snap.SlowestPaths)
	}
}

// TestCollector_RingOverwrites verifies only the newest entries survive once full.
func TestCollector_RingOverwrites(t *testing.T) {
	c := NewCollector(3)
	now := time.Now()
	for i := range 5 {
		c.Record(Entry{Kind: KindRequest, Path: "GET /x", DurationMs: float64(i), Timestamp: now})
	}
	if c.TotalRecorded() != 5 {
		t.Errorf("TotalRecorded = %d, want 5", c.TotalRecorded())
	}
	snap := c.Snapshot(now.Add(-time.Minute), 10)
	if snap.SlowestPaths[0].Count != 3 || snap.SlowestPaths[0].AvgMs != 3 {
		t.Errorf("kept entries = %+v, want the last three", snap.SlowestPaths[0])
	}
}

// TestCollector_Percentiles verifies P50/P95/P99.
func TestCollector_Percentiles(t *testing.T) {
	c := NewCollector(200)
	now := time.Now()
	for i := 1; i <= 100; i++ {
		c.Record(Entry{Kind: KindRequest, Path: "GET /p", DurationMs: float64(i), Timestamp: now})
	}
	snap := c.Snapshot(now.Add(-time.Minute), 10)
	if snap.RequestP50Ms < 49 || snap.RequestP50Ms > 51 {
		t.Errorf("P50 = %v", snap.RequestP50Ms)
	}
	if snap.RequestP95Ms < 94 || snap.RequestP95Ms > 96 {
		t.Errorf("P95 = %v", snap.RequestP95Ms)
	}
	if snap.RequestP99Ms < 98 || snap.RequestP99Ms > 100 {
		t.Errorf("P99 = %v", snap.RequestP99Ms)
	}
}

// TestCollector_SnapshotWindow verifies entries older than since are ignored.
func TestCollector_SnapshotWindow(t *testing.T) {
	c := NewCollector(100)
	now := time.Now()
	c.Record(Entry{Kind: KindRequest, Path: "GET /old", DurationMs: 100, Timestamp: now.Add(-2 * time.Hour)})
	c.Record(Entry{Kind: KindRequest, Path: "GET /new", DurationMs: 10, Timestamp: now})

	snap := c.Snapshot(now.Add(-time.Hour), 10)
	if len(snap.SlowestPaths) != 1 || snap.SlowestPaths[0].Path != "GET /new" {
		t.Fatalf("SlowestPaths = %+v", snap.SlowestPaths)
	}
	if empty := NewCollector(0).Snapshot(now, 10); empty.TotalRequests != 0 || len(empty.SlowestPaths) != 0 {
		t.Fatalf("empty snapshot = %+v", empty)
	}
}

// TestCollector_ConcurrentWrites verifies Record is goroutine safe.
func TestCollector_ConcurrentWrites(t *testing.T) {
	c := NewCollector(1000)
	now := time.Now()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for range 20 {
				c.Record(Entry{Kind: KindQuery, Path: "SELECT lead", DurationMs: float64(n), Timestamp: now})
			}
		}(i)
	}
	wg.Wait()
	if c.TotalRecorded() != 1000 {
		t.Errorf("TotalRecorded = %d, want 1000", c.TotalRecorded())
	}
	if snap := c.Snapshot(now.Add(-time.Minute), 1); snap.SlowestQueries[0].Count != 1000 {
		t.Errorf("Count = %d, want 1000", snap.SlowestQueries[0].Count)
	}
}

// BenchmarkCollectorRecord measures Record.
func BenchmarkCollectorRecord(b *testing.B) {
	c := NewCollector(DefaultRingSize)
	e := Entry{Kind: KindRequest, Path: "GET /calendar", StatusCode: 200, DurationMs: 1.5, Timestamp: time.Now()}
	b.ReportAllocs()
	for b.Loop() {
		c.Record(e)
	}
}

// BenchmarkCollectorSnapshot measures aggregation over a full ring.
func BenchmarkCollectorSnapshot(b *testing.B) {
	c := NewCollector(DefaultRingSize)
	now := time.Now()
	for i := range DefaultRingSize {
		c.Record(Entry{Kind: KindRequest, Path: "GET /calendar", DurationMs: float64(i % 100), Timestamp: now})
	}
	b.ReportAllocs()
	for b.Loop() {
		c.Snapshot(now.Add(-time.Hour), 10)
	}
}
