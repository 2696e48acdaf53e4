// Package perf keeps a bounded window of request and query timings for the
// admin performance endpoint.
package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 10000

// EntryKind distinguishes request vs query entries.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindQuery
)

// Entry is a single timing record.
type Entry struct {
	Kind       EntryKind
	Path       string // "METHOD /path" for requests, statement label for queries
	StatusCode int    // 0 for queries
	DurationMs float64
	Timestamp  time.Time
}

// Collector is a fixed-size ring buffer of entries. When full, the oldest
// entry is overwritten. Aggregation happens only in Snapshot.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	pos     int
	count   atomic.Int64
}

// NewCollector creates a collector holding up to size entries.
// A non-positive size uses DefaultRingSize.
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{entries: make([]Entry, size)}
}

// Record stores e, overwriting the oldest entry when full.
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % len(c.entries)
	c.mu.Unlock()
	c.count.Add(1)
}

// TotalRecorded returns the number of entries ever recorded.
func (c *Collector) TotalRecorded() int64 {
	return c.count.Load()
}

// Snapshot is the aggregated view served as JSON.
type Snapshot struct {
	Since          time.Time  `json:"since"`
	TotalRecorded  int64      `json:"totalRecorded"`
	Requests       int        `json:"requests"`
	ServerErrors   int        `json:"serverErrors"`
	RequestP50Ms   float64    `json:"requestP50Ms"`
	RequestP95Ms   float64    `json:"requestP95Ms"`
	RequestP99Ms   float64    `json:"requestP99Ms"`
	SlowestPaths   []PathStat `json:"slowestPaths"`
	SlowestQueries []PathStat `json:"slowestQueries"`
}

// PathStat aggregates timing for one request path or statement label.
type PathStat struct {
	Path    string  `json:"path"`
	Count   int     `json:"count"`
	AvgMs   float64 `json:"avgMs"`
	MaxMs   float64 `json:"maxMs"`
	TotalMs float64 `json:"totalMs"`
}

func (s *PathStat) add(ms float64) {
	s.Count++
	s.TotalMs += ms
	s.MaxMs = math.Max(s.MaxMs, ms)
}

// Snapshot aggregates entries recorded at or after since and keeps the
// topN slowest paths and queries by average duration.
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, len(c.entries))
	copy(buf, c.entries)
	c.mu.Unlock()

	snap := Snapshot{Since: since, TotalRecorded: c.TotalRecorded()}
	var durations []float64
	stats := map[EntryKind]map[string]*PathStat{
		KindRequest: {},
		KindQuery:   {},
	}

	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		byPath, ok := stats[e.Kind]
		if !ok {
			continue
		}
		s := byPath[e.Path]
		if s == nil {
			s = &PathStat{Path: e.Path}
			byPath[e.Path] = s
		}
		s.add(e.DurationMs)

		if e.Kind == KindRequest {
			durations = append(durations, e.DurationMs)
			if e.StatusCode >= 500 {
				snap.ServerErrors++
			}
		}
	}

	snap.Requests = len(durations)
	snap.SlowestPaths = topByAvg(stats[KindRequest], topN)
	snap.SlowestQueries = topByAvg(stats[KindQuery], topN)
	if len(durations) > 0 {
		sort.Float64s(durations)
		snap.RequestP50Ms = percentile(durations, 50)
		snap.RequestP95Ms = percentile(durations, 95)
		snap.RequestP99Ms = percentile(durations, 99)
	}
	return snap
}

// percentile interpolates the p-th percentile of a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower, upper := int(math.Floor(idx)), int(math.Ceil(idx))
	if lower == upper {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// topByAvg sorts by average descending, ties by path.
func topByAvg(stats map[string]*PathStat, n int) []PathStat {
	list := make([]PathStat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.TotalMs / float64(s.Count)
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AvgMs != list[j].AvgMs {
			return list[i].AvgMs > list[j].AvgMs
		}
		return list[i].Path < list[j].Path
	})
	if n >= 0 && len(list) > n {
		list = list[:n]
	}
	return list
}
