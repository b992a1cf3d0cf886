// Package metrics is a lightweight counter collector for the pipeline.
// Counters are exposed by the doctor command and logged at shutdown; there is
// no exporter surface.
package metrics

import (
	"sort"
	"sync"
	"time"
)

// Counter names used across the pipeline.
const (
	MessagesClassified  = "messages_classified"
	ClassifierFallbacks = "classifier_fallbacks"
	MessagesRecorded    = "messages_recorded"
	SnapshotsSaved      = "snapshots_saved"
	RepliesApproved     = "replies_approved"
	RepliesSkipped      = "replies_skipped"
	DecisionsExpired    = "decisions_expired"
	QueriesAnswered     = "queries_answered"
)

// Collector aggregates named counters. The zero value is not usable; a nil
// *Collector is, so components can run unmetered in tests.
type Collector struct {
	mu        sync.Mutex
	counters  map[string]int64
	startTime time.Time
}

func NewCollector() *Collector {
	return &Collector{
		counters:  make(map[string]int64),
		startTime: time.Now(),
	}
}

// Inc bumps a counter by one. Safe on a nil collector.
func (c *Collector) Inc(name string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.counters[name]++
	c.mu.Unlock()
}

// Value returns a counter's current value.
func (c *Collector) Value(name string) int64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counters[name]
}

// Uptime returns how long the collector has been running.
func (c *Collector) Uptime() time.Duration {
	if c == nil {
		return 0
	}
	return time.Since(c.startTime)
}

// NamedValue is one counter sample.
type NamedValue struct {
	Name  string
	Value int64
}

// Snapshot returns all counters sorted by name.
func (c *Collector) Snapshot() []NamedValue {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]NamedValue, 0, len(c.counters))
	for name, v := range c.counters {
		out = append(out, NamedValue{Name: name, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
