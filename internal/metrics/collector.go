package metrics

import (
	"sort"
	"sync"
	"time"
)

// Collector aggregates anonymous counters for the rename loop.
type Collector struct {
	mu      sync.RWMutex
	enabled bool
	started time.Time
	events  map[string]*EventMetrics
	totals  Totals
}

// EventMetrics captures per-event-kind counters tracked by the collector.
type EventMetrics struct {
	Kind     string    `json:"kind"`
	Seen     uint64    `json:"seen"`
	LastSeen time.Time `json:"lastSeen,omitempty"`
}

// Totals aggregates loop-wide counters in a snapshot.
type Totals struct {
	Events       uint64    `json:"events"`
	Recomputes   uint64    `json:"recomputes"`
	Renames      uint64    `json:"renames"`
	RenameErrors uint64    `json:"renameErrors"`
	Reloads      uint64    `json:"reloads"`
	ReloadErrors uint64    `json:"reloadErrors"`
	LastRename   time.Time `json:"lastRename,omitempty"`
	LastReload   time.Time `json:"lastReload,omitempty"`
}

// Snapshot is the serializable view of the current metrics state.
type Snapshot struct {
	Enabled bool           `json:"enabled"`
	Started time.Time      `json:"started,omitempty"`
	Totals  Totals         `json:"totals"`
	Events  []EventMetrics `json:"events,omitempty"`
}

// NewCollector returns a collector with the provided opt-in state.
func NewCollector(enabled bool) *Collector {
	c := &Collector{}
	c.SetEnabled(enabled)
	return c
}

// Enabled reports whether counter collection is currently active.
func (c *Collector) Enabled() bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

// SetEnabled toggles collection, resetting counters when enabling.
func (c *Collector) SetEnabled(enabled bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.enabled == enabled {
		return
	}
	c.enabled = enabled
	if !enabled {
		c.events = nil
		c.totals = Totals{}
		c.started = time.Time{}
		return
	}
	c.started = time.Now()
	c.events = make(map[string]*EventMetrics)
}

// RecordEvent counts one compositor event by kind.
func (c *Collector) RecordEvent(kind string) {
	c.update(func(now time.Time) {
		if c.events == nil {
			c.events = make(map[string]*EventMetrics)
		}
		metrics, exists := c.events[kind]
		if !exists {
			metrics = &EventMetrics{Kind: kind}
			c.events[kind] = metrics
		}
		metrics.Seen++
		metrics.LastSeen = now
		c.totals.Events++
	})
}

// RecordRecompute counts one label recomputation pass.
func (c *Collector) RecordRecompute() {
	c.update(func(time.Time) {
		c.totals.Recomputes++
	})
}

// RecordRename counts one dispatched workspace rename.
func (c *Collector) RecordRename() {
	c.update(func(now time.Time) {
		c.totals.Renames++
		c.totals.LastRename = now
	})
}

// RecordRenameError counts a rename dispatch failure.
func (c *Collector) RecordRenameError() {
	c.update(func(time.Time) {
		c.totals.RenameErrors++
	})
}

// RecordReload counts a configuration reload attempt.
func (c *Collector) RecordReload(ok bool) {
	c.update(func(now time.Time) {
		if ok {
			c.totals.Reloads++
			c.totals.LastReload = now
			return
		}
		c.totals.ReloadErrors++
	})
}

func (c *Collector) update(mutate func(time.Time)) {
	if c == nil || mutate == nil {
		return
	}
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return
	}
	mutate(now)
}

// Snapshot returns the current counters for serialization or display.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := Snapshot{Enabled: c.enabled}
	if !c.enabled {
		return snap
	}
	snap.Started = c.started
	snap.Totals = c.totals
	if len(c.events) == 0 {
		return snap
	}
	snap.Events = make([]EventMetrics, 0, len(c.events))
	for _, metrics := range c.events {
		if metrics == nil {
			continue
		}
		snap.Events = append(snap.Events, *metrics)
	}
	sort.Slice(snap.Events, func(i, j int) bool {
		return snap.Events[i].Kind < snap.Events[j].Kind
	})
	return snap
}
