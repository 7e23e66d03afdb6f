package metrics

import (
	"testing"
	"time"
)

func TestCollectorRecordsCounters(t *testing.T) {
	c := NewCollector(true)
	c.RecordEvent("openwindow")
	c.RecordEvent("openwindow")
	c.RecordEvent("windowtitlev2")
	c.RecordRecompute()
	c.RecordRename()
	c.RecordRenameError()
	c.RecordReload(true)
	c.RecordReload(false)

	snap := c.Snapshot()
	if !snap.Enabled {
		t.Fatalf("expected snapshot to be enabled")
	}
	totals := snap.Totals
	if totals.Events != 3 || totals.Recomputes != 1 || totals.Renames != 1 {
		t.Fatalf("unexpected totals: %#v", totals)
	}
	if totals.RenameErrors != 1 || totals.Reloads != 1 || totals.ReloadErrors != 1 {
		t.Fatalf("unexpected error totals: %#v", totals)
	}
	if totals.LastRename.IsZero() || totals.LastReload.IsZero() {
		t.Fatalf("expected timestamps to be recorded: %#v", totals)
	}
	if len(snap.Events) != 2 {
		t.Fatalf("expected two event kinds, got %d", len(snap.Events))
	}
	if snap.Events[0].Kind != "openwindow" || snap.Events[0].Seen != 2 {
		t.Fatalf("unexpected event entry: %#v", snap.Events[0])
	}
	if snap.Events[1].Kind != "windowtitlev2" || snap.Events[1].Seen != 1 {
		t.Fatalf("unexpected event entry: %#v", snap.Events[1])
	}
}

func TestCollectorToggle(t *testing.T) {
	c := NewCollector(false)
	c.RecordEvent("openwindow")
	if snap := c.Snapshot(); snap.Enabled || len(snap.Events) != 0 {
		t.Fatalf("expected disabled snapshot: %#v", snap)
	}
	c.SetEnabled(true)
	c.RecordEvent("openwindow")
	c.RecordRename()
	snap := c.Snapshot()
	if !snap.Enabled || snap.Totals.Events != 1 || snap.Totals.Renames != 1 {
		t.Fatalf("unexpected enabled snapshot: %#v", snap)
	}
	c.SetEnabled(false)
	snap = c.Snapshot()
	if snap.Enabled {
		t.Fatalf("expected disabled after toggle")
	}
	if !snap.Started.IsZero() {
		t.Fatalf("expected started timestamp reset, got %v", snap.Started)
	}
	time.Sleep(10 * time.Millisecond)
	c.SetEnabled(true)
	c.RecordEvent("openwindow")
	snap = c.Snapshot()
	if snap.Totals.Events != 1 {
		t.Fatalf("expected counters to reset after re-enable: %#v", snap)
	}
}
