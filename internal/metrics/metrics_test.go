package metrics

import "testing"

func TestCollector_IncAndValue(t *testing.T) {
	c := NewCollector()
	c.Inc(MessagesClassified)
	c.Inc(MessagesClassified)
	c.Inc(ClassifierFallbacks)

	if got := c.Value(MessagesClassified); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
	if got := c.Value("unknown"); got != 0 {
		t.Errorf("unknown counter should be 0, got %d", got)
	}
}

func TestCollector_NilIsSafe(t *testing.T) {
	var c *Collector
	c.Inc(MessagesClassified) // must not panic
	if c.Value(MessagesClassified) != 0 {
		t.Error("nil collector must report 0")
	}
	if c.Snapshot() != nil {
		t.Error("nil collector snapshot must be nil")
	}
}

func TestCollector_SnapshotSorted(t *testing.T) {
	c := NewCollector()
	c.Inc("zeta")
	c.Inc("alpha")

	snap := c.Snapshot()
	if len(snap) != 2 || snap[0].Name != "alpha" || snap[1].Name != "zeta" {
		t.Errorf("snapshot not sorted: %+v", snap)
	}
}
