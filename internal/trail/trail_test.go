package trail

import (
	"testing"

	"github.com/namdpran8/SpaceAppCHallange2K25/internal/orbit"
)

func pos(i int) orbit.Vec3 {
	return orbit.Vec3{X: float64(i)}
}

// TestAppendBounded: trails hold at most Capacity entries, evicting the
// oldest first.
func TestAppendBounded(t *testing.T) {
	tr := NewTracker(true)

	for i := 0; i < Capacity+10; i++ {
		tr.Append("p", pos(i))
	}

	got := tr.Get("p")
	if len(got) != Capacity {
		t.Fatalf("len = %d, want %d", len(got), Capacity)
	}
	if got[0] != pos(10) {
		t.Errorf("oldest = %+v, want %+v", got[0], pos(10))
	}
	if got[Capacity-1] != pos(Capacity+9) {
		t.Errorf("newest = %+v, want %+v", got[Capacity-1], pos(Capacity+9))
	}
}

// TestDisabledRecordsNothing: a disabled tracker drops appends.
func TestDisabledRecordsNothing(t *testing.T) {
	tr := NewTracker(false)
	tr.Append("p", pos(1))
	if got := tr.Get("p"); len(got) != 0 {
		t.Errorf("trail = %v, want empty", got)
	}
}

// TestReenableClears: re-enabling starts from an empty trail so the path
// does not jump across the disabled gap.
func TestReenableClears(t *testing.T) {
	tr := NewTracker(true)
	tr.Append("p", pos(1))
	tr.Append("p", pos(2))

	tr.SetEnabled(false)
	tr.SetEnabled(true)

	if got := tr.Get("p"); len(got) != 0 {
		t.Errorf("trail after re-enable = %v, want empty", got)
	}
}

// TestSetEnabledIdempotent: enabling an already-enabled tracker keeps its
// trails.
func TestSetEnabledIdempotent(t *testing.T) {
	tr := NewTracker(true)
	tr.Append("p", pos(1))
	tr.SetEnabled(true)
	if got := tr.Get("p"); len(got) != 1 {
		t.Errorf("trail = %v, want 1 entry", got)
	}
}

// TestClear drops every body's history.
func TestClear(t *testing.T) {
	tr := NewTracker(true)
	tr.Append("a", pos(1))
	tr.Append("b", pos(2))
	tr.Clear()
	if len(tr.Get("a"))+len(tr.Get("b")) != 0 {
		t.Error("trails survived Clear")
	}
}

// TestSnapshotIsCopy: mutating a snapshot must not affect the tracker.
func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(true)
	tr.Append("p", pos(1))

	snap := tr.Snapshot()
	snap["p"][0] = pos(99)

	if got := tr.Get("p")[0]; got != pos(1) {
		t.Errorf("tracker entry = %+v, want %+v", got, pos(1))
	}
}
