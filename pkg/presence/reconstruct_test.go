package presence_test

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/vrclog/presence-go/pkg/presence"
)

// at builds an instant on a fixed day; reconstruction only cares about
// relative order.
func at(h, min int) time.Time {
	return time.Date(2024, 1, 15, h, min, 0, 0, time.UTC)
}

func TestReconstruct_PairedJoinsLeaves(t *testing.T) {
	joins := []time.Time{at(10, 0), at(10, 30)}
	leaves := []time.Time{at(10, 15), at(10, 45)}

	tl := presence.Reconstruct(joins, leaves, nil)

	want := []presence.Interval{
		{Start: at(10, 0), End: at(10, 15)},
		{Start: at(10, 30), End: at(10, 45)},
	}
	if !reflect.DeepEqual(tl.Intervals, want) {
		t.Errorf("Intervals = %v, want %v", tl.Intervals, want)
	}
	if tl.Online != 30*time.Minute {
		t.Errorf("Online = %v, want %v", tl.Online, 30*time.Minute)
	}
	if tl.OpenAtEnd {
		t.Error("OpenAtEnd = true, want false")
	}
	if !tl.Overlapping {
		t.Error("Overlapping = false, want true")
	}
	if tl.DuplicateJoins != 0 || tl.OrphanLeaves != 0 {
		t.Errorf("anomalies = %d/%d, want 0/0", tl.DuplicateJoins, tl.OrphanLeaves)
	}
}

func TestReconstruct_NeverLeft(t *testing.T) {
	tl := presence.Reconstruct([]time.Time{at(9, 0)}, nil, nil)

	want := []presence.Interval{{Start: at(9, 0), End: at(9, 0)}}
	if !reflect.DeepEqual(tl.Intervals, want) {
		t.Errorf("Intervals = %v, want %v", tl.Intervals, want)
	}
	if !tl.OpenAtEnd {
		t.Error("OpenAtEnd = false, want true")
	}
	if tl.Online != 0 {
		t.Errorf("Online = %v, want 0", tl.Online)
	}
}

func TestReconstruct_StillPresentAfterActivity(t *testing.T) {
	// Joined, left, rejoined, never left again: the open interval closes
	// at the last observed instant, not at the wall clock.
	joins := []time.Time{at(9, 0), at(11, 0)}
	leaves := []time.Time{at(10, 0)}

	tl := presence.Reconstruct(joins, leaves, nil)

	want := []presence.Interval{
		{Start: at(9, 0), End: at(10, 0)},
		{Start: at(11, 0), End: at(11, 0)},
	}
	if !reflect.DeepEqual(tl.Intervals, want) {
		t.Errorf("Intervals = %v, want %v", tl.Intervals, want)
	}
	if !tl.OpenAtEnd {
		t.Error("OpenAtEnd = false, want true")
	}
	if tl.Online != time.Hour {
		t.Errorf("Online = %v, want %v", tl.Online, time.Hour)
	}
}

func TestReconstruct_OrphanLeaveOnly(t *testing.T) {
	tl := presence.Reconstruct(nil, []time.Time{at(8, 0)}, nil)

	if len(tl.Intervals) != 0 {
		t.Errorf("Intervals = %v, want none", tl.Intervals)
	}
	if tl.Overlapping {
		t.Error("Overlapping = true, want false")
	}
	if tl.OrphanLeaves != 1 {
		t.Errorf("OrphanLeaves = %d, want 1", tl.OrphanLeaves)
	}
}

func TestReconstruct_Empty(t *testing.T) {
	tl := presence.Reconstruct(nil, nil, nil)

	if !reflect.DeepEqual(tl, presence.Timeline{}) {
		t.Errorf("Reconstruct(nil, nil, nil) = %+v, want zero Timeline", tl)
	}
}

func TestReconstruct_DuplicateJoin(t *testing.T) {
	joins := []time.Time{at(10, 0), at(10, 5)}
	leaves := []time.Time{at(10, 30)}

	tl := presence.Reconstruct(joins, leaves, nil)

	want := []presence.Interval{{Start: at(10, 0), End: at(10, 30)}}
	if !reflect.DeepEqual(tl.Intervals, want) {
		t.Errorf("Intervals = %v, want %v", tl.Intervals, want)
	}
	if tl.DuplicateJoins != 1 {
		t.Errorf("DuplicateJoins = %d, want 1", tl.DuplicateJoins)
	}
}

func TestReconstruct_OrphanLeaveMidStream(t *testing.T) {
	// Log starts mid-session: a leave for a join we never saw.
	joins := []time.Time{at(10, 0)}
	leaves := []time.Time{at(9, 0), at(10, 30)}

	tl := presence.Reconstruct(joins, leaves, nil)

	want := []presence.Interval{{Start: at(10, 0), End: at(10, 30)}}
	if !reflect.DeepEqual(tl.Intervals, want) {
		t.Errorf("Intervals = %v, want %v", tl.Intervals, want)
	}
	if tl.OrphanLeaves != 1 {
		t.Errorf("OrphanLeaves = %d, want 1", tl.OrphanLeaves)
	}
}

func TestReconstruct_TieJoinBeforeLeave(t *testing.T) {
	// A join and a leave at the same instant while present: the join is
	// consumed first (and absorbed as duplicate), so the leave closes one
	// continuous interval instead of splitting it with a zero-length
	// absence.
	joins := []time.Time{at(9, 0), at(10, 0)}
	leaves := []time.Time{at(10, 0)}

	tl := presence.Reconstruct(joins, leaves, nil)

	want := []presence.Interval{{Start: at(9, 0), End: at(10, 0)}}
	if !reflect.DeepEqual(tl.Intervals, want) {
		t.Errorf("Intervals = %v, want %v", tl.Intervals, want)
	}
	if tl.DuplicateJoins != 1 {
		t.Errorf("DuplicateJoins = %d, want 1", tl.DuplicateJoins)
	}
	if tl.OpenAtEnd {
		t.Error("OpenAtEnd = true, want false")
	}
}

func TestReconstruct_ShuffleInvariance(t *testing.T) {
	joins := []time.Time{at(8, 0), at(10, 0), at(12, 0), at(14, 0)}
	leaves := []time.Time{at(9, 0), at(11, 0), at(13, 0)}

	want := presence.Reconstruct(joins, leaves, nil)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		shuffledJoins := append([]time.Time(nil), joins...)
		shuffledLeaves := append([]time.Time(nil), leaves...)
		rng.Shuffle(len(shuffledJoins), func(a, b int) {
			shuffledJoins[a], shuffledJoins[b] = shuffledJoins[b], shuffledJoins[a]
		})
		rng.Shuffle(len(shuffledLeaves), func(a, b int) {
			shuffledLeaves[a], shuffledLeaves[b] = shuffledLeaves[b], shuffledLeaves[a]
		})

		got := presence.Reconstruct(shuffledJoins, shuffledLeaves, nil)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("shuffle %d: Reconstruct() = %+v, want %+v", i, got, want)
		}
	}
}

func TestReconstruct_Idempotent(t *testing.T) {
	joins := []time.Time{at(10, 0), at(12, 0)}
	leaves := []time.Time{at(11, 0)}
	w := &presence.Window{Start: at(10, 30), End: at(12, 30)}

	first := presence.Reconstruct(joins, leaves, w)
	second := presence.Reconstruct(joins, leaves, w)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated Reconstruct() differs: %+v vs %+v", first, second)
	}
}

func TestReconstruct_InputNotMutated(t *testing.T) {
	joins := []time.Time{at(12, 0), at(8, 0)}
	leaves := []time.Time{at(13, 0), at(9, 0)}
	wantJoins := append([]time.Time(nil), joins...)
	wantLeaves := append([]time.Time(nil), leaves...)

	presence.Reconstruct(joins, leaves, nil)

	if !reflect.DeepEqual(joins, wantJoins) {
		t.Errorf("joins mutated: %v", joins)
	}
	if !reflect.DeepEqual(leaves, wantLeaves) {
		t.Errorf("leaves mutated: %v", leaves)
	}
}

func TestReconstruct_DisjointSortedAndSummed(t *testing.T) {
	// Messy input: unordered, duplicate joins, orphan leaves.
	joins := []time.Time{at(14, 0), at(8, 0), at(8, 30), at(11, 0)}
	leaves := []time.Time{at(9, 0), at(7, 0), at(12, 0)}

	tl := presence.Reconstruct(joins, leaves, nil)

	var total time.Duration
	for i, iv := range tl.Intervals {
		if iv.End.Before(iv.Start) {
			t.Errorf("interval %d inverted: %v", i, iv)
		}
		if i > 0 && tl.Intervals[i-1].End.After(iv.Start) {
			t.Errorf("intervals %d and %d overlap: %v, %v", i-1, i, tl.Intervals[i-1], iv)
		}
		total += iv.Duration()
	}
	if tl.Online != total {
		t.Errorf("Online = %v, want sum of intervals %v", tl.Online, total)
	}
}

func TestReconstruct_WindowClipping(t *testing.T) {
	// Reconstructed intervals (09:50, 10:05) and (10:10, 10:30) against
	// window (10:00, 10:20).
	joins := []time.Time{at(9, 50), at(10, 10)}
	leaves := []time.Time{at(10, 5), at(10, 30)}
	w := &presence.Window{Start: at(10, 0), End: at(10, 20)}

	tl := presence.Reconstruct(joins, leaves, w)

	want := []presence.Interval{
		{Start: at(10, 0), End: at(10, 5)},
		{Start: at(10, 10), End: at(10, 20)},
	}
	if !reflect.DeepEqual(tl.Intervals, want) {
		t.Errorf("Intervals = %v, want %v", tl.Intervals, want)
	}
	if tl.Online != 15*time.Minute {
		t.Errorf("Online = %v, want %v", tl.Online, 15*time.Minute)
	}
	if !tl.Overlapping {
		t.Error("Overlapping = false, want true")
	}
}

func TestReconstruct_WindowBoundaryTouch(t *testing.T) {
	// Presence ends exactly where the window starts: the closed-interval
	// test includes the user, but nothing survives clipping.
	joins := []time.Time{at(9, 0)}
	leaves := []time.Time{at(10, 0)}
	w := &presence.Window{Start: at(10, 0), End: at(11, 0)}

	tl := presence.Reconstruct(joins, leaves, w)

	if !tl.Overlapping {
		t.Error("Overlapping = false, want true (boundary touch counts)")
	}
	if len(tl.Intervals) != 0 {
		t.Errorf("Intervals = %v, want none", tl.Intervals)
	}
	if tl.Online != 0 {
		t.Errorf("Online = %v, want 0", tl.Online)
	}
}

func TestReconstruct_WindowDisjoint(t *testing.T) {
	joins := []time.Time{at(9, 0)}
	leaves := []time.Time{at(10, 0)}
	w := &presence.Window{Start: at(11, 0), End: at(12, 0)}

	tl := presence.Reconstruct(joins, leaves, w)

	if tl.Overlapping {
		t.Error("Overlapping = true, want false")
	}
	if len(tl.Intervals) != 0 || tl.Online != 0 {
		t.Errorf("Intervals/Online = %v/%v, want empty/0", tl.Intervals, tl.Online)
	}
}

func TestReconstruct_WindowOnlineNeverExceedsWindow(t *testing.T) {
	// Presence covers the window completely on both sides.
	joins := []time.Time{at(8, 0)}
	leaves := []time.Time{at(18, 0)}
	w := &presence.Window{Start: at(10, 0), End: at(11, 0)}

	tl := presence.Reconstruct(joins, leaves, w)

	if tl.Online != w.Duration() {
		t.Errorf("Online = %v, want full window %v", tl.Online, w.Duration())
	}
	if tl.Online > w.Duration() {
		t.Errorf("Online %v exceeds window length %v", tl.Online, w.Duration())
	}
}
