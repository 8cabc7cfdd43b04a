package presence

import (
	"sort"
	"time"
)

// Interval is one contiguous presence span. Start <= End always holds.
// Zero-length intervals are legal: a user whose only event is a join has
// an interval that opens and closes at the same instant.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the interval length.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Timeline is the reconstructed presence of a single user.
type Timeline struct {
	// Intervals are pairwise disjoint and sorted ascending by start.
	// When a window was supplied they are already clipped to it.
	Intervals []Interval

	// Online is the total duration over Intervals (clipped when windowed).
	Online time.Duration

	// OpenAtEnd is true when the user never logged a closing leave. The
	// final interval is then bounded by the last observed event instant,
	// never the wall clock; the analysis is retrospective.
	OpenAtEnd bool

	// Overlapping is true when at least one reconstructed interval
	// overlaps the query window (closed-interval test). Without a window
	// it means the user has at least one interval. A user can be
	// Overlapping with zero clipped intervals when their presence only
	// touches a window boundary.
	Overlapping bool

	// DuplicateJoins and OrphanLeaves count absorbed data-quality noise:
	// joins while already present and leaves with nothing open to close.
	// Partial logs make these common; they never change the intervals.
	DuplicateJoins int
	OrphanLeaves   int
}

// Reconstruct builds the presence timeline for one user from its join and
// leave instants. The inputs may be unordered and mutually inconsistent:
// both sequences are sorted internally (on copies), duplicate joins and
// orphan leaves are absorbed and counted, and a presence still open when
// the stream ends is closed at the last observed event instant.
//
// A non-nil window selects and clips the result as described on Timeline.
// The function is pure and safe to call concurrently for independent
// users; identical inputs always produce identical output.
func Reconstruct(joins, leaves []time.Time, w *Window) Timeline {
	if len(joins) == 0 && len(leaves) == 0 {
		return Timeline{}
	}

	joins = sortedInstants(joins)
	leaves = sortedInstants(leaves)

	var tl Timeline
	var intervals []Interval
	var openStart time.Time
	present := false

	// Merged chronological walk. At equal timestamps the join side is
	// consumed first, so a leave/re-join pair at the same instant never
	// fabricates a zero-length absence.
	i, j := 0, 0
	for i < len(joins) || j < len(leaves) {
		takeJoin := j >= len(leaves) || (i < len(joins) && !joins[i].After(leaves[j]))
		if takeJoin {
			if present {
				tl.DuplicateJoins++
			} else {
				openStart = joins[i]
				present = true
			}
			i++
		} else {
			if present {
				intervals = append(intervals, Interval{Start: openStart, End: leaves[j]})
				present = false
			} else {
				tl.OrphanLeaves++
			}
			j++
		}
	}

	if present {
		intervals = append(intervals, Interval{Start: openStart, End: lastInstant(joins, leaves)})
		tl.OpenAtEnd = true
	}

	if w == nil {
		tl.Intervals = intervals
		for _, iv := range intervals {
			tl.Online += iv.Duration()
		}
		tl.Overlapping = len(intervals) > 0
		return tl
	}

	for _, iv := range intervals {
		if w.Overlaps(iv) {
			tl.Overlapping = true
		}
		if clipped, ok := w.Clip(iv); ok {
			tl.Intervals = append(tl.Intervals, clipped)
			tl.Online += clipped.Duration()
		}
	}
	return tl
}

// sortedInstants returns an ascending copy, leaving the input untouched.
func sortedInstants(ts []time.Time) []time.Time {
	out := make([]time.Time, len(ts))
	copy(out, ts)
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// lastInstant returns the latest instant across both sorted sequences.
// Only called while present, so joins is never empty.
func lastInstant(joins, leaves []time.Time) time.Time {
	last := joins[len(joins)-1]
	if len(leaves) > 0 && leaves[len(leaves)-1].After(last) {
		last = leaves[len(leaves)-1]
	}
	return last
}
