package presence

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Analyze runs the full presence pipeline over an event set: normalize
// into per-user logs, reconstruct every user's timeline, and assemble an
// ordered Report.
//
// With WithWindow, only users whose presence overlaps the window appear
// in the result (closed-interval test; a boundary touch counts, possibly
// with zero online time), and intervals are clipped to the window.
// Without a window every user with at least one presence interval
// appears. Users with no joins at all (orphan leaves only) never appear.
//
// Reconstruction runs concurrently across users, bounded by
// WithParallelism; the per-user computation shares no state, and the
// result ordering is deterministic either way.
//
// The only error condition is an invalid window (ErrInvalidWindow).
// An empty event set is not an error and yields an empty Report.
func Analyze(events []Event, opts ...AnalyzeOption) (*Report, error) {
	cfg := applyAnalyzeOptions(opts)

	if cfg.window != nil {
		if err := cfg.window.Validate(); err != nil {
			return nil, err
		}
	}

	users := Normalize(events)

	report := &Report{Window: cfg.window}
	for _, log := range users {
		report.TotalJoinEvents += len(log.Joins)
		report.TotalLeaveEvents += len(log.Leaves)
	}

	names := sortedUsernames(users)

	// One pre-assigned slot per user keeps collection lock-free and the
	// output order independent of goroutine scheduling.
	results := make([]*UserPresence, len(names))

	var g errgroup.Group
	g.SetLimit(cfg.parallelism)
	for idx, name := range names {
		g.Go(func() error {
			log := users[name]
			tl := Reconstruct(log.Joins, log.Leaves, cfg.window)
			if !tl.Overlapping {
				return nil
			}

			up := &UserPresence{
				Username:       log.Username,
				UserID:         log.UserID,
				JoinCount:      len(log.Joins),
				LeaveCount:     len(log.Leaves),
				Intervals:      tl.Intervals,
				Online:         tl.Online,
				PresentAtEnd:   tl.OpenAtEnd,
				DuplicateJoins: tl.DuplicateJoins,
				OrphanLeaves:   tl.OrphanLeaves,
			}
			if len(log.Joins) > 0 {
				up.FirstJoin = earliest(log.Joins)
			}
			if len(log.Leaves) > 0 {
				up.LastLeave = latest(log.Leaves)
			}

			results[idx] = up
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.Users = make([]UserPresence, 0, len(results))
	for _, up := range results {
		if up != nil {
			report.Users = append(report.Users, *up)
		}
	}
	return report, nil
}

// sortedUsernames orders map keys case-insensitively with a raw-byte
// tiebreak so the ordering is total ("Alice" and "alice" always land in
// the same relative order).
func sortedUsernames(users map[string]*UserLog) []string {
	names := make([]string, 0, len(users))
	for name := range users {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := strings.ToLower(names[i]), strings.ToLower(names[j])
		if a != b {
			return a < b
		}
		return names[i] < names[j]
	})
	return names
}

// earliest returns the minimum instant of a non-empty, possibly unsorted
// sequence.
func earliest(ts []time.Time) time.Time {
	m := ts[0]
	for _, t := range ts[1:] {
		if t.Before(m) {
			m = t
		}
	}
	return m
}

// latest returns the maximum instant of a non-empty, possibly unsorted
// sequence.
func latest(ts []time.Time) time.Time {
	m := ts[0]
	for _, t := range ts[1:] {
		if t.After(m) {
			m = t
		}
	}
	return m
}
