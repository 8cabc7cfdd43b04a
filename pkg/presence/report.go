package presence

import "time"

// UserPresence is one user's row in a query result.
type UserPresence struct {
	// Username is the display name exactly as it appeared in the log.
	Username string `json:"username"`

	// UserID is the reconciled user ID (or an unknown_ placeholder).
	UserID string `json:"user_id"`

	// JoinCount and LeaveCount are raw event counts for the user over the
	// whole log, before any windowing.
	JoinCount  int `json:"join_count"`
	LeaveCount int `json:"leave_count"`

	// Intervals are the user's presence spans; clipped to the query
	// window when one was supplied.
	Intervals []Interval `json:"intervals"`

	// Online is the total presence duration over Intervals.
	Online time.Duration `json:"online"`

	// FirstJoin is the earliest join and LastLeave the latest leave over
	// the whole log. Either is omitted when the user has no such event.
	FirstJoin time.Time `json:"first_join,omitzero"`
	LastLeave time.Time `json:"last_leave,omitzero"`

	// PresentAtEnd is true when the user had no closing leave: they were
	// still in the instance when the log ended.
	PresentAtEnd bool `json:"present_at_end"`

	// Absorbed data-quality anomalies, surfaced for diagnostics.
	DuplicateJoins int `json:"duplicate_joins,omitempty"`
	OrphanLeaves   int `json:"orphan_leaves,omitempty"`
}

// Report is a full analysis result.
type Report struct {
	// Users holds one entry per user with presence overlapping the query,
	// ordered case-insensitively by username (raw-byte tiebreak). The
	// ordering is total, so it is identical regardless of parallelism.
	Users []UserPresence `json:"users"`

	// TotalJoinEvents and TotalLeaveEvents sum the per-user counts over
	// every observed user, including users the query excluded.
	TotalJoinEvents  int `json:"total_join_events"`
	TotalLeaveEvents int `json:"total_leave_events"`

	// Window is the query window, when one was supplied.
	Window *Window `json:"window,omitempty"`
}

// TotalUsers returns the number of users in the result set.
func (r *Report) TotalUsers() int {
	return len(r.Users)
}

// OnlineNow returns the users still present at the end of the log,
// preserving report order.
func (r *Report) OnlineNow() []UserPresence {
	var online []UserPresence
	for _, u := range r.Users {
		if u.PresentAtEnd {
			online = append(online, u)
		}
	}
	return online
}
