package presence

import "time"

// UserLog holds the raw join/leave instants observed for one user.
// The sequences are append-ordered as events arrive; chronological
// ordering is established later by Reconstruct, which tolerates
// out-of-order input. A UserLog is only mutated during Normalize and is
// read-only afterward.
type UserLog struct {
	// Username is the display name exactly as it appeared in the log.
	Username string

	// UserID is the best-effort stable identifier for the user: the most
	// frequently observed non-empty ID, or a synthesized placeholder when
	// no event carried one.
	UserID string

	// Joins and Leaves hold event instants in input order.
	Joins  []time.Time
	Leaves []time.Time
}

// PlaceholderID returns the synthesized user ID assigned when no event
// for the user carried a real one.
func PlaceholderID(username string) string {
	return "unknown_" + username
}

// Normalize groups player join/leave events by username and reconciles a
// stable user ID per user.
//
// Grouping is case-sensitive: usernames are taken verbatim as matched
// upstream, so "Alice" and "alice" are distinct users. Non-player events
// (world/room joins) are ignored. There are no error conditions; an empty
// input yields an empty, non-nil map.
func Normalize(events []Event) map[string]*UserLog {
	users := make(map[string]*UserLog)

	// Per-user ID observations for reconciliation. Order remembers the
	// first time each distinct ID was seen, for deterministic tie-breaks.
	idCounts := make(map[string]map[string]int)
	idOrder := make(map[string][]string)

	for _, ev := range events {
		if !ev.Type.IsPlayer() {
			continue
		}

		log := users[ev.PlayerName]
		if log == nil {
			log = &UserLog{Username: ev.PlayerName}
			users[ev.PlayerName] = log
		}

		switch ev.Type {
		case EventPlayerJoin:
			log.Joins = append(log.Joins, ev.Timestamp)
		case EventPlayerLeft:
			log.Leaves = append(log.Leaves, ev.Timestamp)
		}

		if ev.PlayerID != "" {
			counts := idCounts[ev.PlayerName]
			if counts == nil {
				counts = make(map[string]int)
				idCounts[ev.PlayerName] = counts
			}
			if _, seen := counts[ev.PlayerID]; !seen {
				idOrder[ev.PlayerName] = append(idOrder[ev.PlayerName], ev.PlayerID)
			}
			counts[ev.PlayerID]++
		}
	}

	for name, log := range users {
		log.UserID = settleID(name, idCounts[name], idOrder[name])
	}

	return users
}

// settleID picks the most frequently observed ID; ties are broken by
// first-seen order (iteration follows the observation order, and a later
// ID must be strictly more frequent to displace an earlier one).
func settleID(username string, counts map[string]int, order []string) string {
	best, bestCount := "", 0
	for _, id := range order {
		if c := counts[id]; c > bestCount {
			best, bestCount = id, c
		}
	}
	if best == "" {
		return PlaceholderID(username)
	}
	return best
}
