package presence

import (
	"sort"
	"strings"
	"time"
)

// Session is one world visit: the span from a world join to the next one
// (or the last observed event), with the player events that occurred in
// it.
type Session struct {
	WorldID    string    `json:"world_id,omitempty"`
	WorldName  string    `json:"world_name,omitempty"`
	InstanceID string    `json:"instance_id,omitempty"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`

	// Events are the player join/leave events inside the session, in
	// input order.
	Events []Event `json:"events,omitempty"`
}

// Duration returns the session length.
func (s Session) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Players returns the distinct player names seen in the session, sorted
// case-insensitively (raw-byte tiebreak).
func (s Session) Players() []string {
	seen := make(map[string]struct{}, len(s.Events))
	names := make([]string, 0, len(s.Events))
	for _, ev := range s.Events {
		if _, ok := seen[ev.PlayerName]; ok {
			continue
		}
		seen[ev.PlayerName] = struct{}{}
		names = append(names, ev.PlayerName)
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

// roomNameGrace is how long after a world_join a room_join may still name
// the pending session instead of opening a new one. The client logs the
// world ID and the display name as separate lines moments apart.
const roomNameGrace = 10 * time.Second

// Sessions segments an event stream into world visits.
//
// A world_join opens a session. A room_join within roomNameGrace of an
// unnamed open session supplies its display name; otherwise it opens a
// session of its own (old logs sometimes carry only room lines). Player
// events are attributed to the session open at their position in the
// stream; events before the first world line have no session and are
// dropped. The final session closes at the last observed event instant.
func Sessions(events []Event) []Session {
	var sessions []Session
	var cur *Session
	var lastSeen time.Time

	for _, ev := range events {
		if ev.Timestamp.After(lastSeen) {
			lastSeen = ev.Timestamp
		}

		switch ev.Type {
		case EventWorldJoin:
			if cur != nil {
				cur.End = ev.Timestamp
				sessions = append(sessions, *cur)
			}
			cur = &Session{
				WorldID:    ev.WorldID,
				InstanceID: ev.InstanceID,
				Start:      ev.Timestamp,
			}

		case EventRoomJoin:
			if cur != nil && cur.WorldName == "" && !ev.Timestamp.After(cur.Start.Add(roomNameGrace)) {
				cur.WorldName = ev.WorldName
				continue
			}
			if cur != nil {
				cur.End = ev.Timestamp
				sessions = append(sessions, *cur)
			}
			cur = &Session{
				WorldName: ev.WorldName,
				Start:     ev.Timestamp,
			}

		default:
			if cur != nil && ev.Type.IsPlayer() {
				cur.Events = append(cur.Events, ev)
			}
		}
	}

	if cur != nil {
		cur.End = lastSeen
		sessions = append(sessions, *cur)
	}
	return sessions
}
