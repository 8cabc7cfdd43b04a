// Package parser extracts typed events from raw VRChat log lines.
//
// VRChat writes log lines in the form:
//
//	2024.01.15 23:59:59 Log        -  [Behaviour] OnPlayerJoined TestUser (usr_8d7fc2a5-...)
//
// The timestamp is the log's own naive local clock; there is no timezone
// information in the file.
package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/vrclog/presence-go/pkg/presence/event"
)

// TimestampLayout is the timestamp format VRChat uses at the start of
// every log line.
const TimestampLayout = "2006.01.02 15:04:05"

// Line patterns. The prefix between the timestamp and the [Behaviour] tag
// varies across client versions (log level word, padding), so it is matched
// lazily. The trailing space after OnPlayerJoined/OnPlayerLeft keeps
// OnPlayerJoinComplete and OnPlayerLeftRoom lines from matching.
var (
	playerJoinRe = regexp.MustCompile(`^(\d{4}\.\d{2}\.\d{2} \d{2}:\d{2}:\d{2}).*?\[Behaviour\] OnPlayerJoined (.+)$`)
	playerLeftRe = regexp.MustCompile(`^(\d{4}\.\d{2}\.\d{2} \d{2}:\d{2}:\d{2}).*?\[Behaviour\] OnPlayerLeft (.+)$`)
	worldJoinRe  = regexp.MustCompile(`^(\d{4}\.\d{2}\.\d{2} \d{2}:\d{2}:\d{2}).*?\[Behaviour\] Joining (wrld_[0-9a-fA-F-]+)(?::(\S+))?\s*$`)
	roomJoinRe   = regexp.MustCompile(`^(\d{4}\.\d{2}\.\d{2} \d{2}:\d{2}:\d{2}).*?\[Behaviour\] Joining or Creating Room: (.+)$`)

	// playerIDRe strips a trailing " (usr_...)" user ID from the remainder
	// of a player line. Display names may themselves contain parentheses,
	// so only the usr_ form is ever treated as an ID.
	playerIDRe = regexp.MustCompile(`^(.*) \((usr_[0-9a-fA-F-]+)\)$`)
)

// Parse parses a single VRChat log line.
//
// Return values:
//   - (*event.Event, nil): successfully parsed event
//   - (nil, nil): line doesn't match any known event pattern (not an error)
//   - (nil, error): line matches an event pattern but is malformed
func Parse(line string) (*event.Event, error) {
	if m := playerJoinRe.FindStringSubmatch(line); m != nil {
		return playerEvent(event.PlayerJoin, m[1], m[2])
	}
	if m := playerLeftRe.FindStringSubmatch(line); m != nil {
		return playerEvent(event.PlayerLeft, m[1], m[2])
	}
	if m := worldJoinRe.FindStringSubmatch(line); m != nil {
		ts, err := parseTimestamp(m[1])
		if err != nil {
			return nil, err
		}
		return &event.Event{
			Type:       event.WorldJoin,
			Timestamp:  ts,
			WorldID:    m[2],
			InstanceID: m[3],
		}, nil
	}
	if m := roomJoinRe.FindStringSubmatch(line); m != nil {
		ts, err := parseTimestamp(m[1])
		if err != nil {
			return nil, err
		}
		name := strings.TrimSpace(m[2])
		if name == "" {
			return nil, fmt.Errorf("room join without world name")
		}
		return &event.Event{
			Type:      event.RoomJoin,
			Timestamp: ts,
			WorldName: name,
		}, nil
	}
	return nil, nil
}

// playerEvent builds a player join/left event from the matched timestamp
// and the line remainder after the event keyword.
func playerEvent(t event.Type, ts, rest string) (*event.Event, error) {
	when, err := parseTimestamp(ts)
	if err != nil {
		return nil, err
	}

	name, id := splitPlayerID(rest)
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%s without player name", t)
	}

	return &event.Event{
		Type:       t,
		Timestamp:  when,
		PlayerName: name,
		PlayerID:   id,
	}, nil
}

// splitPlayerID separates a trailing user ID from a player name.
// Old log formats carry no ID, in which case the whole remainder is
// the display name and the returned ID is empty.
func splitPlayerID(rest string) (name, id string) {
	if m := playerIDRe.FindStringSubmatch(rest); m != nil {
		return m[1], m[2]
	}
	return rest, ""
}

// parseTimestamp parses the log timestamp in the log's own local clock.
// Timestamps are naive local time; analysis stays in the same frame.
func parseTimestamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimestampLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
