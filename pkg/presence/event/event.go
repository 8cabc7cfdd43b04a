// Package event defines the event vocabulary shared by the log parser
// and the presence library.
//
// It sits below both pkg/presence and internal/parser so the parser can
// emit events without importing the analysis code.
package event

import (
	"slices"
	"strings"
	"time"
)

// Type names a kind of log event.
type Type string

const (
	// WorldJoin records the client entering a world instance.
	WorldJoin Type = "world_join"

	// RoomJoin records the client resolving the display name of the
	// world it is entering ("Joining or Creating Room" lines).
	RoomJoin Type = "room_join"

	// PlayerJoin records another player entering the instance.
	PlayerJoin Type = "player_join"

	// PlayerLeft records another player leaving the instance.
	PlayerLeft Type = "player_left"
)

// typeNames holds every valid name in sorted order.
var typeNames = []string{
	string(PlayerJoin),
	string(PlayerLeft),
	string(RoomJoin),
	string(WorldJoin),
}

// TypeNames returns every valid event type name in sorted order.
func TypeNames() []string {
	return slices.Clone(typeNames)
}

// ParseType maps a name to its Type. Matching ignores case and
// surrounding whitespace.
func ParseType(name string) (Type, bool) {
	switch Type(strings.ToLower(strings.TrimSpace(name))) {
	case WorldJoin:
		return WorldJoin, true
	case RoomJoin:
		return RoomJoin, true
	case PlayerJoin:
		return PlayerJoin, true
	case PlayerLeft:
		return PlayerLeft, true
	}
	return "", false
}

// IsPlayer reports whether the type is a per-player presence event, a
// join or a leave. World and room events describe the instance and never
// contribute to presence timelines.
func (t Type) IsPlayer() bool {
	return t == PlayerJoin || t == PlayerLeft
}

// Event is one parsed log line.
type Event struct {
	Type Type `json:"type"`

	// Timestamp carries the log's own wall clock, parsed as local time.
	Timestamp time.Time `json:"timestamp"`

	// PlayerName is the display name on player join/left lines.
	PlayerName string `json:"player_name,omitempty"`

	// PlayerID is the usr_ identifier when the log carries one. Older
	// client versions wrote none.
	PlayerID string `json:"player_id,omitempty"`

	// WorldID is the wrld_ identifier on world join lines.
	WorldID string `json:"world_id,omitempty"`

	// WorldName is the world's display name on room join lines.
	WorldName string `json:"world_name,omitempty"`

	// InstanceID is the instance part of a world join target, the text
	// after the colon in "wrld_xxx:12345~region(jp)".
	InstanceID string `json:"instance_id,omitempty"`

	// RawLine is the unparsed source line, populated only on request.
	RawLine string `json:"raw_line,omitempty"`
}
