package presence

import "github.com/vrclog/presence-go/pkg/presence/event"

// Aliases for the event package, so callers of the library never need a
// second import to name an event or its type.

// Event is one parsed log event.
type Event = event.Event

// EventType names a kind of log event.
type EventType = event.Type

const (
	EventWorldJoin  = event.WorldJoin
	EventRoomJoin   = event.RoomJoin
	EventPlayerJoin = event.PlayerJoin
	EventPlayerLeft = event.PlayerLeft
)
