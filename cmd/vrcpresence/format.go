package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vrclog/presence-go/pkg/presence"
)

// ValidFormats lists the accepted values for the events --format flag.
var ValidFormats = map[string]bool{
	"jsonl":  true,
	"pretty": true,
}

// OutputEvent writes a single event to w in the given format.
func OutputEvent(format string, ev presence.Event, w io.Writer) error {
	switch format {
	case "jsonl":
		return OutputJSON(ev, w)
	case "pretty":
		return OutputPretty(ev, w)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// OutputJSON writes the event as a single JSON line.
func OutputJSON(ev presence.Event, w io.Writer) error {
	return json.NewEncoder(w).Encode(ev)
}

// OutputPretty writes the event in a human-readable one-line form.
func OutputPretty(ev presence.Event, w io.Writer) error {
	ts := ev.Timestamp.Format("15:04:05")

	var line string
	switch ev.Type {
	case presence.EventPlayerJoin:
		line = fmt.Sprintf("%s + %s joined", ts, ev.PlayerName)
	case presence.EventPlayerLeft:
		line = fmt.Sprintf("%s - %s left", ts, ev.PlayerName)
	case presence.EventWorldJoin:
		line = fmt.Sprintf("%s > Joined world: %s", ts, ev.WorldID)
		if ev.InstanceID != "" {
			line += " (instance " + ev.InstanceID + ")"
		}
	case presence.EventRoomJoin:
		line = fmt.Sprintf("%s > Joined room: %s", ts, ev.WorldName)
	default:
		line = fmt.Sprintf("%s ? %s", ts, ev.Type)
	}

	_, err := fmt.Fprintln(w, line)
	return err
}
