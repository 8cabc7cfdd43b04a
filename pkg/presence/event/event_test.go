package event

import (
	"slices"
	"testing"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in     string
		want   Type
		wantOK bool
	}{
		{"world_join", WorldJoin, true},
		{"room_join", RoomJoin, true},
		{"player_join", PlayerJoin, true},
		{"player_left", PlayerLeft, true},
		{"WORLD_JOIN", WorldJoin, true},
		{"Player_Left", PlayerLeft, true},
		{"  room_join  ", RoomJoin, true},
		{"\tplayer_join\t", PlayerJoin, true},
		{"", "", false},
		{"   ", "", false},
		{"player join", "", false},
		{"player_jion", "", false},
		{"video_play", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseType(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseType(%q) = (%q, %v), want (%q, %v)",
				tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestTypeNames(t *testing.T) {
	names := TypeNames()
	want := []string{"player_join", "player_left", "room_join", "world_join"}
	if !slices.Equal(names, want) {
		t.Fatalf("TypeNames() = %v, want %v", names, want)
	}

	// Every listed name parses back to itself.
	for _, name := range names {
		typ, ok := ParseType(name)
		if !ok || string(typ) != name {
			t.Errorf("ParseType(%q) = (%q, %v), want the name back", name, typ, ok)
		}
	}

	// Callers get their own copy.
	names[0] = "mutated"
	if got := TypeNames(); got[0] != "player_join" {
		t.Errorf("TypeNames() after caller mutation = %v", got)
	}
}

func TestTypeIsPlayer(t *testing.T) {
	tests := []struct {
		typ  Type
		want bool
	}{
		{PlayerJoin, true},
		{PlayerLeft, true},
		{WorldJoin, false},
		{RoomJoin, false},
		{Type("unknown"), false},
	}

	for _, tt := range tests {
		if got := tt.typ.IsPlayer(); got != tt.want {
			t.Errorf("Type(%q).IsPlayer() = %v, want %v", tt.typ, got, tt.want)
		}
	}
}
