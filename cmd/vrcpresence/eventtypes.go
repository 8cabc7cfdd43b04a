package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vrclog/presence-go/pkg/presence"
	"github.com/vrclog/presence-go/pkg/presence/event"
)

// typeList renders the known event types for error messages and help text.
func typeList() string {
	return strings.Join(event.TypeNames(), ", ")
}

// normalizeEventTypes turns raw --include-types/--exclude-types values into
// event types. Matching is case-insensitive, surrounding whitespace is
// ignored, and repeated values collapse to one.
func normalizeEventTypes(values []string) ([]presence.EventType, error) {
	if len(values) == 0 {
		return nil, nil
	}

	var types []presence.EventType
	for _, raw := range values {
		t, ok := event.ParseType(raw)
		if !ok {
			if strings.TrimSpace(raw) == "" {
				return nil, fmt.Errorf("event type must not be empty (valid types: %s)", typeList())
			}
			return nil, fmt.Errorf("unknown event type %q (valid types: %s)", raw, typeList())
		}
		if !slices.Contains(types, t) {
			types = append(types, t)
		}
	}
	return types, nil
}

// rejectOverlap rejects filter sets that include and exclude the same type.
func rejectOverlap(includes, excludes []presence.EventType) error {
	for _, t := range includes {
		if slices.Contains(excludes, t) {
			return fmt.Errorf("event type %q appears in both --include-types and --exclude-types", t)
		}
	}
	return nil
}
