package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vrclog/presence-go/pkg/presence"
)

var (
	// events flags
	eventsLogDir       string
	eventsIncludeTypes []string
	eventsExcludeTypes []string
	eventsSince        string
	eventsUntil        string
	eventsFormat       string
	eventsRaw          bool
	eventsStopOnError  bool
)

var eventsCmd = &cobra.Command{
	Use:   "events [files...]",
	Short: "Stream raw events from VRChat log files",
	Long: `Parse VRChat log files and print every recognized event.

Files are read in chronological order (oldest first). Events are output
as JSON Lines by default for easy processing with other tools.

Examples:
  # All events from the auto-detected log directory
  vrcpresence events

  # Specify the log directory
  vrcpresence events --log-dir "C:\Users\me\AppData\LocalLow\VRChat\VRChat"

  # Filter by time range (useful for multi-day queries)
  vrcpresence events --since "2024-01-15T12:00:00Z" --until "2024-01-16T00:00:00Z"

  # Filter by event type
  vrcpresence events --include-types player_join,player_left

  # Human-readable output
  vrcpresence events --format pretty

  # Specific files
  vrcpresence events output_log_2024-01-15.txt output_log_2024-01-16.txt

  # Pipe to jq for filtering
  vrcpresence events | jq 'select(.type == "world_join")'`,
	RunE: runEvents,
}

func init() {
	eventsCmd.Flags().StringVarP(&eventsLogDir, "log-dir", "d", "",
		"VRChat log directory (auto-detected if not specified)")
	eventsCmd.Flags().StringSliceVar(&eventsIncludeTypes, "include-types", nil,
		"Event types to keep (comma-separated: "+typeList()+")")
	eventsCmd.Flags().StringSliceVar(&eventsExcludeTypes, "exclude-types", nil,
		"Event types to drop (comma-separated)")
	eventsCmd.Flags().StringVar(&eventsSince, "since", "",
		"Keep events at or after this RFC3339 timestamp")
	eventsCmd.Flags().StringVar(&eventsUntil, "until", "",
		"Keep events before this RFC3339 timestamp")
	eventsCmd.Flags().StringVarP(&eventsFormat, "format", "f", "jsonl",
		"Output format: jsonl, pretty")
	eventsCmd.Flags().BoolVar(&eventsRaw, "raw", false,
		"Carry the raw log line in each event")
	eventsCmd.Flags().BoolVar(&eventsStopOnError, "stop-on-error", false,
		"Stop at the first malformed line instead of skipping it")

	_ = eventsCmd.RegisterFlagCompletionFunc("include-types", completeEventTypes("include-types"))
	_ = eventsCmd.RegisterFlagCompletionFunc("exclude-types", completeEventTypes("exclude-types"))
}

func runEvents(cmd *cobra.Command, args []string) error {
	if !ValidFormats[eventsFormat] {
		return fmt.Errorf("invalid format %q (valid: jsonl, pretty)", eventsFormat)
	}

	includes, err := normalizeEventTypes(eventsIncludeTypes)
	if err != nil {
		return err
	}
	excludes, err := normalizeEventTypes(eventsExcludeTypes)
	if err != nil {
		return err
	}
	if err := rejectOverlap(includes, excludes); err != nil {
		return err
	}

	sinceTime, untilTime, err := parseTimeRange(eventsSince, eventsUntil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var opts []presence.ParseDirOption
	if eventsLogDir != "" {
		opts = append(opts, presence.WithDirLogDir(eventsLogDir))
	}
	if len(args) > 0 {
		opts = append(opts, presence.WithDirPaths(args...))
	}
	if len(includes) > 0 {
		opts = append(opts, presence.WithDirIncludeTypes(includes...))
	}
	if len(excludes) > 0 {
		opts = append(opts, presence.WithDirExcludeTypes(excludes...))
	}
	if !sinceTime.IsZero() || !untilTime.IsZero() {
		opts = append(opts, presence.WithDirTimeRange(sinceTime, untilTime))
	}
	if eventsRaw {
		opts = append(opts, presence.WithDirIncludeRawLine(true))
	}
	if eventsStopOnError {
		opts = append(opts, presence.WithDirStopOnError(true))
	}

	for ev, err := range presence.ParseDir(ctx, opts...) {
		if err != nil {
			// Ctrl+C: exit silently
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("parse error: %w", err)
		}
		if err := OutputEvent(eventsFormat, ev, os.Stdout); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}
	return nil
}

// parseTimeRange turns the --since/--until values into bounds. Either
// side may be empty, leaving that side open.
func parseTimeRange(since, until string) (time.Time, time.Time, error) {
	parseBound := func(flag, v string) (time.Time, error) {
		if v == "" {
			return time.Time{}, nil
		}
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, fmt.Errorf("%s wants an RFC3339 timestamp such as 2024-01-15T12:00:00Z, got %q", flag, v)
		}
		return ts, nil
	}

	sinceTime, err := parseBound("--since", since)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	untilTime, err := parseBound("--until", until)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !sinceTime.IsZero() && !untilTime.IsZero() && sinceTime.After(untilTime) {
		return time.Time{}, time.Time{}, errors.New("--since must be before --until")
	}
	return sinceTime, untilTime, nil
}
