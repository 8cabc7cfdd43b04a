package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vrclog/presence-go/internal/logfinder"
	"github.com/vrclog/presence-go/internal/parser"
	"github.com/vrclog/presence-go/pkg/presence"
)

// tableTime is the timestamp layout used in table output.
const tableTime = "2006-01-02 15:04:05"

var (
	// analyze flags
	analyzeLogDir   string
	analyzeLatest   bool
	analyzeFrom     string
	analyzeTo       string
	analyzeFormat   string
	analyzeParallel int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [files...]",
	Short: "Analyze logs into a per-user presence report",
	Long: `Reconstruct per-user presence from VRChat log files.

For every player seen in the logs, the report shows how often they
joined and left, their total online time, and whether they were still
present when the log ended. Events from all files are merged before
reconstruction, so presence that spans a client restart is counted
correctly.

Examples:
  # Report over all logs in the auto-detected directory
  vrcpresence analyze

  # Only the most recent log file
  vrcpresence analyze --latest

  # Restrict to a time window (online time is clipped to it)
  vrcpresence analyze --from "2024-01-15T12:00:00" --to "2024-01-16T00:00:00"

  # Machine-readable output
  vrcpresence analyze --format json

  # Specific files
  vrcpresence analyze output_log_2024-01-15.txt`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeLogDir, "log-dir", "d", "",
		"VRChat log directory (auto-detected if not specified)")
	analyzeCmd.Flags().BoolVar(&analyzeLatest, "latest", false,
		"Analyze only the most recent log file")
	analyzeCmd.Flags().StringVar(&analyzeFrom, "from", "",
		"Window start (local time, e.g., 2024-01-15T12:00:00)")
	analyzeCmd.Flags().StringVar(&analyzeTo, "to", "",
		"Window end (local time)")
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "table",
		"Output format: table, json")
	analyzeCmd.Flags().IntVar(&analyzeParallel, "parallel", 0,
		"Max concurrent per-user reconstructions (0 = number of CPUs)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analyzeFormat != "table" && analyzeFormat != "json" {
		return fmt.Errorf("invalid format %q: must be one of: table, json", analyzeFormat)
	}

	window, err := parseWindowFlags(analyzeFrom, analyzeTo)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := newLogger()

	events, err := collectEvents(ctx, args, analyzeLogDir, analyzeLatest)
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	log.Debug("events collected", "count", len(events))

	var opts []presence.AnalyzeOption
	if window != nil {
		opts = append(opts, presence.WithWindow(window.Start, window.End))
	}
	if analyzeParallel > 0 {
		opts = append(opts, presence.WithParallelism(analyzeParallel))
	}

	report, err := presence.Analyze(events, opts...)
	if err != nil {
		return err
	}

	if analyzeFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return writeReportTable(report, os.Stdout)
}

// collectEvents gathers events from explicit files, the latest log, or
// every log in the directory, in chronological order.
func collectEvents(ctx context.Context, paths []string, logDir string, latest bool) ([]presence.Event, error) {
	if latest {
		if len(paths) > 0 {
			return nil, errors.New("--latest cannot be combined with explicit files")
		}
		path, err := logfinder.LatestLogFile(logDir)
		if err != nil {
			return nil, err
		}
		return presence.ParseFileAll(ctx, path)
	}

	var opts []presence.ParseDirOption
	if logDir != "" {
		opts = append(opts, presence.WithDirLogDir(logDir))
	}
	if len(paths) > 0 {
		opts = append(opts, presence.WithDirPaths(paths...))
	}

	var events []presence.Event
	for ev, err := range presence.ParseDir(ctx, opts...) {
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

// parseWindowFlags turns --from/--to into a window. Both must be given
// together; accepted layouts are local wall-clock time and RFC 3339.
func parseWindowFlags(from, to string) (*presence.Window, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	if from == "" || to == "" {
		return nil, errors.New("--from and --to must be given together")
	}

	start, err := parseWallClock(from)
	if err != nil {
		return nil, fmt.Errorf("invalid --from: %w", err)
	}
	end, err := parseWallClock(to)
	if err != nil {
		return nil, fmt.Errorf("invalid --to: %w", err)
	}

	w := &presence.Window{Start: start, End: end}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

func parseWallClock(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05", parser.TimestampLayout, time.RFC3339} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q (expected e.g. 2024-01-15T12:00:00)", s)
}

// writeReportTable renders the report as an aligned text table.
func writeReportTable(report *presence.Report, w io.Writer) error {
	if report.Window != nil {
		fmt.Fprintf(w, "Window: %s to %s\n\n",
			report.Window.Start.Format(tableTime),
			report.Window.End.Format(tableTime))
	}

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "USERNAME\tUSER ID\tJOINS\tLEAVES\tONLINE\tFIRST JOIN\tLAST LEAVE")

	stillPresent := false
	for _, u := range report.Users {
		online := u.Online.Round(time.Second).String()
		if u.PresentAtEnd {
			online += " *"
			stillPresent = true
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			u.Username, u.UserID, u.JoinCount, u.LeaveCount, online,
			formatTableTime(u.FirstJoin), formatTableTime(u.LastLeave))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d users, %d joins, %d leaves\n",
		report.TotalUsers(), report.TotalJoinEvents, report.TotalLeaveEvents)
	if stillPresent {
		fmt.Fprintln(w, "* still present at end of log")
	}
	return nil
}

func formatTableTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(tableTime)
}
