package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vrclog/presence-go/pkg/presence"
)

var (
	sessionsLogDir string
	sessionsLatest bool
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions [files...]",
	Short: "List world sessions found in the logs",
	Long: `Group log events into world sessions: one row per world visit,
with when it started, how long it lasted, and who was seen there.

Examples:
  # Sessions across all logs
  vrcpresence sessions

  # Only the most recent log file
  vrcpresence sessions --latest`,
	RunE: runSessions,
}

func init() {
	sessionsCmd.Flags().StringVarP(&sessionsLogDir, "log-dir", "d", "",
		"VRChat log directory (auto-detected if not specified)")
	sessionsCmd.Flags().BoolVar(&sessionsLatest, "latest", false,
		"Use only the most recent log file")
}

func runSessions(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	events, err := collectEvents(ctx, args, sessionsLogDir, sessionsLatest)
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return nil
		}
		return err
	}

	sessions := presence.Sessions(events)
	if len(sessions) == 0 {
		fmt.Println("No sessions found.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "START\tDURATION\tWORLD\tPLAYERS")
	for _, sess := range sessions {
		world := sess.WorldName
		if world == "" {
			world = sess.WorldID
		}
		if world == "" {
			world = "(unknown)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			sess.Start.Format(tableTime),
			sess.Duration().Round(time.Second),
			world,
			strings.Join(sess.Players(), ", "))
	}
	return tw.Flush()
}
