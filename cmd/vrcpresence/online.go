package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vrclog/presence-go/pkg/presence"
)

var onlineLogDir string

var onlineCmd = &cobra.Command{
	Use:   "online [files...]",
	Short: "Show who is present in the latest log",
	Long: `List the players still present at the end of the most recent
VRChat log file, with the time they came online. With explicit files,
list who was present when those logs ended instead.

The client only writes logs while it runs, so "present at end of log"
means present right now when VRChat is still open.`,
	RunE: runOnline,
}

func init() {
	onlineCmd.Flags().StringVarP(&onlineLogDir, "log-dir", "d", "",
		"VRChat log directory (auto-detected if not specified)")
}

func runOnline(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	events, err := collectEvents(ctx, args, onlineLogDir, len(args) == 0)
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return nil
		}
		return err
	}

	report, err := presence.Analyze(events)
	if err != nil {
		return err
	}

	online := report.OnlineNow()
	if len(online) == 0 {
		fmt.Println("No one online.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "USERNAME\tONLINE SINCE")
	for _, u := range online {
		since := "-"
		if len(u.Intervals) > 0 {
			since = u.Intervals[len(u.Intervals)-1].Start.Format(tableTime)
		}
		fmt.Fprintf(tw, "%s\t%s\n", u.Username, since)
	}
	return tw.Flush()
}
