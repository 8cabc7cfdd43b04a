package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Populated through -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	verbose bool
	logJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "vrcpresence",
	Short: "VRChat presence analyzer",
	Long: `vrcpresence reconstructs who was in your VRChat instance and for
how long, from the client's own log files.

It can analyze historical logs into per-user presence reports, show who
is still online in the latest log, list world sessions, stream raw
events as JSON Lines, and serve the analyzer as a small web app.

This is an unofficial tool and is not affiliated with VRChat Inc.`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	pf.BoolVar(&logJSON, "log-json", false, "Log as JSON Lines instead of human-readable text")

	rootCmd.AddCommand(
		analyzeCmd,
		onlineCmd,
		sessionsCmd,
		eventsCmd,
		extractCmd,
		serveCmd,
		versionCmd,
	)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("vrcpresence %s (commit %s, built %s)\n", version, commit, date)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
