package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vrclog/presence-go/internal/extract"
	"github.com/vrclog/presence-go/internal/logfinder"
)

var (
	extractPattern string
	extractLogDir  string
	extractOutput  string
)

var extractCmd = &cobra.Command{
	Use:   "extract [files...]",
	Short: "Copy raw log lines matching a pattern",
	Long: `Copy every log line matching a regular expression, unchanged.

Useful for pulling lines the event parser does not recognize, e.g.
video player URLs or avatar switches. Without file arguments the most
recent log file is searched.

Examples:
  # All video URLs from the current session
  vrcpresence extract --pattern "Video Playback"

  # Write matches to a file
  vrcpresence extract --pattern "OnPlayerJoined" --output joins.txt

  # Search specific files
  vrcpresence extract --pattern "usr_1234" output_log_2024-01-15.txt`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractPattern, "pattern", "p", "",
		"Regular expression to match (required)")
	extractCmd.Flags().StringVarP(&extractLogDir, "log-dir", "d", "",
		"VRChat log directory (auto-detected if not specified)")
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "",
		"Write matches to this file instead of stdout")
	_ = extractCmd.MarkFlagRequired("pattern")
}

func runExtract(cmd *cobra.Command, args []string) error {
	re, err := regexp.Compile(extractPattern)
	if err != nil {
		return fmt.Errorf("invalid --pattern: %w", err)
	}

	paths := args
	if len(paths) == 0 {
		latest, err := logfinder.LatestLogFile(extractLogDir)
		if err != nil {
			return err
		}
		paths = []string{latest}
	}

	var out io.Writer = os.Stdout
	if extractOutput != "" {
		f, err := os.Create(extractOutput)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ex := &extract.Extractor{Pattern: re}
	total := 0
	for _, path := range paths {
		n, err := ex.File(ctx, path, out)
		if err != nil {
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				return nil
			}
			return err
		}
		total += n
	}

	fmt.Fprintf(os.Stderr, "%d matching lines\n", total)
	return nil
}
