package presence

import (
	"bufio"
	"context"
	"errors"
	"io"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/vrclog/presence-go/internal/logfinder"
	"github.com/vrclog/presence-go/internal/parser"
)

// ParseLine parses a single VRChat log line into an Event.
//
// A line that matches no known pattern returns (nil, nil); that is the
// common case and not an error. A line that matches a pattern but is
// malformed returns (nil, error).
func ParseLine(line string) (*Event, error) {
	return parser.Parse(line)
}

// failSeq returns an iterator that yields err once and stops.
func failSeq(err error) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		yield(Event{}, err)
	}
}

// ParseFile parses a VRChat log file and returns an iterator over its
// events. The file is opened on first iteration, so the iterator is
// cheap to create but must be consumed to release the handle.
//
// Errors arrive through the second iteration value. An open error is
// yielded once and ends the sequence. Malformed lines are skipped
// unless WithParseStopOnError is set, and context cancellation yields
// ctx.Err().
func ParseFile(ctx context.Context, path string, opts ...ParseOption) iter.Seq2[Event, error] {
	if path == "" {
		return failSeq(errors.New("presence: path required"))
	}
	return fileEvents(ctx, path, applyParseOptions(opts))
}

// fileEvents is ParseFile after option application, shared with
// ParseDir so directory parsing applies options once, not per file.
func fileEvents(ctx context.Context, path string, cfg *parseConfig) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		f, err := os.Open(path)
		if err != nil {
			yield(Event{}, err)
			return
		}
		defer f.Close()

		scanEvents(ctx, f, cfg, yield)
	}
}

// ParseReader parses VRChat log lines from an arbitrary reader (an
// upload, stdin, a decompressed stream) with the same contract as
// ParseFile.
func ParseReader(ctx context.Context, r io.Reader, opts ...ParseOption) iter.Seq2[Event, error] {
	if r == nil {
		return failSeq(errors.New("presence: reader required"))
	}
	cfg := applyParseOptions(opts)
	return func(yield func(Event, error) bool) {
		scanEvents(ctx, r, cfg, yield)
	}
}

// scanEvents is the scanning core behind file and reader parsing. It
// returns early when the consumer stops or an error surfaces. Log
// files are chronological, so the first event at or past the until
// bound also ends the scan.
func scanEvents(ctx context.Context, r io.Reader, cfg *parseConfig, yield func(Event, error) bool) {
	sc := bufio.NewScanner(r)
	// World join lines can carry long instance descriptors.
	sc.Buffer(make([]byte, 0, 64*1024), 512*1024)

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			yield(Event{}, err)
			return
		}

		line := sc.Text()
		ev, err := parser.Parse(line)
		switch {
		case err != nil:
			if cfg.stopOnError {
				yield(Event{}, &ParseError{Line: line, Err: err})
				return
			}
			continue
		case ev == nil:
			// Ordinary log output, no event on this line.
			continue
		case !cfg.filter.allows(ev.Type):
			continue
		case !cfg.since.IsZero() && ev.Timestamp.Before(cfg.since):
			continue
		case !cfg.until.IsZero() && !ev.Timestamp.Before(cfg.until):
			// The window is since-inclusive, until-exclusive.
			return
		}

		if cfg.includeRawLine {
			ev.RawLine = line
		}
		if !yield(*ev, nil) {
			return
		}
	}

	if err := sc.Err(); err != nil {
		yield(Event{}, err)
	}
}

// ParseFileAll parses a log file and collects every event into a slice.
// It stops on the first error, returning the events gathered so far
// alongside it. For large files prefer ParseFile, which streams.
func ParseFileAll(ctx context.Context, path string, opts ...ParseOption) ([]Event, error) {
	return drain(ParseFile(ctx, path, opts...))
}

// ParseReaderAll collects all events from a reader, stopping on the
// first error.
func ParseReaderAll(ctx context.Context, r io.Reader, opts ...ParseOption) ([]Event, error) {
	return drain(ParseReader(ctx, r, opts...))
}

func drain(seq iter.Seq2[Event, error]) ([]Event, error) {
	events := make([]Event, 0, 64)
	for ev, err := range seq {
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
	return events, nil
}

// ParseDirOption configures ParseDir behavior.
type ParseDirOption func(*parseDirConfig)

type parseDirConfig struct {
	parseConfig
	logDir string
	paths  []string // explicit files, overrides logDir
}

func applyParseDirOptions(opts []ParseDirOption) *parseDirConfig {
	cfg := &parseDirConfig{parseConfig: *defaultParseConfig()}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// WithDirLogDir sets the directory to parse. When unset, ParseDir
// auto-detects the VRChat log directory.
func WithDirLogDir(dir string) ParseDirOption {
	return func(c *parseDirConfig) {
		c.logDir = dir
	}
}

// WithDirPaths names explicit files to parse, in the given order.
// When set, the log directory is not consulted.
func WithDirPaths(paths ...string) ParseDirOption {
	return func(c *parseDirConfig) {
		c.paths = paths
	}
}

// WithDirIncludeTypes keeps only events of the given types.
func WithDirIncludeTypes(types ...EventType) ParseDirOption {
	return func(c *parseDirConfig) {
		if c.filter == nil {
			c.filter = &typeFilter{}
		}
		c.filter.include = typeSet(types)
	}
}

// WithDirExcludeTypes drops events of the given types.
func WithDirExcludeTypes(types ...EventType) ParseDirOption {
	return func(c *parseDirConfig) {
		if c.filter == nil {
			c.filter = &typeFilter{}
		}
		c.filter.exclude = typeSet(types)
	}
}

// WithDirTimeRange keeps events with since <= timestamp < until.
// A zero bound leaves that side open.
func WithDirTimeRange(since, until time.Time) ParseDirOption {
	return func(c *parseDirConfig) {
		c.since = since
		c.until = until
	}
}

// WithDirIncludeRawLine carries the original log line in Event.RawLine.
func WithDirIncludeRawLine(include bool) ParseDirOption {
	return func(c *parseDirConfig) {
		c.includeRawLine = include
	}
}

// WithDirStopOnError stops at the first error instead of skipping.
func WithDirStopOnError(stop bool) ParseDirOption {
	return func(c *parseDirConfig) {
		c.stopOnError = stop
	}
}

// ParseDir parses all VRChat log files in a directory, yielding events
// file by file with files ordered oldest first by modification time.
//
// Directory resolution errors are yielded once and end the sequence. A
// file that cannot be read is skipped unless WithDirStopOnError is set.
//
// Each file is an independent observation: ParseDir concatenates their
// events, it does not correlate identities or sessions across files.
func ParseDir(ctx context.Context, opts ...ParseDirOption) iter.Seq2[Event, error] {
	cfg := applyParseDirOptions(opts)

	return func(yield func(Event, error) bool) {
		files, err := resolveDirFiles(cfg)
		if err != nil {
			yield(Event{}, err)
			return
		}

		// emit reports whether iteration should continue with the
		// next file.
		emit := func(path string) bool {
			for ev, err := range fileEvents(ctx, path, &cfg.parseConfig) {
				if err != nil {
					if cfg.stopOnError {
						yield(Event{}, err)
						return false
					}
					return true // skip to the next file
				}
				if !yield(ev, nil) {
					return false
				}
			}
			return true
		}

		for _, file := range files {
			if ctx.Err() != nil {
				yield(Event{}, ctx.Err())
				return
			}
			if !emit(file) {
				return
			}
		}
	}
}

// resolveDirFiles picks the files ParseDir walks: explicit paths as
// given, otherwise every log file in the resolved directory.
func resolveDirFiles(cfg *parseDirConfig) ([]string, error) {
	if len(cfg.paths) > 0 {
		return cfg.paths, nil
	}

	dir := cfg.logDir
	if dir == "" {
		var err error
		dir, err = logfinder.FindLogDir("")
		if err != nil {
			return nil, err
		}
	}

	files, err := logFilesByAge(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoLogFiles
	}
	return files, nil
}

// logFilesByAge lists the VRChat log files in dir, oldest first by
// modification time. Names recycle client start timestamps, so mtime
// is the reliable ordering.
func logFilesByAge(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "output_log_*.txt"))
	if err != nil {
		return nil, err
	}

	mtimes := make(map[string]time.Time, len(paths))
	kept := paths[:0]
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		kept = append(kept, p)
		mtimes[p] = info.ModTime()
	}
	slices.SortFunc(kept, func(a, b string) int {
		return mtimes[a].Compare(mtimes[b])
	})
	return kept, nil
}
