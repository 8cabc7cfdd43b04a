package presence

import (
	"runtime"
	"time"
)

// typeFilter holds pre-compiled include/exclude sets for event filtering.
// A nil *typeFilter allows everything.
type typeFilter struct {
	include map[EventType]struct{}
	exclude map[EventType]struct{}
}

// newTypeFilter builds a filter from include and exclude slices.
// Returns nil if both are empty (no filtering needed).
func newTypeFilter(include, exclude []EventType) *typeFilter {
	if len(include) == 0 && len(exclude) == 0 {
		return nil
	}
	f := &typeFilter{}
	if len(include) > 0 {
		f.include = typeSet(include)
	}
	if len(exclude) > 0 {
		f.exclude = typeSet(exclude)
	}
	return f
}

func typeSet(types []EventType) map[EventType]struct{} {
	s := make(map[EventType]struct{}, len(types))
	for _, t := range types {
		s[t] = struct{}{}
	}
	return s
}

// allows reports whether the given event type passes the filter.
// If include is non-empty, only types in include are allowed.
// Types in exclude are always rejected (exclude takes precedence).
func (f *typeFilter) allows(t EventType) bool {
	if f == nil {
		return true
	}
	if len(f.include) > 0 {
		if _, ok := f.include[t]; !ok {
			return false
		}
	}
	if len(f.exclude) > 0 {
		if _, ok := f.exclude[t]; ok {
			return false
		}
	}
	return true
}

// ParseOption configures ParseFile/ParseReader/ParseDir behavior.
type ParseOption func(*parseConfig)

// parseConfig holds internal configuration for parsing.
type parseConfig struct {
	filter         *typeFilter
	includeRawLine bool
	since          time.Time
	until          time.Time
	stopOnError    bool
}

func defaultParseConfig() *parseConfig {
	return &parseConfig{}
}

// applyParseOptions applies functional options to a parseConfig.
func applyParseOptions(opts []ParseOption) *parseConfig {
	cfg := defaultParseConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// WithParseIncludeTypes filters events to only include the specified types.
func WithParseIncludeTypes(types ...EventType) ParseOption {
	return func(c *parseConfig) {
		if c.filter == nil {
			c.filter = &typeFilter{}
		}
		c.filter.include = typeSet(types)
	}
}

// WithParseExcludeTypes filters out events of the specified types.
func WithParseExcludeTypes(types ...EventType) ParseOption {
	return func(c *parseConfig) {
		if c.filter == nil {
			c.filter = &typeFilter{}
		}
		c.filter.exclude = typeSet(types)
	}
}

// WithParseFilter sets both include and exclude type filters for parsing.
// Exclude takes precedence over include.
func WithParseFilter(include, exclude []EventType) ParseOption {
	return func(c *parseConfig) {
		c.filter = newTypeFilter(include, exclude)
	}
}

// WithParseIncludeRawLine includes the original log line in Event.RawLine.
func WithParseIncludeRawLine(include bool) ParseOption {
	return func(c *parseConfig) {
		c.includeRawLine = include
	}
}

// WithParseTimeRange filters events to only include those within the time range.
// since is inclusive, until is exclusive.
// Zero values are ignored (no filtering for that boundary).
func WithParseTimeRange(since, until time.Time) ParseOption {
	return func(c *parseConfig) {
		c.since = since
		c.until = until
	}
}

// WithParseSince filters events to only include those at or after the given time.
func WithParseSince(since time.Time) ParseOption {
	return func(c *parseConfig) {
		c.since = since
	}
}

// WithParseUntil filters events to only include those before the given time.
func WithParseUntil(until time.Time) ParseOption {
	return func(c *parseConfig) {
		c.until = until
	}
}

// WithParseStopOnError stops parsing on the first error instead of skipping.
// Default: false (skip malformed lines and continue).
func WithParseStopOnError(stop bool) ParseOption {
	return func(c *parseConfig) {
		c.stopOnError = stop
	}
}

// AnalyzeOption configures Analyze behavior.
type AnalyzeOption func(*analyzeConfig)

// analyzeConfig holds internal configuration for analysis.
type analyzeConfig struct {
	window      *Window
	parallelism int
}

// defaultAnalyzeConfig seeds parallelism from GOMAXPROCS.
func defaultAnalyzeConfig() *analyzeConfig {
	return &analyzeConfig{
		parallelism: runtime.GOMAXPROCS(0),
	}
}

// applyAnalyzeOptions applies functional options to an analyzeConfig.
func applyAnalyzeOptions(opts []AnalyzeOption) *analyzeConfig {
	cfg := defaultAnalyzeConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// WithWindow restricts the analysis to the query window from start to end.
// Intervals touching the window boundary are included; online durations are
// clipped to it. The window is validated by Analyze; start must be strictly
// before end.
func WithWindow(start, end time.Time) AnalyzeOption {
	return func(c *analyzeConfig) {
		c.window = &Window{Start: start, End: end}
	}
}

// WithParallelism bounds the number of concurrent per-user
// reconstructions. Values below 1 are treated as 1.
// Default: runtime.GOMAXPROCS(0). Result ordering does not depend on it.
func WithParallelism(n int) AnalyzeOption {
	return func(c *analyzeConfig) {
		if n < 1 {
			n = 1
		}
		c.parallelism = n
	}
}
