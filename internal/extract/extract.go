// Package extract copies raw log lines matching a pattern, for pulling
// evidence out of large log files without parsing them into events.
package extract

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
)

// Extractor copies matching lines from a log to a writer.
type Extractor struct {
	Pattern *regexp.Regexp
}

// Scan copies every line of r matching the pattern to w, one per line,
// and returns the number of matches.
func (e *Extractor) Scan(ctx context.Context, r io.Reader, w io.Writer) (int, error) {
	if e.Pattern == nil {
		return 0, errors.New("extract: pattern required")
	}

	scanner := bufio.NewScanner(r)
	// Increase buffer size for long lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 512*1024)

	var n int
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return n, err
		}

		line := scanner.Text()
		if !e.Pattern.MatchString(line) {
			continue
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return n, err
		}
		n++
	}
	return n, scanner.Err()
}

// File opens path and extracts from it.
func (e *Extractor) File(ctx context.Context, path string, w io.Writer) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return e.Scan(ctx, f, w)
}
