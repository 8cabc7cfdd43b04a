package presence

import (
	"errors"
	"fmt"

	"github.com/vrclog/presence-go/internal/logfinder"
)

// Sentinel errors returned by this package.
var (
	// ErrInvalidWindow is returned when a query window's start is not
	// strictly before its end. The window is surfaced to the caller,
	// never silently swapped or clamped.
	ErrInvalidWindow = errors.New("invalid window: start must be before end")

	// ErrLogDirNotFound means no VRChat log directory could be
	// located, whether given explicitly or auto-detected.
	ErrLogDirNotFound = logfinder.ErrLogDirNotFound

	// ErrNoLogFiles means the log directory exists but holds no
	// output_log files.
	ErrNoLogFiles = logfinder.ErrNoLogFiles
)

// ParseError reports a log line that matched an event pattern but could
// not be parsed into a valid event.
type ParseError struct {
	Line string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing line %q: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
