package presence

import (
	"fmt"
	"time"
)

// Window is a query-time range used to filter and clip presence intervals.
// Start must be strictly before End; callers are expected to enforce that
// before querying, and violations surface as ErrInvalidWindow.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Validate returns an error wrapping ErrInvalidWindow unless Start is
// strictly before End. The window is never silently swapped or clamped.
func (w Window) Validate() error {
	if !w.Start.Before(w.End) {
		return fmt.Errorf("%w (start %s, end %s)", ErrInvalidWindow,
			w.Start.Format("2006-01-02 15:04:05"), w.End.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// Duration returns the window length.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Overlaps reports whether the interval touches the window under the
// closed-interval test: iv.Start <= w.End && iv.End >= w.Start.
// Boundary contact counts, even at zero overlap length.
func (w Window) Overlaps(iv Interval) bool {
	return !iv.Start.After(w.End) && !iv.End.Before(w.Start)
}

// Clip bounds the interval to the window. The second return value is true
// only when the clipped interval has strictly positive length; boundary
// touches clip to nothing.
func (w Window) Clip(iv Interval) (Interval, bool) {
	start, end := iv.Start, iv.End
	if start.Before(w.Start) {
		start = w.Start
	}
	if end.After(w.End) {
		end = w.End
	}
	if !start.Before(end) {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}
