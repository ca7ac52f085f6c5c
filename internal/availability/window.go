// Package availability decides whether a menu item can be ordered at a given
// instant.  Windows are daily clock ranges in hotel local time with inclusive
// bounds at second resolution.
package availability

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ClockTime is a time of day expressed as seconds since local midnight.
type ClockTime int

const day = 24 * 60 * 60

// ErrBadClock is returned for strings that are not HH:MM or HH:MM:SS.
var ErrBadClock = errors.New("clock time must be HH:MM or HH:MM:SS")

// ErrWrappingWindow rejects windows whose end precedes their start.
var ErrWrappingWindow = errors.New("window end is before start; midnight-spanning windows are not supported")

// Clock builds a ClockTime from its parts.
func Clock(h, m, s int) ClockTime { return ClockTime(h*3600 + m*60 + s) }

// ParseClock accepts "HH:MM" or "HH:MM:SS".
func ParseClock(s string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, ErrBadClock
	}
	limits := []int{23, 59, 59}
	vals := make([]int, 3)
	for i, p := range parts {
		if len(p) == 0 || len(p) > 2 {
			return 0, ErrBadClock
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > limits[i] {
			return 0, ErrBadClock
		}
		vals[i] = n
	}
	return Clock(vals[0], vals[1], vals[2]), nil
}

// ClockOf returns the local wall-clock time of t in loc.
func ClockOf(t time.Time, loc *time.Location) ClockTime {
	if loc != nil {
		t = t.In(loc)
	}
	h, m, s := t.Clock()
	return Clock(h, m, s)
}

func (c ClockTime) String() string {
	h, m, s := int(c)/3600, int(c)%3600/60, int(c)%60
	if s != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}

func (c ClockTime) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *ClockTime) UnmarshalText(b []byte) error {
	v, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Scan reads a MySQL TIME column ("10:00:00").
func (c *ClockTime) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return c.UnmarshalText(v)
	case string:
		return c.UnmarshalText([]byte(v))
	case time.Time:
		*c = ClockOf(v, nil)
		return nil
	default:
		return fmt.Errorf("availability: cannot scan %T into ClockTime", src)
	}
}

// Value stores the clock as HH:MM:SS.
func (c ClockTime) Value() (driver.Value, error) {
	return fmt.Sprintf("%02d:%02d:%02d", int(c)/3600, int(c)%3600/60, int(c)%60), nil
}

// Window is an inclusive daily range [Start, End].
type Window struct {
	Start ClockTime `json:"start" yaml:"start"`
	End   ClockTime `json:"end" yaml:"end"`
}

// NewWindow builds a window from optional bounds.  A window exists only when
// both bounds are set; one-sided rows are treated as having no window.
func NewWindow(start, end *ClockTime) *Window {
	if start == nil || end == nil {
		return nil
	}
	return &Window{Start: *start, End: *end}
}

// Validate reports windows that cannot be evaluated.
func (w Window) Validate() error {
	if w.Start < 0 || w.Start >= day || w.End < 0 || w.End >= day {
		return ErrBadClock
	}
	if w.End < w.Start {
		return ErrWrappingWindow
	}
	return nil
}

// Contains is true when c lies within the window, bounds included.  An
// inverted window contains nothing.
func (w Window) Contains(c ClockTime) bool {
	if w.End < w.Start {
		return false
	}
	return c >= w.Start && c <= w.End
}

func (w Window) String() string { return w.Start.String() + "-" + w.End.String() }
