package daywindow

import (
	"fmt"
	"strconv"
	"time"
)

// Window is one UTC calendar day used as the query boundary for the
// dashboard. StartUTC and EndUTC are inclusive: 00:00:00.000 through
// 23:59:59.999 of the same UTC date. Day boundaries are always computed
// in UTC so a record lands in the same bucket no matter which time zone
// the client was in when it was written.
//
// IsToday marks the reference day in a selector strip; only
// WindowsAround sets it. Every function in this package is pure with
// respect to its time argument.
type Window struct {
	Label      string    `json:"label"`
	DayOfMonth string    `json:"day_of_month"`
	StartUTC   time.Time `json:"start_utc"`
	EndUTC     time.Time `json:"end_utc"`
	IsToday    bool      `json:"is_today"`
}

const endOfDayOffset = 24*time.Hour - time.Millisecond

// WindowFor returns the window covering the UTC calendar date of t.
func WindowFor(t time.Time) Window {
	u := t.UTC()
	start := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return windowAt(start)
}

// WindowsAround returns one window per calendar day in
// [t - before days, t + after days], ascending, contiguous. The window
// covering t is marked IsToday.
func WindowsAround(t time.Time, before, after int) []Window {
	base := WindowFor(t).StartUTC

	windows := make([]Window, 0, before+after+1)
	for i := -before; i <= after; i++ {
		w := windowAt(base.AddDate(0, 0, i))
		w.IsToday = i == 0
		windows = append(windows, w)
	}
	return windows
}

// Selectable returns the dashboard's selector strip: three days back,
// the day of t, three days forward.
func Selectable(t time.Time) []Window {
	return WindowsAround(t, 3, 3)
}

// Validate reports malformed bounds. Windows built by this package are
// always valid; this only fires on hand-built ones.
func (w Window) Validate() error {
	if w.StartUTC.After(w.EndUTC) {
		return fmt.Errorf("invalid day window: start %s after end %s",
			w.StartUTC.Format(time.RFC3339), w.EndUTC.Format(time.RFC3339))
	}
	return nil
}

// Contains reports whether the instant falls inside the inclusive bounds.
func (w Window) Contains(t time.Time) bool {
	u := t.UTC()
	return !u.Before(w.StartUTC) && !u.After(w.EndUTC)
}

func windowAt(start time.Time) Window {
	return Window{
		Label:      start.Weekday().String()[:3],
		DayOfMonth: strconv.Itoa(start.Day()),
		StartUTC:   start,
		EndUTC:     start.Add(endOfDayOffset),
	}
}
