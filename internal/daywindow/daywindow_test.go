package daywindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowForBounds(t *testing.T) {
	instants := []time.Time{
		time.Date(2025, time.March, 14, 15, 9, 26, 535000000, time.UTC),
		time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.March, 14, 23, 59, 59, 999000000, time.UTC),
		time.Date(2025, time.December, 31, 23, 30, 0, 0, time.UTC),
	}

	for _, instant := range instants {
		w := WindowFor(instant)

		assert.Equal(t, 0, w.StartUTC.Hour(), "start of day for %s", instant)
		assert.Equal(t, 0, w.StartUTC.Minute()+w.StartUTC.Second()+w.StartUTC.Nanosecond())
		assert.Equal(t, 23, w.EndUTC.Hour(), "end of day for %s", instant)
		assert.Equal(t, 59, w.EndUTC.Minute())
		assert.Equal(t, 59, w.EndUTC.Second())
		assert.Equal(t, 999000000, w.EndUTC.Nanosecond())

		for _, bound := range []time.Time{w.StartUTC, w.EndUTC} {
			assert.Equal(t, instant.Year(), bound.Year())
			assert.Equal(t, instant.Month(), bound.Month())
			assert.Equal(t, instant.Day(), bound.Day())
		}

		assert.NoError(t, w.Validate())
	}
}

func TestWindowForUsesUTCDate(t *testing.T) {
	// 23:30 in UTC+5 is 18:30 UTC the same date; 01:30 in UTC+5 is
	// 20:30 UTC the PREVIOUS date. The winning date is always UTC's.
	zone := time.FixedZone("UTC+5", 5*3600)

	late := time.Date(2025, time.June, 10, 23, 30, 0, 0, zone)
	assert.Equal(t, 10, WindowFor(late).StartUTC.Day())

	early := time.Date(2025, time.June, 10, 1, 30, 0, 0, zone)
	assert.Equal(t, 9, WindowFor(early).StartUTC.Day())
}

// The result depends only on the argument, never on the wall clock.
func TestWindowForIsPure(t *testing.T) {
	past := time.Date(2019, time.April, 2, 8, 15, 0, 0, time.UTC)

	first := WindowFor(past)
	second := WindowFor(past)

	assert.Equal(t, first, second)
	assert.False(t, first.IsToday, "WindowFor never marks a reference day")
}

func TestWindowsAroundContiguous(t *testing.T) {
	ref := time.Date(2025, time.February, 27, 12, 0, 0, 0, time.UTC)

	windows := WindowsAround(ref, 3, 3)
	require.Len(t, windows, 7)

	// Middle window is the reference day; Feb 27 2025 +3 crosses into
	// March, -3 stays in February.
	assert.Equal(t, 27, windows[3].StartUTC.Day())
	assert.Equal(t, time.March, windows[6].StartUTC.Month())
	assert.Equal(t, 2, windows[6].StartUTC.Day())

	for i := 1; i < len(windows); i++ {
		gap := windows[i].StartUTC.Sub(windows[i-1].EndUTC)
		assert.Equal(t, time.Millisecond, gap, "windows %d and %d not contiguous", i-1, i)
		assert.True(t, windows[i].StartUTC.After(windows[i-1].StartUTC), "not ascending at %d", i)
	}
}

func TestWindowsAroundMarksReferenceDay(t *testing.T) {
	ref := time.Date(2021, time.August, 5, 17, 0, 0, 0, time.UTC)

	windows := WindowsAround(ref, 3, 3)

	marked := 0
	for _, w := range windows {
		if w.IsToday {
			marked++
		}
	}
	assert.Equal(t, 1, marked, "exactly one reference day")
	assert.True(t, windows[3].IsToday, "the middle window covers the reference instant")
	assert.Equal(t, 5, windows[3].StartUTC.Day())
}

func TestSelectableMarksToday(t *testing.T) {
	windows := Selectable(time.Now())
	require.Len(t, windows, 7)

	todayCount := 0
	for _, w := range windows {
		if w.IsToday {
			todayCount++
		}
	}
	assert.Equal(t, 1, todayCount)
	assert.True(t, windows[3].IsToday, "middle window is today")
}

func TestValidateRejectsInvertedBounds(t *testing.T) {
	w := Window{
		StartUTC: time.Date(2025, time.May, 2, 0, 0, 0, 0, time.UTC),
		EndUTC:   time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC),
	}
	assert.Error(t, w.Validate())
}

func TestContains(t *testing.T) {
	w := WindowFor(time.Date(2025, time.July, 4, 10, 0, 0, 0, time.UTC))

	assert.True(t, w.Contains(w.StartUTC), "start bound is inclusive")
	assert.True(t, w.Contains(w.EndUTC), "end bound is inclusive")
	assert.False(t, w.Contains(w.StartUTC.Add(-time.Millisecond)))
	assert.False(t, w.Contains(w.EndUTC.Add(time.Millisecond)))
}
