// Package schedule computes appointment time windows for session booking.
package schedule

import (
	"fmt"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
	stampLayout = "2006-01-02 15:04:05"
)

// Durations lists the session lengths, in minutes, the booking form offers.
var Durations = []int{30, 45, 60, 90, 120}

// ValidDuration reports whether minutes is one of the offered session lengths.
func ValidDuration(minutes int) bool {
	for _, d := range Durations {
		if d == minutes {
			return true
		}
	}
	return false
}

// Window is a derived appointment start/end pair. Both bounds are rendered
// in the same "YYYY-MM-DD HH:MM:SS" form the backend expects, in local time.
type Window struct {
	Start string
	End   string
}

// ComputeWindow combines a calendar date ("2006-01-02") and a wall-clock
// time ("15:04") into a start instant, adds the duration, and renders both
// bounds. Additions that cross midnight roll the date forward via normal
// calendar arithmetic.
func ComputeWindow(date, clock string, durationMinutes int) (Window, error) {
	if !ValidDuration(durationMinutes) {
		return Window{}, fmt.Errorf("schedule: duration %d not offered (want one of %v)", durationMinutes, Durations)
	}
	start, err := time.ParseInLocation(dateLayout+" "+clockLayout, date+" "+clock, time.Local)
	if err != nil {
		return Window{}, fmt.Errorf("schedule: parse start: %w", err)
	}
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	return Window{
		Start: start.Format(stampLayout),
		End:   end.Format(stampLayout),
	}, nil
}
