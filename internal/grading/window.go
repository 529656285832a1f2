package grading

import (
	"fmt"
	"time"

	"github.com/JPRanx/omni-v4-sub001/internal/domain"
)

// The graded day runs 06:00-22:00 in fifteen-minute windows.
const (
	dayStartHour  = 6
	dayEndHour    = 22
	windowMinutes = 15
)

// windowIndex maps a timestamp to its window. The boolean is false for
// timestamps outside 06:00-22:00 or with no usable time at all.
func windowIndex(t time.Time) (int, bool) {
	if t.IsZero() {
		return 0, false
	}
	minutes := (t.Hour()-dayStartHour)*60 + t.Minute()
	if minutes < 0 {
		return 0, false
	}
	idx := minutes / windowMinutes
	if idx >= domain.WindowsPerDay {
		return 0, false
	}
	return idx, true
}

// windowLabel renders the "HH:MM-HH:MM" span for a window index.
func windowLabel(idx int) string {
	start := dayStartHour*60 + idx*windowMinutes
	end := start + windowMinutes
	return fmt.Sprintf("%02d:%02d-%02d:%02d", start/60, start%60, end/60, end%60)
}

// windowShift returns the shift a window belongs to; the first 32 windows
// are morning.
func windowShift(idx int) domain.Shift {
	if idx < domain.WindowsPerShift {
		return domain.ShiftMorning
	}
	return domain.ShiftEvening
}
