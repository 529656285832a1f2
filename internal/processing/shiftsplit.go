package processing

import (
	"math"
	"time"

	"github.com/JPRanx/omni-v4-sub001/internal/config"
	"github.com/JPRanx/omni-v4-sub001/internal/domain"
)

// splitShifts apportions the day's sales and labor across morning and
// evening. Order timestamps drive the ratio when any are usable; otherwise
// the configured fixed ratio applies.
func splitShifts(business time.Time, sales, laborCost float64,
	orders []domain.OrderRecord, entries []domain.TimeEntry, shifts config.ShiftSettings) domain.ShiftMetrics {

	morningCount, timedCount := 0, 0
	for _, o := range orders {
		if o.OrderTime.IsZero() {
			continue
		}
		timedCount++
		if o.OrderTime.Hour() < shifts.CutoffHour {
			morningCount++
		}
	}

	metrics := domain.ShiftMetrics{}
	var morningOrders, eveningOrders int
	if timedCount > 0 {
		metrics.Method = domain.SplitByTimestamps
		metrics.MorningRatio = float64(morningCount) / float64(timedCount)
		morningOrders = morningCount
		eveningOrders = len(orders) - morningCount
	} else {
		metrics.Method = domain.SplitByFixedRatio
		metrics.MorningRatio = shifts.FallbackMorningRatio
		morningOrders = int(math.Round(metrics.MorningRatio * float64(len(orders))))
		eveningOrders = len(orders) - morningOrders
	}

	dayStart := time.Date(business.Year(), business.Month(), business.Day(), 0, 0, 0, 0, business.Location())
	cutoff := dayStart.Add(time.Duration(shifts.CutoffHour) * time.Hour)
	dayEnd := dayStart.AddDate(0, 0, 1)

	metrics.Morning = domain.ShiftFigures{
		Sales:      sales * metrics.MorningRatio,
		LaborCost:  laborCost * metrics.MorningRatio,
		Manager:    shiftManager(entries, dayStart, cutoff),
		OrderCount: morningOrders,
	}
	metrics.Evening = domain.ShiftFigures{
		Sales:      sales * (1 - metrics.MorningRatio),
		LaborCost:  laborCost * (1 - metrics.MorningRatio),
		Manager:    shiftManager(entries, cutoff, dayEnd),
		OrderCount: eveningOrders,
	}
	return metrics
}

// shiftManager picks the manager on duty for a shift window: a manager
// title, an overlapping worked interval, earliest clock-in wins.
func shiftManager(entries []domain.TimeEntry, start, end time.Time) string {
	name := "Not Assigned"
	var best time.Time
	for _, e := range entries {
		if !e.IsManager || !e.Overlaps(start, end) {
			continue
		}
		if name == "Not Assigned" || e.ClockIn.Before(best) {
			name = e.EmployeeName
			best = e.ClockIn
		}
	}
	return name
}
