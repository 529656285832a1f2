package domain

// SplitMethod records how sales and labor were apportioned across shifts.
type SplitMethod string

const (
	SplitByTimestamps SplitMethod = "timestamps"
	SplitByFixedRatio SplitMethod = "fixed_ratio"
)

// ShiftFigures holds one shift's share of the day.
type ShiftFigures struct {
	Sales      float64 `json:"sales"`
	LaborCost  float64 `json:"labor_cost"`
	Manager    string  `json:"manager"`
	Voids      float64 `json:"voids"`
	OrderCount int     `json:"order_count"`
}

// ShiftMetrics is the morning/evening split produced by processing.
// When timestamps drive the split, morning and evening order counts sum to
// the categorized order count.
type ShiftMetrics struct {
	Morning      ShiftFigures `json:"morning"`
	Evening      ShiftFigures `json:"evening"`
	Method       SplitMethod  `json:"method"`
	MorningRatio float64      `json:"morning_ratio"`
}

// Figures returns the shift's half of the metrics.
func (m ShiftMetrics) Figures(s Shift) ShiftFigures {
	if s == ShiftEvening {
		return m.Evening
	}
	return m.Morning
}

// ShiftCategoryStats aggregates window-level category stats per shift.
type ShiftCategoryStats struct {
	Morning CategoryBreakdown `json:"morning"`
	Evening CategoryBreakdown `json:"evening"`
}

// Get returns the breakdown for s.
func (s ShiftCategoryStats) Get(sh Shift) CategoryBreakdown {
	if sh == ShiftEvening {
		return s.Evening
	}
	return s.Morning
}

// Merge folds stats for one category into the shift's breakdown.
func (s *ShiftCategoryStats) Merge(sh Shift, c Category, stats CategoryStats) {
	if sh == ShiftEvening {
		s.Evening.Set(c, s.Evening.Get(c).Merge(stats))
		return
	}
	s.Morning.Set(c, s.Morning.Get(c).Merge(stats))
}
