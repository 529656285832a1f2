package domain

// PatternCounts records how many patterns a run updated per store.
type PatternCounts struct {
	Daily    int `json:"daily"`
	Timeslot int `json:"timeslot"`
}

// RunError is the structured failure block attached to unsuccessful runs.
type RunError struct {
	Stage   string `json:"stage"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// BatchSummary aggregates one batch of runs for the artifact header.
// Skipped counts runs a resumed batch did not re-attempt; SuccessRate is
// over attempted runs only.
type BatchSummary struct {
	TotalRuns     int      `json:"total_runs"`
	Succeeded     int      `json:"succeeded"`
	Failed        int      `json:"failed"`
	Skipped       int      `json:"skipped,omitempty"`
	SuccessRate   float64  `json:"success_rate"`
	DateFrom      string   `json:"date_from"`
	DateTo        string   `json:"date_to"`
	Restaurants   []string `json:"restaurants"`
	DurationMS    int64    `json:"duration_ms"`
	DeliveryError string   `json:"delivery_error,omitempty"`
}

// RunResult is the complete outcome of one (restaurant, business date)
// pipeline run. Exactly one is produced per attempted run, successful or
// not; failed runs carry a zeroed payload and a non-nil Error.
type RunResult struct {
	RunID           string              `json:"run_id"`
	Restaurant      string              `json:"restaurant"`
	Date            string              `json:"date"`
	Success         bool                `json:"success"`
	Sales           float64             `json:"sales"`
	Labor           LaborReport         `json:"labor"`
	LaborMetrics    LaborMetrics        `json:"labor_metrics"`
	Shifts          ShiftMetrics        `json:"shift_metrics"`
	ServiceMix      ServiceMix          `json:"service_mix"`
	Timeslots       []Timeslot          `json:"timeslots,omitempty"`
	ShiftStats      ShiftCategoryStats  `json:"shift_category_stats"`
	CashFlow        *CashFlow           `json:"cash_flow,omitempty"`
	AutoClockout    AutoClockoutSummary `json:"auto_clockout"`
	Overtime        OvertimeReport      `json:"overtime"`
	PatternsLearned PatternCounts       `json:"patterns_learned"`
	Quality         QualityReport       `json:"quality"`
	Warnings        []string            `json:"warnings,omitempty"`
	DurationMS      int64               `json:"duration_ms"`
	Error           *RunError           `json:"error,omitempty"`
}
