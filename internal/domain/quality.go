package domain

// FileQuality is the L2 validation outcome for one loaded CSV.
type FileQuality struct {
	LogicalName        string             `json:"logical_name"`
	RowCount           int                `json:"row_count"`
	NonNullRates       map[string]float64 `json:"non_null_rates,omitempty"`
	TimestampParseRate float64            `json:"timestamp_parse_rate"`
	Score              float64            `json:"score"`
}

// QualityReport aggregates per-file quality metrics for a run. The overall
// score is the minimum across all per-file scores.
type QualityReport struct {
	Files    []FileQuality `json:"files,omitempty"`
	Score    float64       `json:"score"`
	Warnings []string      `json:"warnings,omitempty"`
}
