package processing

import (
	"fmt"

	"github.com/JPRanx/omni-v4-sub001/internal/config"
	"github.com/JPRanx/omni-v4-sub001/internal/domain"
)

// Warning and recommendation templates per status. Deterministic: the
// status alone decides what operators see.
var statusWarnings = map[domain.LaborStatus]string{
	domain.LaborWarning:  "Labor percentage %.1f%% is above the 25%% target",
	domain.LaborCritical: "Labor percentage %.1f%% is critically high",
	domain.LaborSevere:   "Labor percentage %.1f%% is severely elevated",
}

var statusRecommendations = map[domain.LaborStatus]string{
	domain.LaborExcellent: "Maintain current staffing levels",
	domain.LaborGood:      "Labor is within the target range",
	domain.LaborWarning:   "Review scheduled hours against projected sales",
	domain.LaborCritical:  "Cut non-essential shifts or reassign staff to revenue work",
	domain.LaborSevere:    "Immediate schedule review required",
}

// computeLaborMetrics grades the day's labor percentage against the
// configured threshold tables. Zero sales short-circuits to the worst
// bucket rather than dividing by zero.
func computeLaborMetrics(sales, laborCost float64, thresholds config.LaborThresholds) domain.LaborMetrics {
	if sales == 0 {
		return domain.LaborMetrics{
			LaborPercentage: 0,
			Status:          domain.LaborSevere,
			Grade:           "F",
			Warnings:        []string{"no sales recorded for the day"},
			Recommendations: []string{statusRecommendations[domain.LaborSevere]},
		}
	}

	pct := 100 * laborCost / sales
	status := domain.LaborStatus(thresholds.ClassifyStatus(pct))

	metrics := domain.LaborMetrics{
		LaborPercentage: pct,
		Status:          status,
		Grade:           thresholds.ClassifyGrade(pct),
	}
	if tmpl, ok := statusWarnings[status]; ok {
		metrics.Warnings = append(metrics.Warnings, fmt.Sprintf(tmpl, pct))
	}
	if rec, ok := statusRecommendations[status]; ok {
		metrics.Recommendations = append(metrics.Recommendations, rec)
	}
	return metrics
}
