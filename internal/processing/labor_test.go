package processing

import (
	"math"
	"testing"

	"github.com/JPRanx/omni-v4-sub001/internal/config"
	"github.com/JPRanx/omni-v4-sub001/internal/domain"
)

func defaultThresholds(t *testing.T) config.LaborThresholds {
	t.Helper()
	store, err := config.LoadStore("", "", "")
	if err != nil {
		t.Fatalf("LoadStore: %v", err)
	}
	return store.Labor
}

func TestComputeLaborMetrics(t *testing.T) {
	thresholds := defaultThresholds(t)

	tests := []struct {
		name   string
		sales  float64
		cost   float64
		pct    float64
		status domain.LaborStatus
		grade  string
	}{
		{"severe day", 3036.40, 1424.28, 46.91, domain.LaborSevere, "F"},
		{"excellent", 5000, 900, 18.0, domain.LaborExcellent, "A+"},
		{"excellent boundary", 5000, 1000, 20.0, domain.LaborExcellent, "A"},
		{"good", 4000, 1000, 25.0, domain.LaborGood, "B"},
		{"warning", 4000, 1120, 28.0, domain.LaborWarning, "C+"},
		{"critical", 2000, 700, 35.0, domain.LaborCritical, "D"},
		{"just past critical", 1000, 351, 35.1, domain.LaborSevere, "F"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := computeLaborMetrics(tt.sales, tt.cost, thresholds)
			if math.Abs(m.LaborPercentage-tt.pct) > 0.01 {
				t.Errorf("percentage = %.2f, want %.2f", m.LaborPercentage, tt.pct)
			}
			if m.Status != tt.status {
				t.Errorf("status = %s, want %s", m.Status, tt.status)
			}
			if m.Grade != tt.grade {
				t.Errorf("grade = %s, want %s", m.Grade, tt.grade)
			}
		})
	}
}

func TestComputeLaborMetricsZeroSales(t *testing.T) {
	m := computeLaborMetrics(0, 1200, defaultThresholds(t))
	if m.LaborPercentage != 0 {
		t.Errorf("percentage = %v, want 0", m.LaborPercentage)
	}
	if m.Status != domain.LaborSevere {
		t.Errorf("status = %s, want SEVERE", m.Status)
	}
	if m.Grade != "F" {
		t.Errorf("grade = %s, want F", m.Grade)
	}
	if len(m.Warnings) == 0 {
		t.Error("expected a warning for zero sales")
	}
}

func TestComputeLaborMetricsMessages(t *testing.T) {
	thresholds := defaultThresholds(t)

	excellent := computeLaborMetrics(5000, 900, thresholds)
	if len(excellent.Warnings) != 0 {
		t.Errorf("excellent status should carry no warnings, got %v", excellent.Warnings)
	}
	if len(excellent.Recommendations) != 1 {
		t.Errorf("expected one recommendation, got %v", excellent.Recommendations)
	}

	severe := computeLaborMetrics(1000, 500, thresholds)
	if len(severe.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", severe.Warnings)
	}
	if len(severe.Recommendations) != 1 {
		t.Fatalf("expected one recommendation, got %v", severe.Recommendations)
	}
}
