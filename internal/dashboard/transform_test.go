package dashboard

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JPRanx/omni-v4-sub001/internal/artifact"
	"github.com/JPRanx/omni-v4-sub001/internal/domain"
)

func sampleRun(restaurant, date string, sales float64) domain.RunResult {
	return domain.RunResult{
		RunID:      "run-" + restaurant + "-" + date,
		Restaurant: restaurant,
		Date:       date,
		Success:    true,
		Sales:      sales,
		Labor: domain.LaborReport{
			Restaurant:       restaurant,
			Date:             date,
			TotalHoursWorked: 40,
			TotalLaborCost:   sales * 0.25,
			EmployeeCount:    5,
		},
		LaborMetrics: domain.LaborMetrics{LaborPercentage: 25, Status: domain.LaborGood, Grade: "B"},
		Shifts: domain.ShiftMetrics{
			Morning:      domain.ShiftFigures{Sales: sales * 0.6, LaborCost: sales * 0.15, Manager: "Ana Perez", OrderCount: 3},
			Evening:      domain.ShiftFigures{Sales: sales * 0.4, LaborCost: sales * 0.10, Manager: "Ben Cho", OrderCount: 2},
			Method:       domain.SplitByTimestamps,
			MorningRatio: 0.6,
		},
		ServiceMix: domain.ServiceMix{Lobby: 60, ToGo: 40},
		Timeslots: []domain.Timeslot{
			{
				Index: 20, TimeWindow: "11:00-11:15", Shift: domain.ShiftMorning,
				Stats:          domain.CategoryBreakdown{Lobby: domain.CategoryStats{Total: 3, Passed: 2, Failed: 1}},
				AvgFulfillment: domain.AvgFulfillment{Lobby: 4.5},
				PassRate:       0.667, Grade: "C",
			},
			{
				Index: 40, TimeWindow: "16:00-16:15", Shift: domain.ShiftEvening,
				Stats:          domain.CategoryBreakdown{ToGo: domain.CategoryStats{Total: 2, Passed: 2}},
				AvgFulfillment: domain.AvgFulfillment{ToGo: 6.0},
				PassRate:       1, PassedStandards: true, Grade: "A+",
			},
		},
		ShiftStats: domain.ShiftCategoryStats{
			Morning: domain.CategoryBreakdown{Lobby: domain.CategoryStats{Total: 3, Passed: 2, Failed: 1}},
			Evening: domain.CategoryBreakdown{ToGo: domain.CategoryStats{Total: 2, Passed: 2}},
		},
		CashFlow: &domain.CashFlow{
			Morning: domain.ShiftCash{CashCollected: 500, TipsDistributed: 60, VendorPayouts: 40, NetCash: 400},
			Evening: domain.ShiftCash{CashCollected: 300, TipsDistributed: 30, NetCash: 270},
		},
		AutoClockout: domain.AutoClockoutSummary{
			Alerts: []domain.ClockoutAlert{{
				EmployeeName: "Cam Osei", JobTitle: "Cook", Role: domain.RoleBOH,
				RecordedHours: 12, SuggestedHours: 8, HoursDifference: 4, CostImpact: 60,
			}},
			EntriesFlagged:       1,
			TotalHoursDifference: 4,
			TotalCostImpact:      60,
		},
		Overtime: domain.OvertimeReport{TotalOvertimeCost: 90},
		Quality:  domain.QualityReport{Score: 0.98},
	}
}

func failedRun(restaurant, date string) domain.RunResult {
	return domain.RunResult{
		RunID:      "run-" + restaurant + "-" + date,
		Restaurant: restaurant,
		Date:       date,
		Error:      &domain.RunError{Stage: "ingestion", Kind: "MissingFile", Message: "labor.csv not found"},
	}
}

func TestBuildWeeksMondayAnchored(t *testing.T) {
	// 2025-07-14 is a Monday; the 20th is its Sunday; the 21st opens a new week.
	weeks, err := BuildWeeks([]domain.RunResult{
		sampleRun("SDR", "2025-07-21", 900),
		sampleRun("SDR", "2025-07-14", 1000),
		sampleRun("SDR", "2025-07-20", 1200),
	})
	require.NoError(t, err)
	require.Len(t, weeks, 2)

	assert.Equal(t, "week1", weeks[0].Key)
	assert.Equal(t, "2025-07-14", weeks[0].Data.WeekStart)
	assert.Equal(t, "2025-07-20", weeks[0].Data.WeekEnd)
	assert.Equal(t, 2, weeks[0].Data.Overview.SuccessfulRuns)

	assert.Equal(t, "week2", weeks[1].Key)
	assert.Equal(t, "2025-07-21", weeks[1].Data.WeekStart)
	assert.Equal(t, 1, weeks[1].Data.Overview.SuccessfulRuns)

	breakdown := weeks[0].Data.Restaurants[0].DailyBreakdown
	require.Len(t, breakdown, 2)
	assert.Equal(t, "Monday", breakdown[0].DayName)
	assert.Equal(t, "Sunday", breakdown[1].DayName)
}

func TestBuildWeeksAggregates(t *testing.T) {
	weeks, err := BuildWeeks([]domain.RunResult{
		sampleRun("SDR", "2025-07-15", 1000),
		sampleRun("BWD", "2025-07-14", 2000),
		sampleRun("SDR", "2025-07-14", 1000),
	})
	require.NoError(t, err)
	require.Len(t, weeks, 1)
	wk := weeks[0].Data

	require.Len(t, wk.Restaurants, 2)
	assert.Equal(t, "BWD", wk.Restaurants[0].Code, "restaurants sort by code")
	assert.Equal(t, "SDR", wk.Restaurants[1].Code)

	sdr := wk.Restaurants[1]
	assert.InDelta(t, 2000, sdr.TotalSales, 0.001)
	assert.InDelta(t, 500, sdr.TotalLaborCost, 0.001)
	assert.InDelta(t, 25, sdr.LaborPercentage, 0.001)
	assert.Equal(t, 10, sdr.TotalOrders)
	require.Len(t, sdr.DailyBreakdown, 2)
	assert.Equal(t, "2025-07-14", sdr.DailyBreakdown[0].Date)
	assert.Equal(t, "2025-07-15", sdr.DailyBreakdown[1].Date)

	assert.InDelta(t, 4000, wk.Overview.TotalSales, 0.001)
	assert.InDelta(t, 1000, wk.Overview.TotalLaborCost, 0.001)
	assert.InDelta(t, 25, wk.Overview.LaborPercentage, 0.001)
	assert.Equal(t, 15, wk.Overview.TotalOrders)
	assert.InDelta(t, 270, wk.Overview.TotalOvertimeCost, 0.001)
	assert.Equal(t, 3, wk.Overview.SuccessfulRuns)

	require.Len(t, wk.AutoClockoutAlerts, 3)
	assert.Equal(t, "2025-07-14", wk.AutoClockoutAlerts[0].Date)
	assert.Equal(t, "BWD", wk.AutoClockoutAlerts[0].Restaurant)
	assert.Equal(t, "Cam Osei", wk.AutoClockoutAlerts[0].EmployeeName)
}

func TestBuildWeeksFailedRunsCountedOnly(t *testing.T) {
	weeks, err := BuildWeeks([]domain.RunResult{
		sampleRun("SDR", "2025-07-14", 1000),
		failedRun("BWD", "2025-07-14"),
	})
	require.NoError(t, err)
	require.Len(t, weeks, 1)
	wk := weeks[0].Data

	assert.Equal(t, 1, wk.Overview.SuccessfulRuns)
	assert.Equal(t, 1, wk.Overview.FailedRuns)
	require.Len(t, wk.Restaurants, 1, "failed runs contribute no restaurant block")
	assert.Equal(t, "SDR", wk.Restaurants[0].Code)
	assert.InDelta(t, 1000, wk.Overview.TotalSales, 0.001)
}

func TestBuildDayShiftDetail(t *testing.T) {
	weeks, err := BuildWeeks([]domain.RunResult{sampleRun("SDR", "2025-07-14", 1000)})
	require.NoError(t, err)
	day := weeks[0].Data.Restaurants[0].DailyBreakdown[0]

	assert.Equal(t, "GOOD", day.LaborStatus)
	assert.Equal(t, "B", day.LaborGrade)
	assert.Equal(t, 5, day.OrderCount)
	assert.InDelta(t, 0.98, day.QualityScore, 0.001)

	morning := day.Shifts.Morning
	assert.Equal(t, "Ana Perez", morning.Manager)
	assert.Equal(t, 3, morning.OrderCount)
	assert.InDelta(t, 600, morning.Sales, 0.001)
	assert.InDelta(t, 400, morning.NetCash, 0.001)
	assert.Equal(t, 3, morning.CategoryStats.Lobby.Total)
	require.Len(t, morning.Timeslots, 1, "windows stay with their shift")
	assert.Equal(t, "11:00-11:15", morning.Timeslots[0].Window)
	assert.Equal(t, 1, morning.Timeslots[0].CategoryStats.Lobby.Failed)

	evening := day.Shifts.Evening
	require.Len(t, evening.Timeslots, 1)
	assert.Equal(t, "A+", evening.Timeslots[0].Grade)
	assert.True(t, evening.Timeslots[0].Passed)
	assert.Equal(t, 2, evening.CategoryStats.ToGo.Passed)

	require.NotNil(t, day.CashFlow)
	assert.InDelta(t, 800, day.CashFlow.CashCollected, 0.001)
	assert.InDelta(t, 670, day.CashFlow.NetCash, 0.001)
}

func TestBuildWeeksRejectsBadDate(t *testing.T) {
	_, err := BuildWeeks([]domain.RunResult{sampleRun("SDR", "07/14/2025", 1000)})
	assert.ErrorContains(t, err, "parse date")
}

func TestRenderModuleEmitsValidModule(t *testing.T) {
	weeks, err := BuildWeeks([]domain.RunResult{
		sampleRun("SDR", "2025-07-14", 1000),
		sampleRun("SDR", "2025-07-21", 900),
	})
	require.NoError(t, err)

	out, err := RenderModule(weeks)
	require.NoError(t, err)
	text := string(out)

	assert.True(t, strings.HasPrefix(text, "const v4Data = {"))
	assert.True(t, strings.HasSuffix(text, "};\n"))

	// Everything after the assignment must be a JSON object.
	body := strings.TrimSuffix(strings.TrimPrefix(text, "const v4Data = "), ";\n")
	var decoded map[string]WeekData
	require.NoError(t, json.Unmarshal([]byte(body), &decoded))
	require.Contains(t, decoded, "week1")
	require.Contains(t, decoded, "week2")
	assert.Equal(t, "2025-07-14", decoded["week1"].WeekStart)

	assert.Contains(t, text, `"dailyBreakdown"`)
	assert.Contains(t, text, `"autoClockoutAlerts"`)
	assert.Contains(t, text, `"category_stats"`)
	assert.Contains(t, text, `"Drive-Thru"`)
}

func TestRenderModuleEmptyBatch(t *testing.T) {
	out, err := RenderModule(nil)
	require.NoError(t, err)
	assert.Equal(t, "const v4Data = {\n};\n", string(out))
}

func TestTransformDocument(t *testing.T) {
	doc := artifact.NewDocument(
		[]domain.RunResult{sampleRun("SDR", "2025-07-14", 1000)},
		domain.BatchSummary{TotalRuns: 1, Succeeded: 1, SuccessRate: 100},
	)
	out, err := Transform(doc)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"week1"`)
}
