// Package dashboard turns batch artifacts into the dashboard data module
// and serves the output directory over HTTP.
//
// Purpose:
//
//	The transformer groups pipeline runs into Monday-anchored weeks and
//	emits a JavaScript module assigning the v4Data constant that the
//	dashboard front end loads. The server exposes the output directory
//	together with health, readiness, and metrics endpoints.
//
// Dependencies:
//   - github.com/go-chi/chi/v5: HTTP router
//   - github.com/prometheus/client_golang: Prometheus metrics
package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/JPRanx/omni-v4-sub001/internal/artifact"
	"github.com/JPRanx/omni-v4-sub001/internal/domain"
	"github.com/JPRanx/omni-v4-sub001/internal/timeutil"
)

// Week pairs a weekN key with its payload so module emission stays in
// chronological order regardless of how many weeks a batch spans.
type Week struct {
	Key  string
	Data WeekData
}

// WeekData is one Monday-anchored week of the dashboard module.
type WeekData struct {
	WeekStart          string           `json:"weekStart"`
	WeekEnd            string           `json:"weekEnd"`
	Overview           Overview         `json:"overview"`
	Restaurants        []RestaurantWeek `json:"restaurants"`
	AutoClockoutAlerts []ClockoutAlert  `json:"autoClockoutAlerts"`
}

// Overview carries the week's headline aggregates across restaurants.
type Overview struct {
	TotalSales        float64 `json:"totalSales"`
	TotalLaborCost    float64 `json:"totalLaborCost"`
	LaborPercentage   float64 `json:"laborPercentage"`
	TotalOrders       int     `json:"totalOrders"`
	TotalOvertimeCost float64 `json:"totalOvertimeCost"`
	SuccessfulRuns    int     `json:"successfulRuns"`
	FailedRuns        int     `json:"failedRuns"`
}

// RestaurantWeek is one restaurant's slice of a week.
type RestaurantWeek struct {
	Code            string      `json:"code"`
	TotalSales      float64     `json:"totalSales"`
	TotalLaborCost  float64     `json:"totalLaborCost"`
	LaborPercentage float64     `json:"laborPercentage"`
	TotalOrders     int         `json:"totalOrders"`
	DailyBreakdown  []DayDetail `json:"dailyBreakdown"`
}

// DayDetail is the per-day block inside dailyBreakdown.
type DayDetail struct {
	Date            string            `json:"date"`
	DayName         string            `json:"dayName"`
	Sales           float64           `json:"sales"`
	LaborCost       float64           `json:"laborCost"`
	LaborPercentage float64           `json:"laborPercentage"`
	LaborStatus     string            `json:"laborStatus"`
	LaborGrade      string            `json:"laborGrade"`
	OrderCount      int               `json:"orderCount"`
	ServiceMix      domain.ServiceMix `json:"serviceMix"`
	QualityScore    float64           `json:"qualityScore"`
	Shifts          ShiftMap          `json:"shifts"`
	CashFlow        *CashSummary      `json:"cashFlow,omitempty"`
}

// ShiftMap is a struct rather than a map so the JSON keys stay in day
// order while still reading as a plain object from the front end.
type ShiftMap struct {
	Morning ShiftDetail `json:"morning"`
	Evening ShiftDetail `json:"evening"`
}

// ShiftDetail is one shift's block, carrying the category_stats breakdown
// and the shift's graded windows unchanged from the pipeline output.
type ShiftDetail struct {
	Sales         float64                  `json:"sales"`
	LaborCost     float64                  `json:"laborCost"`
	Manager       string                   `json:"manager,omitempty"`
	OrderCount    int                      `json:"orderCount"`
	Voids         float64                  `json:"voids"`
	NetCash       float64                  `json:"netCash"`
	CategoryStats domain.CategoryBreakdown `json:"category_stats"`
	Timeslots     []SlotDetail             `json:"timeslots"`
}

// SlotDetail is one graded 15-minute window inside a shift.
type SlotDetail struct {
	Window         string                   `json:"window"`
	Grade          string                   `json:"grade"`
	PassRate       float64                  `json:"passRate"`
	Passed         bool                     `json:"passed"`
	Orders         int                      `json:"orders"`
	CategoryStats  domain.CategoryBreakdown `json:"category_stats"`
	AvgFulfillment domain.AvgFulfillment    `json:"avgFulfillment"`
}

// CashSummary rolls both drawers up to a day total.
type CashSummary struct {
	CashCollected   float64 `json:"cashCollected"`
	TipsDistributed float64 `json:"tipsDistributed"`
	VendorPayouts   float64 `json:"vendorPayouts"`
	NetCash         float64 `json:"netCash"`
}

// ClockoutAlert is one auto-clockout correction surfaced to operators.
type ClockoutAlert struct {
	Restaurant      string  `json:"restaurant"`
	Date            string  `json:"date"`
	EmployeeName    string  `json:"employeeName"`
	JobTitle        string  `json:"jobTitle"`
	Role            string  `json:"role"`
	RecordedHours   float64 `json:"recordedHours"`
	SuggestedHours  float64 `json:"suggestedHours"`
	HoursDifference float64 `json:"hoursDifference"`
	CostImpact      float64 `json:"costImpact"`
}

// Transform renders a batch artifact into the dashboard data module.
func Transform(doc artifact.Document) ([]byte, error) {
	weeks, err := BuildWeeks(doc.PipelineRuns)
	if err != nil {
		return nil, err
	}
	return RenderModule(weeks)
}

type datedRun struct {
	run domain.RunResult
	day time.Time
}

// BuildWeeks groups runs into Monday-anchored weeks, earliest week first.
// Failed runs count toward the week's overview but contribute no metrics;
// a Sunday groups with the Monday six days earlier.
func BuildWeeks(runs []domain.RunResult) ([]Week, error) {
	byStart := make(map[time.Time][]datedRun)
	for _, r := range runs {
		day, err := timeutil.ParseDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("run %s/%s: %w", r.Restaurant, r.Date, err)
		}
		start := timeutil.WeekStart(day)
		byStart[start] = append(byStart[start], datedRun{run: r, day: day})
	}

	starts := make([]time.Time, 0, len(byStart))
	for s := range byStart {
		starts = append(starts, s)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	weeks := make([]Week, 0, len(starts))
	for i, start := range starts {
		weeks = append(weeks, Week{
			Key:  fmt.Sprintf("week%d", i+1),
			Data: buildWeek(start, byStart[start]),
		})
	}
	return weeks, nil
}

// RenderModule emits the JavaScript module assigning the v4Data constant.
func RenderModule(weeks []Week) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("const v4Data = {")
	for i, w := range weeks {
		if i > 0 {
			buf.WriteByte(',')
		}
		data, err := json.MarshalIndent(w.Data, "  ", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", w.Key, err)
		}
		fmt.Fprintf(&buf, "\n  %q: ", w.Key)
		buf.Write(data)
	}
	buf.WriteString("\n};\n")
	return buf.Bytes(), nil
}

func buildWeek(start time.Time, runs []datedRun) WeekData {
	week := WeekData{
		WeekStart:          timeutil.FormatDate(start),
		WeekEnd:            timeutil.FormatDate(start.AddDate(0, 0, 6)),
		Restaurants:        []RestaurantWeek{},
		AutoClockoutAlerts: []ClockoutAlert{},
	}

	byCode := make(map[string][]datedRun)
	for _, dr := range runs {
		if !dr.run.Success {
			week.Overview.FailedRuns++
			continue
		}
		week.Overview.SuccessfulRuns++
		week.Overview.TotalOvertimeCost += dr.run.Overtime.TotalOvertimeCost
		byCode[dr.run.Restaurant] = append(byCode[dr.run.Restaurant], dr)
		for _, a := range dr.run.AutoClockout.Alerts {
			week.AutoClockoutAlerts = append(week.AutoClockoutAlerts, ClockoutAlert{
				Restaurant:      dr.run.Restaurant,
				Date:            dr.run.Date,
				EmployeeName:    a.EmployeeName,
				JobTitle:        a.JobTitle,
				Role:            string(a.Role),
				RecordedHours:   a.RecordedHours,
				SuggestedHours:  a.SuggestedHours,
				HoursDifference: a.HoursDifference,
				CostImpact:      a.CostImpact,
			})
		}
	}

	codes := make([]string, 0, len(byCode))
	for code := range byCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		rw := buildRestaurant(code, byCode[code])
		week.Overview.TotalSales += rw.TotalSales
		week.Overview.TotalLaborCost += rw.TotalLaborCost
		week.Overview.TotalOrders += rw.TotalOrders
		week.Restaurants = append(week.Restaurants, rw)
	}
	week.Overview.LaborPercentage = percentage(week.Overview.TotalLaborCost, week.Overview.TotalSales)

	sort.Slice(week.AutoClockoutAlerts, func(i, j int) bool {
		a, b := week.AutoClockoutAlerts[i], week.AutoClockoutAlerts[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Restaurant != b.Restaurant {
			return a.Restaurant < b.Restaurant
		}
		return a.EmployeeName < b.EmployeeName
	})
	return week
}

func buildRestaurant(code string, runs []datedRun) RestaurantWeek {
	sort.Slice(runs, func(i, j int) bool { return runs[i].run.Date < runs[j].run.Date })
	rw := RestaurantWeek{Code: code, DailyBreakdown: make([]DayDetail, 0, len(runs))}
	for _, dr := range runs {
		day := buildDay(dr)
		rw.TotalSales += day.Sales
		rw.TotalLaborCost += day.LaborCost
		rw.TotalOrders += day.OrderCount
		rw.DailyBreakdown = append(rw.DailyBreakdown, day)
	}
	rw.LaborPercentage = percentage(rw.TotalLaborCost, rw.TotalSales)
	return rw
}

func buildDay(dr datedRun) DayDetail {
	r := dr.run
	day := DayDetail{
		Date:            r.Date,
		DayName:         timeutil.DayName(timeutil.DayOfWeek(dr.day)),
		Sales:           r.Sales,
		LaborCost:       r.Labor.TotalLaborCost,
		LaborPercentage: r.LaborMetrics.LaborPercentage,
		LaborStatus:     string(r.LaborMetrics.Status),
		LaborGrade:      r.LaborMetrics.Grade,
		OrderCount:      r.Shifts.Morning.OrderCount + r.Shifts.Evening.OrderCount,
		ServiceMix:      r.ServiceMix,
		QualityScore:    r.Quality.Score,
		Shifts: ShiftMap{
			Morning: buildShift(domain.ShiftMorning, r),
			Evening: buildShift(domain.ShiftEvening, r),
		},
	}
	if r.CashFlow != nil {
		total := r.CashFlow.DayTotal()
		day.CashFlow = &CashSummary{
			CashCollected:   total.CashCollected,
			TipsDistributed: total.TipsDistributed,
			VendorPayouts:   total.VendorPayouts,
			NetCash:         total.NetCash,
		}
	}
	return day
}

func buildShift(s domain.Shift, r domain.RunResult) ShiftDetail {
	fig := r.Shifts.Figures(s)
	det := ShiftDetail{
		Sales:         fig.Sales,
		LaborCost:     fig.LaborCost,
		Manager:       fig.Manager,
		OrderCount:    fig.OrderCount,
		Voids:         fig.Voids,
		CategoryStats: r.ShiftStats.Get(s),
		Timeslots:     make([]SlotDetail, 0, domain.WindowsPerShift),
	}
	if r.CashFlow != nil {
		det.NetCash = r.CashFlow.ShiftTotals(s).NetCash
	}
	for _, t := range r.Timeslots {
		if t.Shift != s {
			continue
		}
		det.Timeslots = append(det.Timeslots, SlotDetail{
			Window:         t.TimeWindow,
			Grade:          t.Grade,
			PassRate:       t.PassRate,
			Passed:         t.PassedStandards,
			Orders:         t.TotalOrders(),
			CategoryStats:  t.Stats,
			AvgFulfillment: t.AvgFulfillment,
		})
	}
	return det
}

func percentage(cost, sales float64) float64 {
	if sales <= 0 {
		return 0
	}
	return cost / sales * 100
}
