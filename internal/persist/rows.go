package persist

import (
	"github.com/JPRanx/omni-v4-sub001/internal/domain"
	"github.com/JPRanx/omni-v4-sub001/internal/pipeline"
)

// DailyRow is one daily_operations row.
type DailyRow struct {
	BusinessDate   string
	RestaurantCode string
	TotalSales     float64
	LaborCost      float64
	LaborPercent   float64
	LaborHours     float64
	EmployeeCount  int
	NetProfit      float64
	ProfitMargin   float64
}

// ShiftRow is one shift_operations row. Two are written per run.
type ShiftRow struct {
	BusinessDate    string
	RestaurantCode  string
	ShiftName       string
	Sales           float64
	LaborCost       float64
	OrderCount      int
	CategoryStats   domain.CategoryBreakdown
	Manager         string
	Voids           float64
	CashCollected   float64
	TipsDistributed float64
	VendorPayouts   float64
	NetCash         float64
}

// TimeslotRow is one timeslot_results row. Sixty-four are written per run,
// one per window, empty windows included.
type TimeslotRow struct {
	BusinessDate    string
	RestaurantCode  string
	TimeslotIndex   int
	TimeslotLabel   string
	ShiftName       string
	Orders          int
	Sales           float64
	LaborCost       float64
	EfficiencyScore float64
	Grade           string
	PassFail        bool
	CategoryStats   domain.CategoryBreakdown
}

// RunRows is the complete typed payload persisted for one run.
type RunRows struct {
	Daily     DailyRow
	Shifts    []ShiftRow
	Timeslots []TimeslotRow
}

// cogsSourceVendorPayouts charges the day's vendor payouts as cost of
// goods when computing net profit. "none" leaves COGS at zero.
const cogsSourceVendorPayouts = "vendor_payouts"

// BuildRows assembles the three-table payload from a completed run
// context. Timeslot sales and labor are the shift figures apportioned by
// each window's share of the shift's graded orders, so window rows sum
// back to the shift rows.
func BuildRows(pc *pipeline.Context, cogsSource string) (RunRows, error) {
	sales, ok := pc.Sales()
	if !ok {
		return RunRows{}, pipeline.Errorf(pipeline.KindInternal, "sales absent from context")
	}
	report, ok := pc.LaborReport()
	if !ok {
		return RunRows{}, pipeline.Errorf(pipeline.KindInternal, "labor report absent from context")
	}
	laborMetrics, ok := pc.LaborMetrics()
	if !ok {
		return RunRows{}, pipeline.Errorf(pipeline.KindInternal, "labor metrics absent from context")
	}
	shiftMetrics, ok := pc.ShiftMetrics()
	if !ok {
		return RunRows{}, pipeline.Errorf(pipeline.KindInternal, "shift metrics absent from context")
	}
	shiftStats, ok := pc.ShiftStats()
	if !ok {
		return RunRows{}, pipeline.Errorf(pipeline.KindInternal, "shift category stats absent from context")
	}
	slots, ok := pc.Timeslots()
	if !ok {
		return RunRows{}, pipeline.Errorf(pipeline.KindInternal, "timeslots absent from context")
	}

	cashFlow := pc.CashFlow()

	var cogs float64
	if cogsSource == cogsSourceVendorPayouts && cashFlow != nil {
		cogs = cashFlow.DayTotal().VendorPayouts
	}
	netProfit := sales - report.TotalLaborCost - cogs
	margin := 0.0
	if sales > 0 {
		margin = netProfit / sales * 100
	}

	rows := RunRows{
		Daily: DailyRow{
			BusinessDate:   pc.Date,
			RestaurantCode: pc.Restaurant,
			TotalSales:     sales,
			LaborCost:      report.TotalLaborCost,
			LaborPercent:   laborMetrics.LaborPercentage,
			LaborHours:     report.TotalHoursWorked,
			EmployeeCount:  report.EmployeeCount,
			NetProfit:      netProfit,
			ProfitMargin:   margin,
		},
	}

	for _, shift := range domain.Shifts() {
		figures := shiftMetrics.Figures(shift)
		var cash domain.ShiftCash
		if cashFlow != nil {
			cash = cashFlow.ShiftTotals(shift)
		}
		rows.Shifts = append(rows.Shifts, ShiftRow{
			BusinessDate:    pc.Date,
			RestaurantCode:  pc.Restaurant,
			ShiftName:       shift.Title(),
			Sales:           figures.Sales,
			LaborCost:       figures.LaborCost,
			OrderCount:      figures.OrderCount,
			CategoryStats:   shiftStats.Get(shift),
			Manager:         figures.Manager,
			Voids:           figures.Voids,
			CashCollected:   cash.CashCollected,
			TipsDistributed: cash.TipsDistributed,
			VendorPayouts:   cash.VendorPayouts,
			NetCash:         cash.NetCash,
		})
	}

	gradedPerShift := make(map[domain.Shift]int, 2)
	for _, slot := range slots {
		gradedPerShift[slot.Shift] += slot.TotalOrders()
	}

	for _, slot := range slots {
		figures := shiftMetrics.Figures(slot.Shift)
		share := 0.0
		if n := gradedPerShift[slot.Shift]; n > 0 {
			share = float64(slot.TotalOrders()) / float64(n)
		}
		rows.Timeslots = append(rows.Timeslots, TimeslotRow{
			BusinessDate:    pc.Date,
			RestaurantCode:  pc.Restaurant,
			TimeslotIndex:   slot.Index,
			TimeslotLabel:   slot.TimeWindow,
			ShiftName:       slot.Shift.Title(),
			Orders:          slot.TotalOrders(),
			Sales:           figures.Sales * share,
			LaborCost:       figures.LaborCost * share,
			EfficiencyScore: slot.PassRate,
			Grade:           slot.Grade,
			PassFail:        slot.PassedStandards,
			CategoryStats:   slot.Stats,
		})
	}

	return rows, nil
}
