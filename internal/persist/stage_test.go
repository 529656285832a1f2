package persist

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JPRanx/omni-v4-sub001/internal/datasource"
	"github.com/JPRanx/omni-v4-sub001/internal/domain"
	"github.com/JPRanx/omni-v4-sub001/internal/pipeline"
)

type fakeClient struct {
	written []RunRows
	err     error
}

func (f *fakeClient) WriteRun(_ context.Context, rows RunRows) error {
	if f.err != nil {
		return f.err
	}
	f.written = append(f.written, rows)
	return nil
}

// completedContext seeds a context the way a full pipeline pass would,
// with two windows carrying orders and the rest empty.
func completedContext() *pipeline.Context {
	pc := pipeline.NewContext("SDR", "2025-07-14",
		time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC), "/tmp/data")

	pc.SetSales(3000.0)
	pc.SetLaborReport(domain.LaborReport{
		Restaurant: "SDR", Date: "2025-07-14",
		TotalHoursWorked: 120.0, TotalLaborCost: 900.0, EmployeeCount: 9,
	})
	pc.SetLaborMetrics(domain.LaborMetrics{LaborPercentage: 30.0, Status: domain.LaborCritical, Grade: "D"})
	pc.SetShiftMetrics(domain.ShiftMetrics{
		Morning: domain.ShiftFigures{Sales: 1800.0, LaborCost: 540.0, Manager: "Ana Torres", OrderCount: 24},
		Evening: domain.ShiftFigures{Sales: 1200.0, LaborCost: 360.0, Manager: "Luis Vega", OrderCount: 16},
		Method:  domain.SplitByTimestamps, MorningRatio: 0.6,
	})

	var stats domain.ShiftCategoryStats
	stats.Merge(domain.ShiftMorning, domain.CategoryLobby, domain.CategoryStats{Total: 3, Passed: 3})
	stats.Merge(domain.ShiftEvening, domain.CategoryDriveThru, domain.CategoryStats{Total: 1, Passed: 1})
	pc.SetShiftStats(stats)

	slots := make([]domain.Timeslot, domain.WindowsPerDay)
	for i := range slots {
		shift := domain.ShiftMorning
		if i >= domain.WindowsPerShift {
			shift = domain.ShiftEvening
		}
		slots[i] = domain.Timeslot{Index: i, TimeWindow: fmt.Sprintf("w%d", i), Shift: shift, Grade: "N/A"}
	}
	slots[22].Stats.Set(domain.CategoryLobby, domain.CategoryStats{Total: 3, Passed: 3})
	slots[22].PassRate = 1.0
	slots[22].PassedStandards = true
	slots[22].Grade = "A+"
	slots[23].Stats.Set(domain.CategoryLobby, domain.CategoryStats{Total: 1, Passed: 1})
	slots[23].PassRate = 1.0
	slots[23].PassedStandards = true
	slots[23].Grade = "A+"
	slots[40].Stats.Set(domain.CategoryDriveThru, domain.CategoryStats{Total: 1, Passed: 1})
	slots[40].PassRate = 1.0
	slots[40].PassedStandards = true
	slots[40].Grade = "A+"
	pc.SetTimeslots(slots)

	pc.SetCashFlow(&domain.CashFlow{
		Morning: domain.ShiftCash{CashCollected: 500, TipsDistributed: 50, VendorPayouts: 120, NetCash: 330},
		Evening: domain.ShiftCash{CashCollected: 400, TipsDistributed: 40, VendorPayouts: 60, NetCash: 300},
	})
	return pc
}

func TestBuildRowsDaily(t *testing.T) {
	rows, err := BuildRows(completedContext(), "vendor_payouts")
	require.NoError(t, err)

	d := rows.Daily
	assert.Equal(t, "2025-07-14", d.BusinessDate)
	assert.Equal(t, "SDR", d.RestaurantCode)
	assert.InDelta(t, 3000.0, d.TotalSales, 1e-9)
	assert.InDelta(t, 900.0, d.LaborCost, 1e-9)
	assert.InDelta(t, 30.0, d.LaborPercent, 1e-9)
	assert.InDelta(t, 120.0, d.LaborHours, 1e-9)
	assert.Equal(t, 9, d.EmployeeCount)
	// COGS comes from the day's vendor payouts: 3000 - 900 - 180.
	assert.InDelta(t, 1920.0, d.NetProfit, 1e-9)
	assert.InDelta(t, 64.0, d.ProfitMargin, 1e-9)
}

func TestBuildRowsCOGSNone(t *testing.T) {
	rows, err := BuildRows(completedContext(), "none")
	require.NoError(t, err)

	assert.InDelta(t, 2100.0, rows.Daily.NetProfit, 1e-9)
	assert.InDelta(t, 70.0, rows.Daily.ProfitMargin, 1e-9)
}

func TestBuildRowsWithoutCashFlow(t *testing.T) {
	pc := completedContext()
	pc.SetCashFlow(nil)

	rows, err := BuildRows(pc, "vendor_payouts")
	require.NoError(t, err)

	assert.InDelta(t, 2100.0, rows.Daily.NetProfit, 1e-9, "no cash data means zero COGS")
	for _, sr := range rows.Shifts {
		assert.Zero(t, sr.CashCollected)
		assert.Zero(t, sr.NetCash)
	}
}

func TestBuildRowsZeroSales(t *testing.T) {
	pc := completedContext()
	pc.SetSales(0)

	rows, err := BuildRows(pc, "none")
	require.NoError(t, err)
	assert.InDelta(t, -900.0, rows.Daily.NetProfit, 1e-9)
	assert.Zero(t, rows.Daily.ProfitMargin)
}

func TestBuildRowsShifts(t *testing.T) {
	rows, err := BuildRows(completedContext(), "vendor_payouts")
	require.NoError(t, err)
	require.Len(t, rows.Shifts, 2)

	morning := rows.Shifts[0]
	assert.Equal(t, "Morning", morning.ShiftName)
	assert.InDelta(t, 1800.0, morning.Sales, 1e-9)
	assert.InDelta(t, 540.0, morning.LaborCost, 1e-9)
	assert.Equal(t, 24, morning.OrderCount)
	assert.Equal(t, "Ana Torres", morning.Manager)
	assert.Zero(t, morning.Voids)
	assert.InDelta(t, 500.0, morning.CashCollected, 1e-9)
	assert.InDelta(t, 330.0, morning.NetCash, 1e-9)
	assert.Equal(t, 3, morning.CategoryStats.Lobby.Passed)

	evening := rows.Shifts[1]
	assert.Equal(t, "Evening", evening.ShiftName)
	assert.InDelta(t, 1200.0, evening.Sales, 1e-9)
	assert.Equal(t, "Luis Vega", evening.Manager)
	assert.Equal(t, 1, evening.CategoryStats.DriveThru.Passed)
}

func TestBuildRowsTimeslotShares(t *testing.T) {
	rows, err := BuildRows(completedContext(), "vendor_payouts")
	require.NoError(t, err)
	require.Len(t, rows.Timeslots, domain.WindowsPerDay)

	byIndex := make(map[int]TimeslotRow, len(rows.Timeslots))
	for _, tr := range rows.Timeslots {
		byIndex[tr.TimeslotIndex] = tr
	}

	// Morning graded orders: 3 in window 22, 1 in window 23. Shares are
	// 3/4 and 1/4 of the morning figures.
	assert.InDelta(t, 1350.0, byIndex[22].Sales, 1e-9)
	assert.InDelta(t, 405.0, byIndex[22].LaborCost, 1e-9)
	assert.Equal(t, 3, byIndex[22].Orders)
	assert.True(t, byIndex[22].PassFail)
	assert.InDelta(t, 450.0, byIndex[23].Sales, 1e-9)

	// The lone evening order takes the whole evening figures.
	assert.InDelta(t, 1200.0, byIndex[40].Sales, 1e-9)
	assert.Equal(t, "Evening", byIndex[40].ShiftName)

	// Empty windows carry zero money and N/A grades.
	assert.Zero(t, byIndex[0].Sales)
	assert.Equal(t, "N/A", byIndex[0].Grade)
	assert.False(t, byIndex[0].PassFail)

	var morningSales float64
	for _, tr := range rows.Timeslots {
		if tr.ShiftName == "Morning" {
			morningSales += tr.Sales
		}
	}
	assert.InDelta(t, 1800.0, morningSales, 1e-9, "window rows sum back to the shift row")
}

func TestBuildRowsMissingInputFails(t *testing.T) {
	pc := pipeline.NewContext("SDR", "2025-07-14",
		time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC), "/tmp/data")
	pc.SetSales(100)

	_, err := BuildRows(pc, "none")
	require.Error(t, err)

	var perr *pipeline.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, pipeline.KindInternal, perr.Kind)
}

func TestStageRunWritesThroughClient(t *testing.T) {
	client := &fakeClient{}
	stage := New(Config{Client: client, COGSSource: "vendor_payouts"})

	pc := completedContext()
	pc.SetTable("orders", datasource.NewTable([]string{"Order #"}, [][]string{{"1"}}))

	require.NoError(t, stage.Run(context.Background(), pc))
	require.Len(t, client.written, 1)
	assert.Len(t, client.written[0].Shifts, 2)
	assert.Len(t, client.written[0].Timeslots, domain.WindowsPerDay)
	assert.False(t, pc.HasTable("orders"), "raw tables are released after persistence")
}

func TestStageRunWrapsClientFailure(t *testing.T) {
	client := &fakeClient{err: fmt.Errorf("insert %s: %w", TableShift, errors.New("connection reset"))}
	stage := New(Config{Client: client, COGSSource: "none"})

	err := stage.Run(context.Background(), completedContext())
	require.Error(t, err)

	var perr *pipeline.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, pipeline.KindStorage, perr.Kind)
	assert.Contains(t, err.Error(), TableShift, "failures name the attempted table")
}

func TestStageRunNilClientSkips(t *testing.T) {
	stage := New(Config{COGSSource: "none"})

	pc := completedContext()
	pc.SetTable("orders", datasource.NewTable([]string{"Order #"}, [][]string{{"1"}}))

	require.NoError(t, stage.Run(context.Background(), pc))
	assert.False(t, pc.HasTable("orders"), "raw tables are released even without a database")
}
