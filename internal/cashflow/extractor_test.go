package cashflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JPRanx/omni-v4-sub001/internal/datasource"
	"github.com/JPRanx/omni-v4-sub001/internal/domain"
)

var business = time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)

func cashColumns() []string {
	return []string{"Action", "Amount", "Payout Reason", "Created Date", "Employee", "Cash Drawer"}
}

func TestExtractShiftRollup(t *testing.T) {
	rows := [][]string{
		{"CASH_PAYMENT", "500.00", "", "7/14/2025 10:00 AM", "Ana Perez", "MAIN 1"},
		{"TIP_OUT", "-50.00", "", "7/14/2025 11:00 AM", "Ana Perez", "MAIN 1"},
		{"PAY_OUT", "-120.00", "Sysco delivery", "7/14/2025 9:30 AM", "Ana Perez", "MAIN 1"},
		{"CASH_PAYMENT", "400.00", "", "7/14/2025 5:00 PM", "Ben Cho", "MAIN 2"},
		{"TIP_OUT", "-40.00", "", "7/14/2025 9:00 PM", "Ben Cho", "MAIN 2"},
		{"PAY_OUT", "-60.00", "beer run", "7/14/2025 6:30 PM", "Ben Cho", "MAIN 2"},
	}
	flow := NewExtractor(14, zap.NewNop()).Extract(datasource.NewTable(cashColumns(), rows), business)
	require.NotNil(t, flow)

	assert.InDelta(t, 500, flow.Morning.CashCollected, 0.001)
	assert.InDelta(t, 50, flow.Morning.TipsDistributed, 0.001)
	assert.InDelta(t, 120, flow.Morning.VendorPayouts, 0.001)
	assert.InDelta(t, 330, flow.Morning.NetCash, 0.001)

	assert.InDelta(t, 400, flow.Evening.CashCollected, 0.001)
	assert.InDelta(t, 40, flow.Evening.TipsDistributed, 0.001)
	assert.InDelta(t, 60, flow.Evening.VendorPayouts, 0.001)
	assert.InDelta(t, 300, flow.Evening.NetCash, 0.001)

	day := flow.DayTotal()
	assert.InDelta(t, 900, day.CashCollected, 0.001)
	assert.InDelta(t, 90, day.TipsDistributed, 0.001)
	assert.InDelta(t, 180, day.VendorPayouts, 0.001)
	assert.InDelta(t, 630, day.NetCash, 0.001)
}

func TestExtractNetCashInvariant(t *testing.T) {
	rows := [][]string{
		{"CASH_PAYMENT", "321.55", "", "7/14/2025 8:00 AM", "", "MAIN 1"},
		{"TIP_OUT", "-41.30", "", "7/14/2025 9:00 AM", "", "MAIN 1"},
		{"PAY_OUT", "-77.25", "produce", "7/14/2025 10:00 AM", "", "MAIN 1"},
	}
	flow := NewExtractor(14, zap.NewNop()).Extract(datasource.NewTable(cashColumns(), rows), business)
	require.NotNil(t, flow)

	for _, shift := range domain.Shifts() {
		totals := flow.ShiftTotals(shift)
		assert.InDelta(t, totals.CashCollected-totals.TipsDistributed-totals.VendorPayouts,
			totals.NetCash, 0.0001)
	}
	day := flow.DayTotal()
	assert.InDelta(t, day.CashCollected-day.TipsDistributed-day.VendorPayouts, day.NetCash, 0.0001)
}

func TestExtractPayoutRecords(t *testing.T) {
	rows := [][]string{
		{"PAY_OUT", "-89.99", "US Foods invoice", "7/14/2025 7:45 AM", "Ana Perez", "MAIN 1"},
		{"Pay Out", "-25.00", "window cleaning", "7/14/2025 3:15 PM", "Ben Cho", "MAIN 2"},
	}
	flow := NewExtractor(14, zap.NewNop()).Extract(datasource.NewTable(cashColumns(), rows), business)
	require.NotNil(t, flow)
	require.Len(t, flow.Payouts, 2)

	first := flow.Payouts[0]
	assert.InDelta(t, 89.99, first.Amount, 0.001)
	assert.Equal(t, "US Foods", first.VendorName)
	assert.Equal(t, "Ana Perez", first.Manager)
	assert.Equal(t, domain.ShiftMorning, first.Shift)

	second := flow.Payouts[1]
	assert.Equal(t, "Window", second.VendorName)
	assert.Equal(t, domain.ShiftEvening, second.Shift)
}

func TestExtractDrawerTotals(t *testing.T) {
	rows := [][]string{
		{"CASH_PAYMENT", "100.00", "", "7/14/2025 9:00 AM", "", "MAIN 1"},
		{"CASH_COLLECTED", "55.00", "", "7/14/2025 10:00 AM", "", "MAIN 1"},
		{"CASH_PAYMENT", "70.00", "", "7/14/2025 4:00 PM", "", "DRIVE 1"},
	}
	flow := NewExtractor(14, zap.NewNop()).Extract(datasource.NewTable(cashColumns(), rows), business)
	require.NotNil(t, flow)

	assert.InDelta(t, 155, flow.DrawerTotals["MAIN 1"], 0.001)
	assert.InDelta(t, 70, flow.DrawerTotals["DRIVE 1"], 0.001)
	assert.InDelta(t, 155, flow.Morning.CashCollected, 0.001)
	assert.InDelta(t, 70, flow.Evening.CashCollected, 0.001)
}

func TestExtractSkipsMalformedAndUnknownRows(t *testing.T) {
	rows := [][]string{
		{"CASH_PAYMENT", "not-money", "", "7/14/2025 9:00 AM", "", "MAIN 1"},
		{"NO_SALE", "0.00", "", "7/14/2025 9:05 AM", "", "MAIN 1"},
		{"CASH_PAYMENT", "25.00", "", "7/14/2025 9:10 AM", "", "MAIN 1"},
	}
	flow := NewExtractor(14, zap.NewNop()).Extract(datasource.NewTable(cashColumns(), rows), business)
	require.NotNil(t, flow)
	assert.InDelta(t, 25, flow.Morning.CashCollected, 0.001)
	assert.Empty(t, flow.Payouts)
}

func TestExtractNilTable(t *testing.T) {
	assert.Nil(t, NewExtractor(14, zap.NewNop()).Extract(nil, business))
}

func TestDeriveVendor(t *testing.T) {
	tests := []struct {
		reason string
		vendor string
	}{
		{"Sysco weekly delivery", "Sysco Food Services"},
		{"SYSCO", "Sysco Food Services"},
		{"US Foods invoice 8812", "US Foods"},
		{"usf produce", "US Foods"},
		{"Labatt order", "Labatt (Beverage)"},
		{"beer delivery", "Labatt (Beverage)"},
		{"soft drink restock", "Labatt (Beverage)"},
		{"Restaurant Depot run", "Restaurant Depot"},
		{"fresh vegetables", "Produce Supplier"},
		{"fruit for bar", "Produce Supplier"},
		{"window cleaning", "Window"},
		{"", "Other Vendor"},
		{"   ", "Other Vendor"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.vendor, DeriveVendor(tt.reason), "reason %q", tt.reason)
	}
}
