package categorization

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JPRanx/omni-v4-sub001/internal/config"
	"github.com/JPRanx/omni-v4-sub001/internal/datasource"
	"github.com/JPRanx/omni-v4-sub001/internal/domain"
	"github.com/JPRanx/omni-v4-sub001/internal/pipeline"
)

func newStage(t *testing.T) *Stage {
	t.Helper()
	store, err := config.LoadStore("", "", "")
	require.NoError(t, err)
	return New(Config{Settings: store, Logger: zap.NewNop()})
}

func newRunContext(t *testing.T) *pipeline.Context {
	t.Helper()
	day := time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)
	return pipeline.NewContext("downtown", "2025-07-14", day, t.TempDir())
}

func kitchenColumns() []string {
	return []string{"Check #", "Table", "Fulfillment Time", "Fire Time", "Server"}
}

func TestRunDriveThruByCashDrawer(t *testing.T) {
	pc := newRunContext(t)
	pc.SetTable("kitchen", datasource.NewTable(kitchenColumns(), [][]string{
		{"5", "", "3 minutes and 12 seconds", "7/14/2025 11:05 AM", "Unknown Person"},
	}))
	pc.SetTable("eod", datasource.NewTable([]string{"Check #", "Table", "Cash Drawer"}, [][]string{
		{"5", "", "DRIVE THRU 1"},
	}))
	pc.SetTable("orders", datasource.NewTable([]string{"Order #", "Opened", "Server", "Amount", "Duration (Opened to Paid)"}, [][]string{
		{"5", "7/14/2025 11:04 AM", "Unknown Person", "12.50", "6 minutes and 23 seconds"},
	}))

	require.NoError(t, newStage(t).Run(context.Background(), pc))

	orders, ok := pc.CategorizedOrders()
	require.True(t, ok)
	require.Len(t, orders, 1)
	assert.Equal(t, domain.CategoryDriveThru, orders[0].Category)
	assert.InDelta(t, 3.2, orders[0].FulfillmentMinutes, 0.001)
	assert.InDelta(t, 6.383, orders[0].OrderDurationMinutes, 0.001)
	assert.Equal(t, domain.CategoryDriveThru, pc.OrderCategories()["5"])
	assert.Equal(t, 1, pc.RuleHits()[ruleDriveThruDrawer])
}

func TestRunLobbyByTableMajority(t *testing.T) {
	pc := newRunContext(t)
	pc.SetTable("kitchen", datasource.NewTable(kitchenColumns(), [][]string{
		{"23", "23", "18 minutes and 45 seconds", "7/14/2025 12:30 PM", "Ana Perez"},
	}))
	pc.SetTable("eod", datasource.NewTable([]string{"Check #", "Table", "Cash Drawer"}, [][]string{
		{"23", "23", "MAIN 1"},
	}))
	pc.SetTable("orders", datasource.NewTable([]string{"Order #", "Opened", "Server", "Amount", "Table", "Duration (Opened to Paid)"}, [][]string{
		{"23", "7/14/2025 12:28 PM", "Ana Perez", "48.00", "23", "25 minutes and 10 seconds"},
	}))

	require.NoError(t, newStage(t).Run(context.Background(), pc))

	orders, _ := pc.CategorizedOrders()
	require.Len(t, orders, 1)
	assert.Equal(t, domain.CategoryLobby, orders[0].Category)
	assert.Equal(t, "23", orders[0].Table)
	assert.Equal(t, 1, pc.RuleHits()[ruleLobbyMultiTable])
}

func TestRunToGoDefault(t *testing.T) {
	pc := newRunContext(t)
	pc.SetTable("kitchen", datasource.NewTable(kitchenColumns(), [][]string{
		{"7", "", "12 minutes and 30 seconds", "7/14/2025 1:10 PM", "Ben Cho"},
	}))
	pc.SetTable("orders", datasource.NewTable([]string{"Order #", "Opened", "Server", "Amount", "Duration (Opened to Paid)"}, [][]string{
		{"7", "7/14/2025 1:08 PM", "Ben Cho", "15.00", "15 minutes and 20 seconds"},
	}))

	require.NoError(t, newStage(t).Run(context.Background(), pc))

	orders, _ := pc.CategorizedOrders()
	require.Len(t, orders, 1)
	assert.Equal(t, domain.CategoryToGo, orders[0].Category)
	assert.Equal(t, 1, pc.RuleHits()[ruleToGoDefault])
}

func TestRunServerPositionLookup(t *testing.T) {
	pc := newRunContext(t)
	pc.SetTable("kitchen", datasource.NewTable(kitchenColumns(), [][]string{
		{"31", "4", "9 minutes and 0 seconds", "7/14/2025 6:15 PM", "Ana Perez"},
		{"32", "", "5 minutes and 30 seconds", "7/14/2025 6:20 PM", "Dana Lee"},
	}))
	entries := []domain.TimeEntry{
		mustEntry(t, "Ana Perez", "Server", 9, 17),
		mustEntry(t, "Dana Lee", "Drive Thru Cashier", 14, 22),
	}
	pc.SetTimeEntries(entries)

	require.NoError(t, newStage(t).Run(context.Background(), pc))

	orders, _ := pc.CategorizedOrders()
	require.Len(t, orders, 2)
	assert.Equal(t, domain.CategoryLobby, orders[0].Category)
	assert.Equal(t, "server", orders[0].EmployeePosition)
	assert.Equal(t, domain.CategoryDriveThru, orders[1].Category)
	assert.Equal(t, 1, pc.RuleHits()[ruleLobbyServerTable])
	assert.Equal(t, 1, pc.RuleHits()[ruleDriveThruPosition])
}

func TestRunMissingKitchenFails(t *testing.T) {
	pc := newRunContext(t)
	pc.SetTable("orders", datasource.NewTable([]string{"Order #", "Opened", "Server", "Amount"}, [][]string{
		{"1", "7/14/2025 11:00 AM", "Ana Perez", "10.00"},
	}))

	err := newStage(t).Run(context.Background(), pc)
	require.Error(t, err)

	var perr *pipeline.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, pipeline.KindMissingFile, perr.Kind)
}

func TestRunSkipsMalformedAndDuplicateRows(t *testing.T) {
	pc := newRunContext(t)
	pc.SetTable("kitchen", datasource.NewTable(kitchenColumns(), [][]string{
		{"", "", "3 minutes", "7/14/2025 11:00 AM", ""},
		{"9", "", "4 minutes", "7/14/2025 11:01 AM", "Ben Cho"},
		{"9", "", "4 minutes", "7/14/2025 11:01 AM", "Ben Cho"},
	}))

	require.NoError(t, newStage(t).Run(context.Background(), pc))

	orders, _ := pc.CategorizedOrders()
	assert.Len(t, orders, 1)
	skipped, ok := pc.Meta("orders_skipped")
	require.True(t, ok)
	assert.Equal(t, "2", skipped)
}

func TestRunServiceMixSumsToHundred(t *testing.T) {
	pc := newRunContext(t)
	pc.SetTable("kitchen", datasource.NewTable(kitchenColumns(), [][]string{
		{"1", "12", "18 minutes", "7/14/2025 11:00 AM", "Ana Perez"},
		{"2", "", "3 minutes", "7/14/2025 11:05 AM", "Ben Cho"},
		{"3", "", "12 minutes", "7/14/2025 11:10 AM", "Ben Cho"},
	}))
	pc.SetTable("eod", datasource.NewTable([]string{"Check #", "Table", "Cash Drawer"}, [][]string{
		{"1", "12", "MAIN 1"},
	}))

	require.NoError(t, newStage(t).Run(context.Background(), pc))

	mix, ok := pc.ServiceMix()
	require.True(t, ok)
	assert.InDelta(t, 100.0, mix.Sum(), 0.01)
	assert.InDelta(t, 33.333, mix.Lobby, 0.001)
}

func TestRunShiftAssignmentByCutoff(t *testing.T) {
	pc := newRunContext(t)
	pc.SetTable("kitchen", datasource.NewTable(kitchenColumns(), [][]string{
		{"1", "", "12 minutes", "7/14/2025 11:00 AM", "Ana Perez"},
		{"2", "", "12 minutes", "7/14/2025 5:00 PM", "Ben Cho"},
	}))

	require.NoError(t, newStage(t).Run(context.Background(), pc))

	orders, _ := pc.CategorizedOrders()
	require.Len(t, orders, 2)
	assert.Equal(t, domain.ShiftMorning, orders[0].Shift)
	assert.Equal(t, domain.ShiftEvening, orders[1].Shift)
}

func TestRunNumericCheckNormalization(t *testing.T) {
	pc := newRunContext(t)
	pc.SetTable("kitchen", datasource.NewTable(kitchenColumns(), [][]string{
		{"42.0", "", "3 minutes", "7/14/2025 11:00 AM", "Ben Cho"},
	}))
	pc.SetTable("eod", datasource.NewTable([]string{"Check #", "Table", "Cash Drawer"}, [][]string{
		{"42", "", "DRIVE BOX"},
	}))

	require.NoError(t, newStage(t).Run(context.Background(), pc))

	orders, _ := pc.CategorizedOrders()
	require.Len(t, orders, 1)
	assert.Equal(t, "42", orders[0].CheckNumber)
	assert.Equal(t, domain.CategoryDriveThru, orders[0].Category)
}

func mustEntry(t *testing.T, name, title string, inHour, outHour int) domain.TimeEntry {
	t.Helper()
	day := time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)
	in := day.Add(time.Duration(inHour) * time.Hour)
	out := day.Add(time.Duration(outHour) * time.Hour)
	entry, err := domain.NewTimeEntry(name, title, in, out, float64(outHour-inHour), float64(outHour-inHour), false, []string{"manager"})
	require.NoError(t, err)
	return entry
}
