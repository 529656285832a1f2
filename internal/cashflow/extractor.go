// Package cashflow extracts per-shift cash movement from the cash
// management export: collections, tip-outs, and vendor payouts with
// derived vendor names.
package cashflow

import (
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/JPRanx/omni-v4-sub001/internal/datasource"
	"github.com/JPRanx/omni-v4-sub001/internal/domain"
	"github.com/JPRanx/omni-v4-sub001/internal/timeutil"
)

// Handled action types after normalization.
const (
	actionPayOut        = "PAY_OUT"
	actionTipOut        = "TIP_OUT"
	actionCashPayment   = "CASH_PAYMENT"
	actionCashCollected = "CASH_COLLECTED"
)

// vendorRule maps payout reason keywords to a canonical vendor. Rules are
// checked in priority order; the first keyword hit wins.
type vendorRule struct {
	keywords []string
	vendor   string
}

var vendorRules = []vendorRule{
	{[]string{"sysco"}, "Sysco Food Services"},
	{[]string{"us foods", "usf", "us food"}, "US Foods"},
	{[]string{"labatt", "beer", "beverage", "drink"}, "Labatt (Beverage)"},
	{[]string{"depot", "restaurant depot"}, "Restaurant Depot"},
	{[]string{"produce", "fresh", "vegetable", "fruit"}, "Produce Supplier"},
}

var titleCaser = cases.Title(language.English)

// Extractor pulls the cash flow summary out of a transaction table.
type Extractor struct {
	cutoffHour int
	logger     *zap.Logger
}

// NewExtractor creates an extractor splitting shifts at cutoffHour.
func NewExtractor(cutoffHour int, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{cutoffHour: cutoffHour, logger: logger}
}

// Extract aggregates the table into per-shift cash totals. Malformed rows
// are skipped. A nil table yields a nil summary; callers treat that as
// "cash data unavailable".
func (e *Extractor) Extract(table *datasource.Table, business time.Time) *domain.CashFlow {
	if table == nil {
		return nil
	}
	actionCol, ok := table.AnyColumn("Action", "Action Type")
	if !ok {
		e.logger.Warn("cash table missing action column, skipping cash flow")
		return nil
	}
	amountCol, ok := table.ColumnIndex("Amount")
	if !ok {
		e.logger.Warn("cash table missing amount column, skipping cash flow")
		return nil
	}
	reasonCol, hasReason := table.AnyColumn("Payout Reason", "Reason", "Comment")
	createdCol, hasCreated := table.AnyColumn("Created Date", "Created", "Date")
	employeeCol, hasEmployee := table.AnyColumn("Employee", "Manager")
	drawerCol, hasDrawer := table.AnyColumn("Cash Drawer", "Drawer")

	flow := &domain.CashFlow{DrawerTotals: make(map[string]float64)}

	for i := 0; i < table.Len(); i++ {
		action := normalizeAction(table.Cell(i, actionCol))
		amount, err := timeutil.ParseFloat(table.Cell(i, amountCol))
		if err != nil {
			e.logger.Debug("skipping cash row with bad amount",
				zap.Int("row", i+1), zap.Error(err))
			continue
		}
		// Payouts and tips arrive negative; work with magnitudes.
		magnitude := amount
		if magnitude < 0 {
			magnitude = -magnitude
		}

		var at time.Time
		if hasCreated {
			if t, perr := timeutil.ParseAt(table.Cell(i, createdCol), business); perr == nil {
				at = t
			}
		}
		shift := domain.ShiftMorning
		if !at.IsZero() && at.Hour() >= e.cutoffHour {
			shift = domain.ShiftEvening
		}

		drawer := ""
		if hasDrawer {
			drawer = table.Cell(i, drawerCol)
		}

		var delta domain.ShiftCash
		switch action {
		case actionCashPayment, actionCashCollected:
			delta.CashCollected = magnitude
			if drawer != "" {
				flow.DrawerTotals[drawer] += magnitude
			}
		case actionTipOut:
			delta.TipsDistributed = magnitude
		case actionPayOut:
			delta.VendorPayouts = magnitude
			reason := ""
			if hasReason {
				reason = table.Cell(i, reasonCol)
			}
			manager := ""
			if hasEmployee {
				manager = table.Cell(i, employeeCol)
			}
			payout, perr := domain.NewVendorPayout(magnitude, reason, DeriveVendor(reason), manager, drawer, shift, at)
			if perr != nil {
				e.logger.Debug("skipping zero payout", zap.Int("row", i+1), zap.Error(perr))
				continue
			}
			flow.Payouts = append(flow.Payouts, payout)
		default:
			continue
		}

		if shift == domain.ShiftEvening {
			flow.Evening = flow.Evening.Add(delta)
		} else {
			flow.Morning = flow.Morning.Add(delta)
		}
	}
	return flow
}

// DeriveVendor resolves a canonical vendor name from a payout reason. The
// keyword rules run in priority order; with no hit, the first word of the
// reason is title-cased, and an empty reason maps to "Other Vendor".
func DeriveVendor(reason string) string {
	lower := strings.ToLower(strings.TrimSpace(reason))
	for _, rule := range vendorRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.vendor
			}
		}
	}
	fields := strings.Fields(lower)
	if len(fields) == 0 {
		return "Other Vendor"
	}
	return titleCaser.String(fields[0])
}

func normalizeAction(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
