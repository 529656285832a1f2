// Package categorization assigns every fulfilled order to a service
// category by fusing signals from the kitchen, end-of-day, and order
// exports.
//
// Purpose:
//   The kitchen export drives the pass: each check number it contains
//   becomes one OrderRecord. Table presence across sources, the cash
//   drawer, the server's job title, and the kitchen/order durations feed
//   a short-circuit filter cascade that decides Lobby, Drive-Thru, or
//   ToGo. Malformed rows are skipped and counted, never fatal.
package categorization

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JPRanx/omni-v4-sub001/internal/config"
	"github.com/JPRanx/omni-v4-sub001/internal/datasource"
	"github.com/JPRanx/omni-v4-sub001/internal/domain"
	"github.com/JPRanx/omni-v4-sub001/internal/metrics"
	"github.com/JPRanx/omni-v4-sub001/internal/pipeline"
	"github.com/JPRanx/omni-v4-sub001/internal/timeutil"
)

// Stage is the order categorization stage.
type Stage struct {
	settings *config.Store
	logger   *zap.Logger
}

// Config configures the categorization stage.
type Config struct {
	Settings *config.Store
	Logger   *zap.Logger
}

// New creates the categorization stage.
func New(cfg Config) *Stage {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Stage{settings: cfg.Settings, logger: cfg.Logger}
}

// Name implements pipeline.Stage.
func (s *Stage) Name() string { return "categorization" }

// Run categorizes every check in the kitchen export and writes the order
// records, the per-check category map, the service mix, and the rule-hit
// counters to the context.
func (s *Stage) Run(ctx context.Context, pc *pipeline.Context) error {
	kitchen := pc.Table("kitchen")
	if kitchen == nil {
		return pipeline.Errorf(pipeline.KindMissingFile, "kitchen export absent: orders cannot be categorized")
	}

	joined := newJoin(pc)
	cutoff := s.settings.Shifts.CutoffHour

	orders := make([]domain.OrderRecord, 0, kitchen.Len())
	byCheck := make(map[string]domain.Category, kitchen.Len())
	ruleHits := make(map[string]int)
	counts := make(map[domain.Category]int)
	skipped := 0

	for i := 0; i < kitchen.Len(); i++ {
		sig, orderTime, ok := joined.signalsForRow(i)
		if !ok {
			skipped++
			continue
		}
		if _, dup := byCheck[sig.check]; dup {
			skipped++
			continue
		}

		shift := domain.ShiftMorning
		if !orderTime.IsZero() && orderTime.Hour() >= cutoff {
			shift = domain.ShiftEvening
		}

		record, err := domain.NewOrderRecord(sig.check, sig.kitchenMinutes, sig.orderMinutes, orderTime, sig.server, shift)
		if err != nil {
			s.logger.Debug("skipping malformed order row",
				zap.Int("row", i+1), zap.Error(err))
			skipped++
			continue
		}
		record.Table = sig.table
		record.CashDrawer = sig.cashDrawer
		record.EmployeePosition = sig.position

		category, rule := classify(sig)
		record = record.WithCategory(category)

		orders = append(orders, record)
		byCheck[sig.check] = category
		ruleHits[rule]++
		counts[category]++
		metrics.RecordOrderCategorized(string(category))
	}

	pc.SetCategorizedOrders(orders, byCheck)
	pc.SetServiceMix(serviceMix(counts, len(orders)))
	pc.SetRuleHits(ruleHits)
	if skipped > 0 {
		pc.SetMeta("orders_skipped", fmt.Sprintf("%d", skipped))
	}

	s.logger.Info("categorization complete",
		zap.String("restaurant", pc.Restaurant),
		zap.String("business_date", pc.Date),
		zap.Int("orders", len(orders)),
		zap.Int("skipped", skipped),
		zap.Int("lobby", counts[domain.CategoryLobby]),
		zap.Int("drive_thru", counts[domain.CategoryDriveThru]),
		zap.Int("togo", counts[domain.CategoryToGo]),
	)
	return nil
}

func serviceMix(counts map[domain.Category]int, total int) domain.ServiceMix {
	var mix domain.ServiceMix
	if total == 0 {
		return mix
	}
	for _, c := range domain.Categories() {
		mix.Set(c, 100*float64(counts[c])/float64(total))
	}
	return mix
}

// join holds the column indices and per-check row indexes needed to fuse
// the three exports with the time entries.
type join struct {
	business time.Time

	kitchen     *datasource.Table
	kCheck      int
	kTable      int
	kFulfill    int
	kFire       int
	kServer     int
	hasKTable   bool
	hasKFulfill bool
	hasKFire    bool
	hasKServer  bool

	orders     *datasource.Table
	oTable     int
	oDuration  int
	oOpened    int
	oServer    int
	hasOTable  bool
	hasODur    bool
	hasOOpened bool
	hasOServer bool
	orderRows  map[string]int

	eod       *datasource.Table
	eTable    int
	eDrawer   int
	hasETable bool
	hasDrawer bool
	eodRows   map[string]int

	positions map[string]string
}

func newJoin(pc *pipeline.Context) *join {
	j := &join{business: pc.BusinessDate, kitchen: pc.Table("kitchen")}

	j.kCheck, _ = j.kitchen.AnyColumn("Check #", "Check Number", "Check")
	j.kTable, j.hasKTable = j.kitchen.ColumnIndex("Table")
	j.kFulfill, j.hasKFulfill = j.kitchen.AnyColumn("Fulfillment Time", "Fulfillment")
	j.kFire, j.hasKFire = j.kitchen.AnyColumn("Fire Time", "Fire Date", "Fired Time")
	j.kServer, j.hasKServer = j.kitchen.AnyColumn("Server", "Employee")

	if orders := pc.Table("orders"); orders != nil {
		j.orders = orders
		checkCol, ok := orders.AnyColumn("Order #", "Check #")
		j.oTable, j.hasOTable = orders.ColumnIndex("Table")
		j.oDuration, j.hasODur = orders.AnyColumn("Duration (Opened to Paid)", "Duration", "Order Duration")
		j.oOpened, j.hasOOpened = orders.ColumnIndex("Opened")
		j.oServer, j.hasOServer = orders.ColumnIndex("Server")
		if ok {
			j.orderRows = indexByCheck(orders, checkCol)
		}
	}

	if eod := pc.Table("eod"); eod != nil {
		j.eod = eod
		checkCol, ok := eod.AnyColumn("Check #", "Check Number", "Check")
		j.eTable, j.hasETable = eod.ColumnIndex("Table")
		j.eDrawer, j.hasDrawer = eod.AnyColumn("Cash Drawer", "Drawer")
		if ok {
			j.eodRows = indexByCheck(eod, checkCol)
		}
	}

	j.positions = make(map[string]string)
	if entries, ok := pc.TimeEntries(); ok {
		for _, e := range entries {
			j.positions[strings.ToLower(e.EmployeeName)] = strings.ToLower(e.JobTitle)
		}
	}
	return j
}

// signalsForRow fuses all sources for one kitchen row. The third return is
// false when the row has no usable check number.
func (j *join) signalsForRow(row int) (signals, time.Time, bool) {
	check := normalizeCheck(j.kitchen.Cell(row, j.kCheck))
	if check == "" {
		return signals{}, time.Time{}, false
	}

	sig := signals{check: check}

	if j.hasKFulfill {
		sig.kitchenMinutes = timeutil.ParseDurationMinutes(j.kitchen.Cell(row, j.kFulfill))
	}
	if j.hasKServer {
		sig.server = j.kitchen.Cell(row, j.kServer)
	}
	if j.hasKTable && tableOccupied(j.kitchen.Cell(row, j.kTable)) {
		sig.tableCount++
		sig.table = j.kitchen.Cell(row, j.kTable)
	}

	var orderTime time.Time
	if j.hasKFire {
		if t, err := timeutil.ParseAt(j.kitchen.Cell(row, j.kFire), j.business); err == nil {
			orderTime = t
		}
	}

	if oRow, ok := lookupRow(j.orderRows, check); ok {
		if j.hasOTable && tableOccupied(j.orders.Cell(oRow, j.oTable)) {
			sig.tableCount++
			if sig.table == "" {
				sig.table = j.orders.Cell(oRow, j.oTable)
			}
		}
		if j.hasODur {
			sig.orderMinutes = timeutil.ParseDurationMinutes(j.orders.Cell(oRow, j.oDuration))
		}
		if sig.server == "" && j.hasOServer {
			sig.server = j.orders.Cell(oRow, j.oServer)
		}
		if orderTime.IsZero() && j.hasOOpened {
			if t, err := timeutil.ParseAt(j.orders.Cell(oRow, j.oOpened), j.business); err == nil {
				orderTime = t
			}
		}
	}

	if eRow, ok := lookupRow(j.eodRows, check); ok {
		if j.hasETable && tableOccupied(j.eod.Cell(eRow, j.eTable)) {
			sig.tableCount++
			if sig.table == "" {
				sig.table = j.eod.Cell(eRow, j.eTable)
			}
		}
		if j.hasDrawer {
			sig.cashDrawer = strings.ToLower(j.eod.Cell(eRow, j.eDrawer))
		}
	}

	if sig.server != "" {
		sig.position = j.positions[strings.ToLower(sig.server)]
	}
	return sig, orderTime, true
}

func indexByCheck(t *datasource.Table, col int) map[string]int {
	idx := make(map[string]int, t.Len())
	for i := 0; i < t.Len(); i++ {
		check := normalizeCheck(t.Cell(i, col))
		if check == "" {
			continue
		}
		if _, exists := idx[check]; !exists {
			idx[check] = i
		}
	}
	return idx
}

func lookupRow(idx map[string]int, check string) (int, bool) {
	if idx == nil {
		return 0, false
	}
	row, ok := idx[check]
	return row, ok
}

// normalizeCheck trims a check number cell and strips the ".0" suffix CSV
// round-tripping leaves on numeric columns.
func normalizeCheck(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".0")
	return s
}

// tableOccupied reports whether a table cell names a positive table
// number. Blank and non-numeric cells do not count.
func tableOccupied(cell string) bool {
	v, err := timeutil.ParseFloat(cell)
	if err != nil {
		return false
	}
	return v > 0
}
