// Package grading bins categorized orders into the day's 64 fifteen-minute
// windows and grades each window against fixed service standards plus any
// reliable learned baselines.
//
// Purpose:
//   Every run emits all 64 windows, zeroed where no orders landed. An
//   order passes its window when the fulfillment time meets the fixed
//   per-category standard and, when a reliable timeslot pattern exists,
//   also meets baseline + variance. Zero fulfillment readings count toward
//   totals only: they are invalid measurements, neither passed nor failed,
//   and excluded from averages.
package grading

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/JPRanx/omni-v4-sub001/internal/domain"
	"github.com/JPRanx/omni-v4-sub001/internal/pipeline"
	"github.com/JPRanx/omni-v4-sub001/internal/timeutil"
)

// Fixed fulfillment standards in minutes, inclusive. Categorization detects
// Drive-Thru below seven minutes; grading passes at exactly seven.
var standards = map[domain.Category]float64{
	domain.CategoryLobby:     15.0,
	domain.CategoryDriveThru: 7.0,
	domain.CategoryToGo:      10.0,
}

// TargetSource resolves the learned historical target for one window cell,
// typically baseline + variance from a reliable timeslot pattern. The
// boolean is false when no reliable pattern exists.
type TargetSource interface {
	Target(ctx context.Context, restaurant, dayName string, shift domain.Shift, window int, category domain.Category) (float64, bool)
}

// Stage is the timeslot grading stage.
type Stage struct {
	targets TargetSource
	logger  *zap.Logger
}

// Config configures the grading stage. Targets may be nil, in which case
// only the fixed standards apply.
type Config struct {
	Targets TargetSource
	Logger  *zap.Logger
}

// New creates the grading stage.
func New(cfg Config) *Stage {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Stage{targets: cfg.Targets, logger: cfg.Logger}
}

// Name implements pipeline.Stage.
func (s *Stage) Name() string { return "grading" }

type cell struct {
	stats      domain.CategoryStats
	sumMinutes float64
	validCount int
}

// Run assigns orders to windows, grades all 64, and writes the timeslots
// plus the per-shift category aggregates to the context.
func (s *Stage) Run(ctx context.Context, pc *pipeline.Context) error {
	orders, ok := pc.CategorizedOrders()
	if !ok {
		return pipeline.Errorf(pipeline.KindInternal, "categorized orders absent from context")
	}

	dayName := timeutil.DayName(timeutil.DayOfWeek(pc.BusinessDate))

	var cells [domain.WindowsPerDay]map[domain.Category]*cell
	for i := range cells {
		cells[i] = make(map[domain.Category]*cell, 3)
	}

	outside := 0
	for _, order := range orders {
		idx, ok := windowIndex(order.OrderTime)
		if !ok {
			outside++
			continue
		}
		c := cells[idx][order.Category]
		if c == nil {
			c = &cell{}
			cells[idx][order.Category] = c
		}
		c.stats.Total++
		if !order.HasValidFulfillment() {
			continue
		}
		c.validCount++
		c.sumMinutes += order.FulfillmentMinutes
		if s.orderPasses(ctx, pc.Restaurant, dayName, idx, order) {
			c.stats.Passed++
		} else {
			c.stats.Failed++
		}
	}

	slots := make([]domain.Timeslot, domain.WindowsPerDay)
	var shiftStats domain.ShiftCategoryStats
	for idx := range slots {
		slot := gradeWindow(idx, cells[idx])
		slots[idx] = slot
		for _, category := range domain.Categories() {
			shiftStats.Merge(slot.Shift, category, slot.Stats.Get(category))
		}
	}

	pc.SetTimeslots(slots)
	pc.SetShiftStats(shiftStats)
	if outside > 0 {
		pc.SetMeta("orders_outside_windows", fmt.Sprintf("%d", outside))
	}

	s.logger.Info("grading complete",
		zap.String("restaurant", pc.Restaurant),
		zap.String("business_date", pc.Date),
		zap.Int("orders", len(orders)),
		zap.Int("outside_windows", outside),
	)
	return nil
}

// orderPasses applies the fixed standard and, when available, the learned
// historical target. Both gates must pass.
func (s *Stage) orderPasses(ctx context.Context, restaurant, dayName string, window int, order domain.OrderRecord) bool {
	if order.FulfillmentMinutes > standards[order.Category] {
		return false
	}
	if s.targets != nil {
		if target, ok := s.targets.Target(ctx, restaurant, dayName, windowShift(window), window, order.Category); ok {
			if order.FulfillmentMinutes > target {
				return false
			}
		}
	}
	return true
}

// gradeWindow folds one window's cells into a graded timeslot. The pass
// rate denominator counts only valid measurements; a window with none
// grades "N/A" and never passes standards.
func gradeWindow(idx int, byCategory map[domain.Category]*cell) domain.Timeslot {
	slot := domain.Timeslot{
		Index:      idx,
		TimeWindow: windowLabel(idx),
		Shift:      windowShift(idx),
		Grade:      "N/A",
	}

	passed, failed := 0, 0
	for _, category := range domain.Categories() {
		c := byCategory[category]
		if c == nil {
			continue
		}
		slot.Stats.Set(category, c.stats)
		if c.validCount > 0 {
			slot.AvgFulfillment.Set(category, c.sumMinutes/float64(c.validCount))
		}
		passed += c.stats.Passed
		failed += c.stats.Failed
	}

	if passed+failed > 0 {
		slot.PassRate = float64(passed) / float64(passed+failed)
		slot.PassedStandards = failed == 0
		slot.Grade = domain.GradeForPassRate(slot.PassRate)
	}
	return slot
}
