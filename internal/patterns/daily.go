package patterns

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/JPRanx/omni-v4-sub001/internal/config"
	"github.com/JPRanx/omni-v4-sub001/internal/domain"
	"github.com/JPRanx/omni-v4-sub001/internal/timeutil"
)

// earlyObservationCount is the observation count below which the faster
// learning rate applies.
const earlyObservationCount = 5

// DailyManager learns and serves daily labor patterns. Learn serializes
// its read-modify-write cycle per key so concurrent runs never drop
// observations.
type DailyManager struct {
	store  DailyStore
	cfg    config.LearningSettings
	logger *zap.Logger

	mu keyedMutex
}

// NewDailyManager creates a manager over the given store.
func NewDailyManager(store DailyStore, cfg config.LearningSettings, logger *zap.Logger) *DailyManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DailyManager{store: store, cfg: cfg, logger: logger}
}

// Learn folds one day's observed labor percentage and hours into the
// pattern for (restaurant, weekday of date). New patterns start from zero
// baselines; the moving average adapts fast for the first few
// observations, then stabilizes.
func (m *DailyManager) Learn(ctx context.Context, restaurant string, date time.Time, laborPct, totalHours float64) (domain.DailyLaborPattern, error) {
	dow := timeutil.DayOfWeek(date)
	key := domain.DailyPatternKey(restaurant, dow)

	unlock := m.mu.lock(key)
	defer unlock()

	p, found, err := m.store.GetDaily(ctx, key)
	if err != nil {
		return domain.DailyLaborPattern{}, fmt.Errorf("load daily pattern %s: %w", key, err)
	}
	if !found {
		p = domain.DailyLaborPattern{Restaurant: restaurant, DayOfWeek: dow}
	}

	alpha := m.cfg.MatureRate
	if p.Observations < earlyObservationCount {
		alpha = m.cfg.EarlyRate
	}
	p.ExpectedLaborPercentage = (1-alpha)*p.ExpectedLaborPercentage + alpha*laborPct
	p.ExpectedTotalHours = (1-alpha)*p.ExpectedTotalHours + alpha*totalHours
	p.Observations++
	p.Confidence = math.Min(0.95, 1-1/float64(p.Observations+1))
	p.LastUpdated = time.Now().UTC()

	if err := m.store.PutDaily(ctx, p); err != nil {
		return domain.DailyLaborPattern{}, fmt.Errorf("store daily pattern %s: %w", key, err)
	}
	return p, nil
}

// Get returns the pattern for (restaurant, dayOfWeek). When the exact
// pattern is missing or unreliable it falls back to the average of the
// restaurant's reliable patterns across other days, marked IsFallback.
// The boolean is false when nothing reliable exists at all.
func (m *DailyManager) Get(ctx context.Context, restaurant string, dayOfWeek int) (domain.DailyLaborPattern, bool, error) {
	p, found, err := m.store.GetDaily(ctx, domain.DailyPatternKey(restaurant, dayOfWeek))
	if err != nil {
		return domain.DailyLaborPattern{}, false, fmt.Errorf("load daily pattern: %w", err)
	}
	if found && p.Reliable(m.cfg.MinConfidence, m.cfg.MinObservations) {
		return p, true, nil
	}
	return m.fallback(ctx, restaurant, dayOfWeek)
}

// GetForDate resolves the weekday from a date and delegates to Get.
func (m *DailyManager) GetForDate(ctx context.Context, restaurant string, date time.Time) (domain.DailyLaborPattern, bool, error) {
	return m.Get(ctx, restaurant, timeutil.DayOfWeek(date))
}

// fallback averages all reliable patterns for the restaurant. Callers must
// not learn from a fallback value.
func (m *DailyManager) fallback(ctx context.Context, restaurant string, dayOfWeek int) (domain.DailyLaborPattern, bool, error) {
	all, err := m.store.ListDaily(ctx)
	if err != nil {
		return domain.DailyLaborPattern{}, false, fmt.Errorf("list daily patterns: %w", err)
	}

	var pctSum, hoursSum, confSum float64
	n := 0
	for _, p := range all {
		if p.Restaurant != restaurant || !p.Reliable(m.cfg.MinConfidence, m.cfg.MinObservations) {
			continue
		}
		pctSum += p.ExpectedLaborPercentage
		hoursSum += p.ExpectedTotalHours
		confSum += p.Confidence
		n++
	}
	if n == 0 {
		return domain.DailyLaborPattern{}, false, nil
	}
	return domain.DailyLaborPattern{
		Restaurant:              restaurant,
		DayOfWeek:               dayOfWeek,
		ExpectedLaborPercentage: pctSum / float64(n),
		ExpectedTotalHours:      hoursSum / float64(n),
		Confidence:              confSum / float64(n),
		IsFallback:              true,
		DaysAveraged:            n,
	}, true, nil
}

// Statistics summarizes the store.
func (m *DailyManager) Statistics(ctx context.Context) (Statistics, error) {
	all, err := m.store.ListDaily(ctx)
	if err != nil {
		return Statistics{}, fmt.Errorf("list daily patterns: %w", err)
	}
	var stats Statistics
	var confSum, obsSum float64
	for _, p := range all {
		stats.Total++
		confSum += p.Confidence
		obsSum += float64(p.Observations)
		if p.Reliable(m.cfg.MinConfidence, m.cfg.MinObservations) {
			stats.Reliable++
		}
	}
	if stats.Total > 0 {
		stats.AvgConfidence = confSum / float64(stats.Total)
		stats.AvgObservations = obsSum / float64(stats.Total)
	}
	return stats, nil
}

// List returns every stored daily pattern.
func (m *DailyManager) List(ctx context.Context) ([]domain.DailyLaborPattern, error) {
	return m.store.ListDaily(ctx)
}
