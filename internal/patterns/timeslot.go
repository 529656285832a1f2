package patterns

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/JPRanx/omni-v4-sub001/internal/config"
	"github.com/JPRanx/omni-v4-sub001/internal/domain"
)

// Timeslot EMA weights. Baseline and variance both keep 80% of history per
// observation; confidence grows by a step that shrinks with age.
const (
	baselineKeep   = 0.8
	observationMix = 0.2
	confidenceStep = 0.1
)

// TimeslotManager learns per-window fulfillment baselines and serves them
// back as grading targets. Only windows that passed standards feed the
// learner, so baselines track achievable service, not bad days.
type TimeslotManager struct {
	store  TimeslotStore
	cfg    config.LearningSettings
	logger *zap.Logger

	mu keyedMutex
}

// NewTimeslotManager creates a manager over the given store.
func NewTimeslotManager(store TimeslotStore, cfg config.LearningSettings, logger *zap.Logger) *TimeslotManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimeslotManager{store: store, cfg: cfg, logger: logger}
}

// Learn folds one run's graded windows into the timeslot baselines and
// returns the number of patterns updated. Windows that failed standards,
// and categories with no non-zero fulfillment readings, are skipped.
func (m *TimeslotManager) Learn(ctx context.Context, restaurant, dayName string, slots []domain.Timeslot) (int, error) {
	learned := 0
	for _, slot := range slots {
		if !slot.PassedStandards {
			continue
		}
		for _, cat := range domain.Categories() {
			obs := slot.AvgFulfillment.Get(cat)
			if obs <= 0 {
				continue
			}
			if err := m.learnOne(ctx, restaurant, dayName, slot, cat, obs); err != nil {
				return learned, err
			}
			learned++
		}
	}
	return learned, nil
}

func (m *TimeslotManager) learnOne(ctx context.Context, restaurant, dayName string, slot domain.Timeslot, cat domain.Category, obs float64) error {
	key := domain.TimeslotPatternKey(restaurant, dayName, slot.Shift, slot.Index, cat)

	unlock := m.mu.lock(key)
	defer unlock()

	p, found, err := m.store.GetTimeslot(ctx, key)
	if err != nil {
		return fmt.Errorf("load timeslot pattern %s: %w", key, err)
	}
	if !found {
		p = domain.TimeslotPattern{
			Restaurant: restaurant,
			DayName:    dayName,
			Shift:      slot.Shift,
			Window:     slot.Index,
			Category:   cat,
		}
	}

	// Variance measures drift against the baseline as it stood before this
	// observation moved it.
	oldBaseline := p.BaselineTime
	p.BaselineTime = baselineKeep*oldBaseline + observationMix*obs
	p.Variance = baselineKeep*p.Variance + observationMix*math.Abs(obs-oldBaseline)
	p.Confidence = math.Min(1.0, p.Confidence+confidenceStep/float64(1+p.Observations))
	p.Observations++
	p.LastUpdated = time.Now().UTC()

	if err := m.store.PutTimeslot(ctx, p); err != nil {
		return fmt.Errorf("store timeslot pattern %s: %w", key, err)
	}
	return nil
}

// Target returns the learned fulfillment ceiling for one window cell, or
// false when no reliable pattern exists. Store failures degrade to "no
// target" so grading falls back to the fixed standards.
func (m *TimeslotManager) Target(ctx context.Context, restaurant, dayName string, shift domain.Shift, window int, category domain.Category) (float64, bool) {
	key := domain.TimeslotPatternKey(restaurant, dayName, shift, window, category)
	p, found, err := m.store.GetTimeslot(ctx, key)
	if err != nil {
		m.logger.Warn("timeslot pattern lookup failed, using fixed standard",
			zap.String("key", key), zap.Error(err))
		return 0, false
	}
	if !found || !p.Reliable(m.cfg.MinConfidence, m.cfg.MinObservations) {
		return 0, false
	}
	return p.HistoricalTarget(), true
}

// Get returns the stored pattern for one window cell.
func (m *TimeslotManager) Get(ctx context.Context, restaurant, dayName string, shift domain.Shift, window int, category domain.Category) (domain.TimeslotPattern, bool, error) {
	return m.store.GetTimeslot(ctx, domain.TimeslotPatternKey(restaurant, dayName, shift, window, category))
}

// Statistics summarizes the store.
func (m *TimeslotManager) Statistics(ctx context.Context) (Statistics, error) {
	all, err := m.store.ListTimeslot(ctx)
	if err != nil {
		return Statistics{}, fmt.Errorf("list timeslot patterns: %w", err)
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

// List returns every stored timeslot pattern.
func (m *TimeslotManager) List(ctx context.Context) ([]domain.TimeslotPattern, error) {
	return m.store.ListTimeslot(ctx)
}
