package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Threshold is one (upper bound, label) step of a grading table. Tables are
// checked in ascending bound order; values past the last bound take the
// table's fallthrough label.
type Threshold struct {
	Bound float64 `mapstructure:"bound"`
	Label string  `mapstructure:"label"`
}

// LaborThresholds holds the status and grade tables for labor percentage.
type LaborThresholds struct {
	Status []Threshold
	Grade  []Threshold
}

// ClassifyStatus maps a labor percentage onto the status table. Values past
// the last bound fall through to SEVERE.
func (t LaborThresholds) ClassifyStatus(pct float64) string {
	return classify(t.Status, pct, "SEVERE")
}

// ClassifyGrade maps a labor percentage onto the grade table. Values past
// the last bound fall through to F.
func (t LaborThresholds) ClassifyGrade(pct float64) string {
	return classify(t.Grade, pct, "F")
}

func classify(table []Threshold, v float64, fallback string) string {
	for _, entry := range table {
		if v <= entry.Bound {
			return entry.Label
		}
	}
	return fallback
}

// LearningSettings tunes the pattern learners.
type LearningSettings struct {
	EarlyRate       float64
	MatureRate      float64
	MinConfidence   float64
	MinObservations int
}

// ShiftSettings controls the morning/evening split.
type ShiftSettings struct {
	CutoffHour           int
	ManagerKeywords      []string
	FallbackMorningRatio float64
}

// OvertimeSettings controls weekly overtime detection.
type OvertimeSettings struct {
	WeeklyThresholdHours float64
	Multiplier           float64
}

// ClockoutSettings controls auto-clockout analysis. Shift schedules stay in
// the underlying tree and are resolved through ShiftEndClock.
type ClockoutSettings struct {
	DefaultHourlyRate float64
}

// OrchestratorSettings bounds batch execution.
type OrchestratorSettings struct {
	MaxWorkers int
	RunTimeout time.Duration
}

// StorageSettings tunes persistence behavior.
type StorageSettings struct {
	COGSSource string // "vendor_payouts" or "none"
}

// Store is the merged, read-only business configuration for one restaurant
// scope. Layers merge in order: defaults -> base -> environment overlay ->
// restaurant overlay; later layers win.
type Store struct {
	v *viper.Viper

	Labor        LaborThresholds
	Learning     LearningSettings
	Shifts       ShiftSettings
	Overtime     OvertimeSettings
	Clockout     ClockoutSettings
	Orchestrator OrchestratorSettings
	Storage      StorageSettings
}

// LoadStore builds the merged business configuration. Overlay files are
// optional; a missing file skips that layer. Environment and restaurant may
// be empty to skip their overlays.
func LoadStore(configDir, environment, restaurant string) (*Store, error) {
	v := viper.New()
	ApplyDefaults(v)

	v.SetEnvPrefix("OMNIPOS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	layers := make([]string, 0, 3)
	if configDir != "" {
		layers = append(layers, filepath.Join(configDir, "base.yaml"))
		if environment != "" {
			layers = append(layers, filepath.Join(configDir, "environments", environment+".yaml"))
		}
		if restaurant != "" {
			layers = append(layers, filepath.Join(configDir, "restaurants", restaurant+".yaml"))
		}
	}
	for _, path := range layers {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merge config layer %s: %w", path, err)
		}
	}

	s := &Store{v: v}
	if err := s.parse(); err != nil {
		return nil, err
	}
	return s, nil
}

// MustLoadStore builds the merged configuration and panics on error.
func MustLoadStore(configDir, environment, restaurant string) *Store {
	s, err := LoadStore(configDir, environment, restaurant)
	if err != nil {
		panic(fmt.Sprintf("failed to load business configuration: %v", err))
	}
	return s
}

func (s *Store) parse() error {
	if err := s.v.UnmarshalKey("thresholds.labor.status", &s.Labor.Status); err != nil {
		return fmt.Errorf("parse thresholds.labor.status: %w", err)
	}
	if err := s.v.UnmarshalKey("thresholds.labor.grade", &s.Labor.Grade); err != nil {
		return fmt.Errorf("parse thresholds.labor.grade: %w", err)
	}
	if err := validateThresholds("thresholds.labor.status", s.Labor.Status); err != nil {
		return err
	}
	if err := validateThresholds("thresholds.labor.grade", s.Labor.Grade); err != nil {
		return err
	}

	s.Learning = LearningSettings{
		EarlyRate:       s.v.GetFloat64("pattern_learning.learning_rates.early_observations"),
		MatureRate:      s.v.GetFloat64("pattern_learning.learning_rates.mature_observations"),
		MinConfidence:   s.v.GetFloat64("pattern_learning.reliability_thresholds.min_confidence"),
		MinObservations: s.v.GetInt("pattern_learning.reliability_thresholds.min_observations"),
	}
	if s.Learning.EarlyRate <= 0 || s.Learning.EarlyRate > 1 {
		return fmt.Errorf("pattern_learning.learning_rates.early_observations must be in (0,1], got %v", s.Learning.EarlyRate)
	}
	if s.Learning.MatureRate <= 0 || s.Learning.MatureRate > 1 {
		return fmt.Errorf("pattern_learning.learning_rates.mature_observations must be in (0,1], got %v", s.Learning.MatureRate)
	}
	if s.Learning.MinConfidence < 0 || s.Learning.MinConfidence > 1 {
		return fmt.Errorf("pattern_learning.reliability_thresholds.min_confidence must be in [0,1], got %v", s.Learning.MinConfidence)
	}

	s.Shifts = ShiftSettings{
		CutoffHour:           s.v.GetInt("shifts.cutoff_hour"),
		ManagerKeywords:      s.v.GetStringSlice("shifts.manager_job_keywords"),
		FallbackMorningRatio: s.v.GetFloat64("shifts.fallback_morning_ratio"),
	}
	if s.Shifts.CutoffHour < 0 || s.Shifts.CutoffHour > 23 {
		return fmt.Errorf("shifts.cutoff_hour must be in [0,23], got %d", s.Shifts.CutoffHour)
	}
	if s.Shifts.FallbackMorningRatio < 0 || s.Shifts.FallbackMorningRatio > 1 {
		return fmt.Errorf("shifts.fallback_morning_ratio must be in [0,1], got %v", s.Shifts.FallbackMorningRatio)
	}

	s.Overtime = OvertimeSettings{
		WeeklyThresholdHours: s.v.GetFloat64("overtime.weekly_threshold_hours"),
		Multiplier:           s.v.GetFloat64("overtime.multiplier"),
	}
	if s.Overtime.WeeklyThresholdHours <= 0 {
		return fmt.Errorf("overtime.weekly_threshold_hours must be positive, got %v", s.Overtime.WeeklyThresholdHours)
	}

	s.Clockout = ClockoutSettings{
		DefaultHourlyRate: s.v.GetFloat64("auto_clockout.default_hourly_rate"),
	}
	if s.Clockout.DefaultHourlyRate < 0 {
		return fmt.Errorf("auto_clockout.default_hourly_rate must not be negative, got %v", s.Clockout.DefaultHourlyRate)
	}

	s.Orchestrator = OrchestratorSettings{
		MaxWorkers: s.v.GetInt("orchestrator.max_workers"),
		RunTimeout: time.Duration(s.v.GetInt("orchestrator.run_timeout_seconds")) * time.Second,
	}
	if s.Orchestrator.MaxWorkers < 1 {
		return fmt.Errorf("orchestrator.max_workers must be at least 1, got %d", s.Orchestrator.MaxWorkers)
	}
	if s.Orchestrator.RunTimeout <= 0 {
		return fmt.Errorf("orchestrator.run_timeout_seconds must be positive")
	}

	s.Storage = StorageSettings{
		COGSSource: s.v.GetString("storage.cogs_source"),
	}
	switch s.Storage.COGSSource {
	case "vendor_payouts", "none":
	default:
		return fmt.Errorf("storage.cogs_source must be vendor_payouts or none, got %q", s.Storage.COGSSource)
	}

	return nil
}

func validateThresholds(key string, table []Threshold) error {
	if len(table) == 0 {
		return fmt.Errorf("%s: table must not be empty", key)
	}
	for i, t := range table {
		if t.Label == "" {
			return fmt.Errorf("%s[%d]: empty label", key, i)
		}
		if i > 0 && table[i-1].Bound >= t.Bound {
			return fmt.Errorf("%s: bounds must be strictly ascending, got %v then %v", key, table[i-1].Bound, t.Bound)
		}
	}
	return nil
}

// ShiftEndClock resolves the scheduled end-of-shift clock time ("HH:MM")
// for a restaurant, role (foh/boh), day category, and shift. Falls back to
// the "default" restaurant entry when the restaurant has no schedule.
func (s *Store) ShiftEndClock(restaurant, role string, sunday bool, eveningShift bool) (string, bool) {
	dayCat := "weekday"
	if sunday {
		dayCat = "sunday"
	}
	slot := "morning_end"
	if eveningShift {
		slot = "evening_end"
	}
	for _, r := range []string{restaurant, "default"} {
		if r == "" {
			continue
		}
		key := fmt.Sprintf("auto_clockout.shift_schedules.%s.%s.%s.%s",
			strings.ToLower(r), strings.ToLower(role), dayCat, slot)
		if val := s.v.GetString(key); val != "" {
			return val, true
		}
	}
	return "", false
}
