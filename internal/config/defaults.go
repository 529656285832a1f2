package config

import (
	"github.com/spf13/viper"
)

// ApplyDefaults sets default business configuration values in the provided
// Viper instance. Overlay files override these layer by layer.
func ApplyDefaults(v *viper.Viper) {
	// Labor thresholds: upper bound of labor percentage per bucket, checked
	// in order; anything past the last bound falls through to SEVERE / F.
	v.SetDefault("thresholds.labor.status", []map[string]interface{}{
		{"bound": 20.0, "label": "EXCELLENT"},
		{"bound": 25.0, "label": "GOOD"},
		{"bound": 30.0, "label": "WARNING"},
		{"bound": 35.0, "label": "CRITICAL"},
	})
	v.SetDefault("thresholds.labor.grade", []map[string]interface{}{
		{"bound": 18.0, "label": "A+"},
		{"bound": 20.0, "label": "A"},
		{"bound": 23.0, "label": "B+"},
		{"bound": 25.0, "label": "B"},
		{"bound": 28.0, "label": "C+"},
		{"bound": 30.0, "label": "C"},
		{"bound": 33.0, "label": "D+"},
		{"bound": 35.0, "label": "D"},
	})

	// Pattern learning
	v.SetDefault("pattern_learning.learning_rates.early_observations", 0.3)
	v.SetDefault("pattern_learning.learning_rates.mature_observations", 0.2)
	v.SetDefault("pattern_learning.reliability_thresholds.min_confidence", 0.6)
	v.SetDefault("pattern_learning.reliability_thresholds.min_observations", 4)

	// Shift split
	v.SetDefault("shifts.cutoff_hour", 14)
	v.SetDefault("shifts.manager_job_keywords", []string{"manager"})
	v.SetDefault("shifts.fallback_morning_ratio", 0.35)

	// Overtime
	v.SetDefault("overtime.weekly_threshold_hours", 40.0)
	v.SetDefault("overtime.multiplier", 1.5)

	// Auto-clockout. The "default" restaurant entry is the reference
	// schedule; restaurant overlays add their own entries beside it.
	v.SetDefault("auto_clockout.default_hourly_rate", 15.0)
	v.SetDefault("auto_clockout.shift_schedules.default.foh.weekday.morning_end", "14:00")
	v.SetDefault("auto_clockout.shift_schedules.default.foh.weekday.evening_end", "22:00")
	v.SetDefault("auto_clockout.shift_schedules.default.foh.sunday.morning_end", "14:00")
	v.SetDefault("auto_clockout.shift_schedules.default.foh.sunday.evening_end", "21:00")
	v.SetDefault("auto_clockout.shift_schedules.default.boh.weekday.morning_end", "15:00")
	v.SetDefault("auto_clockout.shift_schedules.default.boh.weekday.evening_end", "23:00")
	v.SetDefault("auto_clockout.shift_schedules.default.boh.sunday.morning_end", "15:00")
	v.SetDefault("auto_clockout.shift_schedules.default.boh.sunday.evening_end", "22:00")

	// Orchestrator
	v.SetDefault("orchestrator.max_workers", 1)
	v.SetDefault("orchestrator.run_timeout_seconds", 60)

	// Storage
	v.SetDefault("storage.cogs_source", "vendor_payouts") // vendor_payouts, none
}
