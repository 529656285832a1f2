package timeutil

import (
	"regexp"
	"strconv"
	"strings"
)

// POS exports render durations as prose ("5 minutes and 39 seconds"),
// bare numbers ("5.5"), or clock forms ("1:23"). All parse to minutes.
var (
	clockRe    = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)
	durationRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(hours?|hrs?|minutes?|mins?|seconds?|secs?)?`)
)

// ParseDurationMinutes converts a human duration string to minutes.
// Numbers are bound to the unit word that follows them; a bare number is
// taken as minutes; H:MM counts as minutes since the hour mark. Anything
// unparseable yields 0, which downstream treats as an invalid measurement.
func ParseDurationMinutes(s string) float64 {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	if trimmed == "" || strings.HasPrefix(trimmed, "-") {
		return 0
	}

	if m := clockRe.FindStringSubmatch(trimmed); m != nil {
		hours, _ := strconv.ParseFloat(m[1], 64)
		minutes, _ := strconv.ParseFloat(m[2], 64)
		total := hours*60 + minutes
		if m[3] != "" {
			seconds, _ := strconv.ParseFloat(m[3], 64)
			total += seconds / 60
		}
		return total
	}

	matches := durationRe.FindAllStringSubmatch(trimmed, -1)
	if matches == nil {
		return 0
	}

	var total float64
	unitSeen := false
	var bare []float64
	for _, m := range matches {
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		switch {
		case strings.HasPrefix(m[2], "h"):
			total += value * 60
			unitSeen = true
		case strings.HasPrefix(m[2], "m"):
			total += value
			unitSeen = true
		case strings.HasPrefix(m[2], "s"):
			total += value / 60
			unitSeen = true
		default:
			bare = append(bare, value)
		}
	}
	if unitSeen {
		return total
	}
	// Without unit words only a single bare number is unambiguous.
	if len(bare) == 1 {
		return bare[0]
	}
	return 0
}
