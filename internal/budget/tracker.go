package budget

import "tally/internal/core"

// Level is the alert band for a category's spend against its limit.
type Level string

const (
	LevelOK       Level = "ok"
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

// Band edges in percent. Lower bound inclusive, upper bound exclusive.
const (
	warningThresholdPercent  = 70
	criticalThresholdPercent = 90
)

// Status is the derived alert state for one category. Percentage is clamped
// to 100 for display; the band decision uses the unclamped ratio.
type Status struct {
	Percentage float64
	Level      Level
}

// Evaluate compares live spend against a category limit. A category with a
// zero (or negative) limit is untracked: percentage 0, level ok, regardless
// of spend. Stateless and idempotent; there is no persisted alert entity.
func Evaluate(limit, liveSpend core.Money) Status {
	if limit.Cents <= 0 {
		return Status{Percentage: 0, Level: LevelOK}
	}

	ratio := float64(liveSpend.Cents) / float64(limit.Cents) * 100

	level := LevelOK
	switch {
	case ratio >= criticalThresholdPercent:
		level = LevelCritical
	case ratio >= warningThresholdPercent:
		level = LevelWarning
	}

	display := ratio
	if display > 100 {
		display = 100
	}
	if display < 0 {
		display = 0
	}

	return Status{Percentage: display, Level: level}
}
