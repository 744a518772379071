package scoring

import "math"

// DayContext carries the already-logged state for the activity's calendar day
// that scoring depends on. Callers must read it in the same transaction that
// writes the activity.
type DayContext struct {
	// FreebieUnitsUsed is how many penalty units of this type's unit the
	// user already logged today; freebies not yet consumed are excluded
	// from the point cost.
	FreebieUnitsUsed float64
	// MediaBonusTaken is true when another non-deleted activity for the
	// same user, challenge and day already carries the media bonus.
	MediaBonusTaken bool
}

// Result is the base evaluation before threshold and media bonuses.
type Result struct {
	BasePoints   float64 `json:"base_points"`
	MetricPoints float64 `json:"metric_points"`
	PointsEarned float64 `json:"points_earned"`
}

// Evaluate scores an activity against its type's config. When isNegative is
// set the total is forced negative regardless of how the config was authored,
// so a penalty type misconfigured with positive points still deducts.
func Evaluate(cfg Config, metrics Metrics, isNegative bool, day DayContext) Result {
	var res Result

	switch cfg.Kind() {
	case KindUnitBased, KindLegacy:
		value := metrics.Value(cfg.Unit)
		if isNegative && cfg.FreebiesPerDay > 0 {
			remaining := cfg.FreebiesPerDay - day.FreebieUnitsUsed
			if remaining < 0 {
				remaining = 0
			}
			value -= remaining
			if value < 0 {
				value = 0
			}
		}
		if cfg.Kind() == KindUnitBased && cfg.MaxUnits != nil && value > *cfg.MaxUnits {
			value = *cfg.MaxUnits
		}
		res.BasePoints = cfg.BasePoints
		res.MetricPoints = cfg.PointsPerUnit * value

	case KindTiered:
		value := metrics.Value(cfg.Unit)
		for _, tier := range cfg.Tiers {
			if tier.MaxValue == nil || *tier.MaxValue >= value {
				res.MetricPoints = tier.Points
				break
			}
		}

	case KindCompletion:
		res.BasePoints = cfg.FixedPoints
		selected := metrics.SelectedBonuses()
		for _, bonus := range cfg.OptionalBonuses {
			for _, name := range selected {
				if name == bonus.Name {
					res.MetricPoints += bonus.BonusPoints
					break
				}
			}
		}
	}

	res.PointsEarned = res.BasePoints + res.MetricPoints
	if isNegative {
		res.PointsEarned = -math.Abs(res.PointsEarned)
	}
	return res
}
