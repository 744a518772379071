package scoring

// MediaBonusMetric is the TriggeredBonus metric name recorded for the
// once-per-day photo bonus.
const MediaBonusMetric = "media"

// MediaBonusPoints is fixed at one point per day.
const MediaBonusPoints = 1

// TriggeredBonus records a bonus that fired on an activity, both for audit
// and so the once-per-day media cap can be checked against prior activities.
type TriggeredBonus struct {
	Metric string  `json:"metric"`
	Amount float64 `json:"amount"`
}

// Breakdown is the full scoring outcome for one activity.
type Breakdown struct {
	BasePoints   float64
	MetricPoints float64
	BonusPoints  float64
	PointsEarned float64
	Triggered    []TriggeredBonus
}

// ResolveBonuses applies the media bonus and any threshold bonuses on top of
// a base result. Thresholds stack: every threshold the metric value reaches
// contributes its bonus.
func ResolveBonuses(thresholds []ThresholdBonus, metrics Metrics, day DayContext) (float64, []TriggeredBonus) {
	var total float64
	var triggered []TriggeredBonus

	if metrics.HasMedia() && !day.MediaBonusTaken {
		total += MediaBonusPoints
		triggered = append(triggered, TriggeredBonus{Metric: MediaBonusMetric, Amount: MediaBonusPoints})
	}

	for _, tb := range thresholds {
		if metrics.Value(tb.Metric) >= tb.Threshold {
			total += tb.BonusPoints
			triggered = append(triggered, TriggeredBonus{Metric: tb.Metric, Amount: tb.BonusPoints})
		}
	}

	return total, triggered
}

// Score composes base evaluation and bonus resolution into the final
// breakdown stored on the activity.
func Score(cfg Config, thresholds []ThresholdBonus, metrics Metrics, isNegative bool, day DayContext) Breakdown {
	base := Evaluate(cfg, metrics, isNegative, day)
	bonus, triggered := ResolveBonuses(thresholds, metrics, day)

	return Breakdown{
		BasePoints:   base.BasePoints,
		MetricPoints: base.MetricPoints,
		BonusPoints:  bonus,
		PointsEarned: base.PointsEarned + bonus,
		Triggered:    triggered,
	}
}
