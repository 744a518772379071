package scoring

// Kind discriminates the scoring config variants. Configs created before the
// type field existed carry no tag and are treated as KindLegacy, which scores
// like unit_based without a cap.
type Kind string

const (
	KindUnitBased  Kind = "unit_based"
	KindTiered     Kind = "tiered"
	KindCompletion Kind = "completion"
	KindLegacy     Kind = "legacy"
)

type Tier struct {
	MaxValue *float64 `json:"max_value,omitempty"`
	Points   float64  `json:"points"`
}

type OptionalBonus struct {
	Name        string  `json:"name"`
	BonusPoints float64 `json:"bonus_points"`
}

// ThresholdBonus fires when the named metric reaches Threshold. Multiple
// thresholds on the same metric stack.
type ThresholdBonus struct {
	Metric      string  `json:"metric"`
	Threshold   float64 `json:"threshold"`
	BonusPoints float64 `json:"bonus_points"`
}

// Config is the scoring definition attached to an activity type. Only the
// fields relevant to the tagged variant are populated; admins author these
// as JSON so unknown fields are preserved but ignored.
type Config struct {
	Type            string          `json:"type,omitempty"`
	Unit            string          `json:"unit,omitempty"`
	BasePoints      float64         `json:"base_points,omitempty"`
	PointsPerUnit   float64         `json:"points_per_unit,omitempty"`
	MaxUnits        *float64        `json:"max_units,omitempty"`
	Tiers           []Tier          `json:"tiers,omitempty"`
	FixedPoints     float64         `json:"fixed_points,omitempty"`
	OptionalBonuses []OptionalBonus `json:"optional_bonuses,omitempty"`
	FreebiesPerDay  float64         `json:"freebies_per_day,omitempty"`
}

// Kind resolves the variant, defaulting untagged legacy configs.
func (c Config) Kind() Kind {
	switch c.Type {
	case string(KindUnitBased):
		return KindUnitBased
	case string(KindTiered):
		return KindTiered
	case string(KindCompletion):
		return KindCompletion
	default:
		return KindLegacy
	}
}
