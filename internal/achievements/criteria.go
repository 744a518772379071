package achievements

import "github.com/stridehq/challenge-api/internal/scoring"

// CriteriaType discriminates how an achievement is earned. Criteria authored
// before the tag existed have an empty type and keep count semantics.
type CriteriaType string

const (
	CriteriaCount        CriteriaType = "count"
	CriteriaCumulative   CriteriaType = "cumulative"
	CriteriaDistinctType CriteriaType = "distinct_types"
	CriteriaOneOfEach    CriteriaType = "one_of_each"
)

// Criteria is the rule attached to an achievement, stored as JSON.
type Criteria struct {
	Type            string           `json:"type,omitempty"`
	Metric          string           `json:"metric,omitempty"`
	Threshold       float64          `json:"threshold,omitempty"`
	RequiredCount   int              `json:"required_count,omitempty"`
	ActivityTypeIDs []uint           `json:"activity_type_ids,omitempty"`
	UnitConversions map[uint]float64 `json:"unit_conversions,omitempty"`
}

// CriteriaType resolves the variant, defaulting untagged legacy criteria to
// count.
func (c Criteria) CriteriaType() CriteriaType {
	switch c.Type {
	case string(CriteriaCumulative):
		return CriteriaCumulative
	case string(CriteriaDistinctType):
		return CriteriaDistinctType
	case string(CriteriaOneOfEach):
		return CriteriaOneOfEach
	default:
		return CriteriaCount
	}
}

// ActivityFact is the slice of an activity the evaluator needs: identity,
// type and metrics. The caller supplies only the user's non-deleted
// activities for the challenge.
type ActivityFact struct {
	ID             uint
	ActivityTypeID uint
	Metrics        scoring.Metrics
}

// Outcome reports whether criteria are now satisfied and which activities
// satisfied them, for the audit trail on the award.
type Outcome struct {
	Satisfied             bool
	QualifyingActivityIDs []uint
}

func (c Criteria) matchesType(typeID uint) bool {
	if len(c.ActivityTypeIDs) == 0 {
		return true
	}
	for _, id := range c.ActivityTypeIDs {
		if id == typeID {
			return true
		}
	}
	return false
}

// EvaluateCriteria answers whether the user's activity history satisfies the
// criteria. Pure: repeated calls over the same history give the same answer,
// which is what makes evaluate-on-every-write safe.
func EvaluateCriteria(c Criteria, history []ActivityFact) Outcome {
	switch c.CriteriaType() {
	case CriteriaCumulative:
		return evaluateCumulative(c, history)
	case CriteriaDistinctType:
		return evaluateDistinct(c, history, c.RequiredCount)
	case CriteriaOneOfEach:
		return evaluateDistinct(c, history, len(c.ActivityTypeIDs))
	default:
		return evaluateCount(c, history)
	}
}

// evaluateCount: RequiredCount activities whose metric each individually
// meets the threshold. An activity id qualifies at most once.
func evaluateCount(c Criteria, history []ActivityFact) Outcome {
	var out Outcome
	seen := make(map[uint]bool)
	for _, fact := range history {
		if !c.matchesType(fact.ActivityTypeID) || seen[fact.ID] {
			continue
		}
		if c.Metric != "" && fact.Metrics.Value(c.Metric) < c.Threshold {
			continue
		}
		seen[fact.ID] = true
		out.QualifyingActivityIDs = append(out.QualifyingActivityIDs, fact.ID)
	}
	out.Satisfied = len(out.QualifyingActivityIDs) >= c.RequiredCount && c.RequiredCount > 0
	return out
}

// evaluateCumulative: metric summed across qualifying activities, with
// optional per-type unit conversion applied before summing.
func evaluateCumulative(c Criteria, history []ActivityFact) Outcome {
	var out Outcome
	var sum float64
	for _, fact := range history {
		if !c.matchesType(fact.ActivityTypeID) {
			continue
		}
		value := fact.Metrics.Value(c.Metric)
		if value == 0 {
			continue
		}
		if factor, ok := c.UnitConversions[fact.ActivityTypeID]; ok {
			value *= factor
		}
		sum += value
		out.QualifyingActivityIDs = append(out.QualifyingActivityIDs, fact.ID)
	}
	out.Satisfied = sum >= c.Threshold
	return out
}

// evaluateDistinct: at least `needed` distinct activity types with one or
// more logs each. Repeat logs of a type never raise the distinct count; the
// first log of each type is the qualifying activity.
func evaluateDistinct(c Criteria, history []ActivityFact, needed int) Outcome {
	var out Outcome
	seen := make(map[uint]bool)
	for _, fact := range history {
		if !c.matchesType(fact.ActivityTypeID) || seen[fact.ActivityTypeID] {
			continue
		}
		seen[fact.ActivityTypeID] = true
		out.QualifyingActivityIDs = append(out.QualifyingActivityIDs, fact.ID)
	}
	out.Satisfied = needed > 0 && len(seen) >= needed
	return out
}
