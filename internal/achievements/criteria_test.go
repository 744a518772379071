package achievements

import (
	"testing"

	"github.com/stridehq/challenge-api/internal/scoring"
)

func TestCountCriteria(t *testing.T) {
	c := Criteria{
		Type:            string(CriteriaCount),
		Metric:          "distance_miles",
		Threshold:       3,
		RequiredCount:   2,
		ActivityTypeIDs: []uint{1},
	}

	history := []ActivityFact{
		{ID: 10, ActivityTypeID: 1, Metrics: scoring.Metrics{"distance_miles": float64(5)}},
		{ID: 11, ActivityTypeID: 1, Metrics: scoring.Metrics{"distance_miles": float64(2)}}, // below threshold
		{ID: 12, ActivityTypeID: 2, Metrics: scoring.Metrics{"distance_miles": float64(5)}}, // wrong type
	}
	out := EvaluateCriteria(c, history)
	if out.Satisfied {
		t.Errorf("expected not satisfied with one qualifying activity")
	}

	history = append(history, ActivityFact{ID: 13, ActivityTypeID: 1, Metrics: scoring.Metrics{"distance_miles": float64(4)}})
	out = EvaluateCriteria(c, history)
	if !out.Satisfied {
		t.Errorf("expected satisfied with two qualifying activities")
	}
	if len(out.QualifyingActivityIDs) != 2 {
		t.Errorf("expected 2 qualifying ids, got %v", out.QualifyingActivityIDs)
	}
}

func TestCumulativeCriteria(t *testing.T) {
	c := Criteria{
		Type:            string(CriteriaCumulative),
		Metric:          "distance_miles",
		Threshold:       20,
		ActivityTypeIDs: []uint{1},
	}

	history := []ActivityFact{
		{ID: 1, ActivityTypeID: 1, Metrics: scoring.Metrics{"distance_miles": float64(8)}},
		{ID: 2, ActivityTypeID: 1, Metrics: scoring.Metrics{"distance_miles": float64(8)}},
	}
	out := EvaluateCriteria(c, history)
	if out.Satisfied {
		t.Errorf("expected 16 < 20 to not satisfy")
	}

	history = append(history, ActivityFact{ID: 3, ActivityTypeID: 1, Metrics: scoring.Metrics{"distance_miles": float64(5)}})
	out = EvaluateCriteria(c, history)
	if !out.Satisfied {
		t.Errorf("expected 21 >= 20 to satisfy")
	}
	if len(out.QualifyingActivityIDs) != 3 {
		t.Errorf("expected 3 qualifying ids, got %v", out.QualifyingActivityIDs)
	}
}

func TestCumulativeUnitConversion(t *testing.T) {
	// Type 2 logs kilometers; convert to miles before summing
	c := Criteria{
		Type:            string(CriteriaCumulative),
		Metric:          "distance",
		Threshold:       20,
		ActivityTypeIDs: []uint{1, 2},
		UnitConversions: map[uint]float64{2: 0.621},
	}

	history := []ActivityFact{
		{ID: 1, ActivityTypeID: 1, Metrics: scoring.Metrics{"distance": float64(10)}},
		{ID: 2, ActivityTypeID: 2, Metrics: scoring.Metrics{"distance": float64(10)}}, // 6.21 miles
	}
	out := EvaluateCriteria(c, history)
	if out.Satisfied {
		t.Errorf("expected 16.21 < 20 to not satisfy")
	}

	history = append(history, ActivityFact{ID: 3, ActivityTypeID: 2, Metrics: scoring.Metrics{"distance": float64(10)}})
	out = EvaluateCriteria(c, history)
	if !out.Satisfied {
		t.Errorf("expected 22.42 >= 20 to satisfy")
	}
}

func TestDistinctTypesCriteria(t *testing.T) {
	c := Criteria{
		Type:            string(CriteriaDistinctType),
		RequiredCount:   3,
		ActivityTypeIDs: []uint{1, 2, 3, 4},
	}

	history := []ActivityFact{
		{ID: 1, ActivityTypeID: 1},
		{ID: 2, ActivityTypeID: 1}, // repeat type, no new distinct
		{ID: 3, ActivityTypeID: 2},
	}
	out := EvaluateCriteria(c, history)
	if out.Satisfied {
		t.Errorf("expected 2 distinct types to not satisfy")
	}

	history = append(history, ActivityFact{ID: 4, ActivityTypeID: 4})
	out = EvaluateCriteria(c, history)
	if !out.Satisfied {
		t.Errorf("expected 3 distinct types to satisfy")
	}
	if len(out.QualifyingActivityIDs) != 3 {
		t.Errorf("expected one qualifying id per distinct type, got %v", out.QualifyingActivityIDs)
	}
}

func TestOneOfEachCriteria(t *testing.T) {
	c := Criteria{
		Type:            string(CriteriaOneOfEach),
		ActivityTypeIDs: []uint{1, 2, 3},
	}

	history := []ActivityFact{
		{ID: 1, ActivityTypeID: 1},
		{ID: 2, ActivityTypeID: 2},
	}
	out := EvaluateCriteria(c, history)
	if out.Satisfied {
		t.Errorf("expected missing type 3 to not satisfy")
	}

	history = append(history, ActivityFact{ID: 3, ActivityTypeID: 3})
	out = EvaluateCriteria(c, history)
	if !out.Satisfied {
		t.Errorf("expected one of each type to satisfy")
	}
}

func TestLegacyCriteriaDefaultsToCount(t *testing.T) {
	c := Criteria{
		Metric:          "sessions",
		Threshold:       1,
		RequiredCount:   1,
		ActivityTypeIDs: []uint{7},
	}
	if c.CriteriaType() != CriteriaCount {
		t.Fatalf("expected untagged criteria to default to count, got %v", c.CriteriaType())
	}

	out := EvaluateCriteria(c, []ActivityFact{
		{ID: 1, ActivityTypeID: 7, Metrics: scoring.Metrics{"sessions": float64(1)}},
	})
	if !out.Satisfied {
		t.Errorf("expected legacy count criteria to satisfy")
	}
}
