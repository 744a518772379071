package streak

import (
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2026, 3, n, 0, 0, 0, 0, time.UTC)
}

func TestReplayConsecutiveDays(t *testing.T) {
	totals := map[time.Time]float64{
		day(1): 10,
		day(2): 15,
		day(3): 12,
	}

	state := Replay(totals, 10)
	if state.Current != 3 {
		t.Errorf("expected streak 3, got %d", state.Current)
	}
	if !state.LastDay.Equal(day(3)) {
		t.Errorf("expected anchor on day 3, got %v", state.LastDay)
	}
}

func TestReplayGap(t *testing.T) {
	// Days 1 and 3 logged, gap on day 2
	totals := map[time.Time]float64{
		day(1): 10,
		day(3): 10,
	}

	state := Replay(totals, 10)
	if state.Current != 1 {
		t.Errorf("expected streak 1 across a gap, got %d", state.Current)
	}
	if !state.LastDay.Equal(day(3)) {
		t.Errorf("expected anchor on day 3, got %v", state.LastDay)
	}

	// Backfilling day 2 heals the gap
	totals[day(2)] = 11
	state = Replay(totals, 10)
	if state.Current != 3 {
		t.Errorf("expected streak 3 after backfill, got %d", state.Current)
	}
	if !state.LastDay.Equal(day(3)) {
		t.Errorf("expected anchor still on day 3, got %v", state.LastDay)
	}
}

func TestReplayDayBelowThreshold(t *testing.T) {
	// A retroactive penalty drops day 2 below the threshold: only the
	// contiguous run ending at the latest counting day survives.
	totals := map[time.Time]float64{
		day(1): 10,
		day(2): 4,
		day(3): 10,
	}

	state := Replay(totals, 10)
	if state.Current != 1 {
		t.Errorf("expected streak shortened to 1, got %d", state.Current)
	}
	if !state.LastDay.Equal(day(3)) {
		t.Errorf("expected anchor on day 3, got %v", state.LastDay)
	}
}

func TestReplayNoQualifyingDays(t *testing.T) {
	state := Replay(map[time.Time]float64{day(1): 2}, 10)
	if state.Current != 0 {
		t.Errorf("expected streak 0, got %d", state.Current)
	}
	if !state.LastDay.IsZero() {
		t.Errorf("expected zero anchor, got %v", state.LastDay)
	}
}

func TestExtendMatchesReplay(t *testing.T) {
	totals := map[time.Time]float64{
		day(1): 10,
		day(2): 10,
	}
	state := Replay(totals, 10)

	cases := []struct {
		name     string
		day      time.Time
		dayTotal float64
	}{
		{"NextDayCounts", day(3), 12},
		{"NextDayBelowThreshold", day(3), 5},
		{"SameDayRepeat", day(2), 25},
		{"GapResets", day(5), 12},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			extended := Extend(state, tc.day, tc.dayTotal, 10)

			replayTotals := map[time.Time]float64{day(1): 10, day(2): 10}
			replayTotals[tc.day] = tc.dayTotal
			replayed := Replay(replayTotals, 10)

			if extended.Current != replayed.Current {
				t.Errorf("Extend gave streak %d, Replay gave %d", extended.Current, replayed.Current)
			}
			if !extended.LastDay.Equal(replayed.LastDay) {
				t.Errorf("Extend gave anchor %v, Replay gave %v", extended.LastDay, replayed.LastDay)
			}
		})
	}
}

func TestExtendSameDayNeverDoubleIncrements(t *testing.T) {
	state := State{Current: 2, LastDay: day(2)}

	// More points landing on the anchor day leave the streak untouched
	next := Extend(state, day(2), 40, 10)
	if next.Current != 2 || !next.LastDay.Equal(day(2)) {
		t.Errorf("expected unchanged state, got %+v", next)
	}
}
