// Package streak rebuilds the current-streak aggregate from per-day
// qualifying point totals. Replay is the canonical computation: every
// mutation path that touches a day at or before the streak anchor must go
// through it, because incremental patching is only safe for strictly-newer
// appends.
package streak

import (
	"sort"
	"time"
)

// State is the derived streak aggregate. A zero LastDay means no day has
// ever counted.
type State struct {
	Current int
	LastDay time.Time
}

// Replay walks a day→qualifying-total map chronologically and rebuilds the
// streak from scratch. A day counts when its qualifying total reaches
// minPoints. Only the contiguous run of counting days ending at the latest
// counting day survives; earlier, longer runs do not.
func Replay(dayTotals map[time.Time]float64, minPoints float64) State {
	days := make([]time.Time, 0, len(dayTotals))
	for day := range dayTotals {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	var state State
	for _, day := range days {
		if dayTotals[day] < minPoints {
			continue
		}
		if !state.LastDay.IsZero() && day.Equal(state.LastDay.AddDate(0, 0, 1)) {
			state.Current++
		} else {
			state.Current = 1
		}
		state.LastDay = day
	}
	return state
}

// Extend applies the forward-append fast path: a new counting day strictly
// after the anchor. It must agree with Replay over the same history, which
// restricts it to exactly three cases: same day (no change), next day
// (increment), gap (reset). Callers fall back to Replay for anything else.
func Extend(state State, day time.Time, dayTotal, minPoints float64) State {
	if dayTotal < minPoints {
		return state
	}
	switch {
	case !state.LastDay.IsZero() && day.Equal(state.LastDay):
		// Already counted; same-day re-logs never double-increment.
		return state
	case !state.LastDay.IsZero() && day.Equal(state.LastDay.AddDate(0, 0, 1)):
		return State{Current: state.Current + 1, LastDay: day}
	default:
		return State{Current: 1, LastDay: day}
	}
}
