package models

import (
	"time"

	"gorm.io/gorm"
)

type Challenge struct {
	gorm.Model
	Name            string    `json:"name"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	StreakMinPoints float64   `json:"streak_min_points"`
	PaymentRequired bool      `json:"payment_required"`
	FinalDaysCount  int       `json:"final_days_count"`
}

// WeekOf returns the 1-based challenge week a date falls in.
func (c *Challenge) WeekOf(day time.Time) int {
	days := int(day.Sub(DateOnly(c.StartDate)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days/7 + 1
}

// InFinalDays reports whether a date falls within the challenge's closing
// window, where some activity types stop being loggable.
func (c *Challenge) InFinalDays(day time.Time) bool {
	if c.FinalDaysCount <= 0 {
		return false
	}
	cutoff := DateOnly(c.EndDate).AddDate(0, 0, -c.FinalDaysCount+1)
	return !day.Before(cutoff)
}

// DateOnly truncates a timestamp to its calendar date in UTC. Activities are
// keyed by date only; time-of-day is discarded at write time.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
