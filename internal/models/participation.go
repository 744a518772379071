package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	PaymentStatusNone = "none"
	PaymentStatusPaid = "paid"
)

// Participation is the per-(user, challenge) row holding the derived
// aggregates. TotalPoints and the streak columns are caches of a fold over
// the activity log and must always be rebuildable from it.
type Participation struct {
	gorm.Model
	UserID        uint       `json:"user_id" gorm:"uniqueIndex:idx_user_challenge"`
	ChallengeID   uint       `json:"challenge_id" gorm:"uniqueIndex:idx_user_challenge"`
	TotalPoints   float64    `json:"total_points"`
	CurrentStreak int        `json:"current_streak"`
	LastStreakDay *time.Time `json:"last_streak_day,omitempty"`
	PaymentStatus string     `json:"payment_status"`
}
