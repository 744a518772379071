package models

import (
	"time"

	"github.com/stridehq/challenge-api/internal/scoring"
	"gorm.io/gorm"
)

type ActivitySource string

const (
	SourceManual      ActivitySource = "manual"
	SourceSync        ActivitySource = "external_sync"
	SourceMiniGame    ActivitySource = "mini_game"
	SourceAdmin       ActivitySource = "admin"
	SourceAchievement ActivitySource = "achievement"
)

// Activity is one dated log entry. PointsEarned is frozen at write/edit time
// and never recomputed lazily; the participation aggregate is maintained by
// signed deltas against this stored value. Rows are soft-deleted only
// (gorm.Model.DeletedAt) so a sync restore can revive them.
//
// ExternalID is nil for everything but synced activities. The unique index
// spans soft-deleted rows too, so a provider id can never produce a second
// row: concurrent redeliveries collide on the index and the loser replays
// through the restore/resync path.
type Activity struct {
	gorm.Model
	UserID           uint                     `json:"user_id" gorm:"index:idx_user_challenge_date;uniqueIndex:idx_sync_dedup"`
	ChallengeID      uint                     `json:"challenge_id" gorm:"index:idx_user_challenge_date;uniqueIndex:idx_sync_dedup"`
	ActivityTypeID   *uint                    `json:"activity_type_id,omitempty"`
	LoggedDate       time.Time                `json:"logged_date" gorm:"index:idx_user_challenge_date"`
	Metrics          scoring.Metrics          `json:"metrics,omitempty" gorm:"serializer:json"`
	PointsEarned     float64                  `json:"points_earned"`
	Source           ActivitySource           `json:"source"`
	ExternalID       *string                  `json:"external_id,omitempty" gorm:"uniqueIndex:idx_sync_dedup"`
	TriggeredBonuses []scoring.TriggeredBonus `json:"triggered_bonuses,omitempty" gorm:"serializer:json"`
}

// HasMediaBonus reports whether this activity already claimed the
// once-per-day media bonus.
func (a *Activity) HasMediaBonus() bool {
	for _, tb := range a.TriggeredBonuses {
		if tb.Metric == scoring.MediaBonusMetric {
			return true
		}
	}
	return false
}
