package models

import (
	"time"

	"github.com/stridehq/challenge-api/internal/achievements"
	"gorm.io/gorm"
)

const FrequencyOncePerChallenge = "once_per_challenge"

type Achievement struct {
	gorm.Model
	ChallengeID uint                  `json:"challenge_id" gorm:"index"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Image       string                `json:"image"` // URL to image
	Criteria    achievements.Criteria `json:"criteria" gorm:"serializer:json"`
	BonusPoints float64               `json:"bonus_points"`
	Frequency   string                `json:"frequency"`
}

// UserAchievement records a single award. The unique index enforces
// once_per_challenge; BonusActivityID points at the synthetic activity that
// carried the bonus points into the ledger, QualifyingActivityIDs keeps the
// audit trail of what satisfied the criteria.
type UserAchievement struct {
	gorm.Model
	AchievementID         uint      `json:"achievement_id" gorm:"uniqueIndex:idx_user_achievement"`
	UserID                uint      `json:"user_id" gorm:"uniqueIndex:idx_user_achievement"`
	ChallengeID           uint      `json:"challenge_id"`
	EarnedAt              time.Time `json:"earned_at"`
	QualifyingActivityIDs []uint    `json:"qualifying_activity_ids,omitempty" gorm:"serializer:json"`
	BonusActivityID       uint      `json:"bonus_activity_id"`
}
