package models

import (
	"github.com/stridehq/challenge-api/internal/scoring"
	"gorm.io/gorm"
)

// ActivityType defines a loggable action within one challenge. Its identity
// is immutable; admins may edit the scoring config, which never retroactively
// changes stored points on past activities.
type ActivityType struct {
	gorm.Model
	ChallengeID          uint                     `json:"challenge_id" gorm:"index"`
	Name                 string                   `json:"name"`
	ScoringConfig        scoring.Config           `json:"scoring_config" gorm:"serializer:json"`
	ThresholdBonuses     []scoring.ThresholdBonus `json:"threshold_bonuses,omitempty" gorm:"serializer:json"`
	ContributesToStreak  bool                     `json:"contributes_to_streak"`
	IsNegative           bool                     `json:"is_negative"`
	MaxPerChallenge      *int                     `json:"max_per_challenge,omitempty"`
	ValidWeeks           []int                    `json:"valid_weeks,omitempty" gorm:"serializer:json"`
	AvailableInFinalDays bool                     `json:"available_in_final_days"`
	CategoryID           *uint                    `json:"category_id,omitempty"`
}

// ValidInWeek reports whether the type may be logged in the given challenge
// week. An empty ValidWeeks list means every week.
func (t *ActivityType) ValidInWeek(week int) bool {
	if len(t.ValidWeeks) == 0 {
		return true
	}
	for _, w := range t.ValidWeeks {
		if w == week {
			return true
		}
	}
	return false
}
