package engine

import (
	"context"
	"time"

	"github.com/stridehq/challenge-api/internal/achievements"
	"github.com/stridehq/challenge-api/internal/ledger"
	"github.com/stridehq/challenge-api/internal/models"
	"gorm.io/gorm"
)

// evaluateAchievements checks every not-yet-earned achievement for the
// challenge against the user's full qualifying history. Runs on insert and
// restore only; deletes and edits never revoke an award (awards are sticky,
// the known earn/un-earn asymmetry).
func (e *Engine) evaluateAchievements(tx *gorm.DB, userID, challengeID uint) ([]AwardEvent, error) {
	var defs []models.Achievement
	if err := tx.Where("challenge_id = ?", challengeID).Find(&defs).Error; err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		return nil, nil
	}

	var earned []models.UserAchievement
	if err := tx.Where("user_id = ? AND challenge_id = ?", userID, challengeID).Find(&earned).Error; err != nil {
		return nil, err
	}
	earnedSet := make(map[uint]bool, len(earned))
	for _, ua := range earned {
		earnedSet[ua.AchievementID] = true
	}

	// Synthetic bonus activities have no type and never satisfy criteria.
	var history []models.Activity
	err := tx.Where("user_id = ? AND challenge_id = ? AND activity_type_id IS NOT NULL", userID, challengeID).
		Find(&history).Error
	if err != nil {
		return nil, err
	}
	facts := make([]achievements.ActivityFact, 0, len(history))
	for _, a := range history {
		facts = append(facts, achievements.ActivityFact{
			ID:             a.ID,
			ActivityTypeID: *a.ActivityTypeID,
			Metrics:        a.Metrics,
		})
	}

	var events []AwardEvent
	for _, def := range defs {
		if earnedSet[def.ID] {
			continue
		}
		outcome := achievements.EvaluateCriteria(def.Criteria, facts)
		if !outcome.Satisfied {
			continue
		}

		event, err := e.award(tx, userID, challengeID, def, outcome)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}
	return events, nil
}

// award inserts the synthetic bonus activity and the UserAchievement row,
// pushing the bonus points through the regular ledger insert path.
func (e *Engine) award(tx *gorm.DB, userID, challengeID uint, def models.Achievement, outcome achievements.Outcome) (*AwardEvent, error) {
	bonus := &models.Activity{
		UserID:       userID,
		ChallengeID:  challengeID,
		LoggedDate:   models.DateOnly(time.Now()),
		PointsEarned: def.BonusPoints,
		Source:       models.SourceAchievement,
	}
	if err := tx.Create(bonus).Error; err != nil {
		return nil, err
	}
	if err := ledger.Apply(tx, userID, challengeID, def.BonusPoints); err != nil {
		return nil, err
	}

	ua := &models.UserAchievement{
		AchievementID:         def.ID,
		UserID:                userID,
		ChallengeID:           challengeID,
		EarnedAt:              time.Now(),
		QualifyingActivityIDs: outcome.QualifyingActivityIDs,
		BonusActivityID:       bonus.ID,
	}
	if err := tx.Create(ua).Error; err != nil {
		return nil, err
	}

	return &AwardEvent{
		UserID:            userID,
		Achievement:       def,
		UserAchievementID: ua.ID,
		BonusActivityID:   bonus.ID,
	}, nil
}

// RemoveAchievement deletes an achievement definition and cascades to its
// awards. Awarded bonus activities are soft-deleted through the ledger so
// participant totals stay equal to the live sum.
func (e *Engine) RemoveAchievement(ctx context.Context, achievementID uint) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var def models.Achievement
		if err := tx.First(&def, achievementID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrNotFound
			}
			return err
		}

		var awards []models.UserAchievement
		if err := tx.Where("achievement_id = ?", achievementID).Find(&awards).Error; err != nil {
			return err
		}

		for _, ua := range awards {
			var bonus models.Activity
			err := tx.First(&bonus, ua.BonusActivityID).Error
			if err == nil {
				if err := tx.Delete(&bonus).Error; err != nil {
					return err
				}
				if err := ledger.Apply(tx, ua.UserID, ua.ChallengeID, -bonus.PointsEarned); err != nil {
					return err
				}
			} else if err != gorm.ErrRecordNotFound {
				return err
			}
			if err := tx.Delete(&ua).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&def).Error
	})
}
