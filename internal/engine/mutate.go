package engine

import (
	"context"
	"time"

	"github.com/stridehq/challenge-api/internal/ledger"
	"github.com/stridehq/challenge-api/internal/models"
	"github.com/stridehq/challenge-api/internal/scoring"
	"gorm.io/gorm"
)

type EditInput struct {
	ActingUserID   uint
	IsAdmin        bool
	ActivityID     uint
	ActivityTypeID *uint           // nil = unchanged
	LoggedDate     *time.Time      // nil = unchanged
	Metrics        scoring.Metrics // nil = unchanged
	PointsOverride *float64        // admin only, skips re-scoring
}

// EditActivity applies the edit transition. Points are re-evaluated from the
// new type/date/metrics (or overridden by an admin), the ledger moves by the
// delta, and the streak is replayed because the edit may touch any past day.
// Achievements are deliberately not re-evaluated here: awards are sticky.
func (e *Engine) EditActivity(ctx context.Context, in EditInput) (*models.Activity, error) {
	var activity *models.Activity

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		activity, err = e.loadActive(tx, in.ActivityID)
		if err != nil {
			return err
		}
		if activity.UserID != in.ActingUserID && !in.IsAdmin {
			return ErrNotOwner
		}
		if in.PointsOverride != nil && !in.IsAdmin {
			return ErrNotOwner
		}

		var challenge models.Challenge
		if err := tx.First(&challenge, activity.ChallengeID).Error; err != nil {
			return err
		}
		p, err := e.loadParticipation(tx, activity.UserID, activity.ChallengeID)
		if err != nil {
			return err
		}

		// Apply field changes before re-scoring
		if in.ActivityTypeID != nil {
			activity.ActivityTypeID = in.ActivityTypeID
		}
		if in.LoggedDate != nil {
			activity.LoggedDate = models.DateOnly(*in.LoggedDate)
		}
		if in.Metrics != nil {
			activity.Metrics = in.Metrics
		}

		oldPoints := activity.PointsEarned
		if in.PointsOverride != nil {
			activity.PointsEarned = *in.PointsOverride
			// The stored breakdown no longer explains the points
			activity.TriggeredBonuses = nil
		} else {
			if activity.ActivityTypeID == nil {
				return ErrWrongChallenge
			}
			var atype models.ActivityType
			if err := tx.First(&atype, *activity.ActivityTypeID).Error; err != nil {
				return ErrWrongChallenge
			}
			if atype.ChallengeID != challenge.ID {
				return ErrWrongChallenge
			}
			if err := validateTypeDate(&challenge, &atype, activity.LoggedDate); err != nil {
				return err
			}
			if err := e.checkTypeCap(tx, activity.UserID, challenge.ID, &atype, activity.ID); err != nil {
				return err
			}

			dayCtx, err := e.dayContext(tx, activity.UserID, activity.ChallengeID, activity.LoggedDate, &atype, activity.ID)
			if err != nil {
				return err
			}
			breakdown := scoring.Score(atype.ScoringConfig, atype.ThresholdBonuses, activity.Metrics, atype.IsNegative, dayCtx)
			activity.PointsEarned = breakdown.PointsEarned
			activity.TriggeredBonuses = breakdown.Triggered
		}

		if err := tx.Save(activity).Error; err != nil {
			return err
		}

		if err := ledger.Apply(tx, activity.UserID, activity.ChallengeID, activity.PointsEarned-oldPoints); err != nil {
			return err
		}

		// The edit may have moved or devalued a day at or before the
		// anchor, so incremental patching is unsafe.
		return e.replayStreak(tx, &challenge, p)
	})
	if err != nil {
		return nil, err
	}
	return activity, nil
}

// DeleteActivity soft-deletes an activity, subtracting its stored points
// (not recomputed) from the ledger. The total may legitimately go negative.
// Earned achievements are not revoked.
func (e *Engine) DeleteActivity(ctx context.Context, actingUserID uint, isAdmin bool, activityID uint) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		activity, err := e.loadActive(tx, activityID)
		if err != nil {
			return err
		}
		if activity.UserID != actingUserID && !isAdmin {
			return ErrNotOwner
		}

		var challenge models.Challenge
		if err := tx.First(&challenge, activity.ChallengeID).Error; err != nil {
			return err
		}
		p, err := e.loadParticipation(tx, activity.UserID, activity.ChallengeID)
		if err != nil {
			return err
		}

		if err := tx.Delete(activity).Error; err != nil {
			return err
		}
		if err := ledger.Apply(tx, activity.UserID, activity.ChallengeID, -activity.PointsEarned); err != nil {
			return err
		}
		return e.replayStreak(tx, &challenge, p)
	})
}

// loadActive fetches a non-deleted activity, distinguishing "never existed"
// from "already deleted".
func (e *Engine) loadActive(tx *gorm.DB, activityID uint) (*models.Activity, error) {
	var activity models.Activity
	err := tx.First(&activity, activityID).Error
	if err == nil {
		return &activity, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	var deleted models.Activity
	if tx.Unscoped().First(&deleted, activityID).Error == nil {
		return nil, ErrAlreadyDeleted
	}
	return nil, ErrNotFound
}
