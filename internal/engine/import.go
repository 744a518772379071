package engine

import (
	"context"
	"time"

	"github.com/stridehq/challenge-api/internal/ledger"
	"github.com/stridehq/challenge-api/internal/models"
	"github.com/stridehq/challenge-api/internal/scoring"
	"gorm.io/gorm"
)

type ImportInput struct {
	UserID         uint
	ChallengeID    uint
	ActivityTypeID uint
	LoggedDate     time.Time
	Metrics        scoring.Metrics
	ExternalID     string
}

// ImportUpsert is the sole integration surface for third-party sync. It is
// idempotent on ExternalID: replaying the same payload yields one active
// activity with the same points and ledger state as a single apply. A
// deleted activity with the same ExternalID is restored and re-scored from
// the new payload.
//
// The dedup lookup and the chosen write run in one transaction, and the
// unique index on (user, challenge, external id) backs it up: concurrent
// redeliveries cannot both take the create path.
func (e *Engine) ImportUpsert(ctx context.Context, in ImportInput) (*models.Activity, []AwardEvent, error) {
	var activity *models.Activity
	var awards []AwardEvent

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Activity
		err := tx.Unscoped().
			Where("external_id = ? AND user_id = ? AND challenge_id = ?", in.ExternalID, in.UserID, in.ChallengeID).
			First(&existing).Error

		switch {
		case err == gorm.ErrRecordNotFound:
			activity, awards, err = e.logActivity(tx, LogInput{
				ActingUserID:   in.UserID,
				UserID:         in.UserID,
				ChallengeID:    in.ChallengeID,
				ActivityTypeID: in.ActivityTypeID,
				LoggedDate:     in.LoggedDate,
				Metrics:        in.Metrics,
				Source:         models.SourceSync,
				ExternalID:     in.ExternalID,
			})
			return err
		case err != nil:
			return err
		case existing.DeletedAt.Valid:
			awards, err = e.restore(tx, &existing, in)
			activity = &existing
			return err
		default:
			err = e.resync(tx, &existing, in)
			activity = &existing
			return err
		}
	})
	if err != nil {
		return nil, nil, err
	}
	return activity, awards, nil
}

// restore revives a soft-deleted sync activity, scoring it from the new
// payload and running the insert paths for ledger, streak and achievements.
func (e *Engine) restore(tx *gorm.DB, activity *models.Activity, in ImportInput) ([]AwardEvent, error) {
	challenge, p, atype, day, err := e.loadImportState(tx, in)
	if err != nil {
		return nil, err
	}
	if err := e.checkTypeCap(tx, in.UserID, in.ChallengeID, atype, activity.ID); err != nil {
		return nil, err
	}

	dayCtx, err := e.dayContext(tx, in.UserID, in.ChallengeID, day, atype, activity.ID)
	if err != nil {
		return nil, err
	}
	breakdown := scoring.Score(atype.ScoringConfig, atype.ThresholdBonuses, in.Metrics, atype.IsNegative, dayCtx)

	typeID := atype.ID
	activity.DeletedAt = gorm.DeletedAt{}
	activity.ActivityTypeID = &typeID
	activity.LoggedDate = day
	activity.Metrics = in.Metrics
	activity.PointsEarned = breakdown.PointsEarned
	activity.TriggeredBonuses = breakdown.Triggered
	if err := tx.Unscoped().Save(activity).Error; err != nil {
		return nil, err
	}

	if err := ledger.Apply(tx, in.UserID, in.ChallengeID, breakdown.PointsEarned); err != nil {
		return nil, err
	}
	if err := e.replayStreak(tx, challenge, p); err != nil {
		return nil, err
	}

	return e.evaluateAchievements(tx, in.UserID, in.ChallengeID)
}

// resync re-applies a payload to an already-active activity: points are
// re-evaluated and the ledger moves by the delta, which is zero when the
// payload is unchanged.
func (e *Engine) resync(tx *gorm.DB, activity *models.Activity, in ImportInput) error {
	challenge, p, atype, day, err := e.loadImportState(tx, in)
	if err != nil {
		return err
	}

	dayCtx, err := e.dayContext(tx, in.UserID, in.ChallengeID, day, atype, activity.ID)
	if err != nil {
		return err
	}
	breakdown := scoring.Score(atype.ScoringConfig, atype.ThresholdBonuses, in.Metrics, atype.IsNegative, dayCtx)

	oldPoints := activity.PointsEarned
	typeID := atype.ID
	activity.ActivityTypeID = &typeID
	activity.LoggedDate = day
	activity.Metrics = in.Metrics
	activity.PointsEarned = breakdown.PointsEarned
	activity.TriggeredBonuses = breakdown.Triggered
	if err := tx.Save(activity).Error; err != nil {
		return err
	}

	if err := ledger.Apply(tx, in.UserID, in.ChallengeID, breakdown.PointsEarned-oldPoints); err != nil {
		return err
	}
	return e.replayStreak(tx, challenge, p)
}

// loadImportState resolves the rows a restore/resync writes against and
// applies the same calendar validation as a create: a payload moving the
// activity to an invalid date is rejected, not silently accepted.
func (e *Engine) loadImportState(tx *gorm.DB, in ImportInput) (*models.Challenge, *models.Participation, *models.ActivityType, time.Time, error) {
	p, err := e.loadParticipation(tx, in.UserID, in.ChallengeID)
	if err != nil {
		return nil, nil, nil, time.Time{}, err
	}
	var challenge models.Challenge
	if err := tx.First(&challenge, in.ChallengeID).Error; err != nil {
		return nil, nil, nil, time.Time{}, err
	}

	var atype models.ActivityType
	if err := tx.First(&atype, in.ActivityTypeID).Error; err != nil {
		return nil, nil, nil, time.Time{}, ErrWrongChallenge
	}
	if atype.ChallengeID != challenge.ID {
		return nil, nil, nil, time.Time{}, ErrWrongChallenge
	}

	day := models.DateOnly(in.LoggedDate)
	if err := validateTypeDate(&challenge, &atype, day); err != nil {
		return nil, nil, nil, time.Time{}, err
	}

	return &challenge, p, &atype, day, nil
}

// ImportDelete soft-deletes by ExternalID. Per sync-source policy the
// resulting total is clamped at zero; user and admin deletes do not clamp.
func (e *Engine) ImportDelete(ctx context.Context, userID, challengeID uint, externalID string) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var activity models.Activity
		err := tx.Where("external_id = ? AND user_id = ? AND challenge_id = ?", externalID, userID, challengeID).
			First(&activity).Error
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var challenge models.Challenge
		if err := tx.First(&challenge, activity.ChallengeID).Error; err != nil {
			return err
		}
		p, err := e.loadParticipation(tx, activity.UserID, activity.ChallengeID)
		if err != nil {
			return err
		}

		if err := tx.Delete(&activity).Error; err != nil {
			return err
		}
		if err := ledger.ApplyClamped(tx, activity.UserID, activity.ChallengeID, -activity.PointsEarned); err != nil {
			return err
		}
		return e.replayStreak(tx, &challenge, p)
	})
}
