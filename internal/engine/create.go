package engine

import (
	"context"
	"time"

	"github.com/stridehq/challenge-api/internal/ledger"
	"github.com/stridehq/challenge-api/internal/models"
	"github.com/stridehq/challenge-api/internal/scoring"
	"gorm.io/gorm"
)

type LogInput struct {
	ActingUserID   uint
	IsAdmin        bool
	UserID         uint
	ChallengeID    uint
	ActivityTypeID uint
	LoggedDate     time.Time
	Metrics        scoring.Metrics
	Source         models.ActivitySource
	ExternalID     string
}

// LogActivity applies the create transition: validate, score, insert, ledger
// delta, streak update, achievement evaluation. All inside one transaction;
// any validation failure leaves no partial side effects.
func (e *Engine) LogActivity(ctx context.Context, in LogInput) (*models.Activity, []AwardEvent, error) {
	var activity *models.Activity
	var awards []AwardEvent

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		activity, awards, err = e.logActivity(tx, in)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return activity, awards, nil
}

// logActivity is the transaction body of the create transition, shared with
// the import upsert so the dedup lookup and the insert stay in one
// transaction.
func (e *Engine) logActivity(tx *gorm.DB, in LogInput) (*models.Activity, []AwardEvent, error) {
	// 1. Ownership: only admins log for other users
	if in.ActingUserID != in.UserID && !in.IsAdmin {
		return nil, nil, ErrNotOwner
	}

	// 2. Membership and payment gate
	p, err := e.loadParticipation(tx, in.UserID, in.ChallengeID)
	if err != nil {
		return nil, nil, err
	}

	var challenge models.Challenge
	if err := tx.First(&challenge, in.ChallengeID).Error; err != nil {
		return nil, nil, err
	}

	if challenge.PaymentRequired && p.PaymentStatus != models.PaymentStatusPaid {
		return nil, nil, ErrPaymentRequired
	}

	// 3. Activity type validation
	atype, day, err := e.validateType(tx, &challenge, in.UserID, in.ActivityTypeID, in.LoggedDate)
	if err != nil {
		return nil, nil, err
	}

	// 4. Score against same-day context
	dayCtx, err := e.dayContext(tx, in.UserID, in.ChallengeID, day, atype, 0)
	if err != nil {
		return nil, nil, err
	}
	breakdown := scoring.Score(atype.ScoringConfig, atype.ThresholdBonuses, in.Metrics, atype.IsNegative, dayCtx)

	typeID := atype.ID
	activity := &models.Activity{
		UserID:           in.UserID,
		ChallengeID:      in.ChallengeID,
		ActivityTypeID:   &typeID,
		LoggedDate:       day,
		Metrics:          in.Metrics,
		PointsEarned:     breakdown.PointsEarned,
		Source:           in.Source,
		TriggeredBonuses: breakdown.Triggered,
	}
	if in.ExternalID != "" {
		externalID := in.ExternalID
		activity.ExternalID = &externalID
	}
	if err := tx.Create(activity).Error; err != nil {
		return nil, nil, err
	}

	// 5. Ledger and streak
	if err := ledger.Apply(tx, in.UserID, in.ChallengeID, breakdown.PointsEarned); err != nil {
		return nil, nil, err
	}
	if err := e.updateStreakAfterInsert(tx, &challenge, p, day, breakdown.PointsEarned); err != nil {
		return nil, nil, err
	}

	// 6. Achievements (insert path only)
	awards, err := e.evaluateAchievements(tx, in.UserID, in.ChallengeID)
	if err != nil {
		return nil, nil, err
	}
	return activity, awards, nil
}

// validateType checks the type belongs to the challenge and may be logged on
// the given date, and enforces its per-challenge cap.
func (e *Engine) validateType(tx *gorm.DB, challenge *models.Challenge, userID, typeID uint, loggedDate time.Time) (*models.ActivityType, time.Time, error) {
	var atype models.ActivityType
	if err := tx.First(&atype, typeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, time.Time{}, ErrWrongChallenge
		}
		return nil, time.Time{}, err
	}
	if atype.ChallengeID != challenge.ID {
		return nil, time.Time{}, ErrWrongChallenge
	}

	day := models.DateOnly(loggedDate)
	if err := validateTypeDate(challenge, &atype, day); err != nil {
		return nil, time.Time{}, err
	}
	if err := e.checkTypeCap(tx, userID, challenge.ID, &atype, 0); err != nil {
		return nil, time.Time{}, err
	}
	return &atype, day, nil
}

// validateTypeDate enforces the calendar availability rules. Shared by every
// transition that sets or moves an activity's date: create, edit, restore and
// resync all reject the same way.
func validateTypeDate(challenge *models.Challenge, atype *models.ActivityType, day time.Time) error {
	if !atype.ValidInWeek(challenge.WeekOf(day)) {
		return ErrTypeNotAvailable
	}
	if challenge.InFinalDays(day) && !atype.AvailableInFinalDays {
		return ErrTypeNotAvailable
	}
	return nil
}

// checkTypeCap enforces MaxPerChallenge. excludeID skips the activity being
// rewritten so edits and restores don't count themselves.
func (e *Engine) checkTypeCap(tx *gorm.DB, userID, challengeID uint, atype *models.ActivityType, excludeID uint) error {
	if atype.MaxPerChallenge == nil {
		return nil
	}
	var count int64
	err := tx.Model(&models.Activity{}).
		Where("user_id = ? AND challenge_id = ? AND activity_type_id = ? AND id <> ?",
			userID, challengeID, atype.ID, excludeID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count >= int64(*atype.MaxPerChallenge) {
		return ErrMaxPerChallenge
	}
	return nil
}

// InjectBonus inserts a synthetic bonus activity, used by the mini-game
// engine at game end. It has no activity type, so it moves the ledger but
// never the streak, and it cannot satisfy achievement criteria. The payment
// gate applies as on any other create.
func (e *Engine) InjectBonus(ctx context.Context, userID, challengeID uint, points float64, source models.ActivitySource, label string) (*models.Activity, error) {
	var activity *models.Activity
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := e.loadParticipation(tx, userID, challengeID)
		if err != nil {
			return err
		}
		var challenge models.Challenge
		if err := tx.First(&challenge, challengeID).Error; err != nil {
			return err
		}
		if challenge.PaymentRequired && p.PaymentStatus != models.PaymentStatusPaid {
			return ErrPaymentRequired
		}

		activity = &models.Activity{
			UserID:       userID,
			ChallengeID:  challengeID,
			LoggedDate:   models.DateOnly(time.Now()),
			Metrics:      scoring.Metrics{"label": label},
			PointsEarned: points,
			Source:       source,
		}
		if err := tx.Create(activity).Error; err != nil {
			return err
		}

		return ledger.Apply(tx, userID, challengeID, points)
	})
	if err != nil {
		return nil, err
	}
	return activity, nil
}
