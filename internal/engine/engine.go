// Package engine coordinates activity lifecycle transitions (log, edit,
// delete, import upsert, bonus injection) so the scoring evaluator, point
// ledger, streak recomputer and achievement evaluator always observe and
// produce consistent state. Every transition runs inside one gorm
// transaction; all reads used for evaluation happen in that same
// transaction.
package engine

import (
	"context"
	"time"

	"github.com/stridehq/challenge-api/internal/ledger"
	"github.com/stridehq/challenge-api/internal/models"
	"github.com/stridehq/challenge-api/internal/scoring"
	"github.com/stridehq/challenge-api/internal/streak"
	"gorm.io/gorm"
)

type Engine struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// AwardEvent is emitted when an achievement is earned, for collaborators
// (notifications) to act on after the transaction commits.
type AwardEvent struct {
	UserID            uint
	Achievement       models.Achievement
	UserAchievementID uint
	BonusActivityID   uint
}

func (e *Engine) loadParticipation(tx *gorm.DB, userID, challengeID uint) (*models.Participation, error) {
	var p models.Participation
	err := tx.Where("user_id = ? AND challenge_id = ?", userID, challengeID).First(&p).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotParticipant
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// dayContext gathers the same-day state scoring depends on, excluding the
// activity being written (selfID 0 for creates).
func (e *Engine) dayContext(tx *gorm.DB, userID, challengeID uint, day time.Time, atype *models.ActivityType, selfID uint) (scoring.DayContext, error) {
	var dayCtx scoring.DayContext

	var sameDay []models.Activity
	err := tx.Where("user_id = ? AND challenge_id = ? AND logged_date = ? AND id <> ?",
		userID, challengeID, day, selfID).Find(&sameDay).Error
	if err != nil {
		return dayCtx, err
	}

	unit := atype.ScoringConfig.Unit
	for _, a := range sameDay {
		if a.HasMediaBonus() {
			dayCtx.MediaBonusTaken = true
		}
		if atype.IsNegative && unit != "" && a.ActivityTypeID != nil && *a.ActivityTypeID == atype.ID {
			dayCtx.FreebieUnitsUsed += a.Metrics.Value(unit)
		}
	}
	return dayCtx, nil
}

type dayTotalRow struct {
	LoggedDate time.Time
	Total      float64
}

// qualifyingDayTotals returns the per-day sums of points from non-deleted
// activities whose type contributes to the streak, sign included.
func (e *Engine) qualifyingDayTotals(tx *gorm.DB, userID, challengeID uint) (map[time.Time]float64, error) {
	var rows []dayTotalRow
	err := tx.Model(&models.Activity{}).
		Select("activities.logged_date AS logged_date, SUM(activities.points_earned) AS total").
		Joins("JOIN activity_types ON activity_types.id = activities.activity_type_id").
		Where("activities.user_id = ? AND activities.challenge_id = ?", userID, challengeID).
		Where("activity_types.contributes_to_streak = ?", true).
		Where("activity_types.deleted_at IS NULL").
		Group("activities.logged_date").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := make(map[time.Time]float64, len(rows))
	for _, row := range rows {
		totals[models.DateOnly(row.LoggedDate)] = row.Total
	}
	return totals, nil
}

// replayStreak rebuilds the streak columns from scratch. This is the
// canonical path for every mutation that touches a day at or before the
// current anchor: edits, deletes, backfills and point overrides.
func (e *Engine) replayStreak(tx *gorm.DB, challenge *models.Challenge, p *models.Participation) error {
	totals, err := e.qualifyingDayTotals(tx, p.UserID, p.ChallengeID)
	if err != nil {
		return err
	}
	state := streak.Replay(totals, challenge.StreakMinPoints)
	return e.saveStreak(tx, p, state)
}

// updateStreakAfterInsert takes the forward-append fast path when the
// written day is at or after the anchor and cannot have uncounted it;
// everything else replays.
func (e *Engine) updateStreakAfterInsert(tx *gorm.DB, challenge *models.Challenge, p *models.Participation, day time.Time, pointsDelta float64) error {
	fastPath := p.LastStreakDay == nil ||
		day.After(*p.LastStreakDay) ||
		(day.Equal(*p.LastStreakDay) && pointsDelta >= 0)
	if !fastPath {
		return e.replayStreak(tx, challenge, p)
	}

	var dayTotal float64
	err := tx.Model(&models.Activity{}).
		Joins("JOIN activity_types ON activity_types.id = activities.activity_type_id").
		Where("activities.user_id = ? AND activities.challenge_id = ? AND activities.logged_date = ?",
			p.UserID, p.ChallengeID, day).
		Where("activity_types.contributes_to_streak = ?", true).
		Where("activity_types.deleted_at IS NULL").
		Select("COALESCE(SUM(activities.points_earned), 0)").
		Scan(&dayTotal).Error
	if err != nil {
		return err
	}

	state := streak.State{Current: p.CurrentStreak}
	if p.LastStreakDay != nil {
		state.LastDay = *p.LastStreakDay
	}
	state = streak.Extend(state, day, dayTotal, challenge.StreakMinPoints)
	return e.saveStreak(tx, p, state)
}

func (e *Engine) saveStreak(tx *gorm.DB, p *models.Participation, state streak.State) error {
	p.CurrentStreak = state.Current
	if state.LastDay.IsZero() {
		p.LastStreakDay = nil
	} else {
		last := state.LastDay
		p.LastStreakDay = &last
	}
	return tx.Model(&models.Participation{}).
		Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"current_streak":  p.CurrentStreak,
			"last_streak_day": p.LastStreakDay,
		}).Error
}

// RebuildParticipation recomputes both cached aggregates from the activity
// log. Exposed to admins as the repair path: any ledger or streak corruption
// is fixable by replay.
func (e *Engine) RebuildParticipation(ctx context.Context, userID, challengeID uint) (*models.Participation, error) {
	var p *models.Participation
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		p, err = e.loadParticipation(tx, userID, challengeID)
		if err != nil {
			return err
		}

		var challenge models.Challenge
		if err := tx.First(&challenge, challengeID).Error; err != nil {
			return err
		}

		total, err := ledger.Rebuild(tx, userID, challengeID)
		if err != nil {
			return err
		}
		p.TotalPoints = total

		return e.replayStreak(tx, &challenge, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}
