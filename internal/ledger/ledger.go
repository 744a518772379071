// Package ledger owns the participation.total_points invariant: the cached
// total always equals the sum of points_earned over non-deleted activities
// for that user and challenge. Every mutation path applies a signed delta
// inside the caller's transaction; Rebuild recomputes the ground truth for
// audit and repair.
package ledger

import (
	"github.com/stridehq/challenge-api/internal/models"
	"gorm.io/gorm"
)

// Apply adds a signed delta to the cached total. Deletions of positive
// activities may push the total negative; that is correct and the ledger
// never floors it.
func Apply(tx *gorm.DB, userID, challengeID uint, delta float64) error {
	return tx.Model(&models.Participation{}).
		Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		UpdateColumn("total_points", gorm.Expr("total_points + ?", delta)).
		Error
}

// ApplyClamped applies a delta and floors the result at zero. This is
// import-source policy for external-sync deletes only, not a ledger
// invariant; user and admin deletes go through Apply.
func ApplyClamped(tx *gorm.DB, userID, challengeID uint, delta float64) error {
	return tx.Model(&models.Participation{}).
		Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		UpdateColumn("total_points", gorm.Expr("MAX(0, total_points + ?)", delta)).
		Error
}

// LiveTotal sums points over non-deleted activities. Anything
// ranking-visible derives from this, not from the cached column, so a ledger
// bug can never corrupt a leaderboard.
func LiveTotal(tx *gorm.DB, userID, challengeID uint) (float64, error) {
	var total float64
	err := tx.Model(&models.Activity{}).
		Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		Select("COALESCE(SUM(points_earned), 0)").
		Scan(&total).Error
	return total, err
}

// Rebuild overwrites the cached total with the live sum and returns it.
func Rebuild(tx *gorm.DB, userID, challengeID uint) (float64, error) {
	total, err := LiveTotal(tx, userID, challengeID)
	if err != nil {
		return 0, err
	}
	err = tx.Model(&models.Participation{}).
		Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		UpdateColumn("total_points", total).
		Error
	return total, err
}
