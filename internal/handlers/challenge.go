package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stridehq/challenge-api/internal/auth"
	"github.com/stridehq/challenge-api/internal/ledger"
	"github.com/stridehq/challenge-api/internal/models"
	"gorm.io/gorm"
)

type ChallengeHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
}

func NewChallengeHandler(db *gorm.DB, authHandler *auth.AuthHandler) *ChallengeHandler {
	return &ChallengeHandler{db: db, authHandler: authHandler}
}

type JoinChallengeRequest struct {
	auth.AuthInput
	ChallengeID uint `path:"challengeID"`
}

type JoinChallengeResponse struct {
	Body struct {
		Participation models.Participation `json:"participation"`
	}
}

func (h *ChallengeHandler) HandleJoin(ctx context.Context, input *JoinChallengeRequest) (*JoinChallengeResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var challenge models.Challenge
	if err := h.db.First(&challenge, input.ChallengeID).Error; err != nil {
		return nil, huma.Error404NotFound("Challenge not found")
	}

	var p models.Participation
	err = h.db.FirstOrCreate(&p, models.Participation{
		UserID:      userID,
		ChallengeID: challenge.ID,
	}).Error
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to join challenge: " + err.Error())
	}
	if p.PaymentStatus == "" {
		p.PaymentStatus = models.PaymentStatusNone
		if err := h.db.Save(&p).Error; err != nil {
			return nil, huma.Error500InternalServerError("Failed to join challenge: " + err.Error())
		}
	}

	res := &JoinChallengeResponse{}
	res.Body.Participation = p
	return res, nil
}

type LeaderboardRequest struct {
	ChallengeID uint `path:"challengeID"`
}

type LeaderboardEntry struct {
	Rank          int     `json:"rank"`
	UserID        uint    `json:"user_id"`
	Username      string  `json:"username"`
	TotalPoints   float64 `json:"total_points"`
	CurrentStreak int     `json:"current_streak"`
}

type LeaderboardResponse struct {
	Body struct {
		Entries []LeaderboardEntry `json:"entries"`
	}
}

// HandleLeaderboard derives totals from a live sum over non-deleted
// activities rather than the cached participation column, so a ledger bug
// can never corrupt rankings.
func (h *ChallengeHandler) HandleLeaderboard(ctx context.Context, input *LeaderboardRequest) (*LeaderboardResponse, error) {
	var rows []LeaderboardEntry
	err := h.db.WithContext(ctx).Table("participations").
		Select("participations.user_id AS user_id, users.username AS username, "+
			"COALESCE(SUM(activities.points_earned), 0) AS total_points, "+
			"participations.current_streak AS current_streak").
		Joins("JOIN users ON users.id = participations.user_id").
		Joins("LEFT JOIN activities ON activities.user_id = participations.user_id "+
			"AND activities.challenge_id = participations.challenge_id "+
			"AND activities.deleted_at IS NULL").
		Where("participations.challenge_id = ? AND participations.deleted_at IS NULL", input.ChallengeID).
		Group("participations.id").
		Order("total_points DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load leaderboard: " + err.Error())
	}

	for i := range rows {
		rows[i].Rank = i + 1
	}

	res := &LeaderboardResponse{}
	res.Body.Entries = rows
	return res, nil
}

type MyParticipationRequest struct {
	auth.AuthInput
	ChallengeID uint `path:"challengeID"`
}

type MyParticipationResponse struct {
	Body struct {
		Participation models.Participation `json:"participation"`
		LiveTotal     float64              `json:"live_total"`
		Activities    []models.Activity    `json:"activities"`
	}
}

func (h *ChallengeHandler) HandleMyParticipation(ctx context.Context, input *MyParticipationRequest) (*MyParticipationResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var p models.Participation
	err = h.db.Where("user_id = ? AND challenge_id = ?", userID, input.ChallengeID).First(&p).Error
	if err != nil {
		return nil, huma.Error404NotFound("You are not a participant in this challenge")
	}

	liveTotal, err := ledger.LiveTotal(h.db, userID, input.ChallengeID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to compute total: " + err.Error())
	}

	var activities []models.Activity
	err = h.db.Where("user_id = ? AND challenge_id = ?", userID, input.ChallengeID).
		Order("logged_date DESC").
		Limit(50).
		Find(&activities).Error
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load activities: " + err.Error())
	}

	res := &MyParticipationResponse{}
	res.Body.Participation = p
	res.Body.LiveTotal = liveTotal
	res.Body.Activities = activities
	return res, nil
}
