package handlers

import (
	"context"
	"log"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stridehq/challenge-api/internal/achievements"
	"github.com/stridehq/challenge-api/internal/auth"
	"github.com/stridehq/challenge-api/internal/engine"
	"github.com/stridehq/challenge-api/internal/models"
	"github.com/stridehq/challenge-api/internal/notifier"
	"github.com/stridehq/challenge-api/internal/scoring"
	"gorm.io/gorm"
)

type AdminHandler struct {
	db          *gorm.DB
	engine      *engine.Engine
	notifier    notifier.Notifier
	authHandler *auth.AuthHandler
}

func NewAdminHandler(db *gorm.DB, eng *engine.Engine, n notifier.Notifier, authHandler *auth.AuthHandler) *AdminHandler {
	return &AdminHandler{db: db, engine: eng, notifier: n, authHandler: authHandler}
}

func (h *AdminHandler) requireAdmin(ctx context.Context, cookie string) (*models.User, error) {
	user, err := h.authHandler.AuthorizeUser(ctx, cookie)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin {
		return nil, huma.Error403Forbidden("Access denied: admin only")
	}
	return user, nil
}

type CreateChallengeRequest struct {
	auth.AuthInput
	Body struct {
		Name            string    `json:"name" required:"true"`
		StartDate       time.Time `json:"start_date" required:"true"`
		EndDate         time.Time `json:"end_date" required:"true"`
		StreakMinPoints float64   `json:"streak_min_points"`
		PaymentRequired bool      `json:"payment_required"`
		FinalDaysCount  int       `json:"final_days_count"`
	}
}

type CreateChallengeResponse struct {
	Body struct {
		Challenge models.Challenge `json:"challenge"`
	}
}

func (h *AdminHandler) HandleCreateChallenge(ctx context.Context, input *CreateChallengeRequest) (*CreateChallengeResponse, error) {
	if _, err := h.requireAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	if input.Body.StartDate.After(input.Body.EndDate) {
		return nil, huma.Error400BadRequest("Start date cannot be after end date")
	}

	challenge := models.Challenge{
		Name:            input.Body.Name,
		StartDate:       models.DateOnly(input.Body.StartDate),
		EndDate:         models.DateOnly(input.Body.EndDate),
		StreakMinPoints: input.Body.StreakMinPoints,
		PaymentRequired: input.Body.PaymentRequired,
		FinalDaysCount:  input.Body.FinalDaysCount,
	}
	if err := h.db.Create(&challenge).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create challenge: " + err.Error())
	}

	res := &CreateChallengeResponse{}
	res.Body.Challenge = challenge
	return res, nil
}

type CreateActivityTypeRequest struct {
	auth.AuthInput
	ChallengeID uint `path:"challengeID"`
	Body        struct {
		Name                 string                   `json:"name" required:"true"`
		ScoringConfig        scoring.Config           `json:"scoring_config" required:"true"`
		ThresholdBonuses     []scoring.ThresholdBonus `json:"threshold_bonuses,omitempty"`
		ContributesToStreak  bool                     `json:"contributes_to_streak"`
		IsNegative           bool                     `json:"is_negative"`
		MaxPerChallenge      *int                     `json:"max_per_challenge,omitempty"`
		ValidWeeks           []int                    `json:"valid_weeks,omitempty"`
		AvailableInFinalDays bool                     `json:"available_in_final_days"`
		CategoryID           *uint                    `json:"category_id,omitempty"`
	}
}

type CreateActivityTypeResponse struct {
	Body struct {
		ActivityType models.ActivityType `json:"activity_type"`
	}
}

func (h *AdminHandler) HandleCreateActivityType(ctx context.Context, input *CreateActivityTypeRequest) (*CreateActivityTypeResponse, error) {
	if _, err := h.requireAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	var challenge models.Challenge
	if err := h.db.First(&challenge, input.ChallengeID).Error; err != nil {
		return nil, huma.Error404NotFound("Challenge not found")
	}

	atype := models.ActivityType{
		ChallengeID:          challenge.ID,
		Name:                 input.Body.Name,
		ScoringConfig:        input.Body.ScoringConfig,
		ThresholdBonuses:     input.Body.ThresholdBonuses,
		ContributesToStreak:  input.Body.ContributesToStreak,
		IsNegative:           input.Body.IsNegative,
		MaxPerChallenge:      input.Body.MaxPerChallenge,
		ValidWeeks:           input.Body.ValidWeeks,
		AvailableInFinalDays: input.Body.AvailableInFinalDays,
		CategoryID:           input.Body.CategoryID,
	}
	if err := h.db.Create(&atype).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create activity type: " + err.Error())
	}

	res := &CreateActivityTypeResponse{}
	res.Body.ActivityType = atype
	return res, nil
}

type CreateAchievementRequest struct {
	auth.AuthInput
	ChallengeID uint `path:"challengeID"`
	Body        struct {
		Name        string                `json:"name" required:"true"`
		Description string                `json:"description,omitempty"`
		Image       string                `json:"image,omitempty" doc:"URL to image of the achievement"`
		Criteria    achievements.Criteria `json:"criteria" required:"true"`
		BonusPoints float64               `json:"bonus_points"`
	}
}

type CreateAchievementResponse struct {
	Body struct {
		Achievement models.Achievement `json:"achievement"`
	}
}

func (h *AdminHandler) HandleCreateAchievement(ctx context.Context, input *CreateAchievementRequest) (*CreateAchievementResponse, error) {
	if _, err := h.requireAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	var challenge models.Challenge
	if err := h.db.First(&challenge, input.ChallengeID).Error; err != nil {
		return nil, huma.Error404NotFound("Challenge not found")
	}

	achievement := models.Achievement{
		ChallengeID: challenge.ID,
		Name:        input.Body.Name,
		Description: input.Body.Description,
		Image:       input.Body.Image,
		Criteria:    input.Body.Criteria,
		BonusPoints: input.Body.BonusPoints,
		Frequency:   models.FrequencyOncePerChallenge,
	}
	if err := h.db.Create(&achievement).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create achievement: " + err.Error())
	}

	res := &CreateAchievementResponse{}
	res.Body.Achievement = achievement
	return res, nil
}

type DeleteAchievementRequest struct {
	auth.AuthInput
	AchievementID uint `path:"achievementID"`
}

type DeleteAchievementResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

func (h *AdminHandler) HandleDeleteAchievement(ctx context.Context, input *DeleteAchievementRequest) (*DeleteAchievementResponse, error) {
	if _, err := h.requireAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	if err := h.engine.RemoveAchievement(ctx, input.AchievementID); err != nil {
		return nil, mapEngineError(err)
	}

	res := &DeleteAchievementResponse{}
	res.Body.Message = "Achievement and its awards removed"
	return res, nil
}

type OverridePointsRequest struct {
	auth.AuthInput
	ActivityID uint `path:"activityID"`
	Body       struct {
		PointsEarned float64 `json:"points_earned" required:"true"`
	}
}

type OverridePointsResponse struct {
	Body struct {
		Activity models.Activity `json:"activity"`
	}
}

func (h *AdminHandler) HandleOverridePoints(ctx context.Context, input *OverridePointsRequest) (*OverridePointsResponse, error) {
	admin, err := h.requireAdmin(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	activity, err := h.engine.EditActivity(ctx, engine.EditInput{
		ActingUserID:   admin.ID,
		IsAdmin:        true,
		ActivityID:     input.ActivityID,
		PointsOverride: &input.Body.PointsEarned,
	})
	if err != nil {
		return nil, mapEngineError(err)
	}

	if h.notifier != nil {
		var owner models.User
		if err := h.db.First(&owner, activity.UserID).Error; err == nil {
			if err := h.notifier.NotifyAdminEdit(owner, *activity, *admin); err != nil {
				log.Printf("Failed to send edit notification: %v", err)
			}
		}
	}

	res := &OverridePointsResponse{}
	res.Body.Activity = *activity
	return res, nil
}

type InjectBonusRequest struct {
	auth.AuthInput
	ChallengeID uint `path:"challengeID"`
	Body        struct {
		UserID uint    `json:"user_id" required:"true"`
		Points float64 `json:"points" required:"true"`
		Label  string  `json:"label,omitempty" doc:"Shown in the user's activity feed"`
	}
}

type InjectBonusResponse struct {
	Body struct {
		Activity models.Activity `json:"activity"`
	}
}

// HandleInjectBonus is called by the mini-game engine at game end. The bonus
// rides the regular activity insert path so the ledger needs no special case.
func (h *AdminHandler) HandleInjectBonus(ctx context.Context, input *InjectBonusRequest) (*InjectBonusResponse, error) {
	if _, err := h.requireAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	activity, err := h.engine.InjectBonus(ctx, input.Body.UserID, input.ChallengeID, input.Body.Points, models.SourceMiniGame, input.Body.Label)
	if err != nil {
		return nil, mapEngineError(err)
	}

	res := &InjectBonusResponse{}
	res.Body.Activity = *activity
	return res, nil
}

type RebuildRequest struct {
	auth.AuthInput
	Body struct {
		UserID      uint `json:"user_id" required:"true"`
		ChallengeID uint `json:"challenge_id" required:"true"`
	}
}

type RebuildResponse struct {
	Body struct {
		Participation models.Participation `json:"participation"`
	}
}

// HandleRebuild recomputes a participation's cached total and streak from
// the activity log, the repair path for any aggregate drift.
func (h *AdminHandler) HandleRebuild(ctx context.Context, input *RebuildRequest) (*RebuildResponse, error) {
	if _, err := h.requireAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	p, err := h.engine.RebuildParticipation(ctx, input.Body.UserID, input.Body.ChallengeID)
	if err != nil {
		return nil, mapEngineError(err)
	}

	res := &RebuildResponse{}
	res.Body.Participation = *p
	return res, nil
}

type MarkPaidRequest struct {
	auth.AuthInput
	Body struct {
		UserID      uint `json:"user_id" required:"true"`
		ChallengeID uint `json:"challenge_id" required:"true"`
	}
}

type MarkPaidResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

func (h *AdminHandler) HandleMarkPaid(ctx context.Context, input *MarkPaidRequest) (*MarkPaidResponse, error) {
	if _, err := h.requireAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	result := h.db.Model(&models.Participation{}).
		Where("user_id = ? AND challenge_id = ?", input.Body.UserID, input.Body.ChallengeID).
		Update("payment_status", models.PaymentStatusPaid)
	if result.Error != nil {
		return nil, huma.Error500InternalServerError("Failed to update payment status: " + result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return nil, huma.Error404NotFound("Participation not found")
	}

	res := &MarkPaidResponse{}
	res.Body.Message = "Payment recorded"
	return res, nil
}
