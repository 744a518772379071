package handlers

import (
	"context"
	"log"
	"time"

	"github.com/stridehq/challenge-api/internal/auth"
	"github.com/stridehq/challenge-api/internal/engine"
	"github.com/stridehq/challenge-api/internal/models"
	"github.com/stridehq/challenge-api/internal/notifier"
	"github.com/stridehq/challenge-api/internal/scoring"
	"gorm.io/gorm"
)

type ActivityHandler struct {
	db          *gorm.DB
	engine      *engine.Engine
	notifier    notifier.Notifier
	authHandler *auth.AuthHandler
}

func NewActivityHandler(db *gorm.DB, eng *engine.Engine, n notifier.Notifier, authHandler *auth.AuthHandler) *ActivityHandler {
	return &ActivityHandler{db: db, engine: eng, notifier: n, authHandler: authHandler}
}

type AwardSummary struct {
	AchievementID uint    `json:"achievement_id"`
	Name          string  `json:"name"`
	BonusPoints   float64 `json:"bonus_points"`
}

type LogActivityRequest struct {
	auth.AuthInput
	ChallengeID uint `path:"challengeID"`
	Body        struct {
		ActivityTypeID uint                   `json:"activity_type_id" required:"true"`
		LoggedDate     time.Time              `json:"logged_date" required:"true"`
		Metrics        map[string]interface{} `json:"metrics,omitempty"`
		UserID         uint                   `json:"user_id,omitempty" doc:"Optional user to log for (admins only)"`
	}
}

type LogActivityResponse struct {
	Body struct {
		Activity models.Activity `json:"activity"`
		Awarded  []AwardSummary  `json:"awarded,omitempty"`
	}
}

func (h *ActivityHandler) HandleLogActivity(ctx context.Context, input *LogActivityRequest) (*LogActivityResponse, error) {
	actor, err := h.authHandler.AuthorizeUser(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	targetUserID := actor.ID
	source := models.SourceManual
	if input.Body.UserID != 0 && input.Body.UserID != actor.ID {
		targetUserID = input.Body.UserID
		source = models.SourceAdmin
	}

	activity, awards, err := h.engine.LogActivity(ctx, engine.LogInput{
		ActingUserID:   actor.ID,
		IsAdmin:        actor.IsAdmin,
		UserID:         targetUserID,
		ChallengeID:    input.ChallengeID,
		ActivityTypeID: input.Body.ActivityTypeID,
		LoggedDate:     input.Body.LoggedDate,
		Metrics:        scoring.Metrics(input.Body.Metrics),
		Source:         source,
	})
	if err != nil {
		return nil, mapEngineError(err)
	}

	h.notifyAwards(awards)

	res := &LogActivityResponse{}
	res.Body.Activity = *activity
	res.Body.Awarded = summarize(awards)
	return res, nil
}

type EditActivityRequest struct {
	auth.AuthInput
	ActivityID uint `path:"activityID"`
	Body       struct {
		ActivityTypeID *uint                  `json:"activity_type_id,omitempty"`
		LoggedDate     *time.Time             `json:"logged_date,omitempty"`
		Metrics        map[string]interface{} `json:"metrics,omitempty"`
	}
}

type EditActivityResponse struct {
	Body struct {
		Activity models.Activity `json:"activity"`
	}
}

func (h *ActivityHandler) HandleEditActivity(ctx context.Context, input *EditActivityRequest) (*EditActivityResponse, error) {
	actor, err := h.authHandler.AuthorizeUser(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var metrics scoring.Metrics
	if input.Body.Metrics != nil {
		metrics = scoring.Metrics(input.Body.Metrics)
	}

	activity, err := h.engine.EditActivity(ctx, engine.EditInput{
		ActingUserID:   actor.ID,
		IsAdmin:        actor.IsAdmin,
		ActivityID:     input.ActivityID,
		ActivityTypeID: input.Body.ActivityTypeID,
		LoggedDate:     input.Body.LoggedDate,
		Metrics:        metrics,
	})
	if err != nil {
		return nil, mapEngineError(err)
	}

	res := &EditActivityResponse{}
	res.Body.Activity = *activity
	return res, nil
}

type DeleteActivityRequest struct {
	auth.AuthInput
	ActivityID uint `path:"activityID"`
}

type DeleteActivityResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

func (h *ActivityHandler) HandleDeleteActivity(ctx context.Context, input *DeleteActivityRequest) (*DeleteActivityResponse, error) {
	actor, err := h.authHandler.AuthorizeUser(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	if err := h.engine.DeleteActivity(ctx, actor.ID, actor.IsAdmin, input.ActivityID); err != nil {
		return nil, mapEngineError(err)
	}

	res := &DeleteActivityResponse{}
	res.Body.Message = "Activity deleted"
	return res, nil
}

// notifyAwards sends award notifications after the transaction has
// committed. Failures are logged, never returned.
func (h *ActivityHandler) notifyAwards(awards []engine.AwardEvent) {
	if h.notifier == nil {
		return
	}
	for _, award := range awards {
		var user models.User
		if err := h.db.First(&user, award.UserID).Error; err != nil {
			log.Printf("Failed to load user for award notification: %v", err)
			continue
		}
		if err := h.notifier.NotifyAchievementAward(user, award.Achievement); err != nil {
			log.Printf("Failed to send award notification: %v", err)
		}
	}
}

func summarize(awards []engine.AwardEvent) []AwardSummary {
	var out []AwardSummary
	for _, award := range awards {
		out = append(out, AwardSummary{
			AchievementID: award.Achievement.ID,
			Name:          award.Achievement.Name,
			BonusPoints:   award.Achievement.BonusPoints,
		})
	}
	return out
}
