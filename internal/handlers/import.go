package handlers

import (
	"context"
	"time"

	"github.com/stridehq/challenge-api/internal/auth"
	"github.com/stridehq/challenge-api/internal/engine"
	"github.com/stridehq/challenge-api/internal/models"
	"github.com/stridehq/challenge-api/internal/notifier"
	"github.com/stridehq/challenge-api/internal/scoring"
	"gorm.io/gorm"
)

// ImportHandler is the integration surface for third-party activity sync
// (wearables). Upserts are idempotent on external_id: webhook redeliveries
// are safe to replay as-is.
type ImportHandler struct {
	db          *gorm.DB
	engine      *engine.Engine
	notifier    notifier.Notifier
	authHandler *auth.AuthHandler
}

func NewImportHandler(db *gorm.DB, eng *engine.Engine, n notifier.Notifier, authHandler *auth.AuthHandler) *ImportHandler {
	return &ImportHandler{db: db, engine: eng, notifier: n, authHandler: authHandler}
}

type ImportActivityRequest struct {
	auth.AuthInput
	Body struct {
		ChallengeID    uint                   `json:"challenge_id" required:"true"`
		ActivityTypeID uint                   `json:"activity_type_id" required:"true"`
		LoggedDate     time.Time              `json:"logged_date" required:"true"`
		Metrics        map[string]interface{} `json:"metrics,omitempty"`
		ExternalID     string                 `json:"external_id" required:"true" doc:"Provider activity id, dedup key"`
	}
}

type ImportActivityResponse struct {
	Body struct {
		Activity models.Activity `json:"activity"`
		Awarded  []AwardSummary  `json:"awarded,omitempty"`
	}
}

func (h *ImportHandler) HandleImportActivity(ctx context.Context, input *ImportActivityRequest) (*ImportActivityResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	activity, awards, err := h.engine.ImportUpsert(ctx, engine.ImportInput{
		UserID:         userID,
		ChallengeID:    input.Body.ChallengeID,
		ActivityTypeID: input.Body.ActivityTypeID,
		LoggedDate:     input.Body.LoggedDate,
		Metrics:        scoring.Metrics(input.Body.Metrics),
		ExternalID:     input.Body.ExternalID,
	})
	if err != nil {
		return nil, mapEngineError(err)
	}

	notifyImportAwards(h.db, h.notifier, awards)

	res := &ImportActivityResponse{}
	res.Body.Activity = *activity
	res.Body.Awarded = summarize(awards)
	return res, nil
}

type ImportDeleteRequest struct {
	auth.AuthInput
	ExternalID  string `path:"externalID"`
	ChallengeID uint   `query:"challenge_id" required:"true"`
}

type ImportDeleteResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

func (h *ImportHandler) HandleImportDelete(ctx context.Context, input *ImportDeleteRequest) (*ImportDeleteResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	if err := h.engine.ImportDelete(ctx, userID, input.ChallengeID, input.ExternalID); err != nil {
		return nil, mapEngineError(err)
	}

	res := &ImportDeleteResponse{}
	res.Body.Message = "Imported activity deleted"
	return res, nil
}

func notifyImportAwards(db *gorm.DB, n notifier.Notifier, awards []engine.AwardEvent) {
	if n == nil {
		return
	}
	for _, award := range awards {
		var user models.User
		if err := db.First(&user, award.UserID).Error; err != nil {
			continue
		}
		n.NotifyAchievementAward(user, award.Achievement)
	}
}
