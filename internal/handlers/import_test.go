package handlers

import (
	"context"
	"testing"

	"github.com/stridehq/challenge-api/internal/engine"
	"github.com/stridehq/challenge-api/internal/models"
)

func TestHandleImportActivityReplaySafe(t *testing.T) {
	env := setupHandlers(t)
	ctx := context.Background()
	challenge, atype := env.seedChallenge(t)
	_, cookie := env.createUser(t, "800", false)
	env.join(t, cookie, challenge.ID)

	importHandler := NewImportHandler(env.db, engine.New(env.db), nil, env.authHandler)

	req := &ImportActivityRequest{}
	req.Cookie = cookie
	req.Body.ChallengeID = challenge.ID
	req.Body.ActivityTypeID = atype.ID
	req.Body.LoggedDate = challenge.StartDate
	req.Body.Metrics = map[string]interface{}{"minutes": float64(30)}
	req.Body.ExternalID = "provider-7"

	first, err := importHandler.HandleImportActivity(ctx, req)
	if err != nil {
		t.Fatalf("HandleImportActivity failed: %v", err)
	}
	if first.Body.Activity.Source != models.SourceSync {
		t.Errorf("expected sync source, got %q", first.Body.Activity.Source)
	}

	// Webhook redelivery hits the same activity
	second, err := importHandler.HandleImportActivity(ctx, req)
	if err != nil {
		t.Fatalf("replayed HandleImportActivity failed: %v", err)
	}
	if first.Body.Activity.ID != second.Body.Activity.ID {
		t.Errorf("expected same activity on replay, got %d and %d", first.Body.Activity.ID, second.Body.Activity.ID)
	}

	var p models.Participation
	env.db.First(&p, "challenge_id = ?", challenge.ID)
	if p.TotalPoints != 30 {
		t.Errorf("expected points counted once, got %v", p.TotalPoints)
	}

	delReq := &ImportDeleteRequest{ExternalID: "provider-7", ChallengeID: challenge.ID}
	delReq.Cookie = cookie
	if _, err := importHandler.HandleImportDelete(ctx, delReq); err != nil {
		t.Fatalf("HandleImportDelete failed: %v", err)
	}

	env.db.First(&p, "challenge_id = ?", challenge.ID)
	if p.TotalPoints != 0 {
		t.Errorf("expected total 0 after provider delete, got %v", p.TotalPoints)
	}
}
