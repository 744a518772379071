package handlers

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stridehq/challenge-api/internal/engine"
)

// mapEngineError translates engine sentinels into HTTP errors. The engine
// rejected the whole transition, so every branch here means nothing was
// written.
func mapEngineError(err error) error {
	switch {
	case errors.Is(err, engine.ErrNotParticipant):
		return huma.Error403Forbidden("You are not a participant in this challenge")
	case errors.Is(err, engine.ErrPaymentRequired):
		return huma.NewError(http.StatusPaymentRequired, "Payment required before logging activities")
	case errors.Is(err, engine.ErrNotOwner):
		return huma.Error403Forbidden("You cannot modify another user's activity")
	case errors.Is(err, engine.ErrWrongChallenge):
		return huma.Error400BadRequest("Activity type does not belong to this challenge")
	case errors.Is(err, engine.ErrTypeNotAvailable):
		return huma.Error400BadRequest("Activity type is not available on this date")
	case errors.Is(err, engine.ErrMaxPerChallenge):
		return huma.Error400BadRequest("Maximum logs for this activity type reached")
	case errors.Is(err, engine.ErrAlreadyDeleted):
		return huma.Error410Gone("Activity is already deleted")
	case errors.Is(err, engine.ErrNotFound):
		return huma.Error404NotFound("Activity not found")
	default:
		return huma.Error500InternalServerError("Failed to process activity: " + err.Error())
	}
}
